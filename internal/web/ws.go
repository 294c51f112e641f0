package web

import (
	"log/slog"
	"net/http"

	"github.com/youthcamp/portal/internal/models"
	"github.com/youthcamp/portal/internal/settings"
)

// wsPayload is one settings update pushed to connected pages.
type wsPayload struct {
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	Settings *models.Settings `json:"settings,omitempty"`
}

func payloadFor(snap settings.Snapshot) wsPayload {
	return wsPayload{
		Loading:  snap.Loading,
		Error:    snap.Err,
		Settings: snap.Settings,
	}
}

// handleSettingsWS streams settings snapshots to the page so price and quota
// changes show up without a reload. Updates that outrun a slow client are
// dropped; the next one carries the full state anyway.
func (s *Server) handleSettingsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan settings.Snapshot, 8)
	unsubscribe := s.settings.Subscribe(func(snap settings.Snapshot) {
		select {
		case updates <- snap:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(payloadFor(s.settings.Snapshot())); err != nil {
		return
	}

	for {
		select {
		case snap := <-updates:
			if err := conn.WriteJSON(payloadFor(snap)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
