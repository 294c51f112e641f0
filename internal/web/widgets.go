package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/youthcamp/portal/internal/models"
	"github.com/youthcamp/portal/internal/selectbox"
)

// widgetSnapshot is the JSON shape rendered by the client.
type widgetSnapshot struct {
	State      string             `json:"state"`
	Search     string             `json:"search"`
	Applied    string             `json:"applied"`
	Items      []selectbox.Option `json:"items"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Selected   []selectbox.Option `json:"selected"`
}

func snapshotJSON(snap selectbox.Snapshot) widgetSnapshot {
	return widgetSnapshot{
		State:      snap.State.String(),
		Search:     snap.Search,
		Applied:    snap.Applied,
		Items:      snap.Items,
		Page:       snap.Page,
		TotalPages: snap.TotalPages,
		Selected:   snap.Selected,
	}
}

// handleSelectWidget drives one select widget. The action parameter maps to
// the widget operations; the response is always the resulting snapshot.
func (s *Server) handleSelectWidget(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "widget")
	build, ok := s.widgetBuilder(name)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown widget")
		return
	}

	session := s.sessionID(w, r)
	sel := s.widgets.get(session+":"+name, build)

	q := r.URL.Query()
	var err error
	switch q.Get("action") {
	case "open":
		err = sel.Open(r.Context())
	case "close":
		sel.Close()
	case "search":
		err = sel.SetSearch(r.Context(), q.Get("q"))
	case "more":
		err = sel.LoadMore(r.Context())
	case "pick":
		sel.Pick(selectbox.Option{Value: q.Get("value"), Label: q.Get("label")})
	case "values":
		err = sel.SetValues(r.Context(), q["value"]...)
	case "", "snapshot":
	default:
		respondError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "option source unavailable")
		return
	}

	respondJSON(w, http.StatusOK, snapshotJSON(sel.Snapshot()))
}

// widgetBuilder maps a widget name to its select configuration.
func (s *Server) widgetBuilder(name string) (func() *selectbox.Select, bool) {
	switch name {
	case "councils":
		return func() *selectbox.Select {
			return selectbox.New(selectbox.Config{Fetch: s.fetchCouncils})
		}, true
	case "ailments":
		return func() *selectbox.Select {
			return selectbox.New(selectbox.Config{Fetch: s.fetchAilments, Multi: true})
		}, true
	case "members":
		return func() *selectbox.Select {
			return selectbox.New(selectbox.Config{
				Fetch:    s.fetchMembers,
				Debounce: 250 * time.Millisecond,
			})
		}, true
	}
	return nil, false
}

// fetchCouncils serves the council list as a single filtered page. The API
// returns the full list; filtering happens here.
func (s *Server) fetchCouncils(ctx context.Context, req selectbox.FetchRequest) (selectbox.Page, error) {
	councils, err := s.api.Councils(ctx)
	if err != nil {
		return selectbox.Page{}, err
	}
	var items []selectbox.Option
	for _, c := range councils {
		if !matchesSearch(c.Name, c.ID, req.Search) {
			continue
		}
		items = append(items, selectbox.Option{Value: c.ID, Label: c.Name})
	}
	return selectbox.Page{Items: items, Page: 1, TotalPages: 1}, nil
}

func (s *Server) fetchAilments(ctx context.Context, req selectbox.FetchRequest) (selectbox.Page, error) {
	ailments, err := s.api.Ailments(ctx)
	if err != nil {
		return selectbox.Page{}, err
	}
	var items []selectbox.Option
	for _, a := range ailments {
		if !matchesSearch(a.Name, a.ID, req.Search) {
			continue
		}
		items = append(items, selectbox.Option{Value: a.ID, Label: a.Name})
	}
	return selectbox.Page{Items: items, Page: 1, TotalPages: 1}, nil
}

func (s *Server) fetchMembers(ctx context.Context, req selectbox.FetchRequest) (selectbox.Page, error) {
	result, err := s.api.Search(ctx, models.SearchParams{
		Search: req.Search,
		Page:   req.Page,
		Limit:  20,
	})
	if err != nil {
		return selectbox.Page{}, err
	}
	var items []selectbox.Option
	for _, m := range result.Items {
		items = append(items, selectbox.Option{Value: m.ID, Label: m.FullName})
	}
	return selectbox.Page{Items: items, Page: result.Page, TotalPages: result.TotalPages}, nil
}

// matchesSearch matches the label case-insensitively, or the value exactly.
// Value equality lets SetValues resolve stored IDs to labels.
func matchesSearch(label, value, search string) bool {
	if search == "" {
		return true
	}
	if value == search {
		return true
	}
	return strings.Contains(strings.ToLower(label), strings.ToLower(search))
}
