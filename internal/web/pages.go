package web

import (
	"context"
	"net/http"
	"time"

	"github.com/youthcamp/portal/internal/models"
	"github.com/youthcamp/portal/internal/pricing"
	"github.com/youthcamp/portal/internal/router"
	"github.com/youthcamp/portal/internal/schedule"
	"github.com/youthcamp/portal/internal/settings"
	"github.com/youthcamp/portal/internal/statestore"
)

// registrationSections in flow order.
var registrationSections = []string{"personal", "contact", "confirm"}

type pageData struct {
	Title    string
	Snapshot settings.Snapshot
	Camp     *models.Camp
	Window   schedule.Status
	Prices   []*pricing.Info
	Info     *pricing.Info
	Category models.Category
	Action   string
	Section  string
	Sections []string
	Filters  searchFilters
	Lookup   slipLookup
	Draft    map[string]string
	Error    string
}

type searchFilters struct {
	Search      string `json:"search"`
	Gender      string `json:"gender"`
	ClassLevel  string `json:"class_level"`
	AreaCouncil string `json:"area_council"`
	PinCategory string `json:"pin_category"`
}

type slipLookup struct {
	Reference string `json:"reference"`
	Phone     string `json:"phone"`
}

// gate returns the settings snapshot and renders the blocking error view when
// the camp configuration never loaded. Nothing can render without it.
func (s *Server) gate(w http.ResponseWriter) (settings.Snapshot, bool) {
	snap := s.settings.Snapshot()
	if snap.Loaded() {
		return snap, true
	}

	w.Header().Set("Cache-Control", "no-store")
	s.render(w, http.StatusOK, "gate_error", pageData{
		Title:    "Portal unavailable",
		Snapshot: snap,
		Error:    snap.Err,
	})
	return snap, false
}

func (s *Server) pageHome(w http.ResponseWriter, r *http.Request, _ router.Params) {
	snap, ok := s.gate(w)
	if !ok {
		return
	}

	camp := &snap.Settings.Camp
	s.render(w, http.StatusOK, "home", pageData{
		Title:    camp.Title,
		Snapshot: snap,
		Camp:     camp,
		Window:   schedule.WindowStatus(camp.RegistrationStart, camp.RegistrationEnd, time.Now()),
		Prices:   pricing.ResolveAll(camp, snap.Settings.Usage, time.Now()),
	})
}

func (s *Server) pagePrices(w http.ResponseWriter, r *http.Request, _ router.Params) {
	snap, ok := s.gate(w)
	if !ok {
		return
	}

	camp := &snap.Settings.Camp
	s.render(w, http.StatusOK, "prices", pageData{
		Title:    "Choose a category",
		Snapshot: snap,
		Camp:     camp,
		Window:   schedule.WindowStatus(camp.RegistrationStart, camp.RegistrationEnd, time.Now()),
		Prices:   pricing.ResolveAll(camp, snap.Settings.Usage, time.Now()),
	})
}

func (s *Server) pageRegister(w http.ResponseWriter, r *http.Request, p router.Params) {
	snap, ok := s.gate(w)
	if !ok {
		return
	}

	cat := models.Category(p.Get("category"))
	if !cat.Known() {
		http.Redirect(w, r, "/new", http.StatusSeeOther)
		return
	}

	camp := &snap.Settings.Camp
	now := time.Now()
	info := pricing.Resolve(camp, snap.Settings.Usage, cat, now)
	if !info.Available() || info.SoldOut() {
		http.Redirect(w, r, "/new", http.StatusSeeOther)
		return
	}
	if schedule.WindowStatus(camp.RegistrationStart, camp.RegistrationEnd, now) != schedule.StatusOpen {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	draft := map[string]string{}
	s.state.Get(r.Context(), statestore.DraftKey(s.sessionID(w, r)), &draft)

	s.render(w, http.StatusOK, "register", pageData{
		Title:    "Register - " + cat.Display(),
		Snapshot: snap,
		Camp:     camp,
		Category: cat,
		Info:     info,
		Draft:    draft,
	})
}

func (s *Server) pageExisting(w http.ResponseWriter, r *http.Request, p router.Params) {
	snap, ok := s.gate(w)
	if !ok {
		return
	}

	action := p.Get("action")
	if action == "edit" {
		var filters searchFilters
		s.state.Get(r.Context(), statestore.KeySearchFilters, &filters)
		s.render(w, http.StatusOK, "existing", pageData{
			Title:    "Find your record",
			Snapshot: snap,
			Camp:     &snap.Settings.Camp,
			Action:   action,
			Filters:  filters,
		})
		return
	}

	var lookup slipLookup
	s.state.Get(r.Context(), statestore.KeySlipLookup, &lookup)
	s.render(w, http.StatusOK, "slip", pageData{
		Title:    "Reprint slip",
		Snapshot: snap,
		Camp:     &snap.Settings.Camp,
		Action:   action,
		Lookup:   lookup,
	})
}

func (s *Server) pageRegistrationStart(w http.ResponseWriter, r *http.Request, _ router.Params) {
	if _, ok := s.gate(w); !ok {
		return
	}

	session := s.sessionID(w, r)
	resume := "/registration/" + registrationSections[0]
	var saved string
	if s.state.Get(r.Context(), resumeKey(session), &saved) && saved != "" {
		resume = saved
	}
	http.Redirect(w, r, resume, http.StatusSeeOther)
}

func (s *Server) pageRegistrationSection(w http.ResponseWriter, r *http.Request, p router.Params) {
	snap, ok := s.gate(w)
	if !ok {
		return
	}

	section := p.Get("section")
	if !validSection(section) {
		http.Redirect(w, r, "/registration", http.StatusSeeOther)
		return
	}

	s.history(s.sessionID(w, r)).Push(r.URL.Path)

	s.render(w, http.StatusOK, "registration", pageData{
		Title:    "Registration - " + section,
		Snapshot: snap,
		Camp:     &snap.Settings.Camp,
		Section:  section,
		Sections: registrationSections,
	})
}

func validSection(section string) bool {
	for _, s := range registrationSections {
		if s == section {
			return true
		}
	}
	return false
}

func resumeKey(session string) string {
	return statestore.KeyResumePath + ":" + session
}

// history returns the per-session navigation history for the multi-step
// flow, creating it on first use. Every navigation persists the resume point
// so a returning visitor continues where they left off, even after the
// in-memory history ages out.
func (s *Server) history(session string) *router.History {
	return s.histories.get(session, func() *router.History {
		h := router.NewHistory("/registration")
		h.Listen(func(path string) {
			s.state.Put(context.Background(), resumeKey(session), path)
		})
		return h
	})
}
