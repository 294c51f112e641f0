package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/youthcamp/portal/internal/apiclient"
	"github.com/youthcamp/portal/internal/models"
	"github.com/youthcamp/portal/internal/statestore"
)

type resultData struct {
	Title        string
	Error        string
	Registration *models.Registration
	Slip         *models.Slip
	Callback     *models.CallbackResult
	Search       *models.SearchResult
	Filters      searchFilters
}

// handleSettingsRefresh retries the settings load. A failed retry keeps the
// previous snapshot; the gate on the next render reports it.
func (s *Server) handleSettingsRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.Refresh(r.Context()); err != nil {
		slog.Warn("settings refresh failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSubmitRegistration creates or updates a registration. The submitted
// form survives a failed attempt as a per-session draft and is cleared once
// the API accepts it.
func (s *Server) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "malformed form")
		return
	}

	req := &models.RegistrationRequest{
		MemberID:    r.PostFormValue("member_id"),
		FullName:    strings.TrimSpace(r.PostFormValue("full_name")),
		Gender:      r.PostFormValue("gender"),
		Phone:       strings.TrimSpace(r.PostFormValue("phone")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Category:    models.Category(r.PostFormValue("category")),
		ClassLevel:  r.PostFormValue("class_level"),
		AreaCouncil: r.PostFormValue("area_council"),
		Ailments:    r.PostForm["ailments"],
		Reference:   r.PostFormValue("reference"),
	}
	if req.FullName == "" || req.Phone == "" || !req.Category.Known() {
		respondError(w, http.StatusBadRequest, "full name, phone and a valid category are required")
		return
	}

	session := s.sessionID(w, r)
	draftKey := statestore.DraftKey(session)

	var (
		reg *models.Registration
		err error
	)
	if req.MemberID != "" || req.Reference != "" {
		reg, err = s.api.ExistingRegistration(r.Context(), req)
	} else {
		reg, err = s.api.NewRegistration(r.Context(), req)
	}
	if err != nil {
		draft := map[string]string{}
		for k := range r.PostForm {
			draft[k] = r.PostFormValue(k)
		}
		s.state.Put(r.Context(), draftKey, draft)
		s.render(w, http.StatusOK, "result", resultData{
			Title: "Registration failed",
			Error: apiclient.Humanize(err),
		})
		return
	}

	s.state.Delete(r.Context(), draftKey)
	s.render(w, http.StatusOK, "result", resultData{
		Title:        "Registration received",
		Registration: reg,
	})
}

// handleSubmitSearch runs a member search and remembers the filters so the
// search page restores them on the next visit.
func (s *Server) handleSubmitSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "malformed form")
		return
	}

	filters := searchFilters{
		Search:      strings.TrimSpace(r.PostFormValue("search")),
		Gender:      r.PostFormValue("gender"),
		ClassLevel:  r.PostFormValue("class_level"),
		AreaCouncil: r.PostFormValue("area_council"),
		PinCategory: r.PostFormValue("pin_category"),
	}
	s.state.Put(r.Context(), statestore.KeySearchFilters, filters)

	page, _ := strconv.Atoi(r.PostFormValue("page"))
	if page < 1 {
		page = 1
	}

	result, err := s.api.Search(r.Context(), models.SearchParams{
		Search:      filters.Search,
		Gender:      filters.Gender,
		ClassLevel:  filters.ClassLevel,
		AreaCouncil: filters.AreaCouncil,
		PinCategory: filters.PinCategory,
		Page:        page,
		Limit:       20,
	})
	if err != nil {
		s.render(w, http.StatusOK, "search_results", resultData{
			Title:   "Search failed",
			Error:   apiclient.Humanize(err),
			Filters: filters,
		})
		return
	}

	s.render(w, http.StatusOK, "search_results", resultData{
		Title:   "Search results",
		Search:  result,
		Filters: filters,
	})
}

// handleSubmitSlip reprints a confirmation slip. The lookup values are kept
// so the form comes back pre-filled.
func (s *Server) handleSubmitSlip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "malformed form")
		return
	}

	lookup := slipLookup{
		Reference: strings.TrimSpace(r.PostFormValue("reference")),
		Phone:     strings.TrimSpace(r.PostFormValue("phone")),
	}
	if lookup.Reference == "" {
		respondError(w, http.StatusBadRequest, "reference is required")
		return
	}
	s.state.Put(r.Context(), statestore.KeySlipLookup, lookup)

	slip, err := s.api.ReprintSlip(r.Context(), &models.SlipRequest{
		Reference: lookup.Reference,
		Phone:     lookup.Phone,
	})
	if err != nil {
		title := "Slip reprint failed"
		if apiclient.IsNotFound(err) {
			title = "No matching registration"
		}
		s.render(w, http.StatusOK, "result", resultData{
			Title: title,
			Error: apiclient.Humanize(err),
		})
		return
	}

	s.render(w, http.StatusOK, "result", resultData{
		Title: "Your slip",
		Slip:  slip,
	})
}

func (s *Server) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	gateway := chi.URLParam(r, "gateway")
	reference := callbackReference(r)
	if reference == "" {
		respondError(w, http.StatusBadRequest, "missing payment reference")
		return
	}

	result, err := s.api.PaymentCallback(r.Context(), gateway, reference)
	if err != nil {
		s.render(w, http.StatusOK, "callback", resultData{
			Title: "Payment verification failed",
			Error: apiclient.Humanize(err),
		})
		return
	}

	s.render(w, http.StatusOK, "callback", resultData{
		Title:    "Payment status",
		Callback: result,
	})
}

func (s *Server) handleDonationCallback(w http.ResponseWriter, r *http.Request) {
	reference := callbackReference(r)
	if reference == "" {
		respondError(w, http.StatusBadRequest, "missing donation reference")
		return
	}

	result, err := s.api.DonationCallback(r.Context(), reference)
	if err != nil {
		s.render(w, http.StatusOK, "callback", resultData{
			Title: "Donation verification failed",
			Error: apiclient.Humanize(err),
		})
		return
	}

	s.render(w, http.StatusOK, "callback", resultData{
		Title:    "Donation received",
		Callback: result,
	})
}

// callbackReference pulls the transaction reference from the query string.
// Gateways disagree on the parameter name.
func callbackReference(r *http.Request) string {
	if ref := r.URL.Query().Get("reference"); ref != "" {
		return ref
	}
	return r.URL.Query().Get("trxref")
}
