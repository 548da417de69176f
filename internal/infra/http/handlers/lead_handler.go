package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/leadreach/internal/infra/http/middleware"
	"github.com/xavierca1/leadreach/internal/usecase"
)

// LeadHandler serves search, lead storage and the last-search exports.
type LeadHandler struct {
	Search  *usecase.SearchLeadsUseCase
	Save    *usecase.SaveLeadsUseCase
	Queries *usecase.LeadQueries
	Export  *usecase.ExportUseCase
}

func NewLeadHandler(search *usecase.SearchLeadsUseCase, save *usecase.SaveLeadsUseCase, queries *usecase.LeadQueries, export *usecase.ExportUseCase) *LeadHandler {
	return &LeadHandler{Search: search, Save: save, Queries: queries, Export: export}
}

type searchRequest struct {
	Search   string `json:"search" validate:"required"`
	Category string `json:"category"`
}

// HandleSearch runs a paginated provider search. POST /api/search
func (h *LeadHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req, "Search query is required") {
		return
	}

	out, err := h.Search.Execute(r.Context(), usecase.SearchInput{Search: req.Search, Category: req.Category})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type saveLeadsRequest struct {
	Leads []usecase.LeadInput `json:"leads" validate:"required"`
}

// HandleSaveLeads appends new leads. POST /api/leads
func (h *LeadHandler) HandleSaveLeads(w http.ResponseWriter, r *http.Request) {
	var req saveLeadsRequest
	if !decodeJSON(w, r, &req, "Leads array is required") {
		return
	}

	out, err := h.Save.Execute(r.Context(), usecase.SaveLeadsInput{Leads: req.Leads})
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.RecordLeadsSaved(out.Count)
	writeJSON(w, http.StatusOK, out)
}

// HandleList returns every saved lead, or only those not yet contacted with
// ?pending=true. GET /api/leads
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pending, _ := strconv.ParseBool(r.URL.Query().Get("pending"))

	list := h.Queries.List
	if pending {
		list = h.Queries.Pending
	}
	leads, err := list(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// HandleAnalytics recomputes the counters from the lead list. GET /api/analytics
func (h *LeadHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Queries.RefreshAnalytics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (h *LeadHandler) HandleLastSearch(w http.ResponseWriter, r *http.Request) {
	last, err := h.Queries.LastSearchResults(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// HandleLastSearchCSV downloads the last search as CSV. GET /api/last-search/csv
func (h *LeadHandler) HandleLastSearchCSV(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.Export.LastSearchCSV(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleMarkReached flags a lead as reached. PATCH /api/leads/{leadId}/reached
func (h *LeadHandler) HandleMarkReached(w http.ResponseWriter, r *http.Request) {
	out, err := h.Queries.MarkReached(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
