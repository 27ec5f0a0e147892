package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const (
	defaultPageLimit  = 20
	maxPageLimit      = 100
	defaultChartRange = 30 * 24 * time.Hour
)

type LeadHandler struct {
	Repo     entity.LeadRepositoryInterface
	UpdateUC *usecase.UpdateLeadUseCase
}

func NewLeadHandler(repo entity.LeadRepositoryInterface, updateUC *usecase.UpdateLeadUseCase) *LeadHandler {
	return &LeadHandler{Repo: repo, UpdateUC: updateUC}
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type listLeadsResponse struct {
	Leads      []*entity.Lead     `json:"leads"`
	Pagination paginationResponse `json:"pagination"`
}

// GET /api/leads
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entity.LeadFilter{
		Platform: q.Get("platform"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		From:     parseDate(q.Get("fromDate")),
		To:       parseEndDate(q.Get("toDate")),
	}

	page := entity.LeadPageOptions{
		Page:      intParam(q.Get("page"), 1),
		Limit:     intParam(q.Get("limit"), defaultPageLimit),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}

	leads, total, err := h.Repo.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	pages := (total + int64(page.Limit) - 1) / int64(page.Limit)
	writeJSON(w, http.StatusOK, listLeadsResponse{
		Leads: leads,
		Pagination: paginationResponse{
			Page:  page.Page,
			Limit: page.Limit,
			Total: total,
			Pages: pages,
		},
	})
}

// GET /api/leads/{id}
func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	lead, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// PATCH /api/leads/{id}
func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	lead, err := h.UpdateUC.Execute(r.Context(), id, input)
	if err != nil {
		var domainErr *usecase.DomainError
		if errors.As(err, &domainErr) {
			if domainErr.Code == usecase.CodeNotFound {
				writeError(w, http.StatusNotFound, domainErr.Message)
			} else {
				writeError(w, http.StatusBadRequest, domainErr.Message)
			}
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// DELETE /api/leads/{id}
func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete lead")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/leads/stats
func (h *LeadHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.Repo.Stats(r.Context(), parseDate(q.Get("fromDate")), parseEndDate(q.Get("toDate")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/leads/chart
func (h *LeadHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	to := time.Now()
	from := to.Add(-defaultChartRange)
	if t := parseDate(q.Get("fromDate")); t != nil {
		from = *t
	}
	if t := parseEndDate(q.Get("toDate")); t != nil {
		to = *t
	}

	rows, err := h.Repo.Chart(r.Context(), from, to, q.Get("platform"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute chart")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// leadID rejects malformed identifiers the same way as unknown ones: the
// caller can't tell whether a record never existed or the id is garbage.
func leadID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return "", false
	}
	return id, true
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

// parseEndDate widens a date-only upper bound to the end of that day, so
// toDate=2026-08-29 includes leads received during the 29th. Full RFC3339
// timestamps are taken as-is.
func parseEndDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
