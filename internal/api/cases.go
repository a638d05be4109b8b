package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
	"github.com/MikeSquared-Agency/Tradeoff/internal/optimize"
	"github.com/MikeSquared-Agency/Tradeoff/internal/scoring"
	"github.com/MikeSquared-Agency/Tradeoff/internal/simulator"
	"github.com/MikeSquared-Agency/Tradeoff/internal/store"
)

const maxCaseBytes = 4 << 20

type CasesHandler struct {
	svc    *simulator.Service
	logger *slog.Logger
}

func NewCasesHandler(svc *simulator.Service, logger *slog.Logger) *CasesHandler {
	return &CasesHandler{svc: svc, logger: logger}
}

type EvaluateResponse struct {
	CaseID   uuid.UUID         `json:"case_id"`
	Status   store.CaseStatus  `json:"status"`
	Results  model.Results     `json:"results"`
	Warnings []scoring.Warning `json:"warnings,omitempty"`
}

type ModifyWeightRequest struct {
	Field   string   `json:"field"`
	Element string   `json:"element"`
	Value   *float64 `json:"value"`
}

type OptimizeResponse struct {
	CaseID  uuid.UUID         `json:"case_id"`
	Status  store.CaseStatus  `json:"status"`
	Outcome *optimize.Outcome `json:"outcome"`
	Results model.Results     `json:"results"`
}

func (h *CasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := model.Decode(io.LimitReader(r.Body, maxCaseBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rec, err := h.svc.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *CasesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.CaseFilter{Name: r.URL.Query().Get("name")}
	if v := r.URL.Query().Get("status"); v != "" {
		s := store.CaseStatus(v)
		filter.Status = &s
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	recs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*store.CaseRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *CasesHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	rec, warnings, err := h.svc.Evaluate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{
		CaseID:   rec.ID,
		Status:   rec.Status,
		Results:  rec.Results,
		Warnings: warnings,
	})
}

func (h *CasesHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec.Results == nil {
		writeError(w, simulator.ErrNotEvaluated)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{CaseID: rec.ID, Status: rec.Status, Results: rec.Results})
}

func (h *CasesHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	ranking, err := h.svc.Ranking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *CasesHandler) ModifyWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	var req ModifyWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Field == "" || req.Element == "" || req.Value == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field, element and value required"})
		return
	}
	rec, err := h.svc.ModifyWeight(r.Context(), id, req.Field, req.Element, *req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *CasesHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	var req optimize.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Scenario == "" || req.OptionName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scenario and option_name required"})
		return
	}
	if req.MaxCombinations < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_combinations must not be negative"})
		return
	}

	rec, outcome, err := h.svc.Optimize(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("case optimized via api", "case_id", id, "option", outcome.Option, "gain", outcome.Gain)
	writeJSON(w, http.StatusOK, OptimizeResponse{
		CaseID:  rec.ID,
		Status:  rec.Status,
		Outcome: outcome,
		Results: rec.Results,
	})
}

func (h *CasesHandler) Frontier(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	scenario, err := url.PathUnescape(chi.URLParam(r, "scenario"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scenario"})
		return
	}
	frontier, err := h.svc.Frontier(r.Context(), id, scenario)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frontier)
}

func (h *CasesHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := caseID(w, r)
	if !ok {
		return
	}
	events, err := h.svc.Events(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func caseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid case id"})
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps service errors onto HTTP statuses. Anything not listed is a
// problem with the case itself.
func statusFor(err error) int {
	var caseErr *simulator.CaseError
	switch {
	case errors.Is(err, simulator.ErrCaseNotFound):
		return http.StatusNotFound
	case errors.As(err, &caseErr), errors.Is(err, optimize.ErrOptionExists):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, simulator.ErrStore):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
