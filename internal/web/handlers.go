package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/experiments"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, experiments.ErrNotFound),
		errors.Is(err, experiments.ErrNoReports):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrDegenerateRate),
		errors.Is(err, domain.ErrDivisionByZero),
		errors.Is(err, domain.ErrSchema):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// alphaParam reads ?alpha=, falling back to the server default.
func (s *Server) alphaParam(r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("alpha")
	if raw == "" {
		return s.opts.Alpha, true
	}
	alpha, err := strconv.ParseFloat(raw, 64)
	if err != nil || alpha <= 0 || alpha >= 1 {
		return 0, false
	}
	return alpha, true
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := s.experiments.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if exps == nil {
		exps = []*domain.Experiment{}
	}
	writeJSON(w, http.StatusOK, exps)
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.experiments.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.report(w, r, false)
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	s.report(w, r, true)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request, save bool) {
	alpha, ok := s.alphaParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "alpha must be a number in (0, 1)"})
		return
	}

	run, err := s.experiments.Report(r.Context(), r.PathValue("name"), alpha, save)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.reportsComputed.WithLabelValues(string(run.Report.Decision.Recommendation)).Inc()

	status := http.StatusOK
	if save {
		status = http.StatusCreated
	}
	writeJSON(w, status, run)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := s.experiments.History(r.Context(), r.PathValue("name"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*domain.ReportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.experiments.Latest(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
