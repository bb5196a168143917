package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/internal/report"
	"go.uber.org/zap"
)

// ReportSource builds line movement reports on demand.
type ReportSource interface {
	LineMovementReport(ctx context.Context, gameID string) (*report.Report, error)
}

// APIHandler serves reports and alert exports.
type APIHandler struct {
	reports   ReportSource
	alertsDir string
	logger    *zap.Logger
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewAPIHandler creates a new API handler. Either source may be empty, in which
// case the matching route answers 503.
func NewAPIHandler(reports ReportSource, alertsDir string, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		reports:   reports,
		alertsDir: alertsDir,
		logger:    logger,
	}
}

// HandleReport handles GET /api/games/{id}/report.
func (h *APIHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		h.writeError(w, "reports are not available", http.StatusServiceUnavailable)
		return
	}

	gameID := chi.URLParam(r, "id")
	if strings.TrimSpace(gameID) == "" {
		h.writeError(w, "missing game id", http.StatusBadRequest)
		return
	}

	h.logger.Debug("report-request-received", zap.String("game-id", gameID))

	rep, err := h.reports.LineMovementReport(r.Context(), gameID)
	if err != nil {
		h.logger.Error("report-build-failed", zap.String("game-id", gameID), zap.Error(err))
		h.writeError(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	data, err := report.Marshal(rep)
	if err != nil {
		h.writeError(w, "failed to encode report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleLatestAlerts handles GET /api/alerts/latest?priority=<HIGH|MEDIUM|LOW>.
// With a priority, only alerts at or above it are returned.
func (h *APIHandler) HandleLatestAlerts(w http.ResponseWriter, r *http.Request) {
	if h.alertsDir == "" {
		h.writeError(w, "alerts are not available", http.StatusServiceUnavailable)
		return
	}

	path, err := alerts.LatestFile(h.alertsDir)
	if errors.Is(err, alerts.ErrNoExports) {
		h.writeError(w, "no alerts have been generated yet", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("alerts-list-failed", zap.Error(err))
		h.writeError(w, "failed to list alerts", http.StatusInternalServerError)
		return
	}

	exp, err := alerts.ReadFile(path)
	if err != nil {
		h.logger.Error("alerts-read-failed", zap.String("path", path), zap.Error(err))
		h.writeError(w, "failed to read alerts", http.StatusInternalServerError)
		return
	}

	if p := r.URL.Query().Get("priority"); p != "" {
		exp, err = exp.AtOrAbove(p)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(exp)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *APIHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(ErrorResponse{Error: message})
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
