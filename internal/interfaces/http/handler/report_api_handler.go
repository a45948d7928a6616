package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/application/usecase"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/middleware"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ReportAPIHandler обрабатывает API запросы отчетов
type ReportAPIHandler struct {
	generateUC *usecase.GenerateReportUseCase
	metadata   port.ReportMetadataRepository
	logger     *logger.Logger
}

// NewReportAPIHandler создает новый handler
func NewReportAPIHandler(
	generateUC *usecase.GenerateReportUseCase,
	metadata port.ReportMetadataRepository,
	logger *logger.Logger,
) *ReportAPIHandler {
	return &ReportAPIHandler{
		generateUC: generateUC,
		metadata:   metadata,
		logger:     logger,
	}
}

// Render генерирует текстовый отчет за период
func (h *ReportAPIHandler) Render(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	period := valueobject.ReportPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = valueobject.PeriodDaily
	}
	if err := period.Validate(); err != nil {
		http.Error(w, "Invalid period, expected daily or weekly", http.StatusBadRequest)
		return
	}

	report, err := h.generateUC.Execute(r.Context(), period)
	if err != nil {
		if errors.Is(err, usecase.ErrNoResults) {
			http.Error(w, "No evaluation results yet", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to generate report", err)
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report))
}

// List возвращает страницу метаданных сохраненных отчетов
func (h *ReportAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.metadata == nil {
		http.Error(w, "Report archive is not configured", http.StatusNotImplemented)
		return
	}

	period := valueobject.ReportPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = valueobject.PeriodDaily
	}
	if err := period.Validate(); err != nil {
		http.Error(w, "Invalid period, expected daily or weekly", http.StatusBadRequest)
		return
	}

	limit := defaultListLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 || parsed > maxListLimit {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	query := port.ReportListQuery{
		Period: period.String(),
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}

	if rawFrom := r.URL.Query().Get("from"); rawFrom != "" {
		from, err := time.Parse(time.RFC3339, rawFrom)
		if err != nil {
			http.Error(w, "Invalid from timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
		query.From = from
	}
	if rawTo := r.URL.Query().Get("to"); rawTo != "" {
		to, err := time.Parse(time.RFC3339, rawTo)
		if err != nil {
			http.Error(w, "Invalid to timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
		query.To = to
	}

	page, err := h.metadata.ListByPeriod(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list reports", err)
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, page)
}
