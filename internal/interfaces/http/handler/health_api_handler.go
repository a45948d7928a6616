package handler

import (
	"net/http"

	"github.com/dreschagin/cluster-health-reporter/internal/application/usecase"
	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/middleware"
	"github.com/dreschagin/cluster-health-reporter/internal/scheduler"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// HealthAPIHandler обрабатывает API запросы состояния кластера
type HealthAPIHandler struct {
	getLatestUC *usecase.GetLatestResultUseCase
	runner      *scheduler.Runner
	logger      *logger.Logger
}

// NewHealthAPIHandler создает новый handler
func NewHealthAPIHandler(
	getLatestUC *usecase.GetLatestResultUseCase,
	runner *scheduler.Runner,
	logger *logger.Logger,
) *HealthAPIHandler {
	return &HealthAPIHandler{
		getLatestUC: getLatestUC,
		runner:      runner,
		logger:      logger,
	}
}

// GetLatest возвращает последний результат оценки
func (h *HealthAPIHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.getLatestUC.Execute(r.Context())
	if err != nil {
		h.logger.Error("Failed to load latest result", err)
		http.Error(w, "Failed to load latest result", http.StatusInternalServerError)
		return
	}
	if result == nil {
		http.Error(w, "No evaluation results yet", http.StatusNotFound)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// RunNow запускает внеочередной цикл оценки
func (h *HealthAPIHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.runner.RunOnce(r.Context())
	if err != nil {
		h.logger.Error("On-demand evaluation failed", err)
		http.Error(w, "Evaluation failed", http.StatusBadGateway)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"id":            result.ID(),
		"overall":       result.Overall(),
		"issue_count":   result.IssueCount(),
		"warning_count": result.WarningCount(),
		"generated_at":  result.GeneratedAt(),
	})
}

// GetStatus возвращает состояние периодического runner'а
func (h *HealthAPIHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.runner.Snapshot())
}
