package repository

import (
	"context"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
)

// EvaluationRepository определяет интерфейс хранилища результатов run'ов
type EvaluationRepository interface {
	// Save сохраняет результат run'а
	Save(ctx context.Context, result *entity.EvaluationResult) error

	// FindLatest возвращает последний сохраненный результат
	FindLatest(ctx context.Context) (*entity.EvaluationResult, error)

	// FindSince возвращает результаты с указанного момента, в хронологическом порядке
	FindSince(ctx context.Context, since time.Time) ([]*entity.EvaluationResult, error)
}
