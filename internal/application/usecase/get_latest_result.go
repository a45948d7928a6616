package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/cluster-health-reporter/internal/application/dto"
	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/repository"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// GetLatestResultUseCase возвращает последний результат run'а.
// Сначала проверяется кеш, при промахе - хранилище (cache-aside).
type GetLatestResultUseCase struct {
	repository repository.EvaluationRepository
	cache      port.Cache // nil если кеш выключен
	logger     *logger.Logger
}

// NewGetLatestResultUseCase создает новый use case
func NewGetLatestResultUseCase(
	repository repository.EvaluationRepository,
	cache port.Cache,
	logger *logger.Logger,
) *GetLatestResultUseCase {
	return &GetLatestResultUseCase{
		repository: repository,
		cache:      cache,
		logger:     logger,
	}
}

// Execute возвращает последний результат (nil если run'ов еще не было)
func (uc *GetLatestResultUseCase) Execute(ctx context.Context) (*dto.EvaluationDTO, error) {
	if uc.cache != nil {
		var cached dto.EvaluationDTO
		if err := uc.cache.Get(ctx, cacheKeyLatest, &cached); err == nil {
			uc.logger.Debug("Latest result served from cache", "id", cached.ID)
			return &cached, nil
		}
	}

	result, err := uc.repository.FindLatest(ctx)
	if err != nil {
		uc.logger.Error("Failed to load latest result", err)
		return nil, fmt.Errorf("failed to load latest result: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	snapshot := dto.FromEntity(result)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKeyLatest, snapshot); err != nil {
			uc.logger.Warn("Failed to cache latest result", "error", err.Error())
		}
	}

	return snapshot, nil
}
