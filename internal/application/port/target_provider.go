package port

import (
	"context"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
)

// TargetProvider определяет интерфейс реестра target'ов (Port)
// Реализации: статический список из конфигурации, discovery через Kubernetes API
type TargetProvider interface {
	// Targets возвращает полный список target'ов для evaluation run'а.
	// Ошибка здесь фатальна для run'а: без реестра нельзя отличить
	// "метрики нет" от "target не известен".
	Targets(ctx context.Context) ([]*entity.Target, error)
}
