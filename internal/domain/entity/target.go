package entity

import (
	"errors"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// Target представляет наблюдаемую сущность кластера (Entity)
// Список target'ов статичен и неизменен в течение одного run'а.
type Target struct {
	name     string
	instance string
	kind     valueobject.TargetKind
}

// NewTarget создает новый Target (Factory Method)
func NewTarget(name, instance string, kind valueobject.TargetKind) (*Target, error) {
	if name == "" {
		return nil, errors.New("target name cannot be empty")
	}
	if instance == "" {
		return nil, errors.New("target instance cannot be empty")
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	return &Target{
		name:     name,
		instance: instance,
		kind:     kind,
	}, nil
}

// Name возвращает человекочитаемое имя target'а
func (t *Target) Name() string {
	return t.name
}

// Instance возвращает значение instance label в метриках backend'а.
// Evaluator сопоставляет результаты запросов строго по этому label'у.
func (t *Target) Instance() string {
	return t.instance
}

// Kind возвращает тип target'а
func (t *Target) Kind() valueobject.TargetKind {
	return t.kind
}
