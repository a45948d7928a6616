package entity

import (
	"errors"
	"strings"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// Check представляет именованный запрос с политикой классификации (Entity)
// Иммутабельная конфигурация: создается на старте процесса.
type Check struct {
	name     string
	kind     valueobject.TargetKind
	query    string
	policy   valueobject.ThresholdPolicy
	category valueobject.CheckCategory
	unit     string
	blocking bool
}

// NewCheck создает новый Check (Factory Method).
// query - PromQL выражение; плейсхолдер %s заменяется на instance target'а.
// blocking помечает check, провал которого безусловно блокирует кластер
// (apiserver healthz): любой не-OK исход классифицируется CRITICAL.
func NewCheck(
	name string,
	kind valueobject.TargetKind,
	query string,
	policy valueobject.ThresholdPolicy,
	category valueobject.CheckCategory,
	unit string,
	blocking bool,
) (*Check, error) {
	if name == "" {
		return nil, errors.New("check name cannot be empty")
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if kind != valueobject.KindAPIEndpoint && query == "" {
		return nil, errors.New("check query cannot be empty")
	}

	return &Check{
		name:     name,
		kind:     kind,
		query:    query,
		policy:   policy,
		category: category,
		unit:     unit,
		blocking: blocking,
	}, nil
}

// Name возвращает имя check'а
func (c *Check) Name() string {
	return c.name
}

// Kind возвращает тип target'ов, к которым применяется check
func (c *Check) Kind() valueobject.TargetKind {
	return c.kind
}

// QueryFor возвращает запрос для конкретного target'а
func (c *Check) QueryFor(target *Target) string {
	if strings.Contains(c.query, "%s") {
		return strings.ReplaceAll(c.query, "%s", target.Instance())
	}
	return c.query
}

// Policy возвращает политику классификации
func (c *Check) Policy() valueobject.ThresholdPolicy {
	return c.policy
}

// Category возвращает секцию отчета для check'а
func (c *Check) Category() valueobject.CheckCategory {
	return c.category
}

// Unit возвращает единицу измерения значения ("" если безразмерное)
func (c *Check) Unit() string {
	return c.unit
}

// Blocking возвращает true для безусловно блокирующих check'ов
func (c *Check) Blocking() bool {
	return c.blocking
}
