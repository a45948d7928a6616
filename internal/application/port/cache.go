package port

import "context"

// Cache хранит последний результат run'а между запросами к API.
// nil-реализация означает выключенный кеш: каждый запрос идет в хранилище
type Cache interface {
	// Get декодирует значение ключа в dest; промах возвращается ошибкой
	Get(ctx context.Context, key string, dest interface{}) error

	// Set сохраняет значение с TTL реализации
	Set(ctx context.Context, key string, value interface{}) error

	// Delete удаляет ключ
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение с кешем
	Close() error
}
