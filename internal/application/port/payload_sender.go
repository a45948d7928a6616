package port

import "context"

// PayloadSender определяет интерфейс доставки текстовых уведомлений (Port)
// Реализация будет в Infrastructure слое (Discord-совместимый webhook)
type PayloadSender interface {
	// Send доставляет текстовое содержимое. Реализация отвечает за
	// ограничения транспорта (лимит длины сообщения и т.п.)
	Send(ctx context.Context, content string) error
}
