package port

import (
	"context"
)

// EventPublisher доставляет события о завершенных run'ах в message broker,
// чтобы внешние потребители (дашборды, автоматизация) реагировали на
// смену статуса кластера без опроса API
type EventPublisher interface {
	// PublishEvent публикует событие в указанный subject
	PublishEvent(ctx context.Context, subject string, event interface{}) error

	// Close дожидается доставки и закрывает соединение
	Close() error
}
