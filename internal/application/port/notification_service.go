package port

import "github.com/dreschagin/cluster-health-reporter/internal/application/dto"

// NotificationService определяет интерфейс для рассылки результатов (Port)
// Реализация будет в Infrastructure слое (WebSocket Hub)
type NotificationService interface {
	// Broadcast отправляет результат evaluation run'а всем подключенным клиентам
	Broadcast(result *dto.EvaluationDTO)

	// ClientCount возвращает количество подключенных клиентов
	ClientCount() int
}
