package websocket

import (
	"sync/atomic"

	"github.com/dreschagin/cluster-health-reporter/internal/application/dto"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// Message - кадр для клиента
type Message struct {
	Type string      `json:"type"` // "evaluation"
	Data interface{} `json:"data"`
}

// Hub рассылает результаты run'ов подключенным WebSocket клиентам.
// Реализует port.NotificationService.
//
// Map клиентов принадлежит исключительно goroutine'е Run: регистрация,
// отключение и рассылка сериализуются через каналы, блокировок на map нет.
// Последний результат хранится и отдается клиенту сразу при подключении,
// чтобы оператор не ждал следующего run'а ради текущего статуса.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	results    chan *dto.EvaluationDTO

	clients map[*Client]struct{}
	last    *dto.EvaluationDTO

	count  atomic.Int64
	logger *logger.Logger
}

// NewHub создает hub; Run должен быть запущен отдельной goroutine'ой
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		results:    make(chan *dto.EvaluationDTO, 16),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
	}
}

// Run обслуживает hub до конца жизни процесса
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			if h.last != nil {
				// Новый клиент сразу видит последний известный результат
				h.deliver(client, Message{Type: "evaluation", Data: h.last})
			}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("Client registered", "total_clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("Client unregistered", "total_clients", len(h.clients))

		case result := <-h.results:
			h.last = result
			for client := range h.clients {
				h.deliver(client, Message{Type: "evaluation", Data: result})
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// deliver кладет кадр в очередь клиента; клиент, не успевающий читать,
// отключается, чтобы не тормозить рассылку остальным
func (h *Hub) deliver(client *Client, msg Message) {
	select {
	case client.send <- msg:
	default:
		delete(h.clients, client)
		close(client.send)
		h.logger.Warn("Client send queue full, disconnected")
	}
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast отправляет результат run'а всем клиентам.
// Не блокируется: при переполненной очереди hub'а результат отбрасывается,
// следующий run все равно принесет более свежий.
func (h *Hub) Broadcast(result *dto.EvaluationDTO) {
	select {
	case h.results <- result:
	default:
		h.logger.Warn("Broadcast queue full, dropping result")
	}
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
