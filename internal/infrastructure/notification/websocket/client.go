package websocket

import (
	"time"

	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 45 * time.Second
	// Ping уходит заметно раньше дедлайна pong'а
	pingPeriod = pongWait * 9 / 10

	// Клиент ничего содержательного не шлет, только control frames
	readLimit = 1024
)

// Client - одно WebSocket соединение, обслуживаемое hub'ом
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	logger *logger.Logger
}

// NewClient оборачивает upgraded соединение
func NewClient(hub *Hub, conn *websocket.Conn, logger *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, 64),
		logger: logger,
	}
}

// Serve обслуживает соединение до его закрытия.
// Write loop живет в отдельной goroutine'е, read loop - в текущей:
// соединение закрывается, как только завершается любая из них.
func (c *Client) Serve() {
	go c.writeLoop()
	c.readLoop()
}

// readLoop читает и отбрасывает входящие кадры. Его единственная работа -
// продлевать read deadline по pong'ам и заметить закрытие соединения.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", "error", err.Error())
			}
			return
		}
	}
}

// writeLoop пишет кадры из очереди и периодические ping'и
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub отключил клиента
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
