package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/rewards-admin/internal/goroutine"
	"github.com/ignatzorin/rewards-admin/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

// Conn часть *websocket.Conn, которой пользуется клиент.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client представляет одну вкладку консоли, подключённую по WebSocket.
// Клиент только получает кадры: действия выполняются обычными HTTP запросами.
type Client struct {
	conn      Conn
	hub       *Hub
	key       string
	send      chan []byte
	closeOnce sync.Once
	log       *logrus.Entry
}

// NewClient создаёт нового клиента для вкладок браузера с ключом clientKey.
func NewClient(conn Conn, hub *Hub, clientKey string) *Client {
	return &Client{
		conn: conn,
		hub:  hub,
		key:  clientKey,
		send: make(chan []byte, sendBuffer),
		log:  logger.Entry("ws").WithField("client_key", clientKey),
	}
}

// Run запускает обработку исходящих кадров и блокируется, пока вкладка подключена.
func (c *Client) Run(ctx context.Context) {
	goroutine.Go("ws:write-pump", c.writePump)
	c.readPump(ctx)
}

// Close отключает клиента от хаба и закрывает соединение.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		// Входящие сообщения не обрабатываются, чтение нужно для pong и закрытия.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("соединение закрыто")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.WithError(err).Debug("не удалось отправить кадр")
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
