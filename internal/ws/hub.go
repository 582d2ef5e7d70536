package ws

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/rewards-admin/internal/goroutine"
	"github.com/ignatzorin/rewards-admin/internal/logger"
)

// Hub управляет всеми WebSocket клиентами консоли.
// Клиенты сгруппированы по ключу браузера: все вкладки одного браузера
// получают одни и те же кадры.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context
	log        *logrus.Entry
}

type message struct {
	clientKey string
	payload   []byte
}

// NewHub создаёт новый хаб. Хаб живёт, пока не отменён ctx.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,
		log:        logger.Entry("ws"),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.clientKey, msg.payload)
		}
	}
}

// Register добавляет клиента. Кадры, опубликованные после возврата, дойдут до него.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// PublishToClient отправляет кадр во все вкладки браузера.
func (h *Hub) PublishToClient(clientKey string, payload []byte) {
	select {
	case h.broadcast <- message{clientKey: clientKey, payload: payload}:
	case <-h.ctx.Done():
	}
}

// ClientCount возвращает число подключённых вкладок браузера.
func (h *Hub) ClientCount(clientKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clientKey])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.key]; !ok {
		h.clients[client.key] = make(map[*Client]struct{})
	}
	h.clients[client.key][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.key]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.key)
	}
}

func (h *Hub) send(clientKey string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[clientKey] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент: отключаем, вкладка переподключится и получит свежие кадры.
			h.log.WithField("client_key", clientKey).Warn("буфер клиента переполнен, отключаем")
			c := client
			goroutine.Go("ws:close-slow-client", c.Close)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, key)
	}
}
