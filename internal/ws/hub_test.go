package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn блокирует чтение до Close и записывает исходящие сообщения.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.written))
	for i, w := range f.written {
		out[i] = string(w)
	}
	return out
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(ctx)
	go hub.Run()
	return hub
}

func TestHub_PublishReachesEveryTabOfClient(t *testing.T) {
	hub := startHub(t)

	first := NewClient(newFakeConn(), hub, "browser-a")
	second := NewClient(newFakeConn(), hub, "browser-a")
	other := NewClient(newFakeConn(), hub, "browser-b")
	hub.Register(first)
	hub.Register(second)
	hub.Register(other)

	hub.PublishToClient("browser-a", []byte(`{"type":"panel"}`))

	for _, c := range []*Client{first, second} {
		select {
		case got := <-c.send:
			assert.JSONEq(t, `{"type":"panel"}`, string(got))
		case <-time.After(time.Second):
			t.Fatal("кадр не доставлен")
		}
	}
	select {
	case <-other.send:
		t.Fatal("кадр ушёл чужому браузеру")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 2, hub.ClientCount("browser-a"))
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := startHub(t)

	client := NewClient(newFakeConn(), hub, "browser-a")
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("канал клиента не закрыт")
	}
	assert.Equal(t, 0, hub.ClientCount("browser-a"))

	// Повторное удаление безопасно.
	hub.Unregister(client)
}

func TestClient_RunWritesFramesUntilClosed(t *testing.T) {
	hub := startHub(t)
	conn := newFakeConn()
	client := NewClient(conn, hub, "browser-a")
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		client.Run(context.Background())
		close(done)
	}()

	hub.PublishToClient("browser-a", []byte("one"))
	hub.PublishToClient("browser-a", []byte("two"))

	require.Eventually(t, func() bool { return len(conn.messages()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two"}, conn.messages())

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после Close")
	}
	require.Eventually(t, func() bool { return hub.ClientCount("browser-a") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ctx)
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	client := NewClient(newFakeConn(), hub, "browser-a")
	hub.Register(client)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("хаб не остановился")
	}
	_, ok := <-client.send
	assert.False(t, ok)

	// После остановки публикация не блокирует.
	hub.PublishToClient("browser-a", []byte("late"))
}
