package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/models"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/service"
	"github.com/ignatzorin/rewards-admin/internal/ws"
)

type stubAttacher struct {
	decision service.Decision
	frames   []dashboard.Frame
	detached atomic.Int32
}

func (s *stubAttacher) Attach(context.Context, *models.Session, string) (service.Decision, []dashboard.Frame) {
	return s.decision, s.frames
}

func (s *stubAttacher) Detach(uuid.UUID) {
	s.detached.Add(1)
}

func wsServer(t *testing.T, attacher DashboardAttacher, session *models.Session) (*httptest.Server, *ws.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := ws.NewHub(ctx)
	go hub.Run()

	h := NewWSHandler(hub, attacher, notify.NewNotifier(hub, nil))
	r := gin.New()
	r.Use(withContext(session))
	r.GET("/api/ws", h.Handle)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func TestWSHandler_RequiresSession(t *testing.T) {
	srv, _ := wsServer(t, &stubAttacher{}, nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSHandler_ReplaysFramesAndDetaches(t *testing.T) {
	attacher := &stubAttacher{
		decision: service.Granted{Record: &models.User{ID: uuid.New()}},
		frames:   []dashboard.Frame{{Panel: dashboard.PanelTotalUsers, HTML: "1,234"}},
	}
	srv, hub := wsServer(t, attacher, &models.Session{ID: uuid.New()})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame notify.Frame
	require.NoError(t, json.Unmarshal(payload, &frame))
	assert.Equal(t, "panel", frame.Type)
	assert.Equal(t, string(dashboard.PanelTotalUsers), frame.Panel)
	assert.Equal(t, "1,234", frame.HTML)
	assert.Equal(t, 1, hub.ClientCount(testClientKey))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return attacher.detached.Load() == 1 && hub.ClientCount(testClientKey) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWSHandler_DeniedSendsNoFrames(t *testing.T) {
	attacher := &stubAttacher{
		decision: deniedNotAdmin,
		frames:   []dashboard.Frame{{Panel: dashboard.PanelTotalUsers, HTML: "secret"}},
	}
	srv, hub := wsServer(t, attacher, &models.Session{ID: uuid.New()})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(testClientKey) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
