package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
	done  chan struct{}
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
	l.mu.Unlock()
	close(l.done)
}

func TestRecoveryHandler_Go_RecoversPanic(t *testing.T) {
	log := &recordingLogger{done: make(chan struct{})}
	rh := NewRecoveryHandler(log)

	rh.Go("loader", func() { panic("boom") })

	select {
	case <-log.done:
	case <-time.After(time.Second):
		t.Fatal("panic was not logged")
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "loader")
	assert.Contains(t, log.lines[0], "boom")
}

type ctxKey struct{}

func TestRecoveryHandler_GoWithContext_PassesContext(t *testing.T) {
	rh := NewRecoveryHandler(&recordingLogger{done: make(chan struct{})})
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")

	got := make(chan context.Context, 1)
	rh.GoWithContext(ctx, "ctx", func(c context.Context) { got <- c })

	select {
	case c := <-got:
		assert.Equal(t, "value", c.Value(ctxKey{}))
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
