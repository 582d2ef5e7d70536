package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/rewards-admin/internal/logger"
)

// Logger интерфейс для логирования паник. *logrus.Entry ему удовлетворяет.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// Go запускает именованную горутину с обработкой panic.
func (rh *RecoveryHandler) Go(name string, fn func()) {
	go func() {
		defer rh.recover(name)
		fn()
	}()
}

// GoWithContext запускает именованную горутину с контекстом и обработкой panic.
func (rh *RecoveryHandler) GoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer rh.recover(name)
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover(name string) {
	if r := recover(); r != nil {
		rh.logger.Errorf("panic in goroutine %s: %v\nstack trace:\n%s", name, r, debug.Stack())
	}
}

// Go запускает горутину через обработчик с логгером консоли.
func Go(name string, fn func()) {
	NewRecoveryHandler(logger.Entry("goroutine")).Go(name, fn)
}

// GoWithContext запускает горутину с контекстом через обработчик с логгером консоли.
func GoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	NewRecoveryHandler(logger.Entry("goroutine")).GoWithContext(ctx, name, fn)
}
