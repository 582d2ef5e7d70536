package live

import (
	"context"
	"sync"

	"github.com/ignatzorin/rewards-admin/internal/goroutine"
)

// Query выполняет чтение из хранилища и возвращает полный снимок результата.
type Query[T any] func(ctx context.Context) (T, error)

// Handler получает каждый полный снимок либо ошибку чтения.
// Вызовы одного обработчика строго последовательны.
type Handler[T any] func(snapshot T, err error)

// Subscription дескриптор живой подписки или разового запроса.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func newSubscription(parent context.Context) (*Subscription, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{cancel: cancel, done: make(chan struct{})}, ctx
}

// Close отменяет подписку. После возврата обработчик больше не вызывается.
// Обработчик не должен вызывать Close своей же подписки.
func (s *Subscription) Close() {
	s.cancel()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Done закрывается, когда горутина подписки завершилась.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// deliver вызывает обработчик, если подписка ещё активна.
func deliver[T any](s *Subscription, handler Handler[T], snapshot T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	handler(snapshot, err)
}

// Subscribe выполняет query сразу и затем заново при каждом изменении коллекции.
// Изменения, пришедшие во время выполнения запроса, схлопываются в один перезапрос.
// Подписка живёт до Close или отмены ctx.
func Subscribe[T any](ctx context.Context, feed *Feed, collection string, query Query[T], handler Handler[T]) *Subscription {
	sub, ctx := newSubscription(ctx)
	// Регистрируемся до первого запроса, чтобы не потерять изменение между ними.
	changes, stop := feed.watch(collection)

	goroutine.Go("live:"+collection, func() {
		defer close(sub.done)
		defer stop()

		run := func() {
			snapshot, err := query(ctx)
			if ctx.Err() != nil {
				return
			}
			deliver(sub, handler, snapshot, err)
		}

		run()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				run()
			}
		}
	})

	return sub
}

// Once выполняет query один раз. Дескриптор позволяет отменить запрос в полёте.
func Once[T any](ctx context.Context, query Query[T], handler Handler[T]) *Subscription {
	sub, ctx := newSubscription(ctx)

	goroutine.Go("live:once", func() {
		defer close(sub.done)
		defer sub.cancel()

		snapshot, err := query(ctx)
		if ctx.Err() != nil {
			return
		}
		deliver(sub, handler, snapshot, err)
	})

	return sub
}
