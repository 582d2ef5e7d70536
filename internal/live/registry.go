package live

import "sync"

// Handle ресурс, который регистр обязан освободить.
type Handle interface {
	Close()
}

// Registry таблица подписок по виджетам.
// Повторная загрузка виджета сначала освобождает прежнюю подписку, затем сохраняет новую.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Handle
	closed  bool
}

// NewRegistry создаёт пустой регистр.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Acquire сохраняет дескриптор виджета, закрывая предыдущий.
// Если регистр уже освобождён, дескриптор закрывается сразу.
func (r *Registry) Acquire(widget string, h Handle) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		h.Close()
		return
	}
	prev := r.handles[widget]
	r.handles[widget] = h
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// ReleaseAll закрывает все дескрипторы и запрещает новые.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]Handle)
	r.closed = true
	r.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
}

// Len возвращает число удерживаемых дескрипторов.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
