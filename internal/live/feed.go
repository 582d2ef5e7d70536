package live

import "sync"

// Feed шина изменений коллекций внутри процесса.
// Publish никогда не блокирует: каждый наблюдатель держит не более одного
// необработанного сигнала, поэтому серия изменений схлопывается в один перезапрос.
type Feed struct {
	mu       sync.RWMutex
	nextID   uint64
	watchers map[string]map[uint64]chan struct{}
}

// NewFeed создаёт пустую шину.
func NewFeed() *Feed {
	return &Feed{watchers: make(map[string]map[uint64]chan struct{})}
}

// Publish сообщает наблюдателям коллекции, что её содержимое изменилось.
func (f *Feed) Publish(collection string) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.watchers[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers возвращает число наблюдателей коллекции.
func (f *Feed) Watchers(collection string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.watchers[collection])
}

// watch регистрирует наблюдателя и возвращает его канал и функцию отписки.
func (f *Feed) watch(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	if f.watchers[collection] == nil {
		f.watchers[collection] = make(map[uint64]chan struct{})
	}
	f.watchers[collection][id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers[collection], id)
			if len(f.watchers[collection]) == 0 {
				delete(f.watchers, collection)
			}
			f.mu.Unlock()
		})
	}
}
