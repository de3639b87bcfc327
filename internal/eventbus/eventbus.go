package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event описывает одно изменение наблюдаемого свойства.
type Event struct {
	ID        string    // Уникальный идентификатор (UUID).
	Timestamp time.Time // Время публикации (UTC).
	Topic     string    // Имя свойства.
	Value     any       // Новое значение.
	Delivered int       // Сколько подписчиков свойства получили значение.
}

// Subscription возвращается при подписке на шину; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Stats агрегированные метрики шины.
type Stats struct {
	Published     uint64 `json:"published"`     // Всего вызовов Set у свойств шины.
	Delivered     uint64 `json:"delivered"`     // Всего вызовов подписчиков.
	Subscriptions int64  `json:"subscriptions"` // Активные подписки на свойства.
	Topics        int    `json:"topics"`        // Зарегистрированные свойства.
}

// Bus объединяет наблюдаемые свойства: ведёт общую статистику и позволяет
// наблюдать за публикациями во всех свойствах сразу (например, для логирования).
// Доставка синхронная, в горутине вызвавшего Set.
type Bus struct {
	mu     sync.RWMutex
	taps   map[int]func(Event)
	nextID int
	topics map[string]struct{}

	published     atomic.Uint64
	delivered     atomic.Uint64
	subscriptions atomic.Int64
}

// NewBus создаёт пустую шину
func NewBus() *Bus {
	return &Bus{
		taps:   make(map[int]func(Event)),
		topics: make(map[string]struct{}),
	}
}

// Tap подписывает fn на публикации во всех свойствах шины.
func (b *Bus) Tap(fn func(Event)) Subscription {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.taps[id] = fn
	b.mu.Unlock()

	return &tapSub{bus: b, id: id}
}

// Stats возвращает снимок статистики
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	topics := len(b.topics)
	b.mu.RUnlock()

	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Subscriptions: b.subscriptions.Load(),
		Topics:        topics,
	}
}

func (b *Bus) registerTopic(topic string) {
	b.mu.Lock()
	b.topics[topic] = struct{}{}
	b.mu.Unlock()
}

// record учитывает публикацию и передаёт событие наблюдателям шины
func (b *Bus) record(topic string, value any, delivered int) {
	b.published.Add(1)
	b.delivered.Add(uint64(delivered))

	b.mu.RLock()
	if len(b.taps) == 0 {
		b.mu.RUnlock()
		return
	}
	taps := make([]func(Event), 0, len(b.taps))
	for _, fn := range b.taps {
		taps = append(taps, fn)
	}
	b.mu.RUnlock()

	ev := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Topic:     topic,
		Value:     value,
		Delivered: delivered,
	}
	for _, fn := range taps {
		fn(ev)
	}
}

type tapSub struct {
	bus *Bus
	id  int
}

func (s *tapSub) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.taps, s.id)
	s.bus.mu.Unlock()
}
