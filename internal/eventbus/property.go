package eventbus

import "sync"

// Token идентифицирует подписку на свойство. Нулевой токен не выдаётся.
type Token uint64

type propertySub[T any] struct {
	token   Token
	fn      func(T)
	removed bool
}

// Property хранит наблюдаемое значение с типизированными подписчиками.
//
// Set уведомляет подписчиков синхронно в порядке подписки. Подписчик может
// отписать себя или другого во время уведомления: отписанные позже в том же
// уведомлении уже не вызываются. Подписка, добавленная во время уведомления,
// получит только следующие значения.
type Property[T any] struct {
	bus   *Bus
	topic string

	mu        sync.Mutex
	value     T
	lastToken Token
	subs      []*propertySub[T]
}

// NewProperty создаёт свойство с начальным значением. bus может быть nil.
func NewProperty[T any](bus *Bus, topic string, initial T) *Property[T] {
	if bus != nil {
		bus.registerTopic(topic)
	}
	return &Property[T]{
		bus:   bus,
		topic: topic,
		value: initial,
	}
}

// Topic возвращает имя свойства
func (p *Property[T]) Topic() string {
	return p.topic
}

// Get возвращает текущее значение
func (p *Property[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Set сохраняет значение и уведомляет подписчиков
func (p *Property[T]) Set(v T) {
	p.mu.Lock()
	p.value = v
	snapshot := make([]*propertySub[T], len(p.subs))
	copy(snapshot, p.subs)
	p.mu.Unlock()

	delivered := 0
	for _, sub := range snapshot {
		p.mu.Lock()
		removed := sub.removed
		p.mu.Unlock()
		if removed {
			continue
		}
		sub.fn(v)
		delivered++
	}

	if p.bus != nil {
		p.bus.record(p.topic, v, delivered)
	}
}

// Subscribe добавляет подписчика и возвращает токен для отписки
func (p *Property[T]) Subscribe(fn func(T)) Token {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastToken++
	p.subs = append(p.subs, &propertySub[T]{token: p.lastToken, fn: fn})
	if p.bus != nil {
		p.bus.subscriptions.Add(1)
	}
	return p.lastToken
}

// Unsubscribe удаляет подписку; false, если токен неизвестен
func (p *Property[T]) Unsubscribe(token Token) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subs {
		if sub.token != token {
			continue
		}
		sub.removed = true
		p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
		if p.bus != nil {
			p.bus.subscriptions.Add(-1)
		}
		return true
	}
	return false
}

// Subscribers возвращает количество активных подписок
func (p *Property[T]) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
