// Package events fans product and locale changes out to in-process
// listeners such as the websocket feed.
package events

import "sync"

// Event is anything published on a bus.
type Event any

// subscriberBuffer is how many events a listener may fall behind before
// new ones are dropped for it.
const subscriberBuffer = 100

// Subscriber receives the events published after it subscribed. The channel
// is closed on Unsubscribe or Close.
type Subscriber[T Event] chan T

type EventBus[T Event] struct {
	subscribers map[Subscriber[T]]struct{}
	mutex       sync.RWMutex
}

func NewEventBus[T Event]() *EventBus[T] {
	return &EventBus[T]{subscribers: make(map[Subscriber[T]]struct{})}
}

func (bus *EventBus[T]) Subscribe() Subscriber[T] {
	ch := make(Subscriber[T], subscriberBuffer)

	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	bus.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes ch. Releasing a channel twice, or after
// Close, does nothing.
func (bus *EventBus[T]) Unsubscribe(ch Subscriber[T]) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	if _, ok := bus.subscribers[ch]; ok {
		delete(bus.subscribers, ch)
		close(ch)
	}
}

func (bus *EventBus[T]) Close() {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	for ch := range bus.subscribers {
		delete(bus.subscribers, ch)
		close(ch)
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (bus *EventBus[T]) Publish(event T) {
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()

	for ch := range bus.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
