package notify

import (
	"context"
	"sync"
	"time"
)

const (
	// EventDataChanged announces committed writes to a table.
	EventDataChanged = "data-changed"
	// EventStoreReady announces that the store finished initializing.
	EventStoreReady = "store-ready"
	// TopicStore carries store lifecycle events.
	TopicStore = "store"

	defaultBufferSize = 16
)

// ChangeMessage announces an event on one topic. Topics are table names or TopicStore.
type ChangeMessage struct {
	Topic     string
	EventType string
	IDs       []int64
	Timestamp time.Time
}

// Bus fans change messages out to per-topic subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]*subscriber
	nextID      int64
	bufferSize  int
}

type subscriber struct {
	id     int64
	stream chan ChangeMessage
}

// NewBus constructs a bus whose subscriber streams buffer bufferSize messages.
// A non-positive size selects the default.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{
		subscribers: make(map[string]map[int64]*subscriber),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers interest in topic until ctx ends or the returned cleanup runs.
// Messages published while the stream buffer is full are dropped for that subscriber.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan ChangeMessage, func()) {
	if topic == "" {
		ch := make(chan ChangeMessage)
		close(ch)
		return ch, func() {}
	}
	sub := &subscriber{
		id:     b.nextSequence(),
		stream: make(chan ChangeMessage, b.bufferSize),
	}
	b.register(topic, sub)
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.unregister(topic, sub.id)
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return sub.stream, cleanup
}

// Publish delivers message to every current subscriber of its topic without blocking.
func (b *Bus) Publish(message ChangeMessage) {
	if message.Topic == "" || message.EventType == "" {
		return
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	subscribers := b.subscribers[message.Topic]
	if len(subscribers) == 0 {
		b.mu.RUnlock()
		return
	}
	copies := make([]*subscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		copies = append(copies, sub)
	}
	b.mu.RUnlock()
	for _, sub := range copies {
		select {
		case sub.stream <- message:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscriptions on topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

func (b *Bus) nextSequence() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return b.nextID
}

func (b *Bus) register(topic string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[topic]; !ok {
		b.subscribers[topic] = make(map[int64]*subscriber)
	}
	b.subscribers[topic][sub.id] = sub
}

func (b *Bus) unregister(topic string, subscriberID int64) {
	b.mu.Lock()
	subscribers := b.subscribers[topic]
	if subscribers != nil {
		delete(subscribers, subscriberID)
		if len(subscribers) == 0 {
			delete(b.subscribers, topic)
		}
	}
	b.mu.Unlock()
}
