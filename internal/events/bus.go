package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Subscriber receives events.
type Subscriber func(e Event)

type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Bus dispatches engine events to subscribers. It is safe for concurrent use.
type Bus struct {
	mu sync.RWMutex

	pubsub *gochannel.GoChannel

	subscribers map[Type][]subscriberEntry
	defaults    map[Type]Subscriber

	nextID uint64
	closed bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            16,
				Persistent:                     false,
				BlockPublishUntilSubscriberAck: true,
			},
			watermill.NopLogger{},
		),
		subscribers: make(map[Type][]subscriberEntry),
		defaults:    make(map[Type]Subscriber),
	}
}

// Subscribe registers fn for events of type t and returns a function that
// removes it again.
func (b *Bus) Subscribe(t Type, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := atomic.AddUint64(&b.nextID, 1)
	b.subscribers[t] = append(b.subscribers[t], subscriberEntry{id: id, fn: fn})

	return func() {
		b.unsubscribe(t, id)
	}
}

func (b *Bus) unsubscribe(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[t]
	for i, entry := range subs {
		if entry.id == id {
			b.subscribers[t] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
}

// SetDefault sets the handler called for events of type t that nobody
// subscribed to. A nil fn removes it.
func (b *Bus) SetDefault(t Type, fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if fn == nil {
		delete(b.defaults, t)
		return
	}
	b.defaults[t] = fn
}

// Listeners reports how many subscribers are registered for t.
func (b *Bus) Listeners(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[t])
}

// Publish delivers e synchronously: to every subscriber of e.Type, or to the
// default handler when there are none. The event is then forwarded to the
// message stream.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}

	subs := make([]Subscriber, 0, len(b.subscribers[e.Type]))
	for _, entry := range b.subscribers[e.Type] {
		subs = append(subs, entry.fn)
	}
	fallback := b.defaults[e.Type]
	b.mu.RUnlock()

	if len(subs) == 0 && fallback != nil {
		subs = append(subs, fallback)
	}
	for _, sub := range subs {
		sub(e)
	}

	b.forward(e)
}

func (b *Bus) forward(e Event) {
	payload, err := json.Marshal(e.Record())
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(e.Type))
	if e.ID != "" {
		msg.Metadata.Set("invocation", e.ID)
	}
	_ = b.pubsub.Publish(string(e.Type), msg)
}

// Stream subscribes to the message stream of type t. Handlers must Ack every
// message; Publish blocks until they do.
func (b *Bus) Stream(ctx context.Context, t Type) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, string(t))
}

// Close drops all subscribers and closes the message stream.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.subscribers = make(map[Type][]subscriberEntry)
	b.defaults = make(map[Type]Subscriber)
	b.mu.Unlock()

	return b.pubsub.Close()
}
