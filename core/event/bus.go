package event

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/stormpath/core/logger"
)

// HandlerFunc processes an emitted event.
type HandlerFunc func(ctx context.Context, evt Event)

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription struct {
	id uint64
	fn HandlerFunc
}

// Bus is a synchronous, in-process event emitter.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID uint64
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[string][]subscription),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for events named name and returns a handle that
// removes the registration.
func (b *Bus) Subscribe(name string, fn HandlerFunc) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(name, id)
		})
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			// Copy so in-flight Emit snapshots stay intact
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, name)
			} else {
				b.subs[name] = next
			}
			return
		}
	}
}

// Emit delivers payload to every current subscriber of name, in subscription
// order, and returns the emitted event.
func (b *Bus) Emit(ctx context.Context, name string, payload any) Event {
	evt := newEvent(name, payload)

	b.mu.RLock()
	subs := b.subs[name]
	b.mu.RUnlock()

	for _, s := range subs {
		b.safeHandle(ctx, s.fn, evt)
	}
	return evt
}

// Count returns the number of subscribers for name.
func (b *Bus) Count(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

func (b *Bus) safeHandle(ctx context.Context, fn HandlerFunc, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "event handler panicked",
				logger.Component("event"),
				logger.Event(evt.Name),
				logger.Error(fmt.Errorf("panic: %v", r)),
			)
		}
	}()
	fn(ctx, evt)
}

// On subscribes a typed handler. Events whose payload is not a T are ignored.
func On[T any](b *Bus, name string, fn func(context.Context, T)) Unsubscribe {
	return b.Subscribe(name, func(ctx context.Context, evt Event) {
		payload, ok := evt.Payload.(T)
		if !ok {
			b.logger.DebugContext(ctx, "event payload type mismatch",
				logger.Component("event"),
				logger.Event(evt.Name),
				logger.Type(fmt.Sprintf("%T", evt.Payload)),
			)
			return
		}
		fn(ctx, payload)
	})
}
