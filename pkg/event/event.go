// Package event is a small in-process event dispatcher. Services fire domain
// events; listeners registered at boot react to them (mail, order feed).
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/kapee/pkg/logger"
)

// Handler receives an event payload. ctx is detached from the request that
// fired the event, but keeps its logger.
type Handler func(ctx context.Context, payload any)

// Dispatcher fans events out to their listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Listen registers handler for name.
func (d *Dispatcher) Listen(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

func (d *Dispatcher) listeners(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Handler(nil), d.handlers[name]...)
}

// Fire runs every listener for name synchronously, in registration order.
// A panicking listener is logged and does not stop the others. A nil
// Dispatcher drops the event.
func (d *Dispatcher) Fire(ctx context.Context, name string, payload any) {
	if d == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, h := range d.listeners(name) {
		run(ctx, name, h, payload)
	}
}

func run(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event listener panicked", "event", name, "panic", r)
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}
