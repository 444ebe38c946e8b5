// Package listeners reacts to domain events: it mails customers, alerts the
// shop and feeds the admin order socket.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/event"
	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/notification"
	"github.com/shashiranjanraj/kapee/pkg/ws"
)

// Queuer sends notifications in the background.
type Queuer interface {
	Queue(ctx context.Context, address string, n notification.Notification)
}

// Broadcaster pushes an event to connected feed clients.
type Broadcaster interface {
	Broadcast(ev ws.Event)
}

// Dispatcher is where listeners are registered.
type Dispatcher interface {
	Listen(name string, handler event.Handler)
}

// Register wires every listener. feed may be nil.
func Register(d Dispatcher, notifier Queuer, feed Broadcaster) {
	d.Listen(services.EventUserRegistered, typed(func(ctx context.Context, u models.UserView) {
		notifier.Queue(ctx, u.Email, welcomeMail{u})
	}))

	d.Listen(services.EventContactSubmitted, typed(func(ctx context.Context, c models.Contact) {
		notifier.Queue(ctx, c.Email, contactThanks{c})
	}))

	d.Listen(services.EventOrderCreated, typed(func(ctx context.Context, o models.Order) {
		notifier.Queue(ctx, "", orderAlert{o})
	}))

	if feed == nil {
		return
	}
	for _, name := range []string{services.EventOrderCreated, services.EventOrderStatusUpdated} {
		d.Listen(name, func(_ context.Context, payload any) {
			feed.Broadcast(ws.Event{Type: name, Data: payload})
		})
	}
}

// typed adapts a handler for one payload type. Mismatched payloads are
// logged and skipped.
func typed[T any](fn func(context.Context, T)) func(context.Context, any) {
	return func(ctx context.Context, payload any) {
		v, ok := payload.(T)
		if !ok {
			logger.WithCtx(ctx).Error("unexpected event payload", "payload", payload)
			return
		}
		fn(ctx, v)
	}
}
