// Package services holds the business rules of the shop. Services depend on
// the repository interfaces only; controllers translate their apperr errors
// into HTTP responses.
package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/kapee/app/models"
)

// Domain events fired by the services.
const (
	EventUserRegistered     = "user.registered"
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventContactSubmitted   = "contact.submitted"
)

// Publisher receives domain events.
type Publisher interface {
	Fire(ctx context.Context, name string, payload any)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

type nopPublisher struct{}

func (nopPublisher) Fire(context.Context, string, any) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
