package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactService stores storefront contact messages. The thank-you mail is
// sent by a listener on EventContactSubmitted.
type ContactService struct {
	contacts repositories.ContactRepository
	events   Publisher
	now      Clock
}

func NewContactService(contacts repositories.ContactRepository, events Publisher, now Clock) *ContactService {
	return &ContactService{contacts: contacts, events: publisherOrNop(events), now: now}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.Contact, error) {
	c := &models.Contact{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now(),
	}
	if c.Name == "" || c.Email == "" || c.Message == "" {
		return nil, apperr.New(apperr.InvalidInput, "Name, email and message are required")
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	s.events.Fire(ctx, EventContactSubmitted, *c)
	return c, nil
}

func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.contacts.List(ctx)
}
