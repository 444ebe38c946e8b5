package services

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/auth"
	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
)

// RegisterInput is a signup request. Role is honoured only for admin callers.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// AuthService issues tokens. Every issued token replaces the one stored on
// the user, so only the newest session stays valid.
type AuthService struct {
	users  repositories.UserRepository
	tokens TokenIssuer
	events Publisher
	now    Clock
}

func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, events Publisher, now Clock) *AuthService {
	return &AuthService{users: users, tokens: tokens, events: publisherOrNop(events), now: now}
}

// Register creates a user and signs them in. actor is the authenticated
// caller, or nil.
func (s *AuthService) Register(ctx context.Context, actor *models.User, in RegisterInput) (*AuthResult, error) {
	role := models.RoleUser
	if actor.IsAdmin() && in.Role != "" {
		if !models.ValidRole(in.Role) {
			return nil, apperr.New(apperr.InvalidInput, "Invalid role")
		}
		role = in.Role
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperr.ErrDuplicateEmail
	} else if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}

	now := s.now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	user.Tokens.AccessToken = token

	if err := s.users.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, err
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID.Hex(), "role", role)
	s.events.Fire(ctx, EventUserRegistered, user.View())

	return &AuthResult{Token: token, User: user.View()}, nil
}

// fallbackTimingHash is a well-formed bcrypt hash at auth.PasswordCost, used
// when hashing the equalizer password fails.
const fallbackTimingHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var timingHash = sync.OnceValue(func() string {
	return newTimingHash(auth.HashPassword)
})

func newTimingHash(hash func(string) (string, error)) string {
	h, err := hash("kapee-timing-equalizer")
	if err != nil {
		logger.Warn("timing hash unavailable, using fallback", "error", err)
		return fallbackTimingHash
	}
	return h
}

// equalizeTiming spends one bcrypt comparison so an unknown email takes as
// long to reject as a wrong password.
func equalizeTiming(password string) {
	auth.CheckPassword(timingHash(), password)
}

// Login verifies the credentials and issues a new token, which logs out any
// other session of the user. Unknown email and wrong password fail alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !apperr.Is(err, apperr.NotFound) {
			return nil, err
		}
		equalizeTiming(password)
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, apperr.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Server error", err)
	}
	if err := s.users.SetAccessToken(ctx, user.ID, token); err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &AuthResult{Token: token, User: user.View()}, nil
}

// Logout revokes the user's current token.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	return s.users.SetAccessToken(ctx, user.ID, "")
}
