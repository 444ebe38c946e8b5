package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/auth"
	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
	"github.com/shashiranjanraj/kapee/pkg/response"
)

// TokenVerifier verifies a bearer token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserFinder loads the user a token was issued to.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Authentication failure reasons, also used as metric labels.
const (
	reasonMissing    = "missing_token"
	reasonInvalid    = "invalid_token"
	reasonNoUser     = "user_not_found"
	reasonSuperseded = "superseded_token"
)

var errUnauthenticated = errors.New("unauthenticated")

type userKey struct{}

// WithUser attaches u to ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromCtx returns the identity attached by Authenticator.
func UserFromCtx(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// Authenticator resolves bearer tokens to users. Only the token most recently
// issued to a user (the one stored on the user record) is accepted, on every
// route.
type Authenticator struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewAuthenticator(tokens TokenVerifier, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Resolve verifies token and loads its user. An error of kind Unauthenticated
// means the token is unusable; any other kind is a lookup failure.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, a.reject(ctx, reasonMissing, "No token provided")
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, a.reject(ctx, reasonInvalid, "Invalid token")
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, a.reject(ctx, reasonInvalid, "Invalid token")
	}

	user, err := a.users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, a.reject(ctx, reasonNoUser, "User not found")
		}
		return nil, err
	}

	stored := user.Tokens.AccessToken
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return nil, a.reject(ctx, reasonSuperseded, "Invalid token")
	}

	return user, nil
}

func (a *Authenticator) reject(ctx context.Context, reason, message string) error {
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	logger.WithCtx(ctx).Debug("authentication rejected", "reason", reason)
	return apperr.Wrap(apperr.Unauthenticated, message, errUnauthenticated)
}

// Required rejects the request with 401 unless it carries a valid bearer token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return a.handler(next, false)
}

// RequiredAllowQuery is Required but also reads the token from ?token= when
// the header is absent. Browsers cannot set headers on WebSocket upgrades.
func (a *Authenticator) RequiredAllowQuery(next http.Handler) http.Handler {
	return a.handler(next, true)
}

func (a *Authenticator) handler(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok && allowQuery {
			token = r.URL.Query().Get("token")
		}

		user, err := a.Resolve(r.Context(), token)
		if err != nil {
			response.Fail(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Optional attaches the identity when the request carries a valid token and
// otherwise passes the request through untouched.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := BearerToken(r); ok {
			if user, err := a.Resolve(r.Context(), token); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
