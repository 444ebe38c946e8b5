package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.Unauthenticated:    http.StatusUnauthorized,
		apperr.Forbidden:          http.StatusForbidden,
		apperr.NotFound:           http.StatusNotFound,
		apperr.Conflict:           http.StatusConflict,
		apperr.DuplicateEmail:     http.StatusBadRequest,
		apperr.InvalidInput:       http.StatusBadRequest,
		apperr.InvalidCredentials: http.StatusBadRequest,
		apperr.EmptyCart:          http.StatusBadRequest,
		apperr.Timeout:            http.StatusGatewayTimeout,
		apperr.Unavailable:        http.StatusServiceUnavailable,
		apperr.Internal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), kind)
	}
}

func TestKindOfUnwraps(t *testing.T) {
	err := fmt.Errorf("cart service: %w", apperr.ErrEmptyCart)
	assert.Equal(t, apperr.EmptyCart, apperr.KindOf(err))
	assert.True(t, errors.Is(err, apperr.ErrEmptyCart))
	assert.False(t, errors.Is(err, apperr.ErrCartNotFound))

	assert.Equal(t, apperr.Timeout, apperr.KindOf(fmt.Errorf("find: %w", context.DeadlineExceeded)))
	assert.Equal(t, apperr.Internal, apperr.KindOf(errors.New("boom")))
}

func TestSentinelsDistinguishMessages(t *testing.T) {
	assert.False(t, errors.Is(apperr.ErrItemNotFound, apperr.ErrCartNotFound))
	assert.True(t, errors.Is(apperr.ErrItemNotFound, apperr.New(apperr.NotFound, "")))
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := apperr.Wrap(apperr.Internal, "mongo exploded at 10.0.0.3", errors.New("dial tcp"))
	assert.Equal(t, "Server error", apperr.Message(err))
	assert.Equal(t, "Cart is empty", apperr.Message(apperr.ErrEmptyCart))
	assert.Equal(t, "Request timed out", apperr.Message(context.DeadlineExceeded))
}
