package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/kapee/pkg/auth"
)

func TestTimingHashFallsBackWhenHashingFails(t *testing.T) {
	got := newTimingHash(func(string) (string, error) { return "", errors.New("entropy exhausted") })
	assert.Equal(t, fallbackTimingHash, got)

	cost, err := bcrypt.Cost([]byte(got))
	require.NoError(t, err)
	assert.Equal(t, auth.PasswordCost, cost)
}

func TestTimingHashIsRealBcrypt(t *testing.T) {
	h := newTimingHash(auth.HashPassword)
	assert.True(t, auth.CheckPassword(h, "kapee-timing-equalizer"))
	assert.False(t, auth.CheckPassword(h, "something-else"))
}
