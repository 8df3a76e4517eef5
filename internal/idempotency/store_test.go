package idempotency

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, claimed, err := s.Claim(ctx, "k1", "fp")
	require.NoError(t, err)
	assert.True(t, claimed)

	_, _, err = s.Claim(ctx, "k1", "fp")
	require.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, s.Complete(ctx, "k1", "fp", 42))
	id, claimed, err := s.Claim(ctx, "k1", "fp")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, int64(42), id)
}

func TestMemoryStoreRejectsOtherRequestBody(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, _, _ = s.Claim(ctx, "k4", "cart-a")
	_, _, err := s.Claim(ctx, "k4", "cart-b")
	require.ErrorIs(t, err, ErrKeyReused)

	require.NoError(t, s.Complete(ctx, "k4", "cart-a", 5))
	_, claimed, err := s.Claim(ctx, "k4", "cart-b")
	require.ErrorIs(t, err, ErrKeyReused)
	assert.False(t, claimed)
}

func TestMemoryStoreReleaseAllowsRetry(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, _, _ = s.Claim(ctx, "k2", "fp")
	require.NoError(t, s.Release(ctx, "k2"))
	_, claimed, err := s.Claim(ctx, "k2", "other")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = s.Claim(ctx, "k3", "fp")
	require.NoError(t, s.Complete(ctx, "k3", "fp", 7))
	now = now.Add(2 * time.Minute)

	_, claimed, err := s.Claim(ctx, "k3", "fp")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestNormalize(t *testing.T) {
	k, ok := Normalize("  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", k)

	_, ok = Normalize("   ")
	assert.False(t, ok)
	_, ok = Normalize(strings.Repeat("x", 129))
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	type body struct {
		Qty int `json:"qty"`
	}
	a, err := Fingerprint(body{Qty: 1})
	require.NoError(t, err)
	b, _ := Fingerprint(body{Qty: 1})
	c, _ := Fingerprint(body{Qty: 2})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestParseValue(t *testing.T) {
	_, _, err := parseValue("garbage", "fp")
	require.Error(t, err)
	_, _, err = parseValue("x|fp", "fp")
	require.Error(t, err)

	id, claimed, err := parseValue("9|fp", "fp")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, int64(9), id)

	_, _, err = parseValue("9|fp", "other")
	require.ErrorIs(t, err, ErrKeyReused)
}
