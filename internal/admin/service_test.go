package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	a, err := svc.Register(ctx, " Ops@Tienda.co ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ops@tienda.co", a.Email)
	assert.NotEqual(t, "s3cret-pass", a.PasswordHash)

	got, err := svc.Authenticate(ctx, "OPS@tienda.co", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ops@tienda.co", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@tienda.co", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "ops@tienda.co", "short")
	require.Error(t, err)

	_, err = svc.Register(ctx, "ops@tienda.co", "long-enough")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "ops@tienda.co", "another-one")
	require.ErrorIs(t, err, ErrAlreadyExist)
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("abc12345")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "abc12345"))
	assert.False(t, CheckPassword(h, "abc1234"))
	assert.False(t, CheckPassword("not-a-hash", "abc12345"))
}
