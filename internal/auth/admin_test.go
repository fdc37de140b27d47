package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminAuth() *AdminAuth {
	return NewAdminAuth("admin", "s3cret", "test-signing-key", 2*time.Hour)
}

func TestAdminLoginAndVerify(t *testing.T) {
	a := newTestAdminAuth()

	token, err := a.Login("admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}

func TestAdminLoginBadCredentials(t *testing.T) {
	a := newTestAdminAuth()

	_, err := a.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = a.Login("root", "s3cret")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAdminVerifyGarbage(t *testing.T) {
	a := newTestAdminAuth()
	_, err := a.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminVerifyExpired(t *testing.T) {
	a := newTestAdminAuth()
	token, err := a.Login("admin", "s3cret")
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	_, err = a.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminVerifyForeignSecret(t *testing.T) {
	other := NewAdminAuth("admin", "s3cret", "different-key", 2*time.Hour)
	token, err := other.Login("admin", "s3cret")
	require.NoError(t, err)

	_, err = newTestAdminAuth().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
