package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chequelab/carteira/internal/domain"
	"github.com/chequelab/carteira/internal/session"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func testUser() *domain.User {
	return &domain.User{
		ID:    1,
		Name:  "Alice",
		CPF:   "12345678901",
		Email: "alice@example.com",
		Perms: []domain.Permission{domain.PermManageChecks, domain.PermManageBanks},
	}
}

func TestSetSessionAndInvalidate(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.SetSession("tok-1", testUser()))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok-1", s.Token())
	assert.Equal(t, "Alice", s.User().Name)

	s.Invalidate()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestDeviceTokenIsStable(t *testing.T) {
	dir := t.TempDir()

	s1, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	device := s1.DeviceToken()
	require.NotEmpty(t, device)

	s2, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, device, s2.DeviceToken(), "device token must survive restarts")
}

func TestDowngradePermissions(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetSession("tok-1", testUser()))

	s.DowngradePermissions([]domain.Permission{domain.PermManageChecks})

	assert.Equal(t, "tok-1", s.Token(), "downgrade must keep the token")
	assert.Equal(t, []domain.Permission{domain.PermManageChecks}, s.User().Perms)

	// Nil payload means the backend stripped everything.
	s.DowngradePermissions(nil)
	assert.Empty(t, s.User().Perms)
	assert.True(t, s.Authenticated())
}

func TestDowngradeWithoutUserIsNoop(t *testing.T) {
	s := newStore(t)
	s.DowngradePermissions([]domain.Permission{domain.PermFullView})
	assert.Nil(t, s.User())
}

func TestRestoreRevalidates(t *testing.T) {
	dir := t.TempDir()

	s1, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s1.SetSession("tok-1", testUser()))

	// Fresh store over the same state dir, successful revalidation.
	s2, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	var sawToken string
	restored, err := s2.Restore(context.Background(), func(context.Context) error {
		// The gateway would read the token from the store mid-restore.
		sawToken = s2.Token()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, "tok-1", sawToken)
	assert.Equal(t, "Alice", s2.User().Name)
}

func TestRestoreClearsOnFailedRevalidation(t *testing.T) {
	dir := t.TempDir()

	s1, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s1.SetSession("tok-1", testUser()))

	s2, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	pingErr := errors.New("sessão expirada")
	restored, err := s2.Restore(context.Background(), func(context.Context) error {
		return pingErr
	})
	assert.ErrorIs(t, err, pingErr)
	assert.False(t, restored)
	assert.False(t, s2.Authenticated())

	// The durable entries are gone too: a third store finds nothing.
	s3, err := session.NewStore(dir, zerolog.Nop())
	require.NoError(t, err)
	restored, err = s3.Restore(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.False(t, restored, "cleared session must not restore")
}

func TestRestoreWithNoState(t *testing.T) {
	s := newStore(t)
	restored, err := s.Restore(context.Background(), func(context.Context) error {
		t.Fatal("validate must not run without stored state")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestKVRoundTrip(t *testing.T) {
	kv, err := session.NewKV(t.TempDir() + "/state.json")
	require.NoError(t, err)

	_, ok, err := kv.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("token", "abc"))
	v, ok, err := kv.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, kv.Delete("token"))
	_, ok, err = kv.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is fine.
	require.NoError(t, kv.Delete("token"))
}
