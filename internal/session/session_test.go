package session

import (
	"os"
	"path/filepath"
	"testing"

	"predman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileIsSignedOut(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "session.json"))
	require.NoError(t, err)

	_, ok := s.Get()
	assert.False(t, ok)
}

func TestLoginPersistsWithPrivateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predman", "session.json")
	s, err := Open(path)
	require.NoError(t, err)

	sess := FromAuth(domain.AuthResponse{ID: "u1", Login: "ann", Email: "ann@example.com", Token: "tok"})
	require.NoError(t, s.Login(sess))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	got, ok := reopened.Get()
	require.True(t, ok)
	assert.Equal(t, sess, got)
}

func TestLogoutClearsFileAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := Open(path)
	require.NoError(t, err)

	var seen []*Session
	unsubscribe := s.Subscribe(func(sess *Session) { seen = append(seen, sess) })
	defer unsubscribe()

	require.NoError(t, s.Login(Session{UserID: "u1", Token: "tok"}))
	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, ok := s.Get()
	assert.False(t, ok)

	require.Len(t, seen, 3)
	assert.Equal(t, "tok", seen[0].Token)
	assert.Nil(t, seen[1])
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Login(Session{UserID: "u1"}), domain.ErrInvalidInput)
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := Open(path)
	assert.Error(t, err)
}
