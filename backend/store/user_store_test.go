package store

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	s, err := NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return s
}

func TestCreateAndVerifyUser(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateUser("alice", "password123", "alice@example.com"))

	assert.True(t, s.VerifyUser("alice", "password123"))
	assert.False(t, s.VerifyUser("alice", "password124"))
	assert.False(t, s.VerifyUser("bob", "password123"))
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateUser("alice", "first-password", "alice@example.com"))
	before, ok := s.Get("alice")
	require.True(t, ok)

	err := s.CreateUser("alice", "second-password", "other@example.com")
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// The original record must be untouched.
	after, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, before.Email, after.Email)
	assert.True(t, s.VerifyUser("alice", "first-password"))
	assert.False(t, s.VerifyUser("alice", "second-password"))
}

func TestSaveAndGetAPIKey(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser("alice", "password123", "alice@example.com"))

	key := "AIzaXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
	require.NoError(t, s.SaveAPIKey("alice", key))

	got, ok := s.GetAPIKey("alice")
	assert.True(t, ok)
	assert.Equal(t, key, got)

	_, ok = s.GetAPIKey("bob")
	assert.False(t, ok)
	assert.ErrorIs(t, s.SaveAPIKey("bob", key), ErrUnknownUser)
}

func TestTouchLogin(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser("alice", "password123", "alice@example.com"))

	user, _ := s.Get("alice")
	assert.Nil(t, user.LastLogin)

	require.NoError(t, s.TouchLogin("alice"))
	user, _ = s.Get("alice")
	assert.NotNil(t, user.LastLogin)

	assert.ErrorIs(t, s.TouchLogin("bob"), ErrUnknownUser)
}

func TestMissingFileMeansNoUsers(t *testing.T) {
	s, err := NewUserStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	_, ok := s.Get("anyone")
	assert.False(t, ok)
}

func TestCorruptFileFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := NewUserStore(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptStore))

	// The store stays usable; the next write replaces the corrupt file.
	require.NoError(t, s.CreateUser("alice", "password123", "alice@example.com"))
	assert.True(t, s.VerifyUser("alice", "password123"))
}

func TestUnreadableFileIsNotCorrupt(t *testing.T) {
	// Point the store at a directory: reading it fails with an I/O error,
	// which must not be reported as corruption.
	_, err := NewUserStore(t.TempDir())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCorruptStore))
}

func TestReloadFailureIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := NewUserStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser("alice", "password123", "alice@example.com"))

	var buf bytes.Buffer
	s.SetLogger(log.New(&buf, "", 0))

	// The file goes bad behind the store's back. The lookup answers from
	// an empty map and the failure shows up in the log.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, ok := s.Get("alice")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "warning: reloading")
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	first, err := NewUserStore(path)
	require.NoError(t, err)
	require.NoError(t, first.CreateUser("alice", "password123", "alice@example.com"))

	// A second handle on the same file mutates it.
	second, err := NewUserStore(path)
	require.NoError(t, err)
	require.NoError(t, second.SaveAPIKey("alice", "AIzaXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"))

	// The first handle sees the change because every read reloads.
	got, ok := first.GetAPIKey("alice")
	assert.True(t, ok)
	assert.Equal(t, "AIzaXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX", got)
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s, err := NewUserStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser("alice", "password123", "alice@example.com"))

	reopened, err := NewUserStore(path)
	require.NoError(t, err)
	assert.True(t, reopened.VerifyUser("alice", "password123"))
}
