package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestLoadReturnsLastSavedPair(t *testing.T) {
	store := newTestStore(t)

	require.True(t, store.Load().Empty(), "fresh store must read as empty")

	require.NoError(t, store.Save(Pair{Access: "A1", Refresh: "R1"}))
	require.Equal(t, Pair{Access: "A1", Refresh: "R1"}, store.Load())

	require.NoError(t, store.Save(Pair{Access: "A2", Refresh: "R2"}))
	require.Equal(t, Pair{Access: "A2", Refresh: "R2"}, store.Load())
}

func TestSaveAccessKeepsRefreshToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Pair{Access: "A", Refresh: "R"}))
	require.NoError(t, store.SaveAccess("A2"))
	require.Equal(t, Pair{Access: "A2", Refresh: "R"}, store.Load())
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Pair{Access: "A", Refresh: "R"}))
	require.NoError(t, store.Clear())
	require.True(t, store.Load().Empty())
	require.NoError(t, store.Clear(), "clearing twice must not fail")
}

func TestPairSurvivesNewStoreInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, New(path).Save(Pair{Access: "A", Refresh: "R"}))

	reopened := New(path)
	require.Equal(t, Pair{Access: "A", Refresh: "R"}, reopened.Load())
}

func TestUserSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	_, ok := store.LoadUser()
	require.False(t, ok)

	require.NoError(t, store.Save(Pair{Access: "A", Refresh: "R"}))
	require.NoError(t, store.SaveUser(UserSnapshot{ID: 7, Username: "alice", Email: "alice@example.com"}))

	user, ok := store.LoadUser()
	require.True(t, ok)
	require.Equal(t, "alice", user.Username)

	// Saving credentials again keeps the snapshot.
	require.NoError(t, store.Save(Pair{Access: "A2", Refresh: "R2"}))
	user, ok = store.LoadUser()
	require.True(t, ok)
	require.Equal(t, 7, user.ID)

	require.NoError(t, store.Clear())
	_, ok = store.LoadUser()
	require.False(t, ok)
}

func TestCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store := New(path)
	require.True(t, store.Load().Empty())
	require.NoError(t, store.Save(Pair{Access: "A", Refresh: "R"}))
	require.Equal(t, Pair{Access: "A", Refresh: "R"}, store.Load())
}
