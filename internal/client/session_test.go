package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("missing_file_is_signed_out", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		s, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("save_then_load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "session.json")
		store := NewFileStore(path)
		want := &Session{User: User{ID: "u1", Name: "Alice", Email: "alice@test.com"}, Token: "tok"}

		require.NoError(t, store.Save(want))
		got, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("corrupt_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := NewFileStore(path).Load()
		assert.ErrorIs(t, err, ErrCorruptSession)
	})

	t.Run("session_without_token_is_corrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"user":{"id":"u1"}}`), 0o600))

		_, err := NewFileStore(path).Load()
		assert.ErrorIs(t, err, ErrCorruptSession)
	})

	t.Run("clear_is_idempotent", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, store.Save(&Session{Token: "tok"}))
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())

		s, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestMemoryStore(t *testing.T) {
	store := &MemoryStore{}

	s, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	saved := &Session{Token: "tok"}
	require.NoError(t, store.Save(saved))
	saved.Token = "mutated"

	s, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token, "store keeps its own copy")

	require.NoError(t, store.Clear())
	s, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNew_ClearsCorruptSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	c, err := New("http://localhost:0/api", WithSessionStore(NewFileStore(path)))
	require.NoError(t, err)
	assert.Nil(t, c.Session())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt session file should be removed")
}

func TestNew_RestoresSession(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save(&Session{User: User{ID: "u1"}, Token: "tok"}))

	c, err := New("http://localhost:0/api", WithSessionStore(store))
	require.NoError(t, err)
	require.NotNil(t, c.Session())
	assert.Equal(t, "tok", c.Session().Token)
}
