package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) *FileStore {
		t.Helper()
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		return store
	}

	t.Run("missing thread loads empty", func(t *testing.T) {
		store := newStore(t)
		messages, err := store.Load(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()))

		loaded, err := store.Load(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, loaded, 4)
		assert.Equal(t, "user", loaded[0].Role)
		assert.Equal(t, "The capital of France is Paris.", loaded[3].Content)

		require.Len(t, loaded[1].ToolCalls, 1)
		assert.Equal(t, "search_wikipedia", loaded[1].ToolCalls[0].Name)
		assert.Equal(t, "France", loaded[1].ToolCalls[0].Arguments["query"])
	})

	t.Run("snapshot survives a new store instance", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()))

		reopened, err := NewFileStore(dir)
		require.NoError(t, err)
		loaded, err := reopened.Load(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, loaded, 4)
	})

	t.Run("save replaces the snapshot", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()))
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()[:1]))

		loaded, err := store.Load(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
	})

	t.Run("corrupt line reports the line number", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()[:1]))

		path := filepath.Join(dir, "t1.jsonl")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
		require.NoError(t, err)
		_, err = f.WriteString("{not json\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		_, err = store.Load(ctx, "t1")
		assert.ErrorContains(t, err, "corrupt checkpoint line 2")
	})

	t.Run("evict removes the thread file", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()))
		require.NoError(t, store.Evict("t1"))

		_, err = os.Stat(filepath.Join(dir, "t1.jsonl"))
		assert.True(t, os.IsNotExist(err))

		// Evicting an absent thread is not an error
		assert.NoError(t, store.Evict("t1"))
	})

	t.Run("threads lists sorted IDs", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, "beta", sampleMessages()))
		require.NoError(t, store.Save(ctx, "alpha", sampleMessages()))

		threads, err := store.Threads()
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta"}, threads)
	})

	t.Run("no leftover temp files after save", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, "t1", sampleMessages()))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "t1.jsonl", entries[0].Name())
	})

	t.Run("rejects invalid thread IDs", func(t *testing.T) {
		store := newStore(t)
		assert.Error(t, store.Save(ctx, "../../escape", sampleMessages()))
		assert.Error(t, store.Evict("a/b"))
	})
}
