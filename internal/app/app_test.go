package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/goprep/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "state.json")},
		Seed:    config.SeedConfig{Timeout: time.Second},
		History: config.HistoryConfig{Capacity: 20},
		Log:     config.LogConfig{Level: "error"},
	}
}

func TestNew_SeedsOnFirstRun(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	tree := a.Store.Hierarchy()
	require.NotEmpty(t, tree, "first run seeds the fallback dataset")
	assert.Equal(t, "Arrays", tree[0].Name)
	assert.False(t, a.Store.CanUndo(), "the seeded baseline is not undoable")
}

func TestNew_ReloadsPersistedState(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	id, err := a.Store.AddTopic("Dynamic Programming")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	tree, err := b.Store.TopicTree(id)
	require.NoError(t, err)
	assert.Equal(t, "Dynamic Programming", tree.Name)
}

func TestNew_RecoversFromCorruptFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Storage.Path, []byte("{definitely not json"), 0o644))

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err, "corrupt persisted data is never fatal")
	defer a.Close()

	assert.NotEmpty(t, a.Store.Hierarchy(), "reseeded from fallback")
}

func TestNew_RecoversFromInvalidShape(t *testing.T) {
	cfg := testConfig(t)
	// Valid JSON, but missing questionsById: fails the validity predicate.
	require.NoError(t, os.WriteFile(cfg.Storage.Path,
		[]byte(`{"version":1,"topicsById":{},"subTopicsById":{},"topicOrder":[]}`), 0o644))

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.NotEmpty(t, a.Store.Hierarchy())
}

func TestNew_RecoversFromCorruptSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, os.WriteFile(cfg.Storage.Path, []byte("not a database"), 0o644))

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err, "unreadable database is never fatal")
	defer a.Close()

	assert.NotEmpty(t, a.Store.Hierarchy(), "reseeded from fallback")

	// The bad file was moved aside, not silently destroyed.
	_, statErr := os.Stat(cfg.Storage.Path + ".corrupt")
	assert.NoError(t, statErr)
}

func TestNew_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "state.db")

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	id, err := a.Store.AddTopic("Backtracking")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()
	_, err = b.Store.TopicTree(id)
	assert.NoError(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "cassandra"

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestReseedIsUndoable(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Store.AddTopic("Extra Topic")
	require.NoError(t, err)
	before := a.Store.Hierarchy()

	require.True(t, a.Reseed(context.Background()))
	assert.NotEqual(t, before, a.Store.Hierarchy(), "graph replaced by fresh seed")

	require.True(t, a.Store.Undo())
	assert.Equal(t, before, a.Store.Hierarchy())
}
