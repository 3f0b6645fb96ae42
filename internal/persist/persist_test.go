package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/goprep/internal/store"
)

// =============================================================================
// Persister factory for testing both implementations
// =============================================================================

type persisterFactory func(t *testing.T) Persister

func filePersisterFactory(t *testing.T) Persister {
	t.Helper()
	fsys, err := mem.NewFS()
	require.NoError(t, err, "Failed to create mem fs")
	return NewFilePersister(fsys, "state.json")
}

func sqlitePersisterFactory(t *testing.T) Persister {
	t.Helper()
	p, err := NewSQLitePersister()
	require.NoError(t, err, "Failed to create sqlite persister")
	return p
}

// runTestsForAllPersisters runs a test function against both adapters.
func runTestsForAllPersisters(t *testing.T, testName string, testFn func(t *testing.T, p Persister)) {
	factories := map[string]persisterFactory{
		"File":   filePersisterFactory,
		"SQLite": sqlitePersisterFactory,
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			p := factory(t)
			defer p.Close()
			testFn(t, p)
		})
	}
}

func buildSampleStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	arrays, err := s.AddTopic("Arrays")
	require.NoError(t, err)
	strings, err := s.AddTopic("Strings")
	require.NoError(t, err)

	twoPtr, err := s.AddSubTopic(arrays, "Two Pointers")
	require.NoError(t, err)
	_, err = s.AddSubTopic(arrays, "Sliding Window")
	require.NoError(t, err)
	kmp, err := s.AddSubTopic(strings, "KMP")
	require.NoError(t, err)

	_, err = s.AddQuestion(twoPtr, "Two Sum", store.DifficultyEasy, "https://leetcode.com/problems/two-sum")
	require.NoError(t, err)
	_, err = s.AddQuestion(twoPtr, "Three Sum", store.DifficultyMedium, "")
	require.NoError(t, err)
	_, err = s.AddQuestion(kmp, "Find the Index", "", "")
	require.NoError(t, err)

	require.NoError(t, s.SetSubTopicExpanded(kmp, false))
	require.NoError(t, s.ReorderTopics(0, 1))
	return s
}

// =============================================================================
// Shared behavior
// =============================================================================

func TestLoadEmpty(t *testing.T) {
	runTestsForAllPersisters(t, "LoadEmpty", func(t *testing.T, p Persister) {
		ps, err := p.Load()
		require.NoError(t, err)
		assert.Nil(t, ps, "nothing persisted yet")
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	runTestsForAllPersisters(t, "RoundTrip", func(t *testing.T, p Persister) {
		s := buildSampleStore(t)

		require.NoError(t, p.Save(s.Persisted()))

		loaded, err := p.Load()
		require.NoError(t, err)
		require.NotNil(t, loaded)
		require.NoError(t, store.CheckPersisted(loaded))
		assert.Equal(t, store.SchemaVersion, loaded.Version)

		restored, err := store.NewFromPersisted(loaded)
		require.NoError(t, err)
		assert.Equal(t, s.Hierarchy(), restored.Hierarchy())
	})
}

func TestSaveOverwrites(t *testing.T) {
	runTestsForAllPersisters(t, "Overwrite", func(t *testing.T, p Persister) {
		s := buildSampleStore(t)
		require.NoError(t, p.Save(s.Persisted()))

		// Mutate and save again; the load must see only the latest state.
		tree := s.Hierarchy()
		require.NoError(t, s.DeleteTopic(tree[0].ID))
		require.NoError(t, p.Save(s.Persisted()))

		loaded, err := p.Load()
		require.NoError(t, err)
		restored, err := store.NewFromPersisted(loaded)
		require.NoError(t, err)
		assert.Equal(t, s.Hierarchy(), restored.Hierarchy())
	})
}

func TestSaveEmptyState(t *testing.T) {
	runTestsForAllPersisters(t, "EmptyState", func(t *testing.T, p Persister) {
		require.NoError(t, p.Save(store.New().Persisted()))

		loaded, err := p.Load()
		require.NoError(t, err)
		require.NotNil(t, loaded)
		require.NoError(t, store.CheckPersisted(loaded))
		assert.Empty(t, loaded.TopicOrder)
	})
}

// =============================================================================
// File-specific corruption handling
// =============================================================================

func TestFileLoad_GarbagePayload(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "state.json", []byte("{not json"), 0o644))

	p := NewFilePersister(fsys, "state.json")
	_, err = p.Load()
	require.Error(t, err)
	var ce *store.CorruptError
	assert.ErrorAs(t, err, &ce)
}

func TestFileLoad_MissingRequiredKey(t *testing.T) {
	// Decodes fine but fails the validity predicate: questionsById is absent.
	payload := []byte(`{"version":1,"topicsById":{},"subTopicsById":{},"topicOrder":[]}`)
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "state.json", payload, 0o644))

	p := NewFilePersister(fsys, "state.json")
	loaded, err := p.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Error(t, store.CheckPersisted(loaded), "loader must reject and reseed")
}

// =============================================================================
// SQLite-specific corruption handling
// =============================================================================

func TestSQLiteOpen_GarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o644))

	_, err := NewSQLitePersisterWithDSN(path)
	require.Error(t, err)
	var ce *store.CorruptError
	assert.ErrorAs(t, err, &ce, "unreadable database reported as corrupt state")
}

// =============================================================================
// SQLite-specific ordering
// =============================================================================

func TestSQLitePreservesOrdering(t *testing.T) {
	p := sqlitePersisterFactory(t)
	defer p.Close()

	s := store.New()
	topicID, err := s.AddTopic("Arrays")
	require.NoError(t, err)
	subID, err := s.AddSubTopic(topicID, "Two Pointers")
	require.NoError(t, err)
	for _, title := range []string{"Alpha Question", "Beta Question", "Gamma Question"} {
		_, err := s.AddQuestion(subID, title, "", "")
		require.NoError(t, err)
	}
	require.NoError(t, s.ReorderQuestions(subID, 2, 0))

	require.NoError(t, p.Save(s.Persisted()))
	loaded, err := p.Load()
	require.NoError(t, err)

	restored, err := store.NewFromPersisted(loaded)
	require.NoError(t, err)
	sub, err := restored.SubTopicTree(subID)
	require.NoError(t, err)
	require.Len(t, sub.Questions, 3)
	assert.Equal(t, "Gamma Question", sub.Questions[0].Title)
	assert.Equal(t, "Alpha Question", sub.Questions[1].Title)
	assert.Equal(t, "Beta Question", sub.Questions[2].Title)
}
