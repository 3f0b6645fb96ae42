package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/goprep/internal/app"
	"github.com/kittclouds/goprep/internal/config"
	"github.com/kittclouds/goprep/internal/store"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "state.json")},
		Seed:    config.SeedConfig{Timeout: time.Second},
		History: config.HistoryConfig{Capacity: 20},
		Log:     config.LogConfig{Level: "error"},
	}
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	buf := &bytes.Buffer{}
	return New(a, buf), buf
}

func exec(t *testing.T, c *CLI, args ...string) {
	t.Helper()
	require.NoError(t, c.Execute(context.Background(), args))
}

// =============================================================================
// Argument and path parsing
// =============================================================================

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"add", "topic", "Dynamic Programming"},
		parseArgs(`add topic "Dynamic Programming"`))
	assert.Equal(t, []string{"rename", "1.2", "Sliding Window"},
		parseArgs(`rename 1.2 "Sliding Window"`))
	assert.Equal(t, []string{"show"}, parseArgs("  show   "))
	assert.Empty(t, parseArgs(""))
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want []int
		ok   bool
	}{
		{"1", []int{0}, true},
		{"2.1", []int{1, 0}, true},
		{"2.1.3", []int{1, 0, 2}, true},
		{"0", nil, false},
		{"1.2.3.4", nil, false},
		{"a.b", nil, false},
		{"1..2", nil, false},
	}
	for _, tt := range tests {
		got, err := parsePath(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestResolveOutOfRange(t *testing.T) {
	c, _ := newTestCLI(t)
	_, err := c.resolveArg("99")
	assert.Error(t, err)
	_, err = c.resolveArg("1.99")
	assert.Error(t, err)
}

// =============================================================================
// Commands
// =============================================================================

func TestAddRenameDeleteTopic(t *testing.T) {
	c, _ := newTestCLI(t)
	base := len(c.app.Store.Hierarchy())

	exec(t, c, "add", "topic", "Dynamic Programming")
	tree := c.app.Store.Hierarchy()
	require.Len(t, tree, base+1)
	assert.Equal(t, "Dynamic Programming", tree[base].Name)

	path := pathOf(base + 1)
	exec(t, c, "rename", path, "DP")
	assert.Equal(t, "DP", c.app.Store.Hierarchy()[base].Name)

	exec(t, c, "del", path)
	assert.Len(t, c.app.Store.Hierarchy(), base)
}

func TestAddSubTopicAndQuestion(t *testing.T) {
	c, _ := newTestCLI(t)
	exec(t, c, "add", "topic", "Dynamic Programming")
	topicPath := pathOf(len(c.app.Store.Hierarchy()))

	exec(t, c, "add", "sub", topicPath, "Knapsack")
	topic := last(c.app.Store.Hierarchy())
	require.Len(t, topic.SubTopics, 1)

	exec(t, c, "add", "q", topicPath+".1", "Coin Change", "Medium", "https://leetcode.com/problems/coin-change/")
	topic = last(c.app.Store.Hierarchy())
	require.Len(t, topic.SubTopics[0].Questions, 1)
	q := topic.SubTopics[0].Questions[0]
	assert.Equal(t, "Coin Change", q.Title)
	assert.Equal(t, store.DifficultyMedium, q.Difficulty)
}

func TestValidationErrorSurfaces(t *testing.T) {
	c, _ := newTestCLI(t)
	err := c.Execute(context.Background(), []string{"add", "topic", "x"})
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
}

func TestReorderTopics(t *testing.T) {
	c, _ := newTestCLI(t)
	tree := c.app.Store.Hierarchy()
	require.GreaterOrEqual(t, len(tree), 2)
	first := tree[0].Name

	exec(t, c, "reorder", "1", "2")
	tree = c.app.Store.Hierarchy()
	assert.Equal(t, first, tree[1].Name)
}

func TestMoveQuestionAcrossSubTopics(t *testing.T) {
	c, _ := newTestCLI(t)
	exec(t, c, "add", "topic", "Dynamic Programming")
	topicPath := pathOf(len(c.app.Store.Hierarchy()))
	exec(t, c, "add", "sub", topicPath, "Knapsack")
	exec(t, c, "add", "sub", topicPath, "Intervals")
	exec(t, c, "add", "q", topicPath+".1", "Coin Change")

	exec(t, c, "move", topicPath+".1.1", topicPath+".2")
	topic := last(c.app.Store.Hierarchy())
	assert.Empty(t, topic.SubTopics[0].Questions)
	require.Len(t, topic.SubTopics[1].Questions, 1)
	assert.Equal(t, "Coin Change", topic.SubTopics[1].Questions[0].Title)
}

func TestMoveIntoOwnContainerRejected(t *testing.T) {
	c, _ := newTestCLI(t)
	exec(t, c, "add", "topic", "Dynamic Programming")
	topicPath := pathOf(len(c.app.Store.Hierarchy()))
	exec(t, c, "add", "sub", topicPath, "Knapsack")
	exec(t, c, "add", "q", topicPath+".1", "Coin Change")

	err := c.Execute(context.Background(),
		[]string{"move", topicPath + ".1.1", topicPath + ".1"})
	assert.Error(t, err, "same-container moves are a reorder, not a move")
}

func TestUndoRedoCommands(t *testing.T) {
	c, buf := newTestCLI(t)
	base := len(c.app.Store.Hierarchy())

	exec(t, c, "add", "topic", "Dynamic Programming")
	exec(t, c, "undo")
	assert.Len(t, c.app.Store.Hierarchy(), base)
	exec(t, c, "redo")
	assert.Len(t, c.app.Store.Hierarchy(), base+1)

	exec(t, c, "redo")
	assert.Contains(t, buf.String(), "nothing to redo")
}

func TestExpandCollapseRendering(t *testing.T) {
	c, buf := newTestCLI(t)

	exec(t, c, "collapse", "1")
	exec(t, c, "show")
	out := buf.String()
	assert.Contains(t, out, "1. + ")

	buf.Reset()
	exec(t, c, "expand", "1")
	exec(t, c, "show")
	assert.Contains(t, buf.String(), "1. - ")
}

func TestShowSubtree(t *testing.T) {
	c, buf := newTestCLI(t)
	exec(t, c, "add", "topic", "Dynamic Programming")
	topicPath := pathOf(len(c.app.Store.Hierarchy()))
	exec(t, c, "add", "sub", topicPath, "Knapsack")

	buf.Reset()
	exec(t, c, "show", topicPath)
	out := buf.String()
	assert.Contains(t, out, "Dynamic Programming")
	assert.Contains(t, out, "Knapsack")
	assert.NotContains(t, out, "Arrays")
}

func TestMutationsAutosave(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "state.json")},
		Seed:    config.SeedConfig{Timeout: time.Second},
		History: config.HistoryConfig{Capacity: 20},
		Log:     config.LogConfig{Level: "error"},
	}
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	c := New(a, &bytes.Buffer{})

	exec(t, c, "add", "topic", "Dynamic Programming")

	// The mutation hit the disk without an explicit save command.
	raw, err := os.ReadFile(cfg.Storage.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Dynamic Programming")
}

func pathOf(position int) string {
	return strconv.Itoa(position)
}

func last(tree []store.TopicNode) store.TopicNode {
	return tree[len(tree)-1]
}
