package checkpoint_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/checkpoint"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := checkpoint.Load(filepath.Join(dir, "absent.json"), testLogger())
	assert.Empty(t, s.Entries())
	assert.False(t, s.ShouldSkip("www.example.test"))
}

func TestLoad_CorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, checkpoint.FileName)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	s := checkpoint.Load(path, testLogger())
	assert.Empty(t, s.Entries())
}

func TestTransitionAndFlush_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, checkpoint.FileName)

	s := checkpoint.Load(path, testLogger())
	s.Transition("www.example.test", checkpoint.StateInProgress, 0)
	s.Transition("www.example.test", checkpoint.StateFinished, 0)
	s.Transition("lost.example.test", checkpoint.StateFailed, 3)

	require.NoError(t, s.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []checkpoint.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 2)

	resumed := checkpoint.Load(path, testLogger())
	assert.True(t, resumed.ShouldSkip("www.example.test"))
	assert.False(t, resumed.ShouldSkip("lost.example.test"))
}

func TestFlush_NoopWhenNotDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, checkpoint.FileName)
	s := checkpoint.Load(path, testLogger())

	require.NoError(t, s.Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "flush with no transitions must not create a file")
}
