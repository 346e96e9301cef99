package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONCreatesParentsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base", "nested", "deployment.json")
	writer := NewWriter()

	require.NoError(t, writer.WriteJSON(path, map[string]int{"stepsCompleted": 1}))
	require.NoError(t, writer.WriteJSON(path, map[string]int{"stepsCompleted": 2}))

	var decoded map[string]int
	require.NoError(t, NewReader().ReadJSON(path, &decoded))
	assert.Equal(t, 2, decoded["stepsCompleted"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestReadJSONRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	var decoded map[string]any
	assert.ErrorContains(t, NewReader().ReadJSON(path, &decoded), "failed to unmarshal JSON")
}
