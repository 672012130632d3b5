package simplelogger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_WritesAndAppends(t *testing.T) {
	t.Setenv("TREEDIFF_LOG_FILE", filepath.Join(t.TempDir(), "treediff.log"))
	require.True(t, Enabled())

	Log("hello %s", "world")
	Log("count %d", 123)

	b, err := os.ReadFile(os.Getenv("TREEDIFF_LOG_FILE"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "hello world")
	assert.Contains(t, lines[1], "count 123")
}

func TestLog_NoopWhenUnset(t *testing.T) {
	t.Setenv("TREEDIFF_LOG_FILE", "")
	assert.False(t, Enabled())
	Log("discarded")
}
