package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree materializes files (relative path -> content) under a fresh temp
// dir and returns its root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	noColor := false
	code, _ = Run(append([]string{"treediff"}, args...), &RunOptions{
		Out:        &out,
		Err:        &errOut,
		ForceColor: &noColor,
	})
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := run(t, "-version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "treediff "+Version+"\n", out)
}

func TestRun_WrongArgCount(t *testing.T) {
	code, _, stderr := run(t, "only-one-dir")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "expected exactly 2 directories")
}

func TestRun_NameStatus(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{
		"a.txt":    "a\nb\nc\n",
		"gone.txt": "g\n",
	})
	newRoot := writeTree(t, map[string]string{
		"a.txt":   "a\nX\nc\n",
		"new.txt": "n\n",
	})

	code, out, _ := run(t, "-name-status", oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Equal(t, "M\ta.txt\nD\tgone.txt\nA\tnew.txt\n", out)
}

func TestRun_Patch(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"a.txt": "a\nb\nc\n"})
	newRoot := writeTree(t, map[string]string{"a.txt": "a\nX\nc\n"})

	code, out, _ := run(t, oldRoot, newRoot)
	assert.Equal(t, 0, code)
	want := "diff --git a/a.txt b/a.txt\n" +
		"--- a/a.txt\n" +
		"+++ b/a.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" a\n" +
		"-b\n" +
		"+X\n" +
		" c\n"
	assert.Equal(t, want, out)
}

func TestRun_PatchAddedFile(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{})
	newRoot := writeTree(t, map[string]string{"new.txt": "hello\n"})

	code, out, _ := run(t, oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "new file mode 100644\n")
	assert.Contains(t, out, "--- /dev/null\n")
	assert.Contains(t, out, "+++ b/new.txt\n")
	assert.Contains(t, out, "@@ -0,0 +1,1 @@\n+hello\n")
}

func TestRun_ContextFlag(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"f.txt": "1\n2\n3\n4\n5\n6\n7\n"})
	newRoot := writeTree(t, map[string]string{"f.txt": "1\n2\n3\nX\n5\n6\n7\n"})

	code, out, _ := run(t, "-U", "1", oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "@@ -3,3 +3,3 @@\n 3\n-4\n+X\n 5\n")
	assert.NotContains(t, out, " 1\n")
}

func TestRun_ZeroContext(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"f.txt": "a\nb\nc\n"})
	newRoot := writeTree(t, map[string]string{"f.txt": "a\nX\nc\n"})

	code, out, _ := run(t, "-U", "0", oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "@@ -2,1 +2,1 @@\n-b\n+X\n")
	assert.NotContains(t, out, " a\n")
}

func TestRun_Pathspec(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{
		"keep.txt": "a\n",
		"skip.txt": "a\n",
	})
	newRoot := writeTree(t, map[string]string{
		"keep.txt": "b\n",
		"skip.txt": "b\n",
	})

	code, out, _ := run(t, "-name-status", oldRoot, newRoot, "--", "keep.txt")
	assert.Equal(t, 0, code)
	assert.Equal(t, "M\tkeep.txt\n", out)
}

func TestRun_ConfigFile(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"f.txt": "1\n2\n3\n4\n5\n6\n7\n"})
	newRoot := writeTree(t, map[string]string{
		"f.txt":     "1\n2\n3\nX\n5\n6\n7\n",
		"debug.log": "noise\n",
	})

	cfgPath := filepath.Join(t.TempDir(), "treediff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("context_lines = 1\nignore = [\"*.log\"]\n"), 0o644))

	code, out, _ := run(t, "-config", cfgPath, oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "@@ -3,3 +3,3 @@\n")
	assert.NotContains(t, out, "debug.log")
}

func TestRun_FlagOverridesConfig(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"f.txt": "a\nb\nc\n"})
	newRoot := writeTree(t, map[string]string{"f.txt": "a\nX\nc\n"})

	cfgPath := filepath.Join(t.TempDir(), "treediff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("context_lines = 5\n"), 0o644))

	code, out, _ := run(t, "-config", cfgPath, "-U", "0", oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "@@ -2,1 +2,1 @@\n")
}

func TestRun_UnknownConfigKey(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "treediff.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("contxt_lines = 1\n"), 0o644))

	code, _, stderr := run(t, "-config", cfgPath, t.TempDir(), t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown key")
}

func TestRun_MissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	code, _, stderr := run(t, missing, t.TempDir())
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestRun_IgnoreAllSpace(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"f.txt": "a b c\n"})
	newRoot := writeTree(t, map[string]string{"f.txt": "a  b\tc\n"})

	code, out, _ := run(t, "-ignore-all-space", oldRoot, newRoot)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestRun_ForceTextOnBinary(t *testing.T) {
	oldRoot := writeTree(t, map[string]string{"blob.bin": "a\x00b\n"})
	newRoot := writeTree(t, map[string]string{"blob.bin": "a\x00c\n"})

	code, out, _ := run(t, oldRoot, newRoot)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Binary files a/blob.bin and b/blob.bin differ\n")
	assert.False(t, strings.Contains(out, "@@"))

	code, out, _ = run(t, "-text", oldRoot, newRoot)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "@@")
}
