package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}
	return root
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "a.hcl", "sub/b.hcl", "c.txt")

	files, err := FindFilesByExtension(root, ".hcl")

	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(root, "a.hcl"), filepath.Join(root, "sub", "b.hcl")}, files)
	require.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestFindPythonFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t,
		"main.py",
		"pkg/__init__.py",
		"pkg/util.py",
		"pkg/__pycache__/util.cpython-312.py",
		".venv/lib/x.py",
		"venv/lib/y.py",
		"notes.md",
	)

	files, err := FindPythonFiles(root)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "main.py"),
		filepath.Join(root, "pkg", "__init__.py"),
		filepath.Join(root, "pkg", "util.py"),
	}, files)

	single := filepath.Join(root, "main.py")
	files, err = FindPythonFiles(single)
	require.NoError(t, err)
	require.Equal(t, []string{single}, files)

	_, err = FindPythonFiles(filepath.Join(root, "missing"))
	require.Error(t, err)
}
