package pyruntime

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pybridge/internal/errs"
	"github.com/specialistvlad/pybridge/internal/loader"
	"github.com/specialistvlad/pybridge/internal/testutil"
	"github.com/stretchr/testify/require"
)

const calcSource = `"""Calculator helpers."""

def add(a, b):
    """Add two numbers."""
    return a + b

def scale(items, factor):
    out = []
    for i in items:
        out.append(i * factor)
    return out

def describe(name, tags):
    return {"name": name, "tags": tags}

def nothing():
    return None

def boom():
    raise ValueError("bad input")

class Point:
    """A point."""
    pass

VALUE = 3
`

func newRuntime(t *testing.T, files map[string]string) (*Runtime, string) {
	t.Helper()
	root := testutil.WriteFiles(t, files)
	rt := New(WithSearchPaths(root))
	t.Cleanup(func() { _ = rt.Close() })
	return rt, root
}

func TestResolve(t *testing.T) {
	t.Parallel()

	rt, root := newRuntime(t, map[string]string{
		"calc.py":             calcSource,
		"pkg/__init__.py":     "",
		"pkg/sub.py":          "X = 1\n",
		"shadow.py":           "",
		"shadow/__init__.py":  "",
		"dironly/placeholder": "",
	})

	tests := []struct {
		module string
		want   string
	}{
		{"calc", "calc.py"},
		{"pkg", "pkg/__init__.py"},
		{"pkg.sub", "pkg/sub.py"},
		{"shadow", "shadow.py"},
	}
	for _, tt := range tests {
		got, err := rt.Resolve(tt.module, "")
		require.NoError(t, err, tt.module)
		require.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
	}

	for _, missing := range []string{"nope", "dironly"} {
		_, err := rt.Resolve(missing, "")
		var nf *errs.NotFoundError
		require.True(t, errors.As(err, &nf), "module %s", missing)
	}

	_, err := rt.Resolve("calc", filepath.Join(root, "missing.py"))
	var nf *errs.NotFoundError
	require.True(t, errors.As(err, &nf))
	_, err = rt.Resolve("calc", filepath.Join(root, "pkg"))
	require.True(t, errors.As(err, &nf), "a directory is not a source file")
}

func TestLoad_MembersAndInvoke(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rt, root := newRuntime(t, map[string]string{"calc.py": calcSource})
	ctx, _ := testutil.LogContext(t)

	// --- Act ---
	h, err := rt.Load(ctx, "calc", "")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "calc", h.Name())
	require.Equal(t, filepath.Join(root, "calc.py"), h.Path())

	byName := map[string]loader.Member{}
	var names []string
	for _, m := range h.Members() {
		byName[m.Name] = m
		names = append(names, m.Name)
	}
	require.IsIncreasing(t, names)
	require.Equal(t, loader.Member{Name: "add", Kind: loader.KindFunction, Module: "calc", Doc: "Add two numbers."}, byName["add"])
	require.Equal(t, loader.KindClass, byName["Point"].Kind)
	require.Equal(t, loader.KindOther, byName["VALUE"].Kind)

	got, err := h.Invoke(ctx, "add", []any{int64(2), int64(3)})
	require.NoError(t, err)
	require.Equal(t, int64(5), got)

	got, err = h.Invoke(ctx, "scale", []any{[]any{int64(1), int64(2)}, 1.5})
	require.NoError(t, err)
	require.Equal(t, []any{1.5, 3.0}, got)

	got, err = h.Invoke(ctx, "describe", []any{"p", []any{"a"}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "p", "tags": []any{"a"}}, got)

	got, err = h.Invoke(ctx, "nothing", nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInvoke_Errors(t *testing.T) {
	t.Parallel()

	rt, _ := newRuntime(t, map[string]string{"calc.py": calcSource})
	ctx := context.Background()
	h, err := rt.Load(ctx, "calc", "")
	require.NoError(t, err)

	_, err = h.Invoke(ctx, "boom", nil)
	require.ErrorContains(t, err, "ValueError")
	require.ErrorContains(t, err, "bad input")

	_, err = h.Invoke(ctx, "missing", nil)
	var re *errs.ResolutionError
	require.True(t, errors.As(err, &re))

	_, err = h.Invoke(ctx, "add", []any{make(chan int), int64(1)})
	require.ErrorContains(t, err, "argument 1")
}

func TestLoad_ExecutionErrorIsLoadError(t *testing.T) {
	t.Parallel()

	rt, _ := newRuntime(t, map[string]string{"broken.py": "raise RuntimeError('at import')\n"})

	_, err := rt.Load(context.Background(), "broken", "")

	var le *errs.LoadError
	require.True(t, errors.As(err, &le), "expected LoadError, got %v", err)
	require.Equal(t, "broken", le.Module)
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Parallel()

	root := testutil.WriteFiles(t, map[string]string{"elsewhere/tool.py": "def run():\n    return 'ok'\n"})
	rt := New()
	t.Cleanup(func() { _ = rt.Close() })
	path := filepath.Join(root, "elsewhere", "tool.py")

	h, err := rt.Load(context.Background(), "tool", path)

	require.NoError(t, err)
	require.Equal(t, path, h.Path())
	got, err := h.Invoke(context.Background(), "run", nil)
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}

func TestLoad_AbsoluteSearchPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rt, root := newRuntime(t, map[string]string{"ns.py": "def add(a, b):\n    return a + b\n"})
	require.True(t, filepath.IsAbs(root))
	ctx := context.Background()

	// --- Act ---
	h, err := rt.Load(ctx, "ns", "")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "ns.py"), h.Path())
	got, err := h.Invoke(ctx, "add", []any{int64(2), int64(3)})
	require.NoError(t, err)
	require.Equal(t, int64(5), got)
}

func TestInvoke_RuntimeErrorPassesThrough(t *testing.T) {
	t.Parallel()

	// Closures over enclosing names inside comprehensions are not supported
	// by the interpreter and fail when called.
	rt, _ := newRuntime(t, map[string]string{"comp.py": "def scale(items, factor):\n    return [i * factor for i in items]\n"})
	ctx := context.Background()
	h, err := rt.Load(ctx, "comp", "")
	require.NoError(t, err)

	_, err = h.Invoke(ctx, "scale", []any{[]any{int64(1)}, int64(2)})

	require.ErrorContains(t, err, "NameError")
	require.ErrorContains(t, err, "factor")
	var re *errs.ResolutionError
	require.False(t, errors.As(err, &re))
}

func TestMembers_ImportedFunctionsKeepTheirModule(t *testing.T) {
	t.Parallel()

	rt, _ := newRuntime(t, map[string]string{
		"helpers.py": "def shared():\n    return 1\n",
		"main.py":    "from helpers import shared\n\ndef own():\n    return shared()\n",
	})
	ctx := context.Background()
	h, err := rt.Load(ctx, "main", "")
	require.NoError(t, err)

	byName := map[string]loader.Member{}
	for _, m := range h.Members() {
		byName[m.Name] = m
	}

	require.Equal(t, "main", byName["own"].Module)
	require.Equal(t, "helpers", byName["shared"].Module)
	got, err := h.Invoke(ctx, "own", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), got)
}
