package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/pybridge/internal/cache/memory"
	"github.com/specialistvlad/pybridge/internal/errs"
	"github.com/specialistvlad/pybridge/internal/loader"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/pyruntime"
	"github.com/specialistvlad/pybridge/internal/registry"
	"github.com/specialistvlad/pybridge/internal/testutil"
	"github.com/stretchr/testify/require"
)

type calcModule struct {
	calls *atomic.Int64
}

func (m calcModule) Register(r *registry.Registry) {
	r.RegisterFunc("calc", "add_numbers", &registry.RegisteredFunc{Fn: func(a, b int) int {
		m.calls.Add(1)
		return a + b
	}})
	r.RegisterFunc("calc", "count_args", &registry.RegisteredFunc{Fn: func(args ...any) int { return len(args) }})
	r.RegisterFunc("calc", "fail", &registry.RegisteredFunc{Fn: func() error { return errTarget }})
	r.RegisterFunc("calc", "_hidden", &registry.RegisteredFunc{Fn: func() string { return "hidden" }})
}

var errTarget = errors.New("target failed")

func newRegistry(t *testing.T, calls *atomic.Int64) *namespace.Registry {
	t.Helper()

	root := testutil.WriteFiles(t, map[string]string{"tools.py": "def tool():\n    pass\n"})
	lc := loader.NewContext(registry.New(calcModule{calls: calls}))
	reg, err := namespace.NewBuilder(lc).BuildRegistry(context.Background(), []namespace.ExportSpec{
		namespace.NewExportSpec("calc", namespace.WithName("math")),
		namespace.NewExportSpec("tools", namespace.WithSourceFile(filepath.Join(root, "tools.py"))),
	})
	require.NoError(t, err)
	return reg
}

func TestParseRef(t *testing.T) {
	t.Parallel()

	ref, err := ParseRef("math/add-numbers")
	require.NoError(t, err)
	require.Equal(t, Ref{Namespace: "math", Function: "add_numbers"}, ref)
	require.Equal(t, "math/add-numbers", ref.String())

	ref, err = ParseRef("a/b/c")
	require.NoError(t, err)
	require.Equal(t, Ref{Namespace: "a", Function: "b/c"}, ref, "splits on the first slash only")

	for _, bad := range []string{"noslash", "/fn", "ns/", ""} {
		_, err := ParseRef(bad)
		var re *errs.ResolutionError
		require.True(t, errors.As(err, &re), "ref %q", bad)
	}
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	calls := &atomic.Int64{}
	d, err := New(newRegistry(t, calls))
	require.NoError(t, err)
	ctx := context.Background()

	// --- Act ---
	got, err := d.Dispatch(ctx, "math/add-numbers", []any{int64(2), int64(3)})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, int64(5), got)

	got, err = d.Dispatch(ctx, "math/count-args", []any{})
	require.NoError(t, err)
	require.Equal(t, int64(0), got, "an empty argument list is a call without arguments")
}

func TestDispatch_Errors(t *testing.T) {
	t.Parallel()

	d, err := New(newRegistry(t, &atomic.Int64{}), WithRefCacheSize(8))
	require.NoError(t, err)
	ctx := context.Background()

	var re *errs.ResolutionError
	_, err = d.Dispatch(ctx, "nope/add", nil)
	require.True(t, errors.As(err, &re), "unknown namespace")

	_, err = d.Dispatch(ctx, "math/subtract", nil)
	require.True(t, errors.As(err, &re), "unknown function")

	_, err = d.Dispatch(ctx, "math/-hidden", nil)
	require.True(t, errors.As(err, &re), "members not exported are not callable")

	_, err = d.Dispatch(ctx, "tools/tool", nil)
	var du *errs.DispatchUnavailableError
	require.True(t, errors.As(err, &du))
	require.Equal(t, "tools", du.Namespace)

	_, err = d.Dispatch(ctx, "math/fail", nil)
	require.Same(t, errTarget, err, "target errors propagate unwrapped")
}

func TestDispatch_ResultCache(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	calls := &atomic.Int64{}
	store := memory.New(16, 0)
	d, err := New(newRegistry(t, calls), WithResultCache(store))
	require.NoError(t, err)
	ctx, logs := testutil.LogContext(t)

	// --- Act ---
	first, err := d.Dispatch(ctx, "math/add-numbers", []any{int64(2), int64(3)})
	require.NoError(t, err)
	second, err := d.Dispatch(ctx, "math/add_numbers", []any{int64(2), int64(3)})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, "math/add-numbers", []any{int64(4), int64(3)})
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, int64(5), first)
	require.Equal(t, int64(5), second, "cached results keep whole numbers as int64")
	require.Equal(t, int64(2), calls.Load())
	require.Equal(t, 2, store.Len())
	require.Contains(t, logs.String(), "served from cache")
}

func TestDispatch_Python(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteFiles(t, map[string]string{
		"ns_mod.py": "def add(a, b):\n    return a + b\n\ndef fail():\n    raise ValueError('bad input')\n",
	})
	lc := loader.NewContext(pyruntime.New(pyruntime.WithSearchPaths(root)))
	t.Cleanup(func() { _ = lc.Close() })
	ctx := context.Background()
	reg, err := namespace.NewBuilder(lc).BuildRegistry(ctx, []namespace.ExportSpec{
		namespace.NewExportSpec("ns_mod", namespace.WithName("ns")),
	})
	require.NoError(t, err)
	d, err := New(reg)
	require.NoError(t, err)

	// --- Act ---
	got, err := d.Dispatch(ctx, "ns/add", []any{int64(2), int64(3)})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, int64(5), got)

	_, err = d.Dispatch(ctx, "ns/fail", nil)
	require.ErrorContains(t, err, "bad input", "a raised exception is the dispatch error")
}

func TestDispatch_ResultCacheSkipsLossyResults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteFiles(t, map[string]string{
		"blobs.py": "def raw():\n    return b'ab'\n\ndef whole():\n    return 3.0\n",
	})
	lc := loader.NewContext(pyruntime.New(pyruntime.WithSearchPaths(root)))
	t.Cleanup(func() { _ = lc.Close() })
	ctx := context.Background()
	reg, err := namespace.NewBuilder(lc).BuildRegistry(ctx, []namespace.ExportSpec{namespace.NewExportSpec("blobs")})
	require.NoError(t, err)
	store := memory.New(16, 0)
	d, err := New(reg, WithResultCache(store))
	require.NoError(t, err)

	for range 2 {
		// --- Act ---
		raw, err := d.Dispatch(ctx, "blobs/raw", nil)
		require.NoError(t, err)
		whole, err := d.Dispatch(ctx, "blobs/whole", nil)
		require.NoError(t, err)

		// --- Assert ---
		require.Equal(t, []byte("ab"), raw)
		require.Equal(t, 3.0, whole)
	}
	require.Equal(t, 0, store.Len())
}
