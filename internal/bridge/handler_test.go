package bridge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/specialistvlad/pybridge/internal/dispatch"
	"github.com/specialistvlad/pybridge/internal/loader"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/registry"
	"github.com/stretchr/testify/require"
)

type greetModule struct{}

func (greetModule) Register(r *registry.Registry) {
	r.RegisterFunc("greet", "say_hello", &registry.RegisteredFunc{
		Fn:  func(name string) string { return "hello " + name },
		Doc: "Greets.",
	})
	r.RegisterFunc("greet", "add", &registry.RegisteredFunc{Fn: func(a, b int64) int64 { return a + b }})
	r.RegisterFunc("greet", "boom", &registry.RegisteredFunc{Fn: func() error { return errors.New("boom") }})
	r.RegisterFunc("greet", "upper", &registry.RegisteredFunc{Fn: strings.ToUpper})
}

func newHandler(t *testing.T) *Handler {
	t.Helper()

	lc := loader.NewContext(registry.New(greetModule{}))
	reg, err := namespace.NewBuilder(lc).BuildRegistry(context.Background(), []namespace.ExportSpec{
		namespace.NewExportSpec("greet"),
	})
	require.NoError(t, err)
	d, err := dispatch.New(reg)
	require.NoError(t, err)
	return NewHandler(reg, d)
}

func TestHandler_Describe(t *testing.T) {
	t.Parallel()

	records := newHandler(t).Describe()

	require.Len(t, records, 1)
	require.Equal(t, "greet", records[0].Name)
	require.Equal(t, []namespace.Entry{
		{Name: "add"},
		{Name: "boom"},
		{Name: "say-hello", Meta: `{:doc "Greets."}`},
		{Name: "upper"},
	}, records[0].Entries)
}

func TestHandler_Invoke(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		payload any
		want    map[string]any
		wantErr string
	}{
		{
			name:    "object payload",
			payload: map[string]any{"id": "1", "var": "greet/say-hello", "args": []any{"bob"}},
			want:    map[string]any{"id": "1", "value": "hello bob"},
		},
		{
			name:    "string payload keeps integers",
			payload: `{"id": 7, "var": "greet/add", "args": [2, 3]}`,
			want:    map[string]any{"id": "7", "value": int64(5)},
		},
		{
			name:    "target error",
			payload: map[string]any{"id": "2", "var": "greet/boom"},
			wantErr: "boom",
		},
		{
			name:    "unknown namespace",
			payload: map[string]any{"id": "3", "var": "nope/fn"},
			wantErr: "unknown namespace",
		},
		{
			name:    "missing var",
			payload: map[string]any{"id": "4"},
			wantErr: `missing "var"`,
		},
		{
			name:    "args not a list",
			payload: map[string]any{"id": "5", "var": "greet/upper", "args": "x"},
			wantErr: "must be a list",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := h.Invoke(ctx, tc.payload)

			if tc.wantErr != "" {
				require.Contains(t, got["error"], tc.wantErr)
				require.NotContains(t, got, "value")
				return
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeInvoke(t *testing.T) {
	t.Parallel()

	req, err := DecodeInvoke(map[string]any{"id": "a", "var": "ns/fn", "args": []any{}})
	require.NoError(t, err)
	require.Equal(t, InvokeRequest{ID: "a", Var: "ns/fn"}, req, "empty args become a zero-argument call")

	req, err = DecodeInvoke(map[string]any{"id": "b"})
	require.Error(t, err)
	require.Equal(t, "b", req.ID, "id survives an invalid payload")

	_, err = DecodeInvoke("not json")
	require.ErrorContains(t, err, "invalid invoke payload")

	_, err = DecodeInvoke([]any{1, 2})
	require.ErrorContains(t, err, "expected an object")
}

func TestServe_InvalidURL(t *testing.T) {
	t.Parallel()

	err := Serve(context.Background(), Config{URL: "localhost"}, newHandler(t))

	require.ErrorContains(t, err, "failed to parse URL")
}
