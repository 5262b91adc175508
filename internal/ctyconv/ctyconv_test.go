package ctyconv

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromValue(t *testing.T) {
	t.Parallel()

	val := cty.ObjectVal(map[string]cty.Value{
		"name":  cty.StringVal("calc"),
		"count": cty.NumberIntVal(3),
		"ratio": cty.NumberFloatVal(0.5),
		"ok":    cty.True,
		"tags":  cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}),
		"none":  cty.NullVal(cty.String),
	})

	got, err := FromValue(val)

	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"name":  "calc",
		"count": int64(3),
		"ratio": 0.5,
		"ok":    true,
		"tags":  []any{"a", int64(1)},
		"none":  nil,
	}, got)
}

func TestFromValue_Unknown(t *testing.T) {
	t.Parallel()

	_, err := FromValue(cty.UnknownVal(cty.String))
	require.Error(t, err)
}

func TestFromValues(t *testing.T) {
	t.Parallel()

	args, err := FromValues(cty.TupleVal([]cty.Value{cty.NumberIntVal(2), cty.NumberIntVal(3)}))
	require.NoError(t, err)
	require.Equal(t, []any{int64(2), int64(3)}, args)

	args, err = FromValues(cty.EmptyTupleVal)
	require.NoError(t, err)
	require.Nil(t, args, "an empty argument list is passed as nil")

	_, err = FromValues(cty.StringVal("nope"))
	require.Error(t, err)
}

func TestToValue_RoundTrip(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"a": "x",
		"b": int64(7),
		"c": []any{true, 1.5},
	}

	val, err := ToValue(in)
	require.NoError(t, err)
	out, err := FromValue(val)
	require.NoError(t, err)

	require.Equal(t, in, out)
}

func TestToValue_TypedFallback(t *testing.T) {
	t.Parallel()

	val, err := ToValue([]string{"a", "b"})
	require.NoError(t, err)
	require.True(t, val.Type().IsListType())

	_, err = ToValue(make(chan int))
	require.Error(t, err)
}

func TestPlain(t *testing.T) {
	t.Parallel()

	got, err := Plain(map[string]string{"k": "v"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"k": "v"}, got)

	got, err = Plain(42)
	require.NoError(t, err)
	require.Equal(t, int64(42), got)
}
