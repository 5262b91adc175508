package signature

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_OmitsAbsentFields(t *testing.T) {
	t.Parallel()

	data, err := Encode(FunctionSignature{Name: "f", Args: []Arg{{Name: "a"}}})
	require.NoError(t, err)

	require.JSONEq(t, `{"name":"f","args":[{"name":"a"}]}`, string(data))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.NotContains(t, raw, "returns")
	require.NotContains(t, raw, "docstring")
	require.NotContains(t, raw, "varargs")
	require.NotContains(t, string(data), "null")
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	fn := FunctionSignature{
		Name:       "typed",
		Args:       []Arg{{Name: "a", Type: "int"}, {Name: "b", Default: "1"}},
		VarArgs:    &Arg{Name: "rest"},
		KwOnlyArgs: []Arg{{Name: "strict", Type: "bool", Default: "False"}},
		KwArgs:     &Arg{Name: "opts", Type: "Any"},
		Returns:    "list[str]",
		Docstring:  "Doc.",
		Async:      true,
		Decorators: []string{"cache"},
		Line:       12,
	}
	data, err := Encode(fn)
	require.NoError(t, err)
	decoded, err := DecodeFunction(data)
	require.NoError(t, err)
	require.Equal(t, fn, decoded)

	cls := ClassSignature{Name: "Shape", Docstring: "A shape.", Bases: []string{"Base"}, Methods: []FunctionSignature{fn}, Line: 3}
	data, err = Encode(cls)
	require.NoError(t, err)
	decodedCls, err := DecodeClass(data)
	require.NoError(t, err)
	require.Equal(t, cls, decodedCls)
}

func TestDecodeFunction_Invalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeFunction([]byte("{"))
	require.ErrorContains(t, err, "decode function signature")
}

func TestFunctionSignature_String(t *testing.T) {
	t.Parallel()

	fn := FunctionSignature{
		Name:       "f",
		Args:       []Arg{{Name: "a", Type: "int"}, {Name: "b", Default: "2"}},
		KwOnlyArgs: []Arg{{Name: "c"}},
		KwArgs:     &Arg{Name: "kw"},
		Returns:    "None",
	}
	require.Equal(t, "def f(a: int, b=2, *, c, **kw) -> None", fn.String())

	cls := ClassSignature{Name: "C", Methods: []FunctionSignature{{Name: "m", VarArgs: &Arg{Name: "xs"}}}}
	require.Equal(t, "class C:\n    def m(*xs)", cls.String())
}

func TestIsPublic(t *testing.T) {
	t.Parallel()

	require.True(t, IsPublic("add"))
	require.False(t, IsPublic("_helper"))
	require.False(t, IsPublic("__init__"))
	require.True(t, AcceptAll("_helper"))
}
