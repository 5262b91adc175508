package namecase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToExportCase(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"function_signatures": "function-signatures",
		"add":                 "add",
		"pylaagu.meta":        "pylaagu.meta",
		"__init__":            "--init--",
		"":                    "",
	}
	for in, want := range cases {
		require.Equal(t, want, ToExportCase(in), "input %q", in)
	}
}

func TestToDeclaredCase(t *testing.T) {
	t.Parallel()

	require.Equal(t, "class_signatures", ToDeclaredCase("class-signatures"))
	require.Equal(t, "add", ToDeclaredCase("add"))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	exported := []string{"a", "add-two", "x1-y2-z3", "trailing-", "-leading", "Mixed-Case9"}
	for _, x := range exported {
		require.Equal(t, x, ToExportCase(ToDeclaredCase(x)), "export-form %q", x)
	}

	declared := []string{"a", "add_two", "x1_y2_z3", "_private", "__dunder__"}
	for _, x := range declared {
		require.Equal(t, x, ToDeclaredCase(ToExportCase(x)), "declared-form %q", x)
	}
}
