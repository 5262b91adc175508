package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/pybridge/internal/app"
	"github.com/specialistvlad/pybridge/internal/config"
	"github.com/stretchr/testify/require"
)

var defaultEnv = app.Env{LogLevel: "info", LogFormat: "text"}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"help"}, {"-h"}, {"call", "-h"}} {
		out := &bytes.Buffer{}

		cfg, exit, err := Parse(args, out, defaultEnv)

		require.NoError(t, err)
		require.True(t, exit)
		require.Nil(t, cfg)
		require.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Commands(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *app.Config)
	}{
		{
			name: "signatures",
			args: []string{"signatures", "-o", "yaml", "--all", "src/"},
			check: func(t *testing.T, cfg *app.Config) {
				require.Equal(t, app.CmdSignatures, cfg.Command)
				require.Equal(t, "src/", cfg.Target)
				require.Equal(t, "yaml", cfg.Output)
				require.True(t, cfg.All)
			},
		},
		{
			name: "namespace",
			args: []string{"namespace", "--path", "lib", "--path", "vendor", "--file", "m.py", "--mode", "static", "--name", "m", "my_mod"},
			check: func(t *testing.T, cfg *app.Config) {
				require.Equal(t, "my_mod", cfg.Target)
				require.Equal(t, []string{"lib", "vendor"}, cfg.SearchPaths)
				require.Equal(t, "m.py", cfg.SourceFile)
				require.Equal(t, "static", cfg.Mode)
				require.Equal(t, "m", cfg.NamespaceName)
			},
		},
		{
			name: "call keeps negative numbers as arguments",
			args: []string{"call", "--log-level", "DEBUG", "math/add", "-1", `{"a": 1}`},
			check: func(t *testing.T, cfg *app.Config) {
				require.Equal(t, "math/add", cfg.Target)
				require.Equal(t, []string{"-1", `{"a": 1}`}, cfg.Args)
				require.Equal(t, "debug", cfg.LogLevel)
				require.Equal(t, "json", cfg.Output)
			},
		},
		{
			name: "run",
			args: []string{"run", "--spec", "a.hcl", "--cache", "memory", "b.hcl"},
			check: func(t *testing.T, cfg *app.Config) {
				require.Equal(t, []string{"a.hcl", "b.hcl"}, cfg.SpecPaths)
				require.Equal(t, "memory", cfg.Cache.Backend)
			},
		},
		{
			name: "bridge",
			args: []string{"bridge", "--url", "http://localhost:3000/socket.io/", "--insecure", "--healthcheck-port", "8080", "b.hcl"},
			check: func(t *testing.T, cfg *app.Config) {
				require.Equal(t, "http://localhost:3000/socket.io/", cfg.URL)
				require.Equal(t, "/", cfg.SocketNamespace)
				require.True(t, cfg.Insecure)
				require.Equal(t, 8080, cfg.HealthcheckPort)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, exit, err := Parse(tc.args, &bytes.Buffer{}, defaultEnv)

			require.NoError(t, err)
			require.False(t, exit)
			tc.check(t, cfg)
		})
	}
}

func TestParse_EnvDefaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	env := app.Env{
		SearchPaths: []string{"/env/lib"},
		LogLevel:    "warn",
		LogFormat:   "json",
		URL:         "http://host:1",
		Cache:       config.Cache{Backend: "s3", Bucket: "b"},
	}

	// --- Act ---
	cfg, _, err := Parse([]string{"bridge", "--path", "extra", "b.hcl"}, &bytes.Buffer{}, env)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{"/env/lib", "extra"}, cfg.SearchPaths)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "http://host:1", cfg.URL)
	require.Equal(t, config.Cache{Backend: "s3", Bucket: "b"}, cfg.Cache)
	require.Equal(t, []string{"/env/lib"}, env.SearchPaths, "env defaults are not mutated")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown command", args: []string{"serve"}, wantMsg: "unknown command"},
		{name: "unknown flag", args: []string{"version", "--nope"}, wantMsg: "flag provided but not defined: -nope"},
		{name: "bad log format", args: []string{"version", "--log-format", "xml"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"version", "--log-level", "trace"}, wantMsg: "invalid log-level"},
		{name: "bad output", args: []string{"signatures", "-o", "toml", "x.py"}, wantMsg: "invalid output format"},
		{name: "too many arguments", args: []string{"namespace", "a", "b"}, wantMsg: "expected one argument"},
		{name: "missing target", args: []string{"call"}, wantMsg: "reference is required"},
		{name: "bridge without url", args: []string{"bridge", "b.hcl"}, wantMsg: "host URL is required"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, exit, err := Parse(tc.args, &bytes.Buffer{}, defaultEnv)

			require.False(t, exit)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
			require.Equal(t, 2, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
