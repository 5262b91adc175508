package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "signatures", cfg: Config{Command: CmdSignatures, Target: "x.py"}},
		{name: "signatures without target", cfg: Config{Command: CmdSignatures}, wantErr: "file or directory is required"},
		{name: "namespace without module", cfg: Config{Command: CmdNamespace}, wantErr: "module name is required"},
		{name: "call", cfg: Config{Command: CmdCall, Target: "ns/fn"}},
		{name: "call with bad reference", cfg: Config{Command: CmdCall, Target: "nofn"}, wantErr: "cannot resolve"},
		{name: "run without files", cfg: Config{Command: CmdRun}, wantErr: "bridge file is required"},
		{name: "bridge without url", cfg: Config{Command: CmdBridge, SpecPaths: []string{"b.hcl"}}, wantErr: "host URL is required"},
		{name: "invalid output", cfg: Config{Command: CmdVersion, Output: "xml"}, wantErr: "invalid output format"},
		{name: "invalid mode", cfg: Config{Command: CmdVersion, Mode: "eager"}, wantErr: "invalid mode"},
		{name: "unknown command", cfg: Config{Command: "serve"}, wantErr: "unknown command"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewConfig(tc.cfg)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.cfg, *got)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PYBRIDGE_PATH", "/a"+string(os.PathListSeparator)+" /b ")
	t.Setenv("PYBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("PYBRIDGE_LOG_FORMAT", "")
	t.Setenv("PYBRIDGE_CACHE", "s3")
	t.Setenv("PYBRIDGE_S3_ENDPOINT", "localhost:9000")
	t.Setenv("PYBRIDGE_S3_ACCESS_KEY", "")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("PYBRIDGE_S3_USE_SSL", "false")

	env := LoadEnv()

	require.Equal(t, []string{"/a", "/b"}, env.SearchPaths)
	require.Equal(t, "debug", env.LogLevel)
	require.Equal(t, "text", env.LogFormat)
	require.Equal(t, "s3", env.Cache.Backend)
	require.Equal(t, "localhost:9000", env.Cache.Endpoint)
	require.Equal(t, "minio", env.Cache.AccessKey)
	require.False(t, env.Cache.UseSSL)
}
