package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Build.InsertWorkers)
	assert.Equal(t, 30*time.Second, cfg.Package.Timeout)
	assert.Equal(t, 9, cfg.Package.CompressionLevel)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ankipack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
server:
  addr: ":9000"
build:
  insert_workers: 2
package:
  timeout: 10s
`), 0o644))

	t.Setenv("ANKIPACK_BUILD__INSERT_WORKERS", "6")

	cfg, err := Load(newFlags(t, "--config", path, "--server.addr", ":7000"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "file overrides flag default")
	assert.Equal(t, 6, cfg.Build.InsertWorkers, "env overrides file")
	assert.Equal(t, ":7000", cfg.Server.Addr, "changed flag overrides file")
	assert.Equal(t, 10*time.Second, cfg.Package.Timeout)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown log level", []string{"--log_level", "loud"}},
		{"zero workers", []string{"--build.insert_workers", "0"}},
		{"zero timeout", []string{"--package.timeout", "0s"}},
		{"compression out of range", []string{"--package.compression_level", "12"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(newFlags(t, tc.args...))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}
