package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PatricioDieck/tcp-peer/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.TransportTCP, cfg.Transport)
	assert.Equal(t, 4096, cfg.ReadBufferSize)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "transport: ws\nmax_message_size: 128\nraw_input: true\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.TransportWS, cfg.Transport)
	assert.Equal(t, 128, cfg.MaxMessageSize)
	assert.True(t, cfg.RawInput)
	// Untouched fields keep their defaults.
	assert.Equal(t, 4096, cfg.ReadBufferSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_UnknownTransport(t *testing.T) {
	path := writeFile(t, "transport: carrier-pigeon\n")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "unknown transport")
}

func TestLoad_BadYaml(t *testing.T) {
	path := writeFile(t, "transport: [unclosed\n")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestValidate_BufferSizes(t *testing.T) {
	cfg := config.Default()
	cfg.ReadBufferSize = 0
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.MaxMessageSize = -1
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.MaxMessageSize = 0 // unbounded is allowed
	assert.NoError(t, cfg.Validate())
}
