package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "miniprint.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost", cfg.Bind)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 120, cfg.Timeout)
	assert.Equal(t, 512, cfg.MaxConns)
	assert.Equal(t, "Ready", cfg.Printer.ReadyMsg)
	assert.False(t, cfg.Alert.Enabled)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
bind = "0.0.0.0"
timeout = 30

[printer]
ready_msg = "Processing..."
rotate_identity = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Bind)
	assert.Equal(t, 30, cfg.Timeout)
	assert.Equal(t, "Processing...", cfg.Printer.ReadyMsg)
	assert.True(t, cfg.Printer.RotateIdentity)
	// Untouched keys stay at their defaults.
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 512, cfg.MaxConns)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "port = 123456"},
		{"zero timeout", "timeout = -1"},
		{"alert without relay", "[alert]\nenabled = true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverridesSMTP(t *testing.T) {
	t.Setenv("SMTP_SERVER", "relay.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_TO", "soc@example.com")

	cfg, err := Load(writeConfig(t, `
[alert]
enabled = true
server = "file-value"
to = "file@example.com"
`))
	require.NoError(t, err)
	assert.Equal(t, "relay.example.com", cfg.Alert.Server)
	assert.Equal(t, 2525, cfg.Alert.Port)
	assert.Equal(t, "soc@example.com", cfg.Alert.To)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `[printer]`+"\n"+`ready_msg = "Ready"`)

	got := make(chan Config, 4)
	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, Watch(path, func(c Config) { got <- c }, stop))

	require.NoError(t, os.WriteFile(path, []byte("[printer]\nready_msg = \"Sleep mode on\"\n"), 0600))

	select {
	case cfg := <-got:
		assert.Equal(t, "Sleep mode on", cfg.Printer.ReadyMsg)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatch_KeepsRunningOnBadReload(t *testing.T) {
	path := writeConfig(t, `timeout = 30`)

	got := make(chan Config, 4)
	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, Watch(path, func(c Config) { got <- c }, stop))

	// Broken file: reload is skipped, watcher survives.
	require.NoError(t, os.WriteFile(path, []byte("timeout = -5\n"), 0600))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("timeout = 60\n"), 0600))
	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-got:
			if cfg.Timeout == 60 {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not recover")
		}
	}
}
