package serve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"whisper-stt/internal/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\n"), 0644))

	tests := []struct {
		name     string
		args     []string
		wantHost string
		wantPort string
		wantErr  bool
	}{
		{"file only", []string{"--config", path}, config.DefaultHost, "9000", false},
		{"flags win", []string{"--config", path, "--host", "127.0.0.1", "--port", "9100"}, "127.0.0.1", "9100", false},
		{"missing file", []string{"--config", filepath.Join(dir, "none.yaml")}, config.DefaultHost, config.DefaultPort, false},
		{"invalid port", []string{"--config", path, "--port", "http"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STT_HOST", "")
			t.Setenv("STT_PORT", "")

			cmd := &cobra.Command{Use: "serve"}
			host, port, configPath = config.DefaultHost, config.DefaultPort, "config.yaml"
			cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "")
			cmd.Flags().StringVar(&host, "host", config.DefaultHost, "")
			cmd.Flags().StringVarP(&port, "port", "p", config.DefaultPort, "")
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := loadConfig(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
			assert.Equal(t, tt.wantPort, cfg.Server.Port)
		})
	}
}
