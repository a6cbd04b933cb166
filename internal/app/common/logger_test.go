package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		level       string
		wantLevel   zapcore.Level
		wantErr     bool
	}{
		{"production default", false, "", zapcore.InfoLevel, false},
		{"development default", true, "", zapcore.DebugLevel, false},
		{"explicit level", false, "warn", zapcore.WarnLevel, false},
		{"invalid level", false, "loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.development, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, logger.Level())
		})
	}
}
