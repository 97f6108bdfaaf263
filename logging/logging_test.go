package logging_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jmgilman/go/storage/logging"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := logging.New(logging.Config{
				Level:      tt.level,
				Format:     "console",
				OutputPath: filepath.Join(t.TempDir(), "out.log"),
			})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, logging.OrNop(l))
}

func TestAdapter_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	logging.Adapter(zap.New(core), "minio", "uploads/").Debug("put object")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "minio", fields["backend"])
	assert.Equal(t, "uploads/", fields["prefix"])
}
