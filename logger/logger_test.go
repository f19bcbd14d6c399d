package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dailydiet/daily-diet/config"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   config.LogLevel
		want logging.Level
	}{
		{config.Debug, logging.DEBUG},
		{config.Info, logging.INFO},
		{config.Notice, logging.NOTICE},
		{config.Warn, logging.WARNING},
		{config.Error, logging.ERROR},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFileBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DIET_LOG_FOLDER", dir)

	InitLogger(logging.WARNING)
	defer CloseLogger()

	Debugf("meal %d created", 7)
	Warning("disk almost full")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "meal 7 created", "file backend records debug")
	assert.Contains(t, string(data), "disk almost full")
}
