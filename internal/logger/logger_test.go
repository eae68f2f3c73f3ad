package logger

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-service/internal/config"
)

func TestInit_LevelAndFormat(t *testing.T) {
	closer := Init(config.LoggerConfig{Level: "debug", Format: "json"})
	defer closer.Close()

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	closer := Init(config.LoggerConfig{Level: "loud", Format: "text"})
	defer closer.Close()

	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	closer := Init(config.LoggerConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})

	log.WithField("model", "svm").Info("rotated entry")
	require.NoError(t, closer.Close())
	Init(config.LoggerConfig{Level: "info", Format: "json"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"rotated entry"`)
	assert.Contains(t, string(data), `"model":"svm"`)
}
