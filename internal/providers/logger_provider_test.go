package providers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabot/internal/structures"
)

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "bot", TypeBot.String())
	assert.Equal(t, "backend", TypeBackend.String())
	assert.Equal(t, "app", TypeEnum(42).String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)

	logger.Infof(TypeApp, "test message")
	logger.Warnf(TypeBackend, "login of %s failed", "ann@example.com")
	logger.Debugf(TypeBot, "dropped below level")
	logger.Close()

	for _, name := range []string{"app", "bot", "backend", "storage", "http"} {
		assert.FileExists(t, filepath.Join(dir, name+".log"))
	}
	backend, err := os.ReadFile(filepath.Join(dir, "backend.log"))
	require.NoError(t, err)
	assert.Contains(t, string(backend), "login of ann@example.com failed")
	assert.Contains(t, string(backend), `"type":"backend"`)

	bot, err := os.ReadFile(filepath.Join(dir, "bot.log"))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(bot)))
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "loud", Dir: t.TempDir()},
	}
	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
