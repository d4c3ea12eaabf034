package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mediabot/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Telegram: structures.TelegramConfig{Token: "123:abc", PollTimeout: 60},
		Backend: structures.BackendConfig{
			URL:               "http://localhost:5055",
			APIKey:            "key",
			Timeout:           10 * time.Second,
			NotificationTypes: 4062,
		},
		Access:       structures.AccessConfig{DefaultMode: "direct"},
		Security:     structures.SecurityConfig{Secret: "0123456789abcdef"},
		Storage:      structures.StorageConfig{Driver: "file", Dir: "/tmp/mediabot"},
		Conversation: structures.ConversationConfig{CacheSize: 8, TTL: 30 * time.Minute},
		WebServer:    structures.Server{Host: "0.0.0.0", Port: 8080},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *structures.Config)
	}{
		{"empty host", func(c *structures.Config) { c.WebServer.Host = "" }},
		{"zero port", func(c *structures.Config) { c.WebServer.Port = 0 }},
		{"empty log level", func(c *structures.Config) { c.Logger.Level = "" }},
		{"invalid log level", func(c *structures.Config) { c.Logger.Level = "verbose" }},
		{"missing bot token", func(c *structures.Config) { c.Telegram.Token = "" }},
		{"missing backend url", func(c *structures.Config) { c.Backend.URL = "" }},
		{"missing api key", func(c *structures.Config) { c.Backend.APIKey = "" }},
		{"unknown mode", func(c *structures.Config) { c.Access.DefaultMode = "proxy" }},
		{"short secret", func(c *structures.Config) { c.Security.Secret = "short" }},
		{"unknown driver", func(c *structures.Config) { c.Storage.Driver = "redis" }},
		{"postgres without dsn", func(c *structures.Config) { c.Storage.Driver = "postgres" }},
		{"file without dir", func(c *structures.Config) { c.Storage.Dir = "" }},
		{"events without url", func(c *structures.Config) { c.Events.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, NewCnfValidator(c).Validate())
		})
	}
}

func TestConfigValidator_PostgresWithDSN(t *testing.T) {
	c := validConfig()
	c.Storage = structures.StorageConfig{Driver: "postgres", DSN: "postgres://bot@localhost/bot"}
	assert.NoError(t, NewCnfValidator(c).Validate())
}
