package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mediabot/internal/structures"
)

const AppName = "MediaRequestBot"

func setConfigDefaults() {
	viper.SetDefault("telegram.pollTimeout", 60)
	viper.SetDefault("backend.timeout", 10*time.Second)
	viper.SetDefault("backend.notificationTypes", 4062)
	viper.SetDefault("backend.posterBaseUrl", "https://image.tmdb.org/t/p/w500")
	viper.SetDefault("access.defaultMode", "direct")
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.dir", "data")
	viper.SetDefault("storage.queue", 64)
	viper.SetDefault("conversation.cacheSize", 32)
	viper.SetDefault("conversation.ttl", 30*time.Minute)
	viper.SetDefault("scheduler.keepaliveInterval", 30*time.Minute)
	viper.SetDefault("scheduler.statsInterval", time.Minute)
	viper.SetDefault("events.exchange", "mediabot")
	viper.SetDefault("webServer.host", "0.0.0.0")
	viper.SetDefault("webServer.port", 8080)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.mode", 0644)
	viper.SetDefault("logger.dir", "logs")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")
	setConfigDefaults()

	viper.BindEnv("telegram.token", "MEDIABOT_TELEGRAM_TOKEN")
	viper.BindEnv("backend.url", "MEDIABOT_BACKEND_URL")
	viper.BindEnv("backend.apiKey", "MEDIABOT_BACKEND_API_KEY")
	viper.BindEnv("access.password", "MEDIABOT_PASSWORD")
	viper.BindEnv("access.defaultMode", "MEDIABOT_DEFAULT_MODE")
	viper.BindEnv("security.secret", "MEDIABOT_SECRET")
	viper.BindEnv("storage.driver", "MEDIABOT_STORAGE_DRIVER")
	viper.BindEnv("storage.dsn", "MEDIABOT_STORAGE_DSN")
	viper.BindEnv("events.url", "MEDIABOT_EVENTS_URL")
	viper.BindEnv("logger.level", "MEDIABOT_LOG_LEVEL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	conf.Access.Password = strings.TrimSpace(conf.Access.Password)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
