package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type TelegramConfig struct {
	Token       string `yaml:"token" validate:"required"`
	PollTimeout int    `yaml:"pollTimeout" validate:"uint"`
	Debug       bool   `yaml:"debug"`
}

type BackendConfig struct {
	URL               string        `yaml:"url" validate:"required|fullUrl"`
	APIKey            string        `yaml:"apiKey" validate:"required"`
	Timeout           time.Duration `yaml:"timeout" validate:"required|min:1"`
	Enable4K          bool          `yaml:"enable4k"`
	NotificationTypes int           `yaml:"notificationTypes" validate:"uint"`
	PosterBaseURL     string        `yaml:"posterBaseUrl"`
}

type AccessConfig struct {
	Password    string  `yaml:"password"`
	DefaultMode string  `yaml:"defaultMode" validate:"required|in:direct,shared,api"`
	Whitelist   []int64 `yaml:"whitelist"`
}

type SecurityConfig struct {
	Secret string `yaml:"secret" validate:"required|minLen:16"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver" validate:"required|in:file,postgres"`
	Dir      string `yaml:"dir" validate:"unixPath"`
	Compress bool   `yaml:"compress"`
	DSN      string `yaml:"dsn"`
	Queue    int    `yaml:"queue" validate:"uint"`
}

type ConversationConfig struct {
	CacheSize int           `yaml:"cacheSize" validate:"required|uint|min:1"`
	TTL       time.Duration `yaml:"ttl" validate:"required|min:1"`
}

type SchedulerConfig struct {
	KeepaliveInterval time.Duration `yaml:"keepaliveInterval"`
	StatsInterval     time.Duration `yaml:"statsInterval"`
}

type EventsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName      string
	Debug        bool
	Path         string
	Telegram     TelegramConfig     `yaml:"telegram"`
	Backend      BackendConfig      `yaml:"backend"`
	Access       AccessConfig       `yaml:"access"`
	Security     SecurityConfig     `yaml:"security"`
	Storage      StorageConfig      `yaml:"storage"`
	Conversation ConversationConfig `yaml:"conversation"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Events       EventsConfig       `yaml:"events"`
	WebServer    Server             `yaml:"webServer"`
	Logger       LoggerConfig       `yaml:"logger"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}
