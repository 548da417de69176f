// Package config loads service configuration from defaults, an optional YAML
// file and environment variables (ENV > file > defaults).
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Serper    SerperConfig    `koanf:"serper"`
	WhatsApp  WhatsAppConfig  `koanf:"whatsapp"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Dispatch  DispatchConfig  `koanf:"dispatch"`
	Sheets    SheetsConfig    `koanf:"sheets"`
	Queue     QueueConfig     `koanf:"queue"`
	Mail      MailConfig      `koanf:"mail"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RequestsPerMinute int           `koanf:"requests_per_minute"`
}

// StorageConfig selects the blob store driver: file, badger, postgres, sqlite or redis.
type StorageConfig struct {
	Driver        string `koanf:"driver"`
	Path          string `koanf:"path"`
	DSN           string `koanf:"dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

type SerperConfig struct {
	APIKey            string  `koanf:"api_key"`
	URL               string  `koanf:"url"`
	MaxPages          int     `koanf:"max_pages"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

type WhatsAppConfig struct {
	GatewayURL     string        `koanf:"gateway_url"`
	Token          string        `koanf:"token"`
	PollInterval   time.Duration `koanf:"poll_interval"`
	ReconnectDelay time.Duration `koanf:"reconnect_delay"`
	// StrictRegistrationCheck turns a negative registration lookup into a per-lead error.
	StrictRegistrationCheck bool `koanf:"strict_registration_check"`
	// OperatorPhone receives a summary after every batch when set.
	OperatorPhone string `koanf:"operator_phone"`
}

type RateLimitConfig struct {
	MaxLeads int           `koanf:"max_leads"`
	Cooldown time.Duration `koanf:"cooldown"`
}

type DispatchConfig struct {
	MessageDelay time.Duration `koanf:"message_delay"`
	PauseMin     time.Duration `koanf:"pause_min"`
	PauseMax     time.Duration `koanf:"pause_max"`
	Timezone     string        `koanf:"timezone"`
}

type SheetsConfig struct {
	SpreadsheetID       string `koanf:"spreadsheet_id"`
	ServiceAccountEmail string `koanf:"service_account_email"`
	PrivateKey          string `koanf:"private_key"`
}

// QueueConfig enables batch report publishing when URL is set.
type QueueConfig struct {
	URL string `koanf:"url"`
}

// MailConfig enables operator report emails when Host and To are set.
type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	To       string `koanf:"to"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5254,
			ReadTimeout:       30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RequestsPerMinute: 300,
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "data",
		},
		Serper: SerperConfig{
			URL:               "https://google.serper.dev/places",
			MaxPages:          50,
			RequestsPerSecond: 5,
		},
		WhatsApp: WhatsAppConfig{
			GatewayURL:     "http://localhost:8080",
			PollInterval:   3 * time.Second,
			ReconnectDelay: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxLeads: 10,
			Cooldown: 10 * time.Minute,
		},
		Dispatch: DispatchConfig{
			MessageDelay: time.Second,
			PauseMin:     5 * time.Second,
			PauseMax:     10 * time.Second,
			Timezone:     "Asia/Colombo",
		},
		Mail: MailConfig{
			Port: 587,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
