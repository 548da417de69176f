package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/leadreach/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix namespaces generic overrides: LEADREACH_DISPATCH_PAUSE_MIN -> dispatch.pause_min.
const EnvPrefix = "LEADREACH_"

// envMappings keeps the variable names the first deployments used in their .env files.
var envMappings = map[string]string{
	"port":                         "server.port",
	"cors_origins":                 "server.cors_origins",
	"serper_api_key":               "serper.api_key",
	"serper_url":                   "serper.url",
	"google_sheets_spreadsheet_id": "sheets.spreadsheet_id",
	"google_service_account_email": "sheets.service_account_email",
	"google_private_key":           "sheets.private_key",
	"whatsapp_gateway_url":         "whatsapp.gateway_url",
	"whatsapp_gateway_token":       "whatsapp.token",
	"storage_driver":               "storage.driver",
	"data_dir":                     "storage.path",
	"database_url":                 "storage.dsn",
	"redis_addr":                   "storage.redis_addr",
	"rabbitmq_url":                 "queue.url",
	"mail_host":                    "mail.host",
	"mail_port":                    "mail.port",
	"mail_user":                    "mail.user",
	"mail_pass":                    "mail.password",
	"mail_from":                    "mail.from",
	"mail_to":                      "mail.to",
	"log_level":                    "logging.level",
	"log_format":                   "logging.format",
	"log_caller":                   "logging.caller",
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// Load reads .env (if present), then defaults, config file and environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps an environment variable to a koanf path. Unknown
// variables return "" and are ignored by the provider.
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)
	if path, ok := envMappings[lower]; ok {
		return path
	}

	prefix := strings.ToLower(EnvPrefix)
	if !strings.HasPrefix(lower, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(lower, prefix)
	section, field, ok := strings.Cut(rest, "_")
	if !ok {
		return ""
	}
	// rate_limit is the only two-word section.
	if section == "rate" && strings.HasPrefix(field, "limit_") {
		return "rate_limit." + strings.TrimPrefix(field, "limit_")
	}
	return section + "." + field
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
