package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var validStorageDrivers = map[string]bool{
	"file":     true,
	"badger":   true,
	"postgres": true,
	"sqlite":   true,
	"redis":    true,
}

// Validate rejects values the service cannot run with. Missing credentials
// for optional integrations are not errors; the features report NOT_CONFIGURED.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("server.requests_per_minute must not be negative"))
	}

	driver := strings.ToLower(c.Storage.Driver)
	if !validStorageDrivers[driver] {
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	c.Storage.Driver = driver
	switch driver {
	case "file", "badger", "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for driver %s", driver))
		}
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for driver postgres"))
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for driver redis"))
		}
	}

	if c.Serper.MaxPages <= 0 {
		errs = append(errs, errors.New("serper.max_pages must be positive"))
	}
	if c.Serper.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("serper.requests_per_second must be positive"))
	}

	if c.WhatsApp.GatewayURL == "" {
		errs = append(errs, errors.New("whatsapp.gateway_url is required"))
	}
	if c.WhatsApp.PollInterval <= 0 {
		errs = append(errs, errors.New("whatsapp.poll_interval must be positive"))
	}

	if c.RateLimit.MaxLeads <= 0 {
		errs = append(errs, errors.New("rate_limit.max_leads must be positive"))
	}
	if c.RateLimit.Cooldown <= 0 {
		errs = append(errs, errors.New("rate_limit.cooldown must be positive"))
	}

	if c.Dispatch.PauseMin < 0 || c.Dispatch.PauseMax < c.Dispatch.PauseMin {
		errs = append(errs, fmt.Errorf("dispatch pause range %s..%s is invalid", c.Dispatch.PauseMin, c.Dispatch.PauseMax))
	}
	if c.Dispatch.MessageDelay < 0 {
		errs = append(errs, errors.New("dispatch.message_delay must not be negative"))
	}
	if _, err := time.LoadLocation(c.Dispatch.Timezone); err != nil && c.Dispatch.Timezone != "" {
		errs = append(errs, fmt.Errorf("dispatch.timezone: %w", err))
	}

	// .env files usually carry the PEM with literal \n sequences.
	c.Sheets.PrivateKey = strings.ReplaceAll(c.Sheets.PrivateKey, `\n`, "\n")

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// MailEnabled reports whether operator report emails can be sent.
func (c *Config) MailEnabled() bool {
	return c.Mail.Host != "" && c.Mail.To != ""
}

// SheetsEnabled reports whether service-account credentials are present.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.ServiceAccountEmail != "" && c.Sheets.PrivateKey != ""
}
