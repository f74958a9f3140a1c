// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	AppID           string
	AppPassword     string
	SpeechKey       string
	SpeechLanguage  string
	CallAutomation  CallAutomationConfig
	DecisionURL     string
	DBPath          string
	CollectLastName bool
	HTTPTimeout     time.Duration
	SessionTTL      time.Duration
}

// CallAutomationConfig holds the parsed call-automation connection string.
type CallAutomationConfig struct {
	Endpoint  string
	AccessKey string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	callCfg, err := parseConnectionString(getEnv("ACS_CONNECTION_STRING", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ACS_CONNECTION_STRING: %w", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "3978"),
		AppID:           getEnv("MICROSOFT_APP_ID", ""),
		AppPassword:     getEnv("MICROSOFT_APP_PASSWORD", ""),
		SpeechKey:       getEnv("SPEECH_KEY", ""),
		SpeechLanguage:  getEnv("SPEECH_LANGUAGE", "en-US"),
		CallAutomation:  callCfg,
		DecisionURL:     getEnv("QUOTE_API_URL", ""),
		DBPath:          getEnv("DB_PATH", "./data/sessions.db"),
		CollectLastName: getEnvBool("COLLECT_LAST_NAME", false),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DecisionURL == "" {
		return fmt.Errorf("QUOTE_API_URL cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	return nil
}

// parseConnectionString parses an "endpoint=...;accesskey=..." style
// connection string. An empty input yields an empty config, which
// disables the call-automation path.
func parseConnectionString(raw string) (CallAutomationConfig, error) {
	var cfg CallAutomationConfig
	if raw == "" {
		return cfg, nil
	}
	for _, part := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return cfg, fmt.Errorf("malformed segment %q", part)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "endpoint":
			cfg.Endpoint = strings.TrimRight(value, "/")
		case "accesskey":
			cfg.AccessKey = value
		}
	}
	if cfg.Endpoint == "" || cfg.AccessKey == "" {
		return cfg, fmt.Errorf("endpoint and accesskey are both required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	// Accept both "10s" style and bare seconds.
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
		return d
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
