package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the tutor client.
type Config struct {
	AppName       string        `validate:"required"`
	AppEnv        string        `validate:"required"`
	APIBaseURL    string        `validate:"required,url"`
	HTTPTimeout   time.Duration `validate:"gte=0"`
	LogLevel      string        `validate:"required,oneof=trace debug info warn error fatal panic disabled"`
	LogFormat     string        `validate:"required,oneof=console json"`
	MetricsAddr   string
	RedisURL      string
	NATSURL       string
	NotifyChannel string `validate:"required"`
}

// MetricsEnabled reports whether a metrics listener was requested.
func (c Config) MetricsEnabled() bool {
	return strings.TrimSpace(c.MetricsAddr) != ""
}

// MetricsAddress normalises a bare port into a listen address.
func (c Config) MetricsAddress() string {
	if strings.Contains(c.MetricsAddr, ":") {
		return c.MetricsAddr
	}

	return fmt.Sprintf(":%s", c.MetricsAddr)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TUTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Reverse Tutor")
	v.SetDefault("app.env", "development")
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("http.timeout", "0s")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("notify.channel", "tutor:notifications")

	timeoutString := v.GetString("http.timeout")
	if timeoutString == "" {
		timeoutString = "0s"
	}

	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid http timeout: %w", err)
	}

	cfg := Config{
		AppName:       v.GetString("app.name"),
		AppEnv:        v.GetString("app.env"),
		APIBaseURL:    strings.TrimRight(strings.TrimSpace(v.GetString("api.base_url")), "/"),
		HTTPTimeout:   timeout,
		LogLevel:      strings.ToLower(v.GetString("log.level")),
		LogFormat:     strings.ToLower(v.GetString("log.format")),
		MetricsAddr:   v.GetString("metrics.addr"),
		RedisURL:      v.GetString("redis.url"),
		NATSURL:       v.GetString("nats.url"),
		NotifyChannel: v.GetString("notify.channel"),
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
