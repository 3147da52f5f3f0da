// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates them so the
// app fails fast on bad config.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for every optional value.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the APP_ prefix. The prefix is removed, the rest
	is lowercased and "__" marks nesting:

	  APP_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout

	CLIENT_URL is read on its own, unprefixed, and lands in server.client_url.
*/

const (
	// EnvPrefix is the prefix of every structured env var.
	EnvPrefix = "APP_"

	// ClientURLEnv names the single origin allowed to make cross-origin requests.
	ClientURLEnv = "CLIENT_URL"

	// DefaultBodyLimit caps JSON request bodies at 16KB.
	DefaultBodyLimit int64 = 16 << 10
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability" validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are in seconds.
type ServerConfig struct {
	Port         string `koanf:"port" validate:"required"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout int    `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"min=1"`

	// ClientURL is the only origin allowed by CORS. Empty disables
	// cross-origin access entirely.
	ClientURL string `koanf:"client_url" validate:"omitempty,url"`

	// BodyLimit is the maximum JSON request body size in bytes.
	BodyLimit int64 `koanf:"body_limit" validate:"min=1"`
}

// DefaultConfig returns the configuration used for every value the
// environment does not set.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{
			Env: "development",
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
			BodyLimit:    DefaultBodyLimit,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Returning "" makes the provider skip every other variable.
	err = k.Load(env.Provider(ClientURLEnv, ".", func(s string) string {
		if s != ClientURLEnv {
			return ""
		}
		return "server.client_url"
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", ClientURLEnv, err)
	}

	// Unmarshal only touches keys that are present, so defaults survive.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is fixed; environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
