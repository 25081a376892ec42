// Package config defines the schema registry configuration bundle,
// loaded from the "schema-registry" viper sub-tree.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	// Default values
	defaultCompression     = "NONE"
	defaultCompatibility   = "BACKWARD"
	defaultJitterMs        = 100
	defaultMaxWaitAttempts = 30

	// Validation bounds
	minJitterMs        = 1
	maxJitterMs        = 60000
	minMaxWaitAttempts = 1
	maxMaxWaitAttempts = 1000
)

// Config represents the schema registry client configuration
type Config struct {
	RegistryName     string            `mapstructure:"registry-name"`             // Registry scope for all operations (required)
	AutoRegistration *bool             `mapstructure:"schema-auto-registration"`  // Allow creating/registering missing schemas (default true)
	Compression      string            `mapstructure:"compression"`               // Producer-side compression: "NONE" or "ZLIB" (default NONE)
	Compatibility    string            `mapstructure:"compatibility-mode"`        // Compatibility mode applied when creating a new schema name (default BACKWARD)
	Metadata         map[string]string `mapstructure:"metadata"`                  // Key/value metadata attached to auto-registered versions
	JitterMs         int               `mapstructure:"jitter-ms"`                 // Interval between status polling attempts in milliseconds (1-60000, default 100)
	MaxWaitAttempts  int               `mapstructure:"max-wait-attempts"`         // Maximum status polling attempts (1-1000, default 30)
}

// AutoRegistrationEnabled reports whether missing schemas may be
// created or registered on the producer path.
func (c Config) AutoRegistrationEnabled() bool {
	return c.AutoRegistration == nil || *c.AutoRegistration
}

// WaitInterval returns the polling cadence as a duration.
func (c Config) WaitInterval() time.Duration {
	return time.Duration(c.JitterMs) * time.Millisecond
}

// New loads, defaults and validates the configuration from the
// "schema-registry" sub-tree of the given viper instance.
func New(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("schema-registry"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load schema registry config: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
