package config

import "github.com/samber/lo"

// applyDefaults applies default values to the configuration
func applyDefaults(cfg *Config) {
	if cfg.AutoRegistration == nil {
		cfg.AutoRegistration = lo.ToPtr(true)
	}
	if cfg.Compression == "" {
		cfg.Compression = defaultCompression
	}
	if cfg.Compatibility == "" {
		cfg.Compatibility = defaultCompatibility
	}
	if cfg.JitterMs == 0 {
		cfg.JitterMs = defaultJitterMs
	}
	if cfg.MaxWaitAttempts == 0 {
		cfg.MaxWaitAttempts = defaultMaxWaitAttempts
	}
}
