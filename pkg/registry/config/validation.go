package config

import (
	"fmt"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
)

// validateConfig validates required fields and bounds
func validateConfig(cfg *Config) error {
	if cfg.RegistryName == "" {
		return fmt.Errorf("schema-registry.registry-name is required")
	}

	switch cfg.Compression {
	case "NONE", "ZLIB":
	default:
		return fmt.Errorf("schema-registry.compression must be NONE or ZLIB, got %q", cfg.Compression)
	}

	if !registry.Compatibility(cfg.Compatibility).Valid() {
		return fmt.Errorf("schema-registry.compatibility-mode %q is not a valid compatibility mode", cfg.Compatibility)
	}

	if cfg.JitterMs < minJitterMs || cfg.JitterMs > maxJitterMs {
		return fmt.Errorf("schema-registry.jitter-ms must be between %d and %d, got %d", minJitterMs, maxJitterMs, cfg.JitterMs)
	}

	if cfg.MaxWaitAttempts < minMaxWaitAttempts || cfg.MaxWaitAttempts > maxMaxWaitAttempts {
		return fmt.Errorf("schema-registry.max-wait-attempts must be between %d and %d, got %d", minMaxWaitAttempts, maxMaxWaitAttempts, cfg.MaxWaitAttempts)
	}

	return nil
}
