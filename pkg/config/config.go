// Package config provides file-based configuration loading and the
// deployment environment tag used to pick logger presets.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment names the deployment environment.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
)

// LoadConfig reads a configuration file into T, with environment
// variable overrides.
func LoadConfig[T any](configFile string) (*T, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file [%s] does not exist: %w", configFile, err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}
	var conf T
	if err := v.UnmarshalExact(&conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file [%s] to type [%T]: %w", configFile, conf, err)
	}
	return &conf, nil
}

// NewViper creates a viper instance bound to the given file (optional)
// with environment variable overrides, for fx consumers.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return v, nil
	}

	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}
	return v, nil
}
