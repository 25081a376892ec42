package config

import "go.uber.org/fx"

// NewConfigModule provides the schema registry configuration for
// dependency injection.
func NewConfigModule() fx.Option {
	return fx.Provide(
		New,
	)
}
