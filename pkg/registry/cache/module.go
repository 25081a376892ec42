package cache

import "go.uber.org/fx"

// NewCacheModule provides the schema version cache for dependency injection.
func NewCacheModule() fx.Option {
	return fx.Module("registry-cache",
		fx.Provide(
			NewCoordinator,
		),
	)
}
