package serde

import (
	"go.uber.org/fx"

	"github.com/Sokol111/schemaregistry-commons/pkg/serde/compression"
)

// NewSerdeModule provides the serialization pipeline components for
// dependency injection.
func NewSerdeModule() fx.Option {
	return fx.Module("serde",
		fx.Provide(
			compression.NewRegistry,
			NewSerializer,
			NewDeserializer,
		),
	)
}
