package modules

import (
	"github.com/Sokol111/schemaregistry-commons/pkg/kafka"
	"github.com/Sokol111/schemaregistry-commons/pkg/logging"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/cache"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/gateway"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde"
	"go.uber.org/fx"
)

// NewSchemaRegistryModule provides the full schema registry
// integration: logging, config, Glue gateway, version cache, serde
// pipeline and the Kafka-facing adapter. The embedding application
// supplies the *viper.Viper instance and the config.Environment.
func NewSchemaRegistryModule() fx.Option {
	return fx.Options(
		logging.ZapLoggingModule,
		config.NewConfigModule(),
		gateway.NewGatewayModule(),
		cache.NewCacheModule(),
		serde.NewSerdeModule(),
		kafka.NewKafkaModule(),
	)
}
