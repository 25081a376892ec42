package kafka

import "go.uber.org/fx"

// NewKafkaModule provides the Kafka-facing serde adapter for dependency
// injection.
func NewKafkaModule() fx.Option {
	return fx.Module("kafka",
		fx.Provide(
			NewValueSerde,
		),
	)
}
