package kafka

import (
	"fmt"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// Producer is a thin wrapper around the confluent producer.
type Producer interface {
	Produce(message *ckafka.Message, deliveryChan chan ckafka.Event) error
	Close()
}

type producer struct {
	producer *ckafka.Producer
	log      *zap.Logger
}

// NewProducer creates a Producer connected to the given brokers.
func NewProducer(brokers string, log *zap.Logger) (Producer, error) {
	p, err := ckafka.NewProducer(&ckafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &producer{producer: p, log: log}, nil
}

func (p *producer) Produce(message *ckafka.Message, deliveryChan chan ckafka.Event) error {
	err := p.producer.Produce(message, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", message.TopicPartition, err)
	}
	return nil
}

func (p *producer) Close() {
	p.producer.Close()
}
