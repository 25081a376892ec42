package kafka

import (
	"context"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// BuildMessage runs the serializer and fills a kafka.Message ready to
// hand to a producer.
func (v *ValueSerde) BuildMessage(ctx context.Context, topic string, key []byte, payload Payload) (*ckafka.Message, error) {
	value, err := v.Serialize(ctx, topic, payload)
	if err != nil {
		return nil, err
	}

	return &ckafka.Message{
		TopicPartition: ckafka.TopicPartition{
			Topic:     &topic,
			Partition: ckafka.PartitionAny,
		},
		Key:   key,
		Value: value,
	}, nil
}

// DecodeMessage recovers the payload of a consumed kafka.Message.
func (v *ValueSerde) DecodeMessage(ctx context.Context, message *ckafka.Message) (Payload, error) {
	var topic string
	if message.TopicPartition.Topic != nil {
		topic = *message.TopicPartition.Topic
	}
	return v.Deserialize(ctx, topic, message.Value)
}
