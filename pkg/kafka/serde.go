// Package kafka adapts the serialization pipeline to the per-message
// transform shape Kafka clients invoke, and wraps a confluent-kafka-go
// producer for convenience.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde"
)

// ErrInvalidInput is returned when a producer value is not a
// (data, schema) payload.
var ErrInvalidInput = errors.New("value is not a (data, schema) payload")

// Payload pairs a datum with the schema describing it.
type Payload struct {
	Data   any
	Schema *registry.Schema
}

// ValueSerde exposes the pipeline as per-message transform callbacks.
// The topic argument is accepted to fit the transform signature and
// ignored: message identity travels in the framing header.
type ValueSerde struct {
	serializer   serde.Serializer
	deserializer serde.Deserializer
}

// NewValueSerde creates a ValueSerde over the given pipeline.
func NewValueSerde(serializer serde.Serializer, deserializer serde.Deserializer) *ValueSerde {
	return &ValueSerde{
		serializer:   serializer,
		deserializer: deserializer,
	}
}

// Serialize transforms a Payload (or *Payload) into framed bytes.
func (v *ValueSerde) Serialize(ctx context.Context, topic string, value any) ([]byte, error) {
	payload, err := asPayload(value)
	if err != nil {
		return nil, err
	}
	return v.serializer.Serialize(ctx, payload.Data, payload.Schema)
}

// Deserialize transforms framed bytes back into a Payload.
func (v *ValueSerde) Deserialize(ctx context.Context, topic string, data []byte) (Payload, error) {
	datum, schema, err := v.deserializer.Deserialize(ctx, data)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Data: datum, Schema: schema}, nil
}

func asPayload(value any) (Payload, error) {
	var payload Payload
	switch p := value.(type) {
	case Payload:
		payload = p
	case *Payload:
		if p == nil {
			return Payload{}, fmt.Errorf("%w: got nil *Payload", ErrInvalidInput)
		}
		payload = *p
	default:
		return Payload{}, fmt.Errorf("%w: got %T", ErrInvalidInput, value)
	}

	if payload.Schema == nil {
		return Payload{}, fmt.Errorf("%w: payload carries no schema", ErrInvalidInput)
	}
	return payload, nil
}
