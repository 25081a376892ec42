// Package serde composes schema resolution, Avro encoding, optional
// compression and framing into producer and consumer pipelines.
// Pipelines are stateless beyond their cache reference and are safe to
// share across any number of concurrent operations.
package serde

import (
	"context"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
)

// Serializer turns a (datum, schema) pair into framed bytes.
type Serializer interface {
	// Serialize resolves the schema to its registry version id, encodes
	// the datum, applies the configured compression and frames the result.
	Serialize(ctx context.Context, datum any, schema *registry.Schema) ([]byte, error)
}

// Deserializer recovers the datum and its writer schema from framed bytes.
type Deserializer interface {
	// Deserialize parses the frame, resolves the writer schema by its
	// version id, decompresses and decodes the payload.
	Deserialize(ctx context.Context, data []byte) (any, *registry.Schema, error)
}
