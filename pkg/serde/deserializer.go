package serde

import (
	"context"
	"fmt"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/cache"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde/compression"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde/encoding"
)

// Verify at compile time that pipelineDeserializer implements Deserializer.
var _ Deserializer = (*pipelineDeserializer)(nil)

type pipelineDeserializer struct {
	versions    cache.Coordinator
	compressors *compression.Registry
	parser      encoding.Parser
}

// NewDeserializer creates a Deserializer. The compression algorithm is
// chosen per message from the wire code in the frame.
func NewDeserializer(versions cache.Coordinator, compressors *compression.Registry) Deserializer {
	parser, _ := encoding.NewWireFormat()
	return &pipelineDeserializer{
		versions:    versions,
		compressors: compressors,
		parser:      parser,
	}
}

func (d *pipelineDeserializer) Deserialize(ctx context.Context, data []byte) (any, *registry.Schema, error) {
	id, code, payload, err := d.parser.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	schema, err := d.versions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve schema for version %s: %w", id, err)
	}

	compressor, err := d.compressors.ForCode(code)
	if err != nil {
		return nil, nil, err
	}

	raw, err := compressor.Decompress(payload)
	if err != nil {
		return nil, nil, err
	}

	datum, err := schema.Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	return datum, schema, nil
}
