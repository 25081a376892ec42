package serde

import (
	"context"
	"fmt"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/cache"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde/compression"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde/encoding"
)

// Verify at compile time that pipelineSerializer implements Serializer.
var _ Serializer = (*pipelineSerializer)(nil)

type pipelineSerializer struct {
	versions   cache.Coordinator
	compressor compression.Compressor
	builder    encoding.Builder
}

// NewSerializer creates a Serializer with the compression algorithm
// selected by the configuration.
func NewSerializer(versions cache.Coordinator, compressors *compression.Registry, conf config.Config) (Serializer, error) {
	compressor, err := compressors.ForName(conf.Compression)
	if err != nil {
		return nil, err
	}

	_, builder := encoding.NewWireFormat()
	return &pipelineSerializer{
		versions:   versions,
		compressor: compressor,
		builder:    builder,
	}, nil
}

func (s *pipelineSerializer) Serialize(ctx context.Context, datum any, schema *registry.Schema) ([]byte, error) {
	id, err := s.versions.GetOrRegister(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve version for schema %s: %w", schema.Name(), err)
	}

	raw, err := schema.Encode(datum)
	if err != nil {
		return nil, err
	}

	payload, err := s.compressor.Compress(raw)
	if err != nil {
		return nil, err
	}

	return s.builder.Build(id, s.compressor.Code(), payload), nil
}
