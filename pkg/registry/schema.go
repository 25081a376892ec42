// Package registry defines the schema model shared by the serialization
// pipeline and the AWS Glue Schema Registry integration: schema values,
// version identifiers, data formats and the error kinds surfaced to callers.
package registry

import (
	"fmt"
	"sync"

	hambavro "github.com/hamba/avro/v2"
)

// Schema is an immutable schema value: a named, canonical definition in
// one of the supported data formats. The Avro definition is parsed
// lazily and the parsed form is cached for reuse across messages.
//
// Two schemas are equivalent iff their (format, name, definition)
// triples match exactly. No semantic normalization is performed on the
// definition text.
type Schema struct {
	name          string
	definition    string
	format        DataFormat
	compatibility Compatibility

	parseOnce sync.Once
	parsed    hambavro.Schema
	parseErr  error
}

// NewSchema creates a schema value. The compatibility mode may be empty,
// in which case the coordinator applies the configured default when the
// schema is first created in the registry.
func NewSchema(name, definition string, format DataFormat, compatibility Compatibility) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name must not be empty")
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if compatibility != "" && !compatibility.Valid() {
		return nil, fmt.Errorf("invalid compatibility mode %q", compatibility)
	}
	return &Schema{
		name:          name,
		definition:    definition,
		format:        format,
		compatibility: compatibility,
	}, nil
}

// NewAvroSchema creates an Avro schema value with no explicit
// compatibility mode.
func NewAvroSchema(name, definition string) (*Schema, error) {
	return NewSchema(name, definition, FormatAvro, "")
}

// Name returns the schema name within the registry.
func (s *Schema) Name() string { return s.name }

// Definition returns the canonical definition text.
func (s *Schema) Definition() string { return s.definition }

// Format returns the data format tag.
func (s *Schema) Format() DataFormat { return s.format }

// Compatibility returns the declared compatibility mode, which may be empty.
func (s *Schema) Compatibility() Compatibility { return s.compatibility }

// Equivalent reports whether both schemas carry the same
// (format, name, definition) triple.
func (s *Schema) Equivalent(other *Schema) bool {
	if other == nil {
		return false
	}
	return s.format == other.format && s.name == other.name && s.definition == other.definition
}

// Encode serializes a datum under this schema. The datum may be any
// value hamba/avro can marshal under the definition: a struct with avro
// tags or a generic map[string]any tree.
func (s *Schema) Encode(datum any) ([]byte, error) {
	parsed, err := s.avroSchema()
	if err != nil {
		return nil, err
	}
	data, err := hambavro.Marshal(parsed, datum)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal avro data for schema %s: %w", s.name, err)
	}
	return data, nil
}

// Decode deserializes raw bytes written under this schema into a
// generic value tree (records become map[string]any).
func (s *Schema) Decode(data []byte) (any, error) {
	parsed, err := s.avroSchema()
	if err != nil {
		return nil, err
	}
	var datum any
	if err := hambavro.Unmarshal(parsed, data, &datum); err != nil {
		return nil, fmt.Errorf("failed to unmarshal avro data for schema %s: %w", s.name, err)
	}
	return datum, nil
}

// DecodeInto deserializes raw bytes written under this schema into the
// given target, using this schema as the writer schema. Reader-schema
// projection, if needed, is the caller's concern.
func (s *Schema) DecodeInto(data []byte, target any) error {
	parsed, err := s.avroSchema()
	if err != nil {
		return err
	}
	if err := hambavro.Unmarshal(parsed, data, target); err != nil {
		return fmt.Errorf("failed to unmarshal avro data for schema %s: %w", s.name, err)
	}
	return nil
}

func (s *Schema) avroSchema() (hambavro.Schema, error) {
	if s.format != FormatAvro {
		return nil, fmt.Errorf("%w: no codec for format %q", ErrUnsupportedFormat, s.format)
	}
	s.parseOnce.Do(func() {
		parsed, err := hambavro.Parse(s.definition)
		if err != nil {
			s.parseErr = fmt.Errorf("failed to parse avro schema %s: %w", s.name, err)
			return
		}
		s.parsed = parsed
	})
	return s.parsed, s.parseErr
}
