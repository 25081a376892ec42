// Package encoding implements the binary framing that prefixes every
// payload with its registry metadata.
package encoding

import (
	"errors"
	"fmt"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
)

const (
	// HeaderVersionByte is the fixed first byte of every frame.
	HeaderVersionByte byte = 0x03

	// HeaderLen is the fixed frame prefix length:
	// header byte + compression byte + 16-byte schema version id.
	HeaderLen = 18
)

// ErrMalformedData is returned when a frame is too short or its header
// byte does not match.
var ErrMalformedData = errors.New("malformed data")

// Parser parses framed messages.
type Parser interface {
	// Parse extracts the schema version id, compression code and payload.
	// Expected format: [0x03][compression byte][version id (16 bytes)][payload]
	Parse(data []byte) (id registry.VersionID, compressionCode byte, payload []byte, err error)
}

// Builder builds framed messages.
type Builder interface {
	// Build frames a payload with its registry metadata.
	// Returns format: [0x03][compression byte][version id (16 bytes)][payload]
	Build(id registry.VersionID, compressionCode byte, payload []byte) []byte
}

type wireFormat struct{}

// NewWireFormat creates the parser and builder for the framing header.
func NewWireFormat() (Parser, Builder) {
	f := &wireFormat{}
	return f, f
}

func (w *wireFormat) Parse(data []byte) (registry.VersionID, byte, []byte, error) {
	// Validate minimum length
	if len(data) < HeaderLen {
		return registry.NilVersionID, 0, nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrMalformedData, HeaderLen, len(data))
	}

	// Check header byte
	if data[0] != HeaderVersionByte {
		return registry.NilVersionID, 0, nil, fmt.Errorf("%w: invalid header byte: expected 0x%02x, got 0x%02x", ErrMalformedData, HeaderVersionByte, data[0])
	}

	id, err := registry.VersionIDFromBytes(data[2:HeaderLen])
	if err != nil {
		return registry.NilVersionID, 0, nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	return id, data[1], data[HeaderLen:], nil
}

func (w *wireFormat) Build(id registry.VersionID, compressionCode byte, payload []byte) []byte {
	result := make([]byte, HeaderLen+len(payload))
	result[0] = HeaderVersionByte
	result[1] = compressionCode
	copy(result[2:HeaderLen], id.Bytes())
	copy(result[HeaderLen:], payload)
	return result
}
