// Package compression provides the named payload compression algorithms
// addressable by the single-byte wire code carried in the framing header.
package compression

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// CodeNone is the wire code for uncompressed payloads.
	CodeNone byte = 0x00

	// CodeZlib is the wire code for zlib-compressed payloads.
	CodeZlib byte = 0x05
)

// ErrUnsupportedCompression is returned when a wire code has no
// registered algorithm.
var ErrUnsupportedCompression = errors.New("unsupported compression code")

// Compressor is a named compression strategy with a stable wire code.
// Compress and Decompress must be symmetric.
type Compressor interface {
	Name() string
	Code() byte
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Registry maps wire codes to compression algorithms. The built-in
// algorithms (NONE, ZLIB) are always present; additional algorithms can
// be registered without touching the wire codec.
type Registry struct {
	mu     sync.RWMutex
	byCode map[byte]Compressor
	byName map[string]Compressor
}

// NewRegistry creates a registry pre-populated with the built-in algorithms.
func NewRegistry() *Registry {
	r := &Registry{
		byCode: make(map[byte]Compressor),
		byName: make(map[string]Compressor),
	}
	// Built-ins cannot collide, ignore the error
	_ = r.Register(noneCompressor{})
	_ = r.Register(zlibCompressor{})
	return r
}

// Register adds a user-supplied algorithm. Wire codes and names must be
// unique within the registry.
func (r *Registry) Register(c Compressor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byCode[c.Code()]; ok {
		return fmt.Errorf("compression code 0x%02x already registered as %s", c.Code(), existing.Name())
	}
	if _, ok := r.byName[c.Name()]; ok {
		return fmt.Errorf("compression name %s already registered", c.Name())
	}

	r.byCode[c.Code()] = c
	r.byName[c.Name()] = c
	return nil
}

// ForCode returns the algorithm registered under the given wire code.
func (r *Registry) ForCode(code byte) (Compressor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedCompression, code)
	}
	return c, nil
}

// ForName returns the algorithm registered under the given name.
func (r *Registry) ForName(name string) (Compressor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
	return c, nil
}
