package registry

import (
	"fmt"

	"github.com/google/uuid"
)

// VersionID is the registry-assigned schema version identifier: an
// opaque 16-byte token in the standard UUID 4-2-2-2-6 byte layout.
type VersionID uuid.UUID

// NilVersionID is the zero VersionID.
var NilVersionID VersionID

// ParseVersionID parses the canonical textual form returned by the registry.
func ParseVersionID(s string) (VersionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilVersionID, fmt.Errorf("failed to parse schema version id %q: %w", s, err)
	}
	return VersionID(id), nil
}

// VersionIDFromBytes reconstructs a VersionID from its 16 raw bytes,
// as carried in the framing header.
func VersionIDFromBytes(b []byte) (VersionID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return NilVersionID, fmt.Errorf("failed to read schema version id: %w", err)
	}
	return VersionID(id), nil
}

// String returns the canonical textual form.
func (id VersionID) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16 bytes in big-endian 4-2-2-2-6 order.
func (id VersionID) Bytes() []byte {
	b := uuid.UUID(id)
	return b[:]
}

// IsNil reports whether the id is the zero value.
func (id VersionID) IsNil() bool {
	return id == NilVersionID
}
