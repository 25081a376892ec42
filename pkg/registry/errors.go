package registry

import "errors"

var (
	// ErrUnsupportedFormat is returned when a schema carries a data format
	// without a codec (only AVRO is implemented).
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// ErrSchemaNotFound is returned when the registry has no matching
	// version and auto-registration is disabled.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrSchemaVersionNotFound is returned when the registry has no
	// version matching the requested id or definition.
	ErrSchemaVersionNotFound = errors.New("schema version not found")

	// ErrSchemaAlreadyExists is returned when creating a schema name that
	// is already present in the registry.
	ErrSchemaAlreadyExists = errors.New("schema already exists")

	// ErrIncompatibleSchema is returned when the registry rejects a new
	// version against the schema's compatibility mode.
	ErrIncompatibleSchema = errors.New("incompatible schema evolution")

	// ErrSchemaRegistrationFailed is returned when a version converges on
	// a terminal non-available status.
	ErrSchemaRegistrationFailed = errors.New("schema registration failed")

	// ErrWaitExhausted is returned when a version is still pending after
	// the configured polling budget.
	ErrWaitExhausted = errors.New("timed out waiting for schema version")
)
