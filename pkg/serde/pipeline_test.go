package serde

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/cache"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde/compression"
	"github.com/Sokol111/schemaregistry-commons/pkg/serde/encoding"
)

const testVersionIDText = "6f2d3a1c-6f1e-4a3b-9d65-0c1a2b3c4d5e"

const userSchemaJSON = `{"type":"record","name":"User","namespace":"example","fields":[{"name":"name","type":"string"},{"name":"favorite_number","type":"int"}]}`

// fakeCoordinator is an in-memory cache.Coordinator with call counters.
type fakeCoordinator struct {
	id     registry.VersionID
	schema *registry.Schema

	getOrRegisterCalls atomic.Int64
	getByIDCalls       atomic.Int64
}

var _ cache.Coordinator = (*fakeCoordinator)(nil)

func (f *fakeCoordinator) GetOrRegister(_ context.Context, schema *registry.Schema) (registry.VersionID, error) {
	f.getOrRegisterCalls.Add(1)
	f.schema = schema
	return f.id, nil
}

func (f *fakeCoordinator) GetByID(_ context.Context, id registry.VersionID) (*registry.Schema, error) {
	f.getByIDCalls.Add(1)
	if id != f.id {
		return nil, registry.ErrSchemaVersionNotFound
	}
	return f.schema, nil
}

func newFakeCoordinator(t *testing.T) *fakeCoordinator {
	t.Helper()
	id, err := registry.ParseVersionID(testVersionIDText)
	require.NoError(t, err)
	schema, err := registry.NewAvroSchema("User", userSchemaJSON)
	require.NoError(t, err)
	return &fakeCoordinator{id: id, schema: schema}
}

func testConfig(compressionName string) config.Config {
	return config.Config{
		RegistryName:    "events",
		Compression:     compressionName,
		Compatibility:   "BACKWARD",
		JitterMs:        1,
		MaxWaitAttempts: 3,
	}
}

func TestNewSerializer_UnknownCompression(t *testing.T) {
	// Act
	_, err := NewSerializer(newFakeCoordinator(t), compression.NewRegistry(), testConfig("SNAPPY"))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, compression.ErrUnsupportedCompression)
}

func TestSerialize_FramePrefix(t *testing.T) {
	// Arrange
	versions := newFakeCoordinator(t)
	serializer, err := NewSerializer(versions, compression.NewRegistry(), testConfig("NONE"))
	require.NoError(t, err)
	datum := map[string]any{"name": "Jane", "favorite_number": 7}

	// Act
	data, err := serializer.Serialize(context.Background(), datum, versions.schema)

	// Assert: [0x03][0x00][version id][avro payload]
	require.NoError(t, err)
	require.Greater(t, len(data), encoding.HeaderLen)
	assert.Equal(t, byte(0x03), data[0])
	assert.Equal(t, byte(0x00), data[1])
	assert.Equal(t, versions.id.Bytes(), data[2:encoding.HeaderLen])

	raw, err := versions.schema.Encode(datum)
	require.NoError(t, err)
	assert.Equal(t, raw, data[encoding.HeaderLen:])
	assert.EqualValues(t, 1, versions.getOrRegisterCalls.Load())
}

func TestPipeline_RoundTrip(t *testing.T) {
	datum := map[string]any{"name": "Jane", "favorite_number": 7}

	testCases := []struct {
		name            string
		compression     string
		compressionCode byte
	}{
		{"No compression", "NONE", 0x00},
		{"Zlib compression", "ZLIB", 0x05},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			versions := newFakeCoordinator(t)
			compressors := compression.NewRegistry()
			serializer, err := NewSerializer(versions, compressors, testConfig(tc.compression))
			require.NoError(t, err)
			deserializer := NewDeserializer(versions, compressors)

			// Act
			data, err := serializer.Serialize(context.Background(), datum, versions.schema)
			require.NoError(t, err)
			decoded, schema, err := deserializer.Deserialize(context.Background(), data)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tc.compressionCode, data[1])
			assert.Equal(t, datum, decoded)
			assert.True(t, schema.Equivalent(versions.schema))
		})
	}
}

func TestDeserialize_WarmCacheNoExtraLookups(t *testing.T) {
	// Arrange
	versions := newFakeCoordinator(t)
	compressors := compression.NewRegistry()
	deserializer := NewDeserializer(versions, compressors)

	datum := map[string]any{"name": "Jane", "favorite_number": 7}
	raw, err := versions.schema.Encode(datum)
	require.NoError(t, err)
	_, builder := encoding.NewWireFormat()
	data := builder.Build(versions.id, 0x00, raw)

	// Act
	decoded, schema, err := deserializer.Deserialize(context.Background(), data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, datum, decoded)
	assert.True(t, schema.Equivalent(versions.schema))
	assert.EqualValues(t, 1, versions.getByIDCalls.Load())
	assert.EqualValues(t, 0, versions.getOrRegisterCalls.Load())
}

func TestDeserialize_MalformedHeader(t *testing.T) {
	// Arrange
	versions := newFakeCoordinator(t)
	deserializer := NewDeserializer(versions, compression.NewRegistry())

	data := make([]byte, 32)
	data[0] = 0x02

	// Act
	_, _, err := deserializer.Deserialize(context.Background(), data)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, encoding.ErrMalformedData)
}

func TestDeserialize_UnknownCompressionCode(t *testing.T) {
	// Arrange
	versions := newFakeCoordinator(t)
	deserializer := NewDeserializer(versions, compression.NewRegistry())

	raw, err := versions.schema.Encode(map[string]any{"name": "Jane", "favorite_number": 7})
	require.NoError(t, err)
	_, builder := encoding.NewWireFormat()
	data := builder.Build(versions.id, 0x42, raw)

	// Act
	_, _, err = deserializer.Deserialize(context.Background(), data)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, compression.ErrUnsupportedCompression)
}
