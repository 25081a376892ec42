package gateway

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
)

const testVersionIDText = "6f2d3a1c-6f1e-4a3b-9d65-0c1a2b3c4d5e"

const testDefinition = `{"type":"record","name":"User","namespace":"example","fields":[{"name":"name","type":"string"}]}`

// fakeGlueAPI implements GlueAPI with overridable behavior per call.
type fakeGlueAPI struct {
	getByDefinition func(*glue.GetSchemaByDefinitionInput) (*glue.GetSchemaByDefinitionOutput, error)
	getVersion      func(*glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error)
	createSchema    func(*glue.CreateSchemaInput) (*glue.CreateSchemaOutput, error)
	registerVersion func(*glue.RegisterSchemaVersionInput) (*glue.RegisterSchemaVersionOutput, error)
	putMetadata     func(*glue.PutSchemaVersionMetadataInput) (*glue.PutSchemaVersionMetadataOutput, error)

	getVersionCalls int
}

func (f *fakeGlueAPI) GetSchemaByDefinition(_ context.Context, params *glue.GetSchemaByDefinitionInput, _ ...func(*glue.Options)) (*glue.GetSchemaByDefinitionOutput, error) {
	return f.getByDefinition(params)
}

func (f *fakeGlueAPI) GetSchemaVersion(_ context.Context, params *glue.GetSchemaVersionInput, _ ...func(*glue.Options)) (*glue.GetSchemaVersionOutput, error) {
	f.getVersionCalls++
	return f.getVersion(params)
}

func (f *fakeGlueAPI) CreateSchema(_ context.Context, params *glue.CreateSchemaInput, _ ...func(*glue.Options)) (*glue.CreateSchemaOutput, error) {
	return f.createSchema(params)
}

func (f *fakeGlueAPI) RegisterSchemaVersion(_ context.Context, params *glue.RegisterSchemaVersionInput, _ ...func(*glue.Options)) (*glue.RegisterSchemaVersionOutput, error) {
	return f.registerVersion(params)
}

func (f *fakeGlueAPI) PutSchemaVersionMetadata(_ context.Context, params *glue.PutSchemaVersionMetadataInput, _ ...func(*glue.Options)) (*glue.PutSchemaVersionMetadataOutput, error) {
	return f.putMetadata(params)
}

func newTestGateway(t *testing.T, client GlueAPI) Gateway {
	t.Helper()
	conf := config.Config{
		RegistryName:    "events",
		JitterMs:        1,
		MaxWaitAttempts: 5,
	}
	return NewGlueGateway(client, conf, zap.NewNop())
}

func TestGetSchemaVersionByDefinition_Success(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		getByDefinition: func(params *glue.GetSchemaByDefinitionInput) (*glue.GetSchemaByDefinitionOutput, error) {
			assert.Equal(t, "events", aws.ToString(params.SchemaId.RegistryName))
			assert.Equal(t, "User", aws.ToString(params.SchemaId.SchemaName))
			assert.Equal(t, testDefinition, aws.ToString(params.SchemaDefinition))
			return &glue.GetSchemaByDefinitionOutput{
				SchemaVersionId: aws.String(testVersionIDText),
				Status:          types.SchemaVersionStatusAvailable,
				DataFormat:      types.DataFormatAvro,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	// Act
	version, err := gw.GetSchemaVersionByDefinition(context.Background(), "events", "User", testDefinition, registry.FormatAvro)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, testVersionIDText, version.ID.String())
	assert.Equal(t, "User", version.SchemaName)
	assert.Equal(t, testDefinition, version.Definition)
	assert.True(t, version.Available())
}

func TestGetSchemaVersionByDefinition_NotFound(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		getByDefinition: func(*glue.GetSchemaByDefinitionInput) (*glue.GetSchemaByDefinitionOutput, error) {
			return nil, &types.EntityNotFoundException{Message: aws.String("Schema is not found")}
		},
	}
	gw := newTestGateway(t, client)

	// Act
	_, err := gw.GetSchemaVersionByDefinition(context.Background(), "events", "User", testDefinition, registry.FormatAvro)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrSchemaVersionNotFound)
}

func TestGetSchemaVersionByID_Success(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		getVersion: func(params *glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error) {
			assert.Equal(t, testVersionIDText, aws.ToString(params.SchemaVersionId))
			return &glue.GetSchemaVersionOutput{
				SchemaVersionId:  aws.String(testVersionIDText),
				SchemaDefinition: aws.String(testDefinition),
				SchemaArn:        aws.String("arn:aws:glue:us-east-1:123456789012:schema/events/User"),
				DataFormat:       types.DataFormatAvro,
				Status:           types.SchemaVersionStatusAvailable,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	// Act
	id, err := registry.ParseVersionID(testVersionIDText)
	require.NoError(t, err)
	version, err := gw.GetSchemaVersionByID(context.Background(), id)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "User", version.SchemaName)
	assert.Equal(t, testDefinition, version.Definition)
	assert.Equal(t, registry.FormatAvro, version.Format)
}

func TestCreateSchema_PendingThenAvailable(t *testing.T) {
	// Arrange: the version stays PENDING for two polls, then flips
	client := &fakeGlueAPI{
		createSchema: func(params *glue.CreateSchemaInput) (*glue.CreateSchemaOutput, error) {
			assert.Equal(t, types.CompatibilityBackward, params.Compatibility)
			return &glue.CreateSchemaOutput{
				SchemaVersionId:     aws.String(testVersionIDText),
				SchemaVersionStatus: types.SchemaVersionStatusPending,
			}, nil
		},
	}
	client.getVersion = func(*glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error) {
		status := types.SchemaVersionStatusPending
		if client.getVersionCalls > 2 {
			status = types.SchemaVersionStatusAvailable
		}
		return &glue.GetSchemaVersionOutput{
			SchemaVersionId:  aws.String(testVersionIDText),
			SchemaDefinition: aws.String(testDefinition),
			SchemaArn:        aws.String("arn:aws:glue:us-east-1:123456789012:schema/events/User"),
			DataFormat:       types.DataFormatAvro,
			Status:           status,
		}, nil
	}
	gw := newTestGateway(t, client)

	// Act
	version, err := gw.CreateSchema(context.Background(), "events", "User", testDefinition, registry.FormatAvro, registry.CompatibilityBackward)

	// Assert
	require.NoError(t, err)
	assert.True(t, version.Available())
	assert.Equal(t, 3, client.getVersionCalls)
}

func TestCreateSchema_ImmediateFailureStatus(t *testing.T) {
	// Arrange: the response carries FAILURE without passing through PENDING
	client := &fakeGlueAPI{
		createSchema: func(*glue.CreateSchemaInput) (*glue.CreateSchemaOutput, error) {
			return &glue.CreateSchemaOutput{
				SchemaVersionId:     aws.String(testVersionIDText),
				SchemaVersionStatus: types.SchemaVersionStatusFailure,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	// Act
	_, err := gw.CreateSchema(context.Background(), "events", "User", testDefinition, registry.FormatAvro, registry.CompatibilityBackward)

	// Assert: no success, no polling
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrSchemaRegistrationFailed)
	assert.Equal(t, 0, client.getVersionCalls)
}

func TestCreateSchema_AlreadyExists(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		createSchema: func(*glue.CreateSchemaInput) (*glue.CreateSchemaOutput, error) {
			return nil, &types.AlreadyExistsException{Message: aws.String("Schema already exists")}
		},
	}
	gw := newTestGateway(t, client)

	// Act
	_, err := gw.CreateSchema(context.Background(), "events", "User", testDefinition, registry.FormatAvro, registry.CompatibilityBackward)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrSchemaAlreadyExists)
}

func TestRegisterSchemaVersion_IncompatibleOnFailureStatus(t *testing.T) {
	// Arrange: registration is accepted but the evolution check fails
	client := &fakeGlueAPI{
		registerVersion: func(*glue.RegisterSchemaVersionInput) (*glue.RegisterSchemaVersionOutput, error) {
			return &glue.RegisterSchemaVersionOutput{
				SchemaVersionId: aws.String(testVersionIDText),
				Status:          types.SchemaVersionStatusPending,
			}, nil
		},
		getVersion: func(*glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error) {
			return &glue.GetSchemaVersionOutput{
				SchemaVersionId:  aws.String(testVersionIDText),
				SchemaArn:        aws.String("arn:aws:glue:us-east-1:123456789012:schema/events/User"),
				SchemaDefinition: aws.String(testDefinition),
				DataFormat:       types.DataFormatAvro,
				Status:           types.SchemaVersionStatusFailure,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	// Act
	_, err := gw.RegisterSchemaVersion(context.Background(), "events", "User", testDefinition)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrIncompatibleSchema)
}

func TestRegisterSchemaVersion_IncompatibleOnInvalidInput(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		registerVersion: func(*glue.RegisterSchemaVersionInput) (*glue.RegisterSchemaVersionOutput, error) {
			return nil, &types.InvalidInputException{Message: aws.String("Incompatible schema")}
		},
	}
	gw := newTestGateway(t, client)

	// Act
	_, err := gw.RegisterSchemaVersion(context.Background(), "events", "User", testDefinition)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrIncompatibleSchema)
}

func TestRegisterSchemaVersion_UnknownSchemaName(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		registerVersion: func(*glue.RegisterSchemaVersionInput) (*glue.RegisterSchemaVersionOutput, error) {
			return nil, &types.EntityNotFoundException{Message: aws.String("Schema is not found")}
		},
	}
	gw := newTestGateway(t, client)

	// Act
	_, err := gw.RegisterSchemaVersion(context.Background(), "events", "User", testDefinition)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrSchemaVersionNotFound)
}

func TestAwaitAvailable_WaitExhausted(t *testing.T) {
	// Arrange: version never leaves PENDING
	client := &fakeGlueAPI{
		getVersion: func(*glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error) {
			return &glue.GetSchemaVersionOutput{
				SchemaVersionId: aws.String(testVersionIDText),
				SchemaArn:       aws.String("arn:aws:glue:us-east-1:123456789012:schema/events/User"),
				DataFormat:      types.DataFormatAvro,
				Status:          types.SchemaVersionStatusPending,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	// Act
	id, err := registry.ParseVersionID(testVersionIDText)
	require.NoError(t, err)
	_, err = gw.AwaitAvailable(context.Background(), id)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrWaitExhausted)
	// one poll per configured attempt
	assert.Equal(t, 5, client.getVersionCalls)
}

func TestAwaitAvailable_DeletingSurfacesAsRegistrationFailed(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		getVersion: func(*glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error) {
			return &glue.GetSchemaVersionOutput{
				SchemaVersionId: aws.String(testVersionIDText),
				SchemaArn:       aws.String("arn:aws:glue:us-east-1:123456789012:schema/events/User"),
				DataFormat:      types.DataFormatAvro,
				Status:          types.SchemaVersionStatusDeleting,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	// Act
	id, err := registry.ParseVersionID(testVersionIDText)
	require.NoError(t, err)
	_, err = gw.AwaitAvailable(context.Background(), id)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrSchemaRegistrationFailed)
}

func TestAwaitAvailable_ContextCancelled(t *testing.T) {
	// Arrange
	client := &fakeGlueAPI{
		getVersion: func(*glue.GetSchemaVersionInput) (*glue.GetSchemaVersionOutput, error) {
			return &glue.GetSchemaVersionOutput{
				SchemaVersionId: aws.String(testVersionIDText),
				SchemaArn:       aws.String("arn:aws:glue:us-east-1:123456789012:schema/events/User"),
				DataFormat:      types.DataFormatAvro,
				Status:          types.SchemaVersionStatusPending,
			}, nil
		},
	}
	gw := newTestGateway(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	id, err := registry.ParseVersionID(testVersionIDText)
	require.NoError(t, err)
	_, err = gw.AwaitAvailable(ctx, id)

	// Assert
	require.Error(t, err)
}
