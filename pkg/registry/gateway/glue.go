// Package gateway provides a typed facade over the AWS Glue Schema
// Registry API. It is the only layer that performs remote I/O, and its
// status polling loop is the only place the library sleeps.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
)

// GlueAPI is the subset of the AWS Glue client consumed by the gateway.
type GlueAPI interface {
	GetSchemaByDefinition(ctx context.Context, params *glue.GetSchemaByDefinitionInput, optFns ...func(*glue.Options)) (*glue.GetSchemaByDefinitionOutput, error)
	GetSchemaVersion(ctx context.Context, params *glue.GetSchemaVersionInput, optFns ...func(*glue.Options)) (*glue.GetSchemaVersionOutput, error)
	CreateSchema(ctx context.Context, params *glue.CreateSchemaInput, optFns ...func(*glue.Options)) (*glue.CreateSchemaOutput, error)
	RegisterSchemaVersion(ctx context.Context, params *glue.RegisterSchemaVersionInput, optFns ...func(*glue.Options)) (*glue.RegisterSchemaVersionOutput, error)
	PutSchemaVersionMetadata(ctx context.Context, params *glue.PutSchemaVersionMetadataInput, optFns ...func(*glue.Options)) (*glue.PutSchemaVersionMetadataOutput, error)
}

// Gateway exposes the registry operations needed by the schema version
// cache. All operations honor the caller's context.
type Gateway interface {
	// GetSchemaVersionByDefinition looks up the version matching the exact
	// definition text under the given schema name.
	GetSchemaVersionByDefinition(ctx context.Context, registryName, schemaName, definition string, format registry.DataFormat) (*registry.Version, error)

	// GetSchemaVersionByID fetches a version by its identifier.
	GetSchemaVersionByID(ctx context.Context, id registry.VersionID) (*registry.Version, error)

	// CreateSchema creates a new schema name with its first version and
	// waits for the version to leave the PENDING state.
	CreateSchema(ctx context.Context, registryName, schemaName, definition string, format registry.DataFormat, compatibility registry.Compatibility) (*registry.Version, error)

	// RegisterSchemaVersion registers a new version under an existing
	// schema name and waits for it to leave the PENDING state. The
	// registry rejects versions that violate the schema's compatibility
	// mode; this surfaces as registry.ErrIncompatibleSchema.
	RegisterSchemaVersion(ctx context.Context, registryName, schemaName, definition string) (*registry.Version, error)

	// PutSchemaVersionMetadata attaches a key/value pair to a version.
	PutSchemaVersionMetadata(ctx context.Context, id registry.VersionID, key, value string) error

	// AwaitAvailable polls a version until its status is terminal.
	AwaitAvailable(ctx context.Context, id registry.VersionID) (*registry.Version, error)
}

type glueGateway struct {
	client       GlueAPI
	waitInterval time.Duration
	maxAttempts  int
	log          *zap.Logger
}

// NewGlueGateway creates a Gateway backed by the AWS Glue client.
func NewGlueGateway(client GlueAPI, conf config.Config, log *zap.Logger) Gateway {
	return &glueGateway{
		client:       client,
		waitInterval: conf.WaitInterval(),
		maxAttempts:  conf.MaxWaitAttempts,
		log:          log,
	}
}

func (g *glueGateway) GetSchemaVersionByDefinition(ctx context.Context, registryName, schemaName, definition string, format registry.DataFormat) (*registry.Version, error) {
	out, err := g.client.GetSchemaByDefinition(ctx, &glue.GetSchemaByDefinitionInput{
		SchemaId: &types.SchemaId{
			RegistryName: aws.String(registryName),
			SchemaName:   aws.String(schemaName),
		},
		SchemaDefinition: aws.String(definition),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: no version matching definition of schema %s", registry.ErrSchemaVersionNotFound, schemaName)
		}
		return nil, fmt.Errorf("failed to get schema version by definition for %s: %w", schemaName, err)
	}

	id, err := registry.ParseVersionID(aws.ToString(out.SchemaVersionId))
	if err != nil {
		return nil, err
	}

	return &registry.Version{
		ID:         id,
		SchemaName: schemaName,
		Definition: definition,
		Format:     format,
		Status:     registry.VersionStatus(out.Status),
	}, nil
}

func (g *glueGateway) GetSchemaVersionByID(ctx context.Context, id registry.VersionID) (*registry.Version, error) {
	out, err := g.client.GetSchemaVersion(ctx, &glue.GetSchemaVersionInput{
		SchemaVersionId: aws.String(id.String()),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %s", registry.ErrSchemaVersionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get schema version %s: %w", id, err)
	}

	return &registry.Version{
		ID:         id,
		SchemaName: schemaNameFromARN(aws.ToString(out.SchemaArn)),
		Definition: aws.ToString(out.SchemaDefinition),
		Format:     registry.DataFormat(out.DataFormat),
		Status:     registry.VersionStatus(out.Status),
	}, nil
}

func (g *glueGateway) CreateSchema(ctx context.Context, registryName, schemaName, definition string, format registry.DataFormat, compatibility registry.Compatibility) (*registry.Version, error) {
	out, err := g.client.CreateSchema(ctx, &glue.CreateSchemaInput{
		RegistryId: &types.RegistryId{
			RegistryName: aws.String(registryName),
		},
		SchemaName:       aws.String(schemaName),
		DataFormat:       types.DataFormat(format),
		Compatibility:    types.Compatibility(compatibility),
		SchemaDefinition: aws.String(definition),
	})
	if err != nil {
		var alreadyExists *types.AlreadyExistsException
		if errors.As(err, &alreadyExists) {
			return nil, fmt.Errorf("%w: schema %s", registry.ErrSchemaAlreadyExists, schemaName)
		}
		return nil, fmt.Errorf("failed to create schema %s: %w", schemaName, err)
	}

	id, err := registry.ParseVersionID(aws.ToString(out.SchemaVersionId))
	if err != nil {
		return nil, err
	}

	g.log.Info("created schema",
		zap.String("registry", registryName),
		zap.String("schema", schemaName),
		zap.String("versionId", id.String()),
	)

	status := registry.VersionStatus(out.SchemaVersionStatus)
	if status == registry.StatusPending {
		return g.AwaitAvailable(ctx, id)
	}

	if status != registry.StatusAvailable {
		return nil, fmt.Errorf("%w: version %s created with status %s", registry.ErrSchemaRegistrationFailed, id, status)
	}

	return &registry.Version{
		ID:            id,
		SchemaName:    schemaName,
		Definition:    definition,
		Format:        format,
		Compatibility: compatibility,
		Status:        status,
	}, nil
}

func (g *glueGateway) RegisterSchemaVersion(ctx context.Context, registryName, schemaName, definition string) (*registry.Version, error) {
	out, err := g.client.RegisterSchemaVersion(ctx, &glue.RegisterSchemaVersionInput{
		SchemaId: &types.SchemaId{
			RegistryName: aws.String(registryName),
			SchemaName:   aws.String(schemaName),
		},
		SchemaDefinition: aws.String(definition),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: schema %s", registry.ErrSchemaVersionNotFound, schemaName)
		}
		var invalidInput *types.InvalidInputException
		if errors.As(err, &invalidInput) {
			return nil, fmt.Errorf("%w: registry rejected new version for schema %s: %s", registry.ErrIncompatibleSchema, schemaName, aws.ToString(invalidInput.Message))
		}
		return nil, fmt.Errorf("failed to register schema version for %s: %w", schemaName, err)
	}

	id, err := registry.ParseVersionID(aws.ToString(out.SchemaVersionId))
	if err != nil {
		return nil, err
	}

	status := registry.VersionStatus(out.Status)
	if status == registry.StatusPending {
		version, err := g.AwaitAvailable(ctx, id)
		if err != nil {
			// The evolution check runs asynchronously; a rejected version
			// converges on FAILURE.
			if errors.Is(err, registry.ErrSchemaRegistrationFailed) {
				return nil, fmt.Errorf("%w: registry rejected new version for schema %s", registry.ErrIncompatibleSchema, schemaName)
			}
			return nil, err
		}
		return version, nil
	}

	if status == registry.StatusFailure {
		return nil, fmt.Errorf("%w: registry rejected new version for schema %s", registry.ErrIncompatibleSchema, schemaName)
	}

	return &registry.Version{
		ID:         id,
		SchemaName: schemaName,
		Definition: definition,
		Status:     status,
	}, nil
}

func (g *glueGateway) PutSchemaVersionMetadata(ctx context.Context, id registry.VersionID, key, value string) error {
	_, err := g.client.PutSchemaVersionMetadata(ctx, &glue.PutSchemaVersionMetadataInput{
		SchemaVersionId: aws.String(id.String()),
		MetadataKeyValue: &types.MetadataKeyValuePair{
			MetadataKey:   aws.String(key),
			MetadataValue: aws.String(value),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put metadata %s on version %s: %w", key, id, err)
	}
	return nil
}

// errStillPending drives the retry loop; it never escapes AwaitAvailable.
var errStillPending = errors.New("schema version still pending")

func (g *glueGateway) AwaitAvailable(ctx context.Context, id registry.VersionID) (*registry.Version, error) {
	var version *registry.Version

	operation := func() error {
		v, err := g.GetSchemaVersionByID(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !v.Status.Terminal() {
			g.log.Debug("schema version pending", zap.String("versionId", id.String()))
			return errStillPending
		}
		version = v
		return nil
	}

	// The first poll is an attempt too, so maxAttempts polls need one
	// fewer retry.
	retries := 0
	if g.maxAttempts > 1 {
		retries = g.maxAttempts - 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.waitInterval), uint64(retries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, errStillPending) {
			return nil, fmt.Errorf("%w: version %s still pending after %d attempts", registry.ErrWaitExhausted, id, g.maxAttempts)
		}
		return nil, err
	}

	if !version.Available() {
		return nil, fmt.Errorf("%w: version %s converged on status %s", registry.ErrSchemaRegistrationFailed, id, version.Status)
	}
	return version, nil
}

func isNotFound(err error) bool {
	var notFound *types.EntityNotFoundException
	return errors.As(err, &notFound)
}

// schemaNameFromARN extracts the schema name from an ARN of the form
// arn:aws:glue:<region>:<account>:schema/<registry>/<name>.
func schemaNameFromARN(arn string) string {
	if arn == "" {
		return ""
	}
	parts := strings.Split(arn, "/")
	return parts[len(parts)-1]
}
