// Package cache implements the in-process schema version cache: a pair
// of coherent maps (definition to version id for producers, version id
// to schema for consumers) backed by single-flight remote lookups with
// optional auto-registration.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/gateway"
)

// Coordinator resolves schemas to version ids and version ids to
// schemas, consulting the registry gateway on cache misses.
//
// Both cache directions are monotonic within the process lifetime: an
// entry, once inserted, is never mutated or evicted. Concurrent misses
// on the same key are coalesced into a single remote call.
type Coordinator interface {
	// GetOrRegister resolves a schema to its version id, registering the
	// schema in the registry if it is unknown and auto-registration is
	// enabled.
	GetOrRegister(ctx context.Context, schema *registry.Schema) (registry.VersionID, error)

	// GetByID resolves a version id to its full schema.
	GetByID(ctx context.Context, id registry.VersionID) (*registry.Schema, error)
}

type definitionKey struct {
	name       string
	definition string
	format     registry.DataFormat
}

type coordinator struct {
	gateway          gateway.Gateway
	registryName     string
	autoRegistration bool
	compatibility    registry.Compatibility
	metadata         map[string]string
	log              *zap.Logger

	mu           sync.RWMutex
	byDefinition map[definitionKey]registry.VersionID
	byID         map[registry.VersionID]*registry.Schema

	flight singleflight.Group
}

// NewCoordinator creates a Coordinator bound to a gateway and a registry name.
func NewCoordinator(gw gateway.Gateway, conf config.Config, log *zap.Logger) Coordinator {
	return &coordinator{
		gateway:          gw,
		registryName:     conf.RegistryName,
		autoRegistration: conf.AutoRegistrationEnabled(),
		compatibility:    registry.Compatibility(conf.Compatibility),
		metadata:         conf.Metadata,
		log:              log,
		byDefinition:     make(map[definitionKey]registry.VersionID),
		byID:             make(map[registry.VersionID]*registry.Schema),
	}
}

func (c *coordinator) GetOrRegister(ctx context.Context, schema *registry.Schema) (registry.VersionID, error) {
	key := definitionKey{name: schema.Name(), definition: schema.Definition(), format: schema.Format()}

	c.mu.RLock()
	id, ok := c.byDefinition[key]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	flightKey := "definition\x00" + schema.Name() + "\x00" + string(schema.Format()) + "\x00" + schema.Definition()
	ch := c.flight.DoChan(flightKey, func() (any, error) {
		return c.resolveOrRegister(ctx, schema)
	})

	select {
	case <-ctx.Done():
		return registry.NilVersionID, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return registry.NilVersionID, res.Err
		}
		return res.Val.(registry.VersionID), nil
	}
}

func (c *coordinator) GetByID(ctx context.Context, id registry.VersionID) (*registry.Schema, error) {
	c.mu.RLock()
	schema, ok := c.byID[id]
	c.mu.RUnlock()
	if ok {
		return schema, nil
	}

	ch := c.flight.DoChan("id\x00"+id.String(), func() (any, error) {
		return c.fetchByID(ctx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*registry.Schema), nil
	}
}

func (c *coordinator) resolveOrRegister(ctx context.Context, schema *registry.Schema) (registry.VersionID, error) {
	version, err := c.gateway.GetSchemaVersionByDefinition(ctx, c.registryName, schema.Name(), schema.Definition(), schema.Format())
	switch {
	case err == nil:
		if !version.Status.Terminal() {
			if version, err = c.gateway.AwaitAvailable(ctx, version.ID); err != nil {
				return registry.NilVersionID, err
			}
		}
		if !version.Available() {
			return registry.NilVersionID, fmt.Errorf("%w: version %s has status %s", registry.ErrSchemaRegistrationFailed, version.ID, version.Status)
		}
		c.store(schema, version.ID)
		return version.ID, nil

	case errors.Is(err, registry.ErrSchemaVersionNotFound):
		if !c.autoRegistration {
			return registry.NilVersionID, fmt.Errorf("%w: schema %s has no registered version and auto-registration is disabled", registry.ErrSchemaNotFound, schema.Name())
		}
		return c.register(ctx, schema)

	default:
		return registry.NilVersionID, err
	}
}

func (c *coordinator) register(ctx context.Context, schema *registry.Schema) (registry.VersionID, error) {
	version, err := c.gateway.RegisterSchemaVersion(ctx, c.registryName, schema.Name(), schema.Definition())
	if errors.Is(err, registry.ErrSchemaVersionNotFound) {
		// Schema name itself is unknown: create it with the declared
		// compatibility mode, falling back to the configured default.
		compatibility := schema.Compatibility()
		if compatibility == "" {
			compatibility = c.compatibility
		}
		version, err = c.gateway.CreateSchema(ctx, c.registryName, schema.Name(), schema.Definition(), schema.Format(), compatibility)
	}
	if err != nil {
		return registry.NilVersionID, err
	}
	if !version.Available() {
		return registry.NilVersionID, fmt.Errorf("%w: version %s has status %s", registry.ErrSchemaRegistrationFailed, version.ID, version.Status)
	}

	c.attachMetadata(ctx, version.ID)
	c.store(schema, version.ID)

	c.log.Info("registered schema version",
		zap.String("registry", c.registryName),
		zap.String("schema", schema.Name()),
		zap.String("versionId", version.ID.String()),
	)
	return version.ID, nil
}

func (c *coordinator) fetchByID(ctx context.Context, id registry.VersionID) (*registry.Schema, error) {
	version, err := c.gateway.GetSchemaVersionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !version.Status.Terminal() {
		if version, err = c.gateway.AwaitAvailable(ctx, id); err != nil {
			return nil, err
		}
	}
	if !version.Available() {
		return nil, fmt.Errorf("%w: version %s has status %s", registry.ErrSchemaRegistrationFailed, id, version.Status)
	}

	schema, err := registry.NewSchema(version.SchemaName, version.Definition, version.Format, version.Compatibility)
	if err != nil {
		return nil, err
	}

	c.store(schema, id)
	return c.lookupByID(id), nil
}

// store inserts into both maps under one lock. First insertion wins so
// repeated lookups always observe the originating entry.
func (c *coordinator) store(schema *registry.Schema, id registry.VersionID) {
	key := definitionKey{name: schema.Name(), definition: schema.Definition(), format: schema.Format()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byDefinition[key]; !ok {
		c.byDefinition[key] = id
	}
	if _, ok := c.byID[id]; !ok {
		c.byID[id] = schema
	}
}

func (c *coordinator) lookupByID(id registry.VersionID) *registry.Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// attachMetadata is best-effort: a failure to tag the new version must
// not fail the registration.
func (c *coordinator) attachMetadata(ctx context.Context, id registry.VersionID) {
	for key, value := range c.metadata {
		if err := c.gateway.PutSchemaVersionMetadata(ctx, id, key, value); err != nil {
			c.log.Warn("failed to attach schema version metadata",
				zap.String("versionId", id.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
