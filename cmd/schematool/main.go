// Package main provides the schematool CLI for managing schemas in the
// AWS Glue Schema Registry.
//
// Usage:
//
//	schematool register --registry events --name User --file user.avsc
//	schematool get --id 6f2d3a1c-6f1e-4a3b-9d65-0c1a2b3c4d5e
//
// AWS credentials and region are resolved from the default credential
// chain.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sokol111/schemaregistry-commons/pkg/registry"
	regconfig "github.com/Sokol111/schemaregistry-commons/pkg/registry/config"
	"github.com/Sokol111/schemaregistry-commons/pkg/registry/gateway"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "schematool",
		Short:   "Manage schemas in the AWS Glue Schema Registry",
		Long:    `schematool registers schema definitions and fetches schema versions from the AWS Glue Schema Registry.`,
		Version: version,
	}

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newGetCmd())

	return rootCmd
}

func newRegisterCmd() *cobra.Command {
	var (
		registryName  string
		schemaName    string
		file          string
		format        string
		compatibility string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a schema version from a definition file",
		Long: `Register a schema version from a definition file.

If the schema name does not exist yet it is created with the given
compatibility mode; otherwise a new version is registered against the
existing schema, subject to its compatibility rules.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, registryName, schemaName, file, format, compatibility)
		},
	}

	cmd.Flags().StringVarP(&registryName, "registry", "r", "", "Registry name (required)")
	cmd.Flags().StringVarP(&schemaName, "name", "n", "", "Schema name (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the schema definition file (required)")
	cmd.Flags().StringVar(&format, "format", string(registry.FormatAvro), "Data format: AVRO or JSON")
	cmd.Flags().StringVar(&compatibility, "compatibility", string(registry.CompatibilityBackward), "Compatibility mode applied when creating a new schema")

	_ = cmd.MarkFlagRequired("registry")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newGetCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a schema version by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, id)
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "Schema version id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runRegister(cmd *cobra.Command, registryName, schemaName, file, format, compatibility string) error {
	ctx := cmd.Context()

	definition, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read schema definition: %w", err)
	}

	gw, log, err := newGateway(ctx, registryName)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	v, err := gw.RegisterSchemaVersion(ctx, registryName, schemaName, string(definition))
	if errors.Is(err, registry.ErrSchemaVersionNotFound) {
		v, err = gw.CreateSchema(ctx, registryName, schemaName, string(definition), registry.DataFormat(format), registry.Compatibility(compatibility))
	}
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "registered schema %s version %s (status %s)\n", schemaName, v.ID, v.Status)
	return nil
}

func runGet(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()

	versionID, err := registry.ParseVersionID(id)
	if err != nil {
		return err
	}

	gw, log, err := newGateway(ctx, "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	v, err := gw.GetSchemaVersionByID(ctx, versionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema: %s\nformat: %s\nstatus: %s\ndefinition:\n%s\n", v.SchemaName, v.Format, v.Status, v.Definition)
	return nil
}

func newGateway(ctx context.Context, registryName string) (gateway.Gateway, *zap.Logger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, nil, err
	}

	awsConf, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	conf := regconfig.Config{
		RegistryName:    registryName,
		JitterMs:        100,
		MaxWaitAttempts: 30,
	}

	return gateway.NewGlueGateway(glue.NewFromConfig(awsConf), conf, log), log, nil
}
