package gateway

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"go.uber.org/fx"
)

// NewGatewayModule provides the AWS Glue client and the registry gateway
// for dependency injection.
func NewGatewayModule() fx.Option {
	return fx.Module("registry-gateway",
		fx.Provide(
			provideGlueClient,
			NewGlueGateway,
		),
	)
}

func provideGlueClient() (GlueAPI, error) {
	awsConf, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	return glue.NewFromConfig(awsConf), nil
}
