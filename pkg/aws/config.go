package aws

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/frahmantamala/attendance-engine/internal"
)

// NewAWSConfig loads the SDK configuration. A configured endpoint routes
// every call to it with static test credentials, as used with LocalStack.
func NewAWSConfig(ctx context.Context, cfg internal.EventsConfig, logger *slog.Logger) (aws.Config, error) {
	if cfg.Endpoint != "" {
		logger.Info("routing AWS calls to custom endpoint", "endpoint", cfg.Endpoint)
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           cfg.Endpoint,
				SigningRegion: region,
				PartitionID:   "aws",
			}, nil
		})

		return awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(cfg.Region),
			awsConfig.WithEndpointResolverWithOptions(customResolver),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}

	return awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
}
