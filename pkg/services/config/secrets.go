package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretSource returns a flat map keyed by deployment env names.
type SecretSource interface {
	Fetch(ctx context.Context, id string) (map[string]string, error)
}

type secretsManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

type secretsManagerSource struct {
	client secretsManagerAPI
}

func NewSecretsManagerSource(ctx context.Context, region string) (SecretSource, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &secretsManagerSource{client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

func (s *secretsManagerSource) Fetch(ctx context.Context, id string) (map[string]string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch tv := v.(type) {
		case string:
			values[k] = tv
		case nil:
		default:
			// Nested objects (a service-account key pasted unescaped) are kept as JSON.
			encoded, err := json.Marshal(tv)
			if err != nil {
				return nil, fmt.Errorf("failed to encode secret field %s: %w", k, err)
			}
			values[k] = string(encoded)
		}
	}
	return values, nil
}
