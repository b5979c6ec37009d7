package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var errEmptySecret = errors.New("secret has neither a string nor a binary value")

// Secrets are the credentials that may live in AWS Secrets Manager instead of
// the YAML file. Empty fields leave the configured value untouched.
type Secrets struct {
	PolygonAPIKey    string `json:"polygon_api_key"`
	DatabasePassword string `json:"database_password"`
	AdvisorURL       string `json:"advisor_url"`
}

type secretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// LoadSecretsFromAWS fetches secretName and applies it onto cfg.
func LoadSecretsFromAWS(ctx context.Context, cfg *Config, region string, secretName string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	return applySecrets(ctx, secretsmanager.NewFromConfig(awsCfg), cfg, secretName)
}

func applySecrets(ctx context.Context, client secretGetter, cfg *Config, secretName string) error {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return fmt.Errorf("failed to read secret %s: %w", secretName, err)
	}

	var raw []byte
	switch {
	case out.SecretString != nil:
		raw = []byte(*out.SecretString)
	case out.SecretBinary != nil:
		raw = out.SecretBinary
	default:
		return fmt.Errorf("secret %s: %w", secretName, errEmptySecret)
	}

	var s Secrets
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("failed to parse secret %s: %w", secretName, err)
	}
	s.apply(cfg)
	return nil
}

func (s Secrets) apply(cfg *Config) {
	if s.PolygonAPIKey != "" {
		cfg.DataSource.APIKey = s.PolygonAPIKey
	}
	if s.DatabasePassword != "" {
		cfg.Storage.Database.Password = s.DatabasePassword
	}
	if s.AdvisorURL != "" {
		cfg.Advisor.URL = s.AdvisorURL
	}
}
