// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/goccy/go-json"
)

// DefaultSecretKey is the JSON key holding the connection string.
const DefaultSecretKey = "lambda_ecom_db"

// ErrSecretKeyMissing is returned when the secret has no entry for the key.
var ErrSecretKeyMissing = errors.New("connection string key not found in secret")

// SecretsAPI is the subset of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretResolver reads a DSN stored as {"<key>": "<dsn>"} in a secret.
type SecretResolver struct {
	client SecretsAPI
	key    string
}

// NewSecretResolver creates a resolver. An empty key means DefaultSecretKey.
func NewSecretResolver(client SecretsAPI, key string) *SecretResolver {
	if key == "" {
		key = DefaultSecretKey
	}
	return &SecretResolver{client: client, key: key}
}

// NewSecretsClient builds a Secrets Manager client for region from the
// default credential chain.
func NewSecretsClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// ResolveDSN fetches secretID and returns the connection string under the key.
func (r *SecretResolver) ResolveDSN(ctx context.Context, secretID string) (string, error) {
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret value: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretID)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		return "", fmt.Errorf("decode secret %s: %w", secretID, err)
	}

	dsn, ok := values[r.key]
	if !ok || dsn == "" {
		return "", fmt.Errorf("%w: %q", ErrSecretKeyMissing, r.key)
	}
	return dsn, nil
}
