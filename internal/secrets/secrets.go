// Package secrets resolves API tokens from AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	xlog "github.com/streamqa/hlscheck/internal/log"
)

const tokenKey = "api_token"

// api is the Secrets Manager surface used here, narrowed for tests.
type api interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type Resolver struct {
	client api
}

// NewResolver builds a Resolver with the default AWS credential chain.
// region overrides the chain's region; an ARN secret ID carries its own
// region and wins over both.
func NewResolver(ctx context.Context, region string) (*Resolver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Resolver{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// RegionOf extracts the region from a secret ARN. Plain secret names
// return false.
func RegionOf(secretID string) (string, bool) {
	parsed, err := arn.Parse(secretID)
	if err != nil {
		return "", false
	}
	return parsed.Region, parsed.Region != ""
}

// Token fetches the secret and unwraps the API token: a JSON object yields
// its api_token key, or its first value when that key is absent; anything
// else is returned verbatim. Binary secrets are base64-decoded.
func (r *Resolver) Token(ctx context.Context, secretID string) (string, error) {
	logger := xlog.WithComponent("secrets")
	logger.Debug().Str("secret", secretID).Msg("fetching secret")

	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %q: %w", secretID, err)
	}

	if out.SecretString != nil {
		return unwrapToken(*out.SecretString), nil
	}

	// The SDK hands SecretBinary over already base64-decoded.
	return strings.TrimSpace(string(out.SecretBinary)), nil
}

// unwrapToken extracts the token from a secret payload. JSON objects are
// walked in document order so "first value" is deterministic.
func unwrapToken(secret string) string {
	var payload map[string]string
	if err := json.Unmarshal([]byte(secret), &payload); err != nil {
		return secret
	}
	if token, ok := payload[tokenKey]; ok {
		return token
	}

	dec := json.NewDecoder(strings.NewReader(secret))
	if _, err := dec.Token(); err != nil { // opening brace
		return secret
	}
	if _, err := dec.Token(); err != nil { // first key
		return secret
	}
	var first string
	if err := dec.Decode(&first); err != nil {
		return secret
	}
	return first
}
