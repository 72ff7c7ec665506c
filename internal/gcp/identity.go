package gcp

import (
	"context"
	"fmt"

	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// NewIdentityService creates an Identity Toolkit client authenticated with a
// Firebase web API key. Extra options (endpoint, HTTP client) are appended.
func NewIdentityService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*identitytoolkit.Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey must be provided to create an identity toolkit client")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Identity Toolkit client: %w", err)
	}
	return svc, nil
}
