package mock

import (
	"context"
	"time"

	"github.com/evergreen-ci/kvconfig"
)

// TokenProvider provides a mock implementation of a kvconfig.TokenProvider.
// This makes it possible to introspect on inputs to the provider and control
// its output.
type TokenProvider struct {
	GetTokenInput  *kvconfig.TokenRequest
	GetTokenInputs []kvconfig.TokenRequest
	GetTokenOutput *kvconfig.AccessToken
	GetTokenError  error

	InvalidateTokenInputs []kvconfig.TokenRequest
	InvalidateTokenError  error
}

// GetToken saves the input and returns a mock token. The mock output can be
// customized. By default, it returns a token that expires in an hour.
func (p *TokenProvider) GetToken(ctx context.Context, req kvconfig.TokenRequest) (kvconfig.AccessToken, error) {
	p.GetTokenInput = &req
	p.GetTokenInputs = append(p.GetTokenInputs, req)

	if p.GetTokenError != nil {
		return kvconfig.AccessToken{}, p.GetTokenError
	}
	if p.GetTokenOutput != nil {
		return *p.GetTokenOutput, nil
	}

	return kvconfig.AccessToken{
		Token:     "mock-token",
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}

// InvalidateToken saves the input. The mock output can be customized. By
// default, it succeeds.
func (p *TokenProvider) InvalidateToken(ctx context.Context, req kvconfig.TokenRequest) error {
	p.InvalidateTokenInputs = append(p.InvalidateTokenInputs, req)
	return p.InvalidateTokenError
}
