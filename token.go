package kvconfig

import (
	"context"
	"time"
)

// TokenRequest describes the access token being requested.
type TokenRequest struct {
	// Authority is the URL of the identity authority that issues the token
	// (e.g. https://login.microsoftonline.com/{tenant}).
	Authority string
	// Resource is the resource that the token grants access to (e.g.
	// https://vault.azure.net).
	Resource string
}

// AccessToken is a bearer token and its expiration.
type AccessToken struct {
	Token     string
	ExpiresOn time.Time
}

// TokenProvider acquires access tokens from an identity authority.
type TokenProvider interface {
	// GetToken returns an access token for the request. Implementations
	// should return an *AuthenticationError if the authority rejects the
	// request.
	GetToken(ctx context.Context, req TokenRequest) (AccessToken, error)
}

// TokenCacheKey identifies a cached token.
type TokenCacheKey struct {
	Authority string
	Resource  string
	ClientID  string
	// Credential is a fingerprint of the credential that the token was
	// issued for. It must never hold the credential itself.
	Credential string
}

// TokenCache represents a cache of previously issued access tokens.
type TokenCache interface {
	// Get returns the cached token for the key if one exists and is not
	// expired.
	Get(ctx context.Context, key TokenCacheKey) (AccessToken, bool)
	// Put adds the token to the cache under the key.
	Put(ctx context.Context, key TokenCacheKey, token AccessToken) error
	// Delete removes the token cached under the key, if any.
	Delete(ctx context.Context, key TokenCacheKey) error
}

// TokenInvalidator is implemented by token providers that can discard a
// previously issued token, for example after the resource rejects it.
type TokenInvalidator interface {
	// InvalidateToken discards any token held for the request so that the
	// next request for it goes to the authority.
	InvalidateToken(ctx context.Context, req TokenRequest) error
}
