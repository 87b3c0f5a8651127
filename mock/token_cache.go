package mock

import (
	"context"

	"github.com/evergreen-ci/kvconfig"
)

// TokenCache provides a mock implementation of a kvconfig.TokenCache backed by
// another token cache implementation.
type TokenCache struct {
	kvconfig.TokenCache

	GetInput *kvconfig.TokenCacheKey
	GetCount int

	PutInput *kvconfig.TokenCacheKey
	PutToken *kvconfig.AccessToken
	PutError error

	DeleteInput *kvconfig.TokenCacheKey
	DeleteError error
}

// NewTokenCache creates a mock token cache backed by the given token cache.
func NewTokenCache(c kvconfig.TokenCache) *TokenCache {
	return &TokenCache{
		TokenCache: c,
	}
}

// Get returns the token from the backing cache.
func (c *TokenCache) Get(ctx context.Context, key kvconfig.TokenCacheKey) (kvconfig.AccessToken, bool) {
	c.GetInput = &key
	c.GetCount++

	return c.TokenCache.Get(ctx, key)
}

// Put adds the token to the mock cache. The mock output can be customized. By
// default, it will return the result of putting the token in the backing
// cache.
func (c *TokenCache) Put(ctx context.Context, key kvconfig.TokenCacheKey, tok kvconfig.AccessToken) error {
	c.PutInput = &key
	c.PutToken = &tok

	if c.PutError != nil {
		return c.PutError
	}

	return c.TokenCache.Put(ctx, key, tok)
}

// Delete deletes the token from the mock cache. The mock output can be
// customized. By default, it will return the result of deleting the token from
// the backing cache.
func (c *TokenCache) Delete(ctx context.Context, key kvconfig.TokenCacheKey) error {
	c.DeleteInput = &key

	if c.DeleteError != nil {
		return c.DeleteError
	}

	return c.TokenCache.Delete(ctx, key)
}
