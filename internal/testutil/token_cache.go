package testutil

import (
	"context"

	"github.com/evergreen-ci/kvconfig"
)

// NoopTokenCache is an implementation of kvconfig.TokenCache that never
// caches anything.
type NoopTokenCache struct{}

// Get never finds a token.
func (c *NoopTokenCache) Get(context.Context, kvconfig.TokenCacheKey) (kvconfig.AccessToken, bool) {
	return kvconfig.AccessToken{}, false
}

// Put is a no-op.
func (c *NoopTokenCache) Put(context.Context, kvconfig.TokenCacheKey, kvconfig.AccessToken) error {
	return nil
}

// Delete is a no-op.
func (c *NoopTokenCache) Delete(context.Context, kvconfig.TokenCacheKey) error {
	return nil
}
