package identity

import (
	"context"
	"sync"
	"time"

	"github.com/evergreen-ci/kvconfig"
)

// DefaultRefreshSkew is how long before a token's actual expiration that the
// cache treats it as expired.
const DefaultRefreshSkew = 5 * time.Minute

// MemoryTokenCache is an in-memory kvconfig.TokenCache. A token is evicted
// once it is within the refresh skew of its expiration. It is safe for
// concurrent use.
type MemoryTokenCache struct {
	mu     sync.Mutex
	tokens map[kvconfig.TokenCacheKey]kvconfig.AccessToken
	skew   time.Duration
}

// NewMemoryTokenCache returns a new empty token cache using the
// DefaultRefreshSkew.
func NewMemoryTokenCache() *MemoryTokenCache {
	return NewMemoryTokenCacheWithSkew(DefaultRefreshSkew)
}

// NewMemoryTokenCacheWithSkew returns a new empty token cache that treats
// tokens as expired the given duration before they actually expire.
func NewMemoryTokenCacheWithSkew(skew time.Duration) *MemoryTokenCache {
	if skew < 0 {
		skew = 0
	}
	return &MemoryTokenCache{
		tokens: map[kvconfig.TokenCacheKey]kvconfig.AccessToken{},
		skew:   skew,
	}
}

// Get returns the cached token if it exists and is not expired. Expired tokens
// are evicted.
func (c *MemoryTokenCache) Get(_ context.Context, key kvconfig.TokenCacheKey) (kvconfig.AccessToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, ok := c.tokens[key]
	if !ok {
		return kvconfig.AccessToken{}, false
	}
	if c.isExpired(tok, time.Now()) {
		delete(c.tokens, key)
		return kvconfig.AccessToken{}, false
	}

	return tok, true
}

// Put caches the token under the key, replacing any existing token. Tokens
// that are already expired are not cached.
func (c *MemoryTokenCache) Put(_ context.Context, key kvconfig.TokenCacheKey, tok kvconfig.AccessToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isExpired(tok, time.Now()) {
		delete(c.tokens, key)
		return nil
	}
	c.tokens[key] = tok

	return nil
}

// Delete removes the token cached under the key.
func (c *MemoryTokenCache) Delete(_ context.Context, key kvconfig.TokenCacheKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tokens, key)

	return nil
}

// Prune evicts all expired tokens and returns the number evicted.
func (c *MemoryTokenCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var n int
	for key, tok := range c.tokens {
		if c.isExpired(tok, now) {
			delete(c.tokens, key)
			n++
		}
	}

	return n
}

// Len returns the number of cached tokens, including ones that have expired
// but have not been evicted yet.
func (c *MemoryTokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.tokens)
}

func (c *MemoryTokenCache) isExpired(tok kvconfig.AccessToken, now time.Time) bool {
	return !now.Add(c.skew).Before(tok.ExpiresOn)
}
