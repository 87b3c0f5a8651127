package azureutil

import (
	"context"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/evergreen-ci/kvconfig"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	// DefaultAuthorityHost is the identity authority host for the Azure
	// public cloud.
	DefaultAuthorityHost = "https://login.microsoftonline.com/"

	defaultScopeSuffix = "/.default"
)

// TokenCredential adapts a kvconfig.TokenProvider into an
// azcore.TokenCredential so that it can authenticate Azure SDK clients. The
// tenant is taken from each token request, which Key Vault clients fill in
// from the vault's authentication challenge.
type TokenCredential struct {
	provider      kvconfig.TokenProvider
	authorityHost string
	tenantID      string

	mu     sync.Mutex
	issued map[kvconfig.TokenRequest]struct{}
}

// NewTokenCredential returns a credential that gets its tokens from the given
// provider. If tenantID is non-empty, it is used for token requests that do
// not specify a tenant. If authorityHost is empty, DefaultAuthorityHost is
// used.
func NewTokenCredential(tp kvconfig.TokenProvider, authorityHost, tenantID string) (*TokenCredential, error) {
	if tp == nil {
		return nil, kvconfig.NewArgumentMissingError("token provider")
	}
	if authorityHost == "" {
		authorityHost = DefaultAuthorityHost
	}
	return &TokenCredential{
		provider:      tp,
		authorityHost: authorityHost,
		tenantID:      tenantID,
		issued:        map[kvconfig.TokenRequest]struct{}{},
	}, nil
}

// GetToken requests a token for the first requested scope from the token
// provider.
func (c *TokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tenantID := opts.TenantID
	if tenantID == "" {
		tenantID = c.tenantID
	}
	authority := Authority(c.authorityHost, tenantID)
	if tenantID == "" {
		return azcore.AccessToken{}, kvconfig.NewAuthenticationError(authority, errors.New("no tenant was given by the token request or configured as a default"))
	}
	if len(opts.Scopes) == 0 {
		return azcore.AccessToken{}, kvconfig.NewAuthenticationError(authority, errors.New("token request has no scopes"))
	}

	req := kvconfig.TokenRequest{
		Authority: authority,
		Resource:  ScopeToResource(opts.Scopes[0]),
	}
	tok, err := c.provider.GetToken(ctx, req)
	if err != nil {
		grip.Debug(message.WrapError(err, message.Fields{
			"message":   "token provider could not get token",
			"authority": req.Authority,
			"resource":  req.Resource,
		}))
		if kvconfig.IsAuthenticationError(err) {
			return azcore.AccessToken{}, err
		}
		return azcore.AccessToken{}, kvconfig.NewAuthenticationError(authority, err)
	}

	c.mu.Lock()
	c.issued[req] = struct{}{}
	c.mu.Unlock()

	return azcore.AccessToken{
		Token:     tok.Token,
		ExpiresOn: tok.ExpiresOn,
	}, nil
}

// InvalidateTokens discards the tokens that this credential has handed out,
// if the token provider supports it. It should be called when the resource
// rejects a token so that a revoked token is not served again from a cache.
func (c *TokenCredential) InvalidateTokens(ctx context.Context) error {
	c.mu.Lock()
	reqs := make([]kvconfig.TokenRequest, 0, len(c.issued))
	for req := range c.issued {
		reqs = append(reqs, req)
	}
	c.issued = map[kvconfig.TokenRequest]struct{}{}
	c.mu.Unlock()

	invalidator, ok := c.provider.(kvconfig.TokenInvalidator)
	if !ok {
		return nil
	}

	catcher := grip.NewBasicCatcher()
	for _, req := range reqs {
		catcher.Wrapf(invalidator.InvalidateToken(ctx, req), "invalidating token for authority '%s'", req.Authority)
	}

	return catcher.Resolve()
}

// Authority returns the authority URL for the tenant on the authority host.
func Authority(authorityHost, tenantID string) string {
	return strings.TrimSuffix(authorityHost, "/") + "/" + tenantID
}

// ScopeToResource converts an OAuth2 scope of the form "{resource}/.default"
// into its resource.
func ScopeToResource(scope string) string {
	return strings.TrimSuffix(scope, defaultScopeSuffix)
}

// ResourceToScope converts a resource into its OAuth2 default scope.
func ResourceToScope(resource string) string {
	if strings.HasSuffix(resource, defaultScopeSuffix) {
		return resource
	}
	return strings.TrimSuffix(resource, "/") + defaultScopeSuffix
}
