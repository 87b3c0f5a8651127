package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/kvconfig/azureutil"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// ClientCredentialProviderOptions are options to create a
// ClientCredentialProvider.
type ClientCredentialProviderOptions struct {
	// ClientID is the application (client) ID.
	ClientID *string
	// ClientSecret is the client secret for the application.
	ClientSecret *string
	// Cache is the cache of previously issued tokens. If it is not given,
	// every request goes to the authority.
	Cache kvconfig.TokenCache
	// HTTPClient is the HTTP client to use to make requests to the authority.
	// If it is not given, the Azure SDK's default transport is used.
	HTTPClient *http.Client
}

// NewClientCredentialProviderOptions returns new uninitialized options to
// create a ClientCredentialProvider.
func NewClientCredentialProviderOptions() *ClientCredentialProviderOptions {
	return &ClientCredentialProviderOptions{}
}

// SetClientID sets the application (client) ID.
func (o *ClientCredentialProviderOptions) SetClientID(id string) *ClientCredentialProviderOptions {
	o.ClientID = &id
	return o
}

// SetClientSecret sets the client secret.
func (o *ClientCredentialProviderOptions) SetClientSecret(secret string) *ClientCredentialProviderOptions {
	o.ClientSecret = &secret
	return o
}

// SetCache sets the token cache.
func (o *ClientCredentialProviderOptions) SetCache(c kvconfig.TokenCache) *ClientCredentialProviderOptions {
	o.Cache = c
	return o
}

// SetHTTPClient sets the HTTP client to use.
func (o *ClientCredentialProviderOptions) SetHTTPClient(hc *http.Client) *ClientCredentialProviderOptions {
	o.HTTPClient = hc
	return o
}

// Validate checks that the client ID and client secret are given.
func (o *ClientCredentialProviderOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(utility.FromStringPtr(o.ClientID) == "", "must specify a client ID")
	catcher.NewWhen(utility.FromStringPtr(o.ClientSecret) == "", "must specify a client secret")
	return catcher.Resolve()
}

// credentialFactory creates a credential for a tenant on an authority host.
type credentialFactory func(authorityHost, tenantID string) (azcore.TokenCredential, error)

// ClientCredentialProvider is a kvconfig.TokenProvider that acquires tokens
// using the client credentials flow. Credentials are created once per
// authority and reused.
type ClientCredentialProvider struct {
	clientID      string
	clientSecret  string
	fingerprint   string
	cache         kvconfig.TokenCache
	httpClient    *http.Client
	newCredential credentialFactory

	mu    sync.Mutex
	creds map[string]azcore.TokenCredential
}

// NewClientCredentialProvider returns a token provider that authenticates with
// the client ID and secret from the options.
func NewClientCredentialProvider(opts ClientCredentialProviderOptions) (*ClientCredentialProvider, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	p := &ClientCredentialProvider{
		clientID:     *opts.ClientID,
		clientSecret: *opts.ClientSecret,
		fingerprint:  CredentialFingerprint(*opts.ClientID, *opts.ClientSecret),
		cache:        opts.Cache,
		httpClient:   opts.HTTPClient,
		creds:        map[string]azcore.TokenCredential{},
	}
	p.newCredential = p.newClientSecretCredential

	return p, nil
}

// NewClientCredentialProviderFromConnectionInfo returns a token provider that
// authenticates with the client ID and secret in the connection information.
func NewClientCredentialProviderFromConnectionInfo(info kvconfig.ConnectionInfo, cache kvconfig.TokenCache) (*ClientCredentialProvider, error) {
	return NewClientCredentialProvider(*NewClientCredentialProviderOptions().
		SetClientID(info.ClientID).
		SetClientSecret(info.ClientSecret).
		SetCache(cache))
}

// GetToken returns a cached token for the request if there is one. Otherwise,
// it requests a new token from the authority and caches it.
func (p *ClientCredentialProvider) GetToken(ctx context.Context, req kvconfig.TokenRequest) (kvconfig.AccessToken, error) {
	key := p.cacheKey(req)
	if p.cache != nil {
		if tok, ok := p.cache.Get(ctx, key); ok {
			grip.Debug(message.Fields{
				"message":   "using cached access token",
				"authority": req.Authority,
				"resource":  req.Resource,
			})
			return tok, nil
		}
	}

	cred, err := p.getCredential(req.Authority)
	if err != nil {
		return kvconfig.AccessToken{}, kvconfig.NewAuthenticationError(req.Authority, err)
	}

	azTok, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{azureutil.ResourceToScope(req.Resource)},
	})
	if err != nil {
		return kvconfig.AccessToken{}, kvconfig.NewAuthenticationError(req.Authority, err)
	}

	tok := kvconfig.AccessToken{
		Token:     azTok.Token,
		ExpiresOn: azTok.ExpiresOn,
	}
	if p.cache != nil {
		grip.Warning(message.WrapError(p.cache.Put(ctx, key, tok), message.Fields{
			"message":   "could not cache access token",
			"authority": req.Authority,
			"resource":  req.Resource,
		}))
	}

	return tok, nil
}

// InvalidateToken removes the cached token for the request, if any, so that
// the next request gets a new token from the authority.
func (p *ClientCredentialProvider) InvalidateToken(ctx context.Context, req kvconfig.TokenRequest) error {
	if p.cache == nil {
		return nil
	}

	grip.Debug(message.Fields{
		"message":   "invalidating cached access token",
		"authority": req.Authority,
		"resource":  req.Resource,
	})

	return errors.Wrap(p.cache.Delete(ctx, p.cacheKey(req)), "deleting cached access token")
}

func (p *ClientCredentialProvider) cacheKey(req kvconfig.TokenRequest) kvconfig.TokenCacheKey {
	return kvconfig.TokenCacheKey{
		Authority:  req.Authority,
		Resource:   req.Resource,
		ClientID:   p.clientID,
		Credential: p.fingerprint,
	}
}

// CredentialFingerprint returns a digest that identifies the client
// credential without revealing the secret.
func CredentialFingerprint(clientID, clientSecret string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(clientID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(clientSecret))
	return hex.EncodeToString(h.Sum(nil))
}

func (p *ClientCredentialProvider) getCredential(authority string) (azcore.TokenCredential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cred, ok := p.creds[authority]; ok {
		return cred, nil
	}

	host, tenantID, err := ParseAuthority(authority)
	if err != nil {
		return nil, errors.Wrap(err, "parsing authority")
	}
	cred, err := p.newCredential(host, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "creating client secret credential")
	}
	p.creds[authority] = cred

	return cred, nil
}

func (p *ClientCredentialProvider) newClientSecretCredential(authorityHost, tenantID string) (azcore.TokenCredential, error) {
	opts := &azidentity.ClientSecretCredentialOptions{}
	opts.Cloud = cloud.Configuration{ActiveDirectoryAuthorityHost: authorityHost}
	if p.httpClient != nil {
		opts.Transport = p.httpClient
	}
	return azidentity.NewClientSecretCredential(tenantID, p.clientID, p.clientSecret, opts)
}

// ParseAuthority splits an authority URL of the form
// "https://{host}/{tenant}" into the authority host and the tenant ID.
func ParseAuthority(authority string) (host, tenantID string, err error) {
	u, err := url.Parse(authority)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing authority URL '%s'", authority)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", errors.Errorf("authority '%s' must be an absolute URL", authority)
	}
	tenantID = strings.Trim(u.Path, "/")
	if tenantID == "" || strings.Contains(tenantID, "/") {
		return "", "", errors.Errorf("authority '%s' must have exactly one path segment for the tenant", authority)
	}

	return u.Scheme + "://" + u.Host + "/", tenantID, nil
}
