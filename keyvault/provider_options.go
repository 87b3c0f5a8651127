package keyvault

import (
	"net/http"

	"github.com/evergreen-ci/kvconfig"
	"github.com/mongodb/grip"
)

// ProviderOptions are options to create a Provider.
type ProviderOptions struct {
	// ConnectionInfo describes the vault and the client used to access it.
	ConnectionInfo *kvconfig.ConnectionInfo
	// SecretNames are the names of the secrets to load, in order. An empty
	// list is valid but a nil one is not.
	SecretNames []string
	// Client is the client used to fetch secrets. If it is not given, a new
	// BasicSecretClient is created for each load.
	Client kvconfig.SecretClient
	// TokenProvider acquires access tokens for the vault. If it is not
	// given, the client credentials from ConnectionInfo are used. It is
	// ignored if Client is given.
	TokenProvider kvconfig.TokenProvider
	// TokenCache caches the access tokens acquired with the default token
	// provider. It cannot be used with TokenProvider.
	TokenCache kvconfig.TokenCache
	// HTTPClient is the HTTP client used to make requests to the vault.
	HTTPClient *http.Client
	// TenantID is the tenant used to authenticate if the vault's
	// authentication challenge does not specify one.
	TenantID *string
	// AuthorityHost is the identity authority host. Defaults to the Azure
	// public cloud authority.
	AuthorityHost *string
	// DisableChallengeResourceVerification disables checking that the
	// resource in the vault's authentication challenge matches the vault's
	// domain.
	DisableChallengeResourceVerification *bool
	// Metrics records load and fetch outcomes.
	Metrics *Metrics
}

// NewProviderOptions returns new uninitialized options to create a Provider.
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{}
}

// SetConnectionInfo sets the vault connection information.
func (o *ProviderOptions) SetConnectionInfo(info kvconfig.ConnectionInfo) *ProviderOptions {
	o.ConnectionInfo = &info
	return o
}

// SetSecretNames sets the names of the secrets to load.
func (o *ProviderOptions) SetSecretNames(names []string) *ProviderOptions {
	o.SecretNames = names
	return o
}

// AddSecretNames adds names of secrets to load.
func (o *ProviderOptions) AddSecretNames(names ...string) *ProviderOptions {
	if o.SecretNames == nil {
		o.SecretNames = []string{}
	}
	o.SecretNames = append(o.SecretNames, names...)
	return o
}

// SetClient sets the client used to fetch secrets.
func (o *ProviderOptions) SetClient(c kvconfig.SecretClient) *ProviderOptions {
	o.Client = c
	return o
}

// SetTokenProvider sets the token provider.
func (o *ProviderOptions) SetTokenProvider(tp kvconfig.TokenProvider) *ProviderOptions {
	o.TokenProvider = tp
	return o
}

// SetTokenCache sets the token cache for the default token provider.
func (o *ProviderOptions) SetTokenCache(c kvconfig.TokenCache) *ProviderOptions {
	o.TokenCache = c
	return o
}

// SetHTTPClient sets the HTTP client used to make requests to the vault.
func (o *ProviderOptions) SetHTTPClient(hc *http.Client) *ProviderOptions {
	o.HTTPClient = hc
	return o
}

// SetTenantID sets the fallback tenant.
func (o *ProviderOptions) SetTenantID(id string) *ProviderOptions {
	o.TenantID = &id
	return o
}

// SetAuthorityHost sets the identity authority host.
func (o *ProviderOptions) SetAuthorityHost(host string) *ProviderOptions {
	o.AuthorityHost = &host
	return o
}

// SetDisableChallengeResourceVerification sets whether or not to verify the
// resource in the vault's authentication challenge.
func (o *ProviderOptions) SetDisableChallengeResourceVerification(disable bool) *ProviderOptions {
	o.DisableChallengeResourceVerification = &disable
	return o
}

// SetMetrics sets the metrics to record.
func (o *ProviderOptions) SetMetrics(m *Metrics) *ProviderOptions {
	o.Metrics = m
	return o
}

// Validate checks that the connection information and the secret names are
// given and that the options do not conflict.
func (o *ProviderOptions) Validate() error {
	if o.ConnectionInfo == nil {
		return kvconfig.NewArgumentMissingError("connection info")
	}
	if o.SecretNames == nil {
		return kvconfig.NewArgumentMissingError("secret names")
	}

	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.TokenProvider != nil && o.TokenCache != nil, "cannot specify a token cache with a custom token provider")
	return catcher.Resolve()
}

// MergeProviderOptions merges all the given options to create a Provider.
// Options are applied in the order that they're specified and conflicting
// options are overwritten.
func MergeProviderOptions(opts ...*ProviderOptions) ProviderOptions {
	merged := ProviderOptions{}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if opt.ConnectionInfo != nil {
			merged.ConnectionInfo = opt.ConnectionInfo
		}

		if opt.SecretNames != nil {
			merged.SecretNames = opt.SecretNames
		}

		if opt.Client != nil {
			merged.Client = opt.Client
		}

		if opt.TokenProvider != nil {
			merged.TokenProvider = opt.TokenProvider
		}

		if opt.TokenCache != nil {
			merged.TokenCache = opt.TokenCache
		}

		if opt.HTTPClient != nil {
			merged.HTTPClient = opt.HTTPClient
		}

		if opt.TenantID != nil {
			merged.TenantID = opt.TenantID
		}

		if opt.AuthorityHost != nil {
			merged.AuthorityHost = opt.AuthorityHost
		}

		if opt.DisableChallengeResourceVerification != nil {
			merged.DisableChallengeResourceVerification = opt.DisableChallengeResourceVerification
		}

		if opt.Metrics != nil {
			merged.Metrics = opt.Metrics
		}
	}

	return merged
}
