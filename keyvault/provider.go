package keyvault

import (
	"context"
	"time"

	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/kvconfig/azureutil"
	"github.com/evergreen-ci/kvconfig/identity"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// Provider is a kvconfig.Source that loads named secrets from an Azure Key
// Vault.
type Provider struct {
	info    kvconfig.ConnectionInfo
	names   []string
	client  kvconfig.SecretClient
	opts    ProviderOptions
	metrics *Metrics
}

// NewProvider creates a new Provider from the given options.
func NewProvider(opts ...*ProviderOptions) (*Provider, error) {
	merged := MergeProviderOptions(opts...)
	if err := merged.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	p := &Provider{
		info:    *merged.ConnectionInfo,
		names:   append([]string{}, merged.SecretNames...),
		client:  merged.Client,
		opts:    merged,
		metrics: merged.Metrics,
	}

	return p, nil
}

// NewProviderFromConnectionString creates a new Provider for the vault
// described by the connection string (see kvconfig.ParseConnectionString)
// that loads the named secrets. Additional options are applied afterwards.
func NewProviderFromConnectionString(connectionString string, names []string, opts ...*ProviderOptions) (*Provider, error) {
	info, err := kvconfig.ParseConnectionString(connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "parsing connection string")
	}

	base := NewProviderOptions().
		SetConnectionInfo(*info).
		SetSecretNames(names)

	return NewProvider(append([]*ProviderOptions{base}, opts...)...)
}

// ConnectionInfo returns the vault connection information.
func (p *Provider) ConnectionInfo() kvconfig.ConnectionInfo {
	return p.info
}

// SecretNames returns the names of the secrets that are loaded.
func (p *Provider) SecretNames() []string {
	return append([]string{}, p.names...)
}

// Load fetches every secret from the vault in order and returns them as
// settings keyed by secret name. If a name appears more than once (ignoring
// case), the last fetched value wins. If no secret names were given, it
// returns empty settings without making any requests. If any secret cannot be
// fetched, no settings are returned.
func (p *Provider) Load(ctx context.Context) (*kvconfig.Settings, error) {
	startAt := time.Now()
	settings, err := p.load(ctx)
	p.metrics.observeLoad(time.Since(startAt), err)
	if err != nil {
		return nil, err
	}

	grip.Info(message.Fields{
		"message":     "loaded secrets from vault",
		"vault_url":   p.info.VaultURL(),
		"num_secrets": settings.Len(),
		"duration":    time.Since(startAt).String(),
	})

	return settings, nil
}

func (p *Provider) load(ctx context.Context) (*kvconfig.Settings, error) {
	settings := kvconfig.NewSettings()
	if len(p.names) == 0 {
		return settings, nil
	}

	c, cred, owned, err := p.getClient()
	if err != nil {
		return nil, errors.Wrap(err, "getting secret client")
	}
	if owned {
		defer func() {
			grip.Warning(message.WrapError(c.Close(ctx), message.Fields{
				"message":   "could not close secret client",
				"vault_url": p.info.VaultURL(),
			}))
		}()
	}

	for _, name := range p.names {
		resp, err := c.GetSecret(ctx, name, "", nil)
		if err != nil {
			p.metrics.observeFetch(err)
			if cred != nil && isUnauthorizedError(err) {
				grip.Warning(message.WrapError(cred.InvalidateTokens(ctx), message.Fields{
					"message":   "could not invalidate rejected access token",
					"vault_url": p.info.VaultURL(),
				}))
			}
			if kvconfig.IsAuthenticationError(err) {
				return nil, errors.Wrapf(err, "authenticating to fetch secret '%s'", name)
			}
			return nil, kvconfig.NewSecretFetchError(name, err)
		}
		p.metrics.observeFetch(nil)

		settings.Set(name, utility.FromStringPtr(resp.Value))
	}

	return settings, nil
}

// getClient returns the client to fetch secrets with, the credential it
// authenticates with and whether or not the caller owns the client. The
// credential is nil for an injected client.
func (p *Provider) getClient() (kvconfig.SecretClient, *azureutil.TokenCredential, bool, error) {
	if p.client != nil {
		return p.client, nil, false, nil
	}

	tp := p.opts.TokenProvider
	if tp == nil {
		ccp, err := identity.NewClientCredentialProvider(*identity.NewClientCredentialProviderOptions().
			SetClientID(p.info.ClientID).
			SetClientSecret(p.info.ClientSecret).
			SetCache(p.opts.TokenCache).
			SetHTTPClient(p.opts.HTTPClient))
		if err != nil {
			return nil, nil, false, kvconfig.NewAuthenticationError(p.authorityHost(), err)
		}
		tp = ccp
	}

	cred, err := azureutil.NewTokenCredential(tp, p.authorityHost(), utility.FromStringPtr(p.opts.TenantID))
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "creating token credential")
	}

	clientOpts := azureutil.NewClientOptions().
		SetCredential(cred).
		SetHTTPClient(p.opts.HTTPClient).
		SetDisableChallengeResourceVerification(utility.FromBoolPtr(p.opts.DisableChallengeResourceVerification))
	c, err := NewBasicSecretClient(p.info.VaultURL(), *clientOpts)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "creating vault client")
	}

	return c, cred, true, nil
}

func (p *Provider) authorityHost() string {
	if host := utility.FromStringPtr(p.opts.AuthorityHost); host != "" {
		return host
	}
	return azureutil.DefaultAuthorityHost
}
