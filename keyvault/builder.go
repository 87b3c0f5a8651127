package keyvault

import (
	"github.com/evergreen-ci/kvconfig/config"
	"github.com/pkg/errors"
)

// AddToBuilder adds a Provider that loads the named secrets from the vault
// described by the connection string to the configuration builder.
func AddToBuilder(b *config.Builder, connectionString string, names []string, opts ...*ProviderOptions) (*Provider, error) {
	if b == nil {
		return nil, errors.New("must specify a configuration builder")
	}

	p, err := NewProviderFromConnectionString(connectionString, names, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating Key Vault provider")
	}
	b.Add(p)

	return p, nil
}
