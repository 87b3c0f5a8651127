package keyvault

import (
	"os"

	"github.com/evergreen-ci/kvconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileOptions are the Provider options that can be read from a YAML file. The
// connection string and the vault name, client ID and client secret may each
// be the name of an environment variable holding the value instead (see
// kvconfig.ResolveEnv).
type FileOptions struct {
	ConnectionString string   `yaml:"connection_string,omitempty"`
	VaultName        string   `yaml:"vault_name,omitempty"`
	ClientID         string   `yaml:"client_id,omitempty"`
	ClientSecret     string   `yaml:"client_secret,omitempty"`
	TenantID         string   `yaml:"tenant_id,omitempty"`
	AuthorityHost    string   `yaml:"authority_host,omitempty"`
	Secrets          []string `yaml:"secrets"`
}

// ReadFileOptions reads the options from the YAML file at the path.
func ReadFileOptions(path string) (*FileOptions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading file '%s'", path)
	}

	opts, err := ParseFileOptions(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing file '%s'", path)
	}

	return opts, nil
}

// ParseFileOptions parses the options from YAML.
func ParseFileOptions(b []byte) (*FileOptions, error) {
	var opts FileOptions
	if err := yaml.Unmarshal(b, &opts); err != nil {
		return nil, errors.Wrap(err, "unmarshalling YAML")
	}
	return &opts, nil
}

// GetConnectionInfo returns the connection information either parsed from the
// connection string or built from the individual parts. It is an error to give
// both.
func (o *FileOptions) GetConnectionInfo() (*kvconfig.ConnectionInfo, error) {
	hasParts := o.VaultName != "" || o.ClientID != "" || o.ClientSecret != ""
	if o.ConnectionString != "" {
		if hasParts {
			return nil, errors.New("cannot specify both a connection string and the individual vault name, client ID or client secret")
		}
		return kvconfig.ParseConnectionString(kvconfig.ResolveEnv(o.ConnectionString))
	}

	return kvconfig.NewConnectionInfoFromEnv(o.VaultName, o.ClientID, o.ClientSecret)
}

// Export returns the Provider options equivalent to the file options.
func (o *FileOptions) Export() (*ProviderOptions, error) {
	info, err := o.GetConnectionInfo()
	if err != nil {
		return nil, errors.Wrap(err, "getting connection info")
	}

	opts := NewProviderOptions().
		SetConnectionInfo(*info).
		SetSecretNames(o.Secrets)
	if o.TenantID != "" {
		opts.SetTenantID(kvconfig.ResolveEnv(o.TenantID))
	}
	if o.AuthorityHost != "" {
		opts.SetAuthorityHost(o.AuthorityHost)
	}

	return opts, nil
}
