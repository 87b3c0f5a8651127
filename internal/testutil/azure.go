package testutil

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectName = "kvconfig"

// runtimeNamespace is a random string generated during testing runtime that
// namespaces the secrets created by this particular run, so that concurrent
// runs against the same vault do not clean up each other's secrets.
var runtimeNamespace = utility.RandomString()

// NewSecretName creates a new test secret name from a common prefix, the
// given test's name and a random string. Key Vault secret names may only
// contain alphanumerics and dashes.
func NewSecretName(t *testing.T) string {
	return strings.Join([]string{secretNamePrefix(), sanitizeSecretName(t.Name()), utility.RandomString()}, "-")
}

func secretNamePrefix() string {
	parts := []string{projectName, runtimeNamespace}
	if prefix := os.Getenv(SecretPrefixEnvVar); prefix != "" {
		parts = append([]string{sanitizeSecretName(prefix)}, parts...)
	}
	return strings.Join(parts, "-")
}

func sanitizeSecretName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
}

// IntegrationConnectionInfo returns the connection information for the
// integration test vault from the environment variables.
func IntegrationConnectionInfo(t *testing.T) kvconfig.ConnectionInfo {
	info, err := kvconfig.NewConnectionInfoFromEnv(VaultNameEnvVar, ClientIDEnvVar, ClientSecretEnvVar)
	require.NoError(t, err)
	return *info
}

// TenantID returns the tenant of the integration test vault.
func TenantID() string {
	return os.Getenv(TenantIDEnvVar)
}

// NewAdminClient returns a client with full access to the integration test
// vault. It is used to set up and clean up secrets around tests.
func NewAdminClient(t *testing.T, hc *http.Client) *azsecrets.Client {
	info := IntegrationConnectionInfo(t)
	credOpts := &azidentity.ClientSecretCredentialOptions{}
	credOpts.Transport = hc
	cred, err := azidentity.NewClientSecretCredential(TenantID(), info.ClientID, info.ClientSecret, credOpts)
	require.NoError(t, err)

	clientOpts := &azsecrets.ClientOptions{}
	clientOpts.Transport = hc
	c, err := azsecrets.NewClient(info.VaultURL(), cred, clientOpts)
	require.NoError(t, err)

	return c
}

// PutSecret creates or updates a secret in the integration test vault and
// returns the new version.
func PutSecret(ctx context.Context, t *testing.T, c *azsecrets.Client, name, value string) string {
	resp, err := c.SetSecret(ctx, name, azsecrets.SetSecretParameters{Value: &value}, nil)
	require.NoError(t, err)
	require.NotZero(t, resp.ID)
	return resp.ID.Version()
}

// CleanupSecrets deletes all the secrets created by this test run.
func CleanupSecrets(ctx context.Context, t *testing.T, c *azsecrets.Client) {
	prefix := strings.ToLower(secretNamePrefix())
	pager := c.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if !assert.NoError(t, err) {
			return
		}
		for _, props := range page.Value {
			if props == nil || props.ID == nil {
				continue
			}
			name := props.ID.Name()
			if !strings.HasPrefix(strings.ToLower(name), prefix) {
				continue
			}
			_, err := c.DeleteSecret(ctx, name, nil)
			if assert.NoError(t, err) {
				grip.Info(message.Fields{
					"message": "cleaned up leftover secret",
					"secret":  name,
					"test":    t.Name(),
				})
			}
		}
	}
}
