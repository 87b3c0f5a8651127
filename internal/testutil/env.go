package testutil

import (
	"os"
	"testing"
)

// Environment variables that configure integration tests against a live
// Azure Key Vault.
const (
	VaultNameEnvVar    = "AZURE_KEYVAULT_NAME"
	ClientIDEnvVar     = "AZURE_CLIENT_ID"
	ClientSecretEnvVar = "AZURE_CLIENT_SECRET"
	TenantIDEnvVar     = "AZURE_TENANT_ID"
	SecretPrefixEnvVar = "AZURE_KEYVAULT_SECRET_PREFIX"
)

// CheckAzureEnvVars skips the test unless the environment variables required
// for testing against Azure Key Vault are defined.
func CheckAzureEnvVars(t *testing.T) {
	CheckEnvVars(t,
		VaultNameEnvVar,
		ClientIDEnvVar,
		ClientSecretEnvVar,
		TenantIDEnvVar,
	)
}

// CheckEnvVars skips the test unless all the environment variables are set.
func CheckEnvVars(t *testing.T, envVars ...string) {
	var missing []string

	for _, envVar := range envVars {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		t.Skipf("missing required Azure environment variables: %s", missing)
	}
}
