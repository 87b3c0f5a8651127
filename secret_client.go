package kvconfig

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// SecretClient provides a common interface to interact with an Azure Key Vault
// secrets client and its mock implementation for testing.
type SecretClient interface {
	// GetSecret gets the value of the secret. If version is empty, the latest
	// version is returned.
	GetSecret(ctx context.Context, name, version string, opts *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
