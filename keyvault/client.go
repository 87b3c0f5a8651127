package keyvault

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/evergreen-ci/kvconfig/azureutil"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// secretNotFoundErrorCode is the Key Vault error code for a missing secret.
const secretNotFoundErrorCode = "SecretNotFound"

// BasicSecretClient provides a kvconfig.SecretClient implementation that wraps
// the Azure Key Vault secrets API for a single vault. Requests are not retried.
type BasicSecretClient struct {
	secrets  *azsecrets.Client
	opts     *azureutil.ClientOptions
	vaultURL string
}

// NewBasicSecretClient creates a new client for the vault at the given URL.
func NewBasicSecretClient(vaultURL string, opts azureutil.ClientOptions) (*BasicSecretClient, error) {
	if vaultURL == "" {
		return nil, errors.New("must specify a vault URL")
	}

	c := &BasicSecretClient{
		opts:     &opts,
		vaultURL: vaultURL,
	}
	if err := c.setup(); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	return c, nil
}

func (c *BasicSecretClient) setup() error {
	if c.secrets != nil {
		return nil
	}

	if err := c.opts.Validate(); err != nil {
		return errors.Wrap(err, "invalid options")
	}

	secrets, err := azsecrets.NewClient(c.vaultURL, c.opts.Credential, c.opts.SecretsClientOptions())
	if err != nil {
		return errors.Wrap(err, "creating secrets client")
	}
	c.secrets = secrets

	return nil
}

// GetSecret gets the value of the secret. If version is empty, the latest
// version is returned.
func (c *BasicSecretClient) GetSecret(ctx context.Context, name, version string, opts *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	if err := c.setup(); err != nil {
		return azsecrets.GetSecretResponse{}, errors.Wrap(err, "setting up client")
	}

	resp, err := c.secrets.GetSecret(ctx, name, version, opts)
	if err != nil {
		grip.Debug(message.WrapError(err, makeAPILogMessage("GetSecret", c.vaultURL, name, err)))
		return azsecrets.GetSecretResponse{}, err
	}

	return resp, nil
}

// Close closes the client and cleans up its resources.
func (c *BasicSecretClient) Close(ctx context.Context) error {
	c.opts.Close()
	return nil
}

func makeAPILogMessage(op, vaultURL, name string, err error) message.Fields {
	msg := message.Fields{
		"message":   "Azure Key Vault API call failed",
		"op":        op,
		"vault_url": vaultURL,
		"secret":    name,
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		msg["status_code"] = respErr.StatusCode
		msg["error_code"] = respErr.ErrorCode
	}

	return msg
}

// IsNotFoundError returns whether or not the error indicates that the secret
// does not exist in the vault.
func IsNotFoundError(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.StatusCode == http.StatusNotFound || respErr.ErrorCode == secretNotFoundErrorCode
}

// isUnauthorizedError returns whether or not the vault rejected the access
// token that the request was made with.
func isUnauthorizedError(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.StatusCode == http.StatusUnauthorized
}
