package azureutil

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
)

// ClientOptions represent Azure client options such as authentication and
// making requests.
type ClientOptions struct {
	// Credential is used to authenticate requests to Azure.
	Credential azcore.TokenCredential
	// HTTPClient is the HTTP client to use to make requests.
	HTTPClient *http.Client
	// DisableChallengeResourceVerification disables checking that the
	// resource in the vault's authentication challenge matches the vault's
	// domain. This should only be used for vaults that are not hosted on a
	// standard Azure domain.
	DisableChallengeResourceVerification bool

	ownsHTTPClient bool
}

// NewClientOptions returns new unconfigured client options.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{}
}

// SetCredential sets the client's credential.
func (o *ClientOptions) SetCredential(cred azcore.TokenCredential) *ClientOptions {
	o.Credential = cred
	return o
}

// SetHTTPClient sets the HTTP client to use.
func (o *ClientOptions) SetHTTPClient(hc *http.Client) *ClientOptions {
	o.HTTPClient = hc
	return o
}

// SetDisableChallengeResourceVerification sets whether or not to verify the
// resource in the vault's authentication challenge.
func (o *ClientOptions) SetDisableChallengeResourceVerification(disable bool) *ClientOptions {
	o.DisableChallengeResourceVerification = disable
	return o
}

// Validate checks that all required fields are given and sets defaults for
// unspecified options.
func (o *ClientOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Credential == nil, "must provide a credential")
	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.HTTPClient == nil {
		o.HTTPClient = utility.GetHTTPClient()
		o.ownsHTTPClient = true
	}

	return nil
}

// SecretsClientOptions returns the options to create an Azure Key Vault
// secrets client. Requests are made once; the SDK's own retry policy is
// disabled.
func (o *ClientOptions) SecretsClientOptions() *azsecrets.ClientOptions {
	return &azsecrets.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: o.HTTPClient,
			Retry: policy.RetryOptions{
				MaxRetries: -1,
			},
		},
		DisableChallengeResourceVerification: o.DisableChallengeResourceVerification,
	}
}

// Close cleans up the HTTP client if it is owned by these options.
func (o *ClientOptions) Close() {
	if o.ownsHTTPClient {
		utility.PutHTTPClient(o.HTTPClient)
		o.HTTPClient = nil
		o.ownsHTTPClient = false
	}
}
