package mock

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/evergreen-ci/utility"
)

// StoredSecret is a representation of a secret kept in the global vault.
type StoredSecret struct {
	Name        string
	Value       string
	Version     string
	ContentType string
	Disabled    bool
	Created     time.Time
	Updated     time.Time
	Tags        map[string]string
}

// GlobalVault is a global secret storage cache that provides a simplified
// in-memory implementation of a Key Vault. For the sake of simplicity, secret
// names are case-sensitive and each secret only has its latest version.
var GlobalVault map[string]StoredSecret

// globalVaultURL is the URL used to build the IDs of secrets in the global
// vault.
const globalVaultURL = "https://mock.vault.azure.net"

func init() {
	ResetGlobalVault()
}

// ResetGlobalVault resets the global fake vault to an initialized but clean
// state.
func ResetGlobalVault() {
	GlobalVault = map[string]StoredSecret{}
}

// PutSecret adds a secret with the given name and value to the global vault,
// replacing any existing secret of the same name.
func PutSecret(name, value string) StoredSecret {
	ts := time.Now()
	s := StoredSecret{
		Name:    name,
		Value:   value,
		Version: utility.RandomString(),
		Created: ts,
		Updated: ts,
	}
	if existing, ok := GlobalVault[name]; ok {
		s.Created = existing.Created
	}
	GlobalVault[name] = s
	return s
}

// GetSecretInput is the input to a GetSecret call.
type GetSecretInput struct {
	Name    string
	Version string
	Options *azsecrets.GetSecretOptions
}

// SecretClient provides a mock implementation of a kvconfig.SecretClient.
// This makes it possible to introspect on inputs to the client and control
// the client's output. By default, it will issue the API calls to the fake
// GlobalVault.
type SecretClient struct {
	GetSecretInput  *GetSecretInput
	GetSecretInputs []GetSecretInput
	GetSecretOutput *azsecrets.GetSecretResponse
	GetSecretError  error

	CloseCount int
	CloseError error
}

// GetSecret saves the input and returns an existing mock secret. The mock
// output can be customized. By default, it will return the secret if it exists
// in the global vault, or a not found error if it doesn't.
func (c *SecretClient) GetSecret(ctx context.Context, name, version string, opts *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	in := GetSecretInput{
		Name:    name,
		Version: version,
		Options: opts,
	}
	c.GetSecretInput = &in
	c.GetSecretInputs = append(c.GetSecretInputs, in)

	if c.GetSecretOutput != nil || c.GetSecretError != nil {
		if c.GetSecretOutput == nil {
			return azsecrets.GetSecretResponse{}, c.GetSecretError
		}
		return *c.GetSecretOutput, c.GetSecretError
	}

	if name == "" {
		return azsecrets.GetSecretResponse{}, NewResponseError(http.StatusBadRequest, "BadParameter", name)
	}

	s, ok := GlobalVault[name]
	if !ok || (version != "" && version != s.Version) {
		return azsecrets.GetSecretResponse{}, NewResponseError(http.StatusNotFound, "SecretNotFound", name)
	}
	if s.Disabled {
		return azsecrets.GetSecretResponse{}, NewResponseError(http.StatusForbidden, "Forbidden", name)
	}

	return exportGetSecretResponse(s), nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *SecretClient) Close(ctx context.Context) error {
	c.CloseCount++
	if c.CloseError != nil {
		return c.CloseError
	}
	return nil
}

func exportGetSecretResponse(s StoredSecret) azsecrets.GetSecretResponse {
	id := azsecrets.ID(fmt.Sprintf("%s/secrets/%s/%s", globalVaultURL, s.Name, s.Version))
	enabled := !s.Disabled
	created := s.Created
	updated := s.Updated

	var tags map[string]*string
	if len(s.Tags) != 0 {
		tags = map[string]*string{}
		for k, v := range s.Tags {
			tags[k] = utility.ToStringPtr(v)
		}
	}

	var contentType *string
	if s.ContentType != "" {
		contentType = utility.ToStringPtr(s.ContentType)
	}

	return azsecrets.GetSecretResponse{
		Secret: azsecrets.Secret{
			ID:          &id,
			Value:       utility.ToStringPtr(s.Value),
			ContentType: contentType,
			Tags:        tags,
			Attributes: &azsecrets.SecretAttributes{
				Enabled: &enabled,
				Created: &created,
				Updated: &updated,
			},
		},
	}
}

// NewResponseError returns an Azure response error like the ones the Key
// Vault API returns for a request for the named secret.
func NewResponseError(statusCode int, errorCode, name string) *azcore.ResponseError {
	u := &url.URL{
		Scheme: "https",
		Host:   "mock.vault.azure.net",
		Path:   "/secrets/" + name,
	}
	return &azcore.ResponseError{
		ErrorCode:  errorCode,
		StatusCode: statusCode,
		RawResponse: &http.Response{
			Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
			StatusCode: statusCode,
			Header:     http.Header{},
			Body:       http.NoBody,
			Request: &http.Request{
				Method: http.MethodGet,
				URL:    u,
				Header: http.Header{},
			},
		},
	}
}
