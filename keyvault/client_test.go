package keyvault

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/kvconfig/azureutil"
	"github.com/evergreen-ci/kvconfig/identity"
	"github.com/evergreen-ci/kvconfig/internal/testcase"
	"github.com/evergreen-ci/kvconfig/internal/testutil"
	"github.com/evergreen-ci/kvconfig/mock"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeVaultURL = "https://fake.vault.azure.net"

func TestBasicSecretClient(t *testing.T) {
	assert.Implements(t, (*kvconfig.SecretClient)(nil), &BasicSecretClient{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newClientOptions := func(t *testing.T, tp kvconfig.TokenProvider, hc *http.Client) azureutil.ClientOptions {
		cred, err := azureutil.NewTokenCredential(tp, "", "")
		require.NoError(t, err)
		return *azureutil.NewClientOptions().
			SetCredential(cred).
			SetHTTPClient(hc)
	}

	t.Run("NewBasicSecretClientFailsWithoutVaultURL", func(t *testing.T) {
		c, err := NewBasicSecretClient("", newClientOptions(t, &mock.TokenProvider{}, http.DefaultClient))
		assert.Error(t, err)
		assert.Zero(t, c)
	})
	t.Run("NewBasicSecretClientFailsWithoutCredential", func(t *testing.T) {
		c, err := NewBasicSecretClient(fakeVaultURL, *azureutil.NewClientOptions())
		assert.Error(t, err)
		assert.Zero(t, c)
	})

	t.Run("FakeVault", func(t *testing.T) {
		for tName, tCase := range testcase.SecretClientTests() {
			t.Run(tName, func(t *testing.T) {
				tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
				defer tcancel()

				srv := testutil.NewFakeVaultServer(t)
				c, err := NewBasicSecretClient(fakeVaultURL, newClientOptions(t, &mock.TokenProvider{}, srv.HTTPClient()))
				require.NoError(t, err)
				defer func() {
					assert.NoError(t, c.Close(tctx))
				}()

				seed := func(_ context.Context, _ *testing.T, name, value string) string {
					return srv.PutSecret(name, value)
				}

				tCase(tctx, t, c, seed)
			})
		}

		for tName, tCase := range map[string]func(ctx context.Context, t *testing.T, srv *testutil.FakeVaultServer, tp *mock.TokenProvider, c *BasicSecretClient){
			"AuthenticatesWithChallengeTenantAndResource": func(ctx context.Context, t *testing.T, srv *testutil.FakeVaultServer, tp *mock.TokenProvider, c *BasicSecretClient) {
				srv.PutSecret("foo", "bar")

				_, err := c.GetSecret(ctx, "foo", "", nil)
				require.NoError(t, err)

				require.NotZero(t, tp.GetTokenInput)
				assert.Equal(t, "https://login.microsoftonline.com/"+testutil.FakeVaultTenantID, tp.GetTokenInput.Authority)
				assert.Equal(t, testutil.FakeVaultResource, tp.GetTokenInput.Resource)
				assert.Equal(t, []string{"mock-token"}, srv.Tokens())
			},
			"FailsWithAuthenticationErrorWhenTokenCannotBeAcquired": func(ctx context.Context, t *testing.T, srv *testutil.FakeVaultServer, tp *mock.TokenProvider, c *BasicSecretClient) {
				srv.PutSecret("foo", "bar")
				tp.GetTokenError = errors.New("invalid client secret")

				resp, err := c.GetSecret(ctx, "foo", "", nil)
				require.Error(t, err)
				assert.Zero(t, resp.Value)
				assert.True(t, kvconfig.IsAuthenticationError(err))
				assert.Empty(t, srv.Requests())
			},
			"FailsWithoutRetryingServerErrors": func(ctx context.Context, t *testing.T, srv *testutil.FakeVaultServer, tp *mock.TokenProvider, c *BasicSecretClient) {
				srv.PutSecret("foo", "bar")
				srv.FailRequests(http.StatusServiceUnavailable)

				resp, err := c.GetSecret(ctx, "foo", "", nil)
				require.Error(t, err)
				assert.Zero(t, resp.Value)
				assert.Len(t, srv.Requests(), 1)
			},
			"NotFoundErrorIsRecognized": func(ctx context.Context, t *testing.T, srv *testutil.FakeVaultServer, tp *mock.TokenProvider, c *BasicSecretClient) {
				_, err := c.GetSecret(ctx, "foo", "", nil)
				require.Error(t, err)
				assert.True(t, IsNotFoundError(err))
			},
		} {
			t.Run(tName, func(t *testing.T) {
				tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
				defer tcancel()

				srv := testutil.NewFakeVaultServer(t)
				tp := &mock.TokenProvider{}
				c, err := NewBasicSecretClient(fakeVaultURL, newClientOptions(t, tp, srv.HTTPClient()))
				require.NoError(t, err)
				defer c.Close(tctx)

				tCase(tctx, t, srv, tp, c)
			})
		}
	})

	t.Run("Integration", func(t *testing.T) {
		testutil.CheckAzureEnvVars(t)

		hc := utility.GetHTTPClient()
		defer utility.PutHTTPClient(hc)

		admin := testutil.NewAdminClient(t, hc)
		defer func() {
			cctx, ccancel := context.WithTimeout(context.Background(), time.Minute)
			defer ccancel()
			testutil.CleanupSecrets(cctx, t, admin)
		}()

		info := testutil.IntegrationConnectionInfo(t)
		tp, err := identity.NewClientCredentialProviderFromConnectionInfo(info, identity.NewMemoryTokenCache())
		require.NoError(t, err)

		for tName, tCase := range testcase.SecretClientTests() {
			t.Run(tName, func(t *testing.T) {
				tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
				defer tcancel()

				c, err := NewBasicSecretClient(info.VaultURL(), newClientOptions(t, tp, hc))
				require.NoError(t, err)
				defer c.Close(tctx)

				seed := func(ctx context.Context, t *testing.T, name, value string) string {
					return testutil.PutSecret(ctx, t, admin, name, value)
				}

				tCase(tctx, t, c, seed)
			})
		}
	})
}

func TestIsNotFoundError(t *testing.T) {
	t.Run("TrueForNotFoundStatus", func(t *testing.T) {
		assert.True(t, IsNotFoundError(mock.NewResponseError(http.StatusNotFound, "", "foo")))
	})
	t.Run("TrueForSecretNotFoundCode", func(t *testing.T) {
		assert.True(t, IsNotFoundError(mock.NewResponseError(http.StatusBadRequest, secretNotFoundErrorCode, "foo")))
	})
	t.Run("TrueForWrappedError", func(t *testing.T) {
		err := kvconfig.NewSecretFetchError("foo", mock.NewResponseError(http.StatusNotFound, secretNotFoundErrorCode, "foo"))
		assert.True(t, IsNotFoundError(err))
	})
	t.Run("FalseForOtherResponseErrors", func(t *testing.T) {
		assert.False(t, IsNotFoundError(mock.NewResponseError(http.StatusForbidden, "Forbidden", "foo")))
	})
	t.Run("FalseForOtherErrors", func(t *testing.T) {
		assert.False(t, IsNotFoundError(errors.New("some error")))
		assert.False(t, IsNotFoundError(nil))
	})
}
