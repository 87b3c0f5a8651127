package testcase

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/kvconfig/internal/testutil"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SecretSeeder stores a secret with the given name and value in the vault that
// the client under test reads from and returns the new secret version.
type SecretSeeder func(ctx context.Context, t *testing.T, name, value string) string

// SecretClientTestCase represents a test case for a kvconfig.SecretClient.
type SecretClientTestCase func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder)

// SecretClientTests returns common test cases that a kvconfig.SecretClient
// should support.
func SecretClientTests() map[string]SecretClientTestCase {
	return map[string]SecretClientTestCase{
		"GetSecretSucceedsWithExistingSecret": func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder) {
			name := testutil.NewSecretName(t)
			seed(ctx, t, name, "foo")

			resp, err := c.GetSecret(ctx, name, "", nil)
			require.NoError(t, err)
			require.NotZero(t, resp.Value)
			assert.Equal(t, "foo", *resp.Value)
			require.NotZero(t, resp.ID)
			assert.Equal(t, name, resp.ID.Name())
		},
		"GetSecretReturnsLatestValue": func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder) {
			name := testutil.NewSecretName(t)
			seed(ctx, t, name, "foo")
			seed(ctx, t, name, "bar")

			resp, err := c.GetSecret(ctx, name, "", nil)
			require.NoError(t, err)
			assert.Equal(t, "bar", utility.FromStringPtr(resp.Value))
		},
		"GetSecretSucceedsWithExplicitVersion": func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder) {
			name := testutil.NewSecretName(t)
			version := seed(ctx, t, name, "foo")
			require.NotZero(t, version)

			resp, err := c.GetSecret(ctx, name, version, nil)
			require.NoError(t, err)
			assert.Equal(t, "foo", utility.FromStringPtr(resp.Value))
			require.NotZero(t, resp.ID)
			assert.Equal(t, version, resp.ID.Version())
		},
		"GetSecretFailsWithNonexistentSecret": func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder) {
			resp, err := c.GetSecret(ctx, testutil.NewSecretName(t), "", nil)
			require.Error(t, err)
			assert.Zero(t, resp.Value)

			var respErr *azcore.ResponseError
			require.True(t, errors.As(err, &respErr))
			assert.Equal(t, http.StatusNotFound, respErr.StatusCode)
		},
		"GetSecretFailsWithNonexistentVersion": func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder) {
			name := testutil.NewSecretName(t)
			seed(ctx, t, name, "foo")

			resp, err := c.GetSecret(ctx, name, "0123456789abcdef0123456789abcdef", nil)
			assert.Error(t, err)
			assert.Zero(t, resp.Value)
		},
		"GetSecretFailsWithEmptyName": func(ctx context.Context, t *testing.T, c kvconfig.SecretClient, seed SecretSeeder) {
			resp, err := c.GetSecret(ctx, "", "", nil)
			assert.Error(t, err)
			assert.Zero(t, resp.Value)
		},
	}
}
