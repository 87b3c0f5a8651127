package mock

import (
	"context"
	"testing"
	"time"

	"github.com/evergreen-ci/kvconfig"
	"github.com/evergreen-ci/kvconfig/internal/testcase"
	"github.com/evergreen-ci/kvconfig/internal/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterfaces(t *testing.T) {
	assert.Implements(t, (*kvconfig.SecretClient)(nil), &SecretClient{})
	assert.Implements(t, (*kvconfig.TokenProvider)(nil), &TokenProvider{})
	assert.Implements(t, (*kvconfig.TokenInvalidator)(nil), &TokenProvider{})
	assert.Implements(t, (*kvconfig.TokenCache)(nil), &TokenCache{})
	assert.Implements(t, (*kvconfig.Source)(nil), &Source{})
}

func TestSecretClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := func(ctx context.Context, t *testing.T, name, value string) string {
		return PutSecret(name, value).Version
	}

	for tName, tCase := range testcase.SecretClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 30*time.Second)
			defer tcancel()

			ResetGlobalVault()
			defer ResetGlobalVault()

			c := &SecretClient{}
			defer c.Close(tctx)

			tCase(tctx, t, c, seed)
		})
	}

	t.Run("GetSecretRecordsInputs", func(t *testing.T) {
		ResetGlobalVault()
		defer ResetGlobalVault()
		PutSecret("foo", "bar")

		c := &SecretClient{}
		_, err := c.GetSecret(ctx, "foo", "", nil)
		require.NoError(t, err)
		_, err = c.GetSecret(ctx, "baz", "", nil)
		require.Error(t, err)

		require.NotZero(t, c.GetSecretInput)
		assert.Equal(t, "baz", c.GetSecretInput.Name)
		require.Len(t, c.GetSecretInputs, 2)
		assert.Equal(t, "foo", c.GetSecretInputs[0].Name)
	})
	t.Run("GetSecretReturnsOverriddenError", func(t *testing.T) {
		ResetGlobalVault()
		defer ResetGlobalVault()
		PutSecret("foo", "bar")

		c := &SecretClient{GetSecretError: errors.New("fake error")}
		resp, err := c.GetSecret(ctx, "foo", "", nil)
		assert.Error(t, err)
		assert.Zero(t, resp.Value)
	})
	t.Run("GetSecretFailsWithDisabledSecret", func(t *testing.T) {
		ResetGlobalVault()
		defer ResetGlobalVault()
		s := PutSecret("foo", "bar")
		s.Disabled = true
		GlobalVault["foo"] = s

		c := &SecretClient{}
		_, err := c.GetSecret(ctx, "foo", "", nil)
		assert.Error(t, err)
	})
	t.Run("SecretNamesAreCaseSensitive", func(t *testing.T) {
		ResetGlobalVault()
		defer ResetGlobalVault()
		PutSecret("foo", "bar")

		c := &SecretClient{}
		_, err := c.GetSecret(ctx, "FOO", "", nil)
		assert.Error(t, err)
	})
	t.Run("CloseCountsCalls", func(t *testing.T) {
		c := &SecretClient{}
		assert.NoError(t, c.Close(ctx))
		c.CloseError = errors.New("fake error")
		assert.Error(t, c.Close(ctx))
		assert.Equal(t, 2, c.CloseCount)
	})
}

func TestTokenProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := kvconfig.TokenRequest{
		Authority: "https://login.microsoftonline.com/tenant",
		Resource:  "https://vault.azure.net",
	}

	t.Run("ReturnsDefaultToken", func(t *testing.T) {
		p := &TokenProvider{}
		tok, err := p.GetToken(ctx, req)
		require.NoError(t, err)
		assert.NotZero(t, tok.Token)
		assert.True(t, tok.ExpiresOn.After(time.Now()))
		require.NotZero(t, p.GetTokenInput)
		assert.Equal(t, req, *p.GetTokenInput)
	})
	t.Run("ReturnsOverriddenOutput", func(t *testing.T) {
		out := kvconfig.AccessToken{Token: "token"}
		p := &TokenProvider{GetTokenOutput: &out}
		tok, err := p.GetToken(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, out, tok)
	})
	t.Run("ReturnsOverriddenError", func(t *testing.T) {
		p := &TokenProvider{GetTokenError: errors.New("fake error")}
		tok, err := p.GetToken(ctx, req)
		assert.Error(t, err)
		assert.Zero(t, tok)
		assert.Len(t, p.GetTokenInputs, 1)
	})
}

func TestTokenCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key := kvconfig.TokenCacheKey{Authority: "authority", Resource: "resource", ClientID: "client"}

	t.Run("RecordsInputsAndDelegates", func(t *testing.T) {
		c := NewTokenCache(&testutil.NoopTokenCache{})
		require.NoError(t, c.Put(ctx, key, kvconfig.AccessToken{Token: "token"}))
		_, ok := c.Get(ctx, key)
		assert.False(t, ok)
		require.NoError(t, c.Delete(ctx, key))

		assert.Equal(t, 1, c.GetCount)
		require.NotZero(t, c.PutInput)
		assert.Equal(t, key, *c.PutInput)
		require.NotZero(t, c.PutToken)
		assert.Equal(t, "token", c.PutToken.Token)
		require.NotZero(t, c.DeleteInput)
		assert.Equal(t, key, *c.DeleteInput)
	})
	t.Run("ReturnsOverriddenErrors", func(t *testing.T) {
		c := NewTokenCache(&testutil.NoopTokenCache{})
		c.PutError = errors.New("fake error")
		c.DeleteError = errors.New("fake error")
		assert.Error(t, c.Put(ctx, key, kvconfig.AccessToken{}))
		assert.Error(t, c.Delete(ctx, key))
	})
}

func TestSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("ReturnsEmptySettingsByDefault", func(t *testing.T) {
		s := &Source{}
		settings, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Zero(t, settings.Len())
		assert.Equal(t, 1, s.LoadCount)
	})
	t.Run("ReturnsOverriddenError", func(t *testing.T) {
		s := &Source{LoadError: errors.New("fake error")}
		settings, err := s.Load(ctx)
		assert.Error(t, err)
		assert.Zero(t, settings)
	})
}
