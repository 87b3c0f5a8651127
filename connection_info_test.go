package kvconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	t.Run("SucceedsWithAllFields", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=myvault;ClientId=abc;ClientSecret=xyz")
		require.NoError(t, err)
		require.NotZero(t, info)
		assert.Equal(t, "myvault", info.VaultName)
		assert.Equal(t, "abc", info.ClientID)
		assert.Equal(t, "xyz", info.ClientSecret)
		assert.Equal(t, "https://myvault.vault.azure.net", info.VaultURL())
	})
	t.Run("SucceedsWithTrailingSeparator", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=myvault;ClientId=abc;ClientSecret=xyz;")
		require.NoError(t, err)
		assert.Equal(t, ConnectionInfo{VaultName: "myvault", ClientID: "abc", ClientSecret: "xyz"}, *info)
	})
	t.Run("IgnoresEmptySegments", func(t *testing.T) {
		info, err := ParseConnectionString(";;VaultName=myvault;;ClientId=abc;ClientSecret=xyz;;")
		require.NoError(t, err)
		assert.Equal(t, ConnectionInfo{VaultName: "myvault", ClientID: "abc", ClientSecret: "xyz"}, *info)
	})
	t.Run("SucceedsWithAnyFieldOrder", func(t *testing.T) {
		info, err := ParseConnectionString("ClientSecret=xyz;VaultName=myvault;ClientId=abc")
		require.NoError(t, err)
		assert.Equal(t, ConnectionInfo{VaultName: "myvault", ClientID: "abc", ClientSecret: "xyz"}, *info)
	})
	t.Run("FieldNamesAreCaseInsensitive", func(t *testing.T) {
		info, err := ParseConnectionString("vaultname=myvault;CLIENTID=abc;cLiEnTsEcReT=xyz")
		require.NoError(t, err)
		assert.Equal(t, ConnectionInfo{VaultName: "myvault", ClientID: "abc", ClientSecret: "xyz"}, *info)
	})
	t.Run("ValuesMayContainSeparator", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=v;ClientId=c;ClientSecret=a=b==")
		require.NoError(t, err)
		assert.Equal(t, "a=b==", info.ClientSecret)
	})
	t.Run("ValuesMayBeEmpty", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=;ClientId=c;ClientSecret=s")
		require.NoError(t, err)
		assert.Empty(t, info.VaultName)
		assert.Error(t, info.Validate())
	})
	t.Run("IgnoresUnknownFields", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=v;ClientId=c;Tenant=t")
		require.NoError(t, err)
		assert.Equal(t, "v", info.VaultName)
		assert.Equal(t, "c", info.ClientID)
		assert.Empty(t, info.ClientSecret)
	})
	t.Run("LastDuplicateFieldWins", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=first;VAULTNAME=second;ClientId=c")
		require.NoError(t, err)
		assert.Equal(t, "second", info.VaultName)
		assert.Equal(t, "c", info.ClientID)
		assert.Empty(t, info.ClientSecret)
	})
	t.Run("FailsWithTooFewFields", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=v;ClientId=c")
		assert.True(t, IsMalformedConnectionDescriptorError(err))
		assert.Zero(t, info)
	})
	t.Run("FailsWithTooManyFields", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=v;ClientId=c;ClientSecret=s;Extra=e")
		assert.True(t, IsMalformedConnectionDescriptorError(err))
		assert.Zero(t, info)
	})
	t.Run("FailsWithEmptyString", func(t *testing.T) {
		info, err := ParseConnectionString("")
		assert.True(t, IsMalformedConnectionDescriptorError(err))
		assert.Zero(t, info)
	})
	t.Run("FailsWithFieldMissingSeparator", func(t *testing.T) {
		info, err := ParseConnectionString("VaultName=v;ClientId;ClientSecret=s")
		assert.True(t, IsMalformedConnectionDescriptorError(err))
		assert.Zero(t, info)
	})
	t.Run("ErrorDoesNotContainSecret", func(t *testing.T) {
		_, err := ParseConnectionString("VaultName=v;ClientId=c;ClientSecret=supersecret;Extra=e")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "supersecret")
	})
	t.Run("RoundTripsWithFormattedString", func(t *testing.T) {
		for _, expected := range []ConnectionInfo{
			{VaultName: "myvault", ClientID: "abc", ClientSecret: "xyz"},
			{VaultName: "My-Vault", ClientID: "00000000-0000-0000-0000-000000000000", ClientSecret: "a=b"},
		} {
			s := "VaultName=" + expected.VaultName + ";ClientId=" + expected.ClientID + ";ClientSecret=" + expected.ClientSecret
			parsed, err := ParseConnectionString(s)
			require.NoError(t, err)
			constructed, err := NewConnectionInfo(expected.VaultName, expected.ClientID, expected.ClientSecret)
			require.NoError(t, err)

			assert.Equal(t, expected, *parsed)
			assert.Equal(t, *constructed, *parsed)
			assert.Equal(t, constructed.VaultURL(), parsed.VaultURL())
		}
	})
}

func TestNewConnectionInfo(t *testing.T) {
	t.Run("SucceedsWithAllParts", func(t *testing.T) {
		info, err := NewConnectionInfo("myvault", "abc", "xyz")
		require.NoError(t, err)
		assert.Equal(t, ConnectionInfo{VaultName: "myvault", ClientID: "abc", ClientSecret: "xyz"}, *info)
		assert.NoError(t, info.Validate())
	})
	for tName, tCase := range map[string]struct {
		vaultName    string
		clientID     string
		clientSecret string
		argument     string
	}{
		"FailsWithoutVaultName": {
			clientID:     "abc",
			clientSecret: "xyz",
			argument:     "vault name",
		},
		"FailsWithoutClientID": {
			vaultName:    "myvault",
			clientSecret: "xyz",
			argument:     "client ID",
		},
		"FailsWithoutClientSecret": {
			vaultName: "myvault",
			clientID:  "abc",
			argument:  "client secret",
		},
		"FailsWithFirstMissingPart": {
			argument: "vault name",
		},
	} {
		t.Run(tName, func(t *testing.T) {
			info, err := NewConnectionInfo(tCase.vaultName, tCase.clientID, tCase.clientSecret)
			require.Error(t, err)
			assert.Zero(t, info)

			var argErr *ArgumentMissingError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tCase.argument, argErr.Argument)
		})
	}
}

func TestNewConnectionInfoFromEnv(t *testing.T) {
	t.Run("ResolvesEnvironmentVariables", func(t *testing.T) {
		t.Setenv("KVCONFIG_TEST_VAULT_NAME", "envvault")
		t.Setenv("KVCONFIG_TEST_CLIENT_SECRET", "envsecret")

		info, err := NewConnectionInfoFromEnv("KVCONFIG_TEST_VAULT_NAME", "literal-id", "KVCONFIG_TEST_CLIENT_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "envvault", info.VaultName)
		assert.Equal(t, "literal-id", info.ClientID)
		assert.Equal(t, "envsecret", info.ClientSecret)
	})
	t.Run("FailsWithEmptyArgument", func(t *testing.T) {
		info, err := NewConnectionInfoFromEnv("", "id", "secret")
		assert.True(t, IsArgumentMissingError(err))
		assert.Zero(t, info)
	})
}

func TestResolveEnv(t *testing.T) {
	t.Run("ReturnsValueOfSetVariable", func(t *testing.T) {
		t.Setenv("KVCONFIG_TEST_RESOLVE", "value")
		assert.Equal(t, "value", ResolveEnv("KVCONFIG_TEST_RESOLVE"))
	})
	t.Run("ReturnsLiteralForUnsetVariable", func(t *testing.T) {
		assert.Equal(t, "KVCONFIG_TEST_UNSET_VARIABLE", ResolveEnv("KVCONFIG_TEST_UNSET_VARIABLE"))
	})
	t.Run("ReturnsLiteralForEmptyVariable", func(t *testing.T) {
		t.Setenv("KVCONFIG_TEST_EMPTY", "")
		assert.Equal(t, "KVCONFIG_TEST_EMPTY", ResolveEnv("KVCONFIG_TEST_EMPTY"))
	})
	t.Run("ReturnsEmptyString", func(t *testing.T) {
		assert.Empty(t, ResolveEnv(""))
	})
}

func TestConnectionInfo(t *testing.T) {
	t.Run("VaultURLIsLowerCase", func(t *testing.T) {
		info := ConnectionInfo{VaultName: "MyVault"}
		assert.Equal(t, "https://myvault.vault.azure.net", info.VaultURL())
	})
	t.Run("VaultURLIsDeterministic", func(t *testing.T) {
		info := ConnectionInfo{VaultName: "vault"}
		assert.Equal(t, info.VaultURL(), info.VaultURL())
	})
	t.Run("StringRedactsClientSecret", func(t *testing.T) {
		info := ConnectionInfo{VaultName: "vault", ClientID: "id", ClientSecret: "supersecret"}
		assert.NotContains(t, info.String(), "supersecret")
		assert.Contains(t, info.String(), "vault")
		assert.Contains(t, info.String(), "id")
	})
	t.Run("ValidateFailsWithAllMissingParts", func(t *testing.T) {
		err := (&ConnectionInfo{}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault name")
		assert.Contains(t, err.Error(), "client ID")
		assert.Contains(t, err.Error(), "client secret")
	})
}
