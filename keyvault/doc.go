/*
Package keyvault provides a kvconfig.Source backed by Azure Key Vault.

A Provider loads a fixed list of named secrets from a single vault. Each call to
Load authenticates (delegating to a kvconfig.TokenProvider), fetches every
secret in order with one request per name and returns the secrets as settings.
Loading is all-or-nothing: if any secret cannot be fetched, no settings are
returned. Requests are not retried.

The BasicSecretClient is a thin wrapper around the Azure SDK's Key Vault
secrets client. If the Provider does not fulfill your needs, you can use the
client directly instead.
*/
package keyvault
