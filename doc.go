/*
Package kvconfig provides configuration sources backed by remote secret vaults.
Secrets are loaded by name from a vault and exposed as case-insensitive
key/value settings that a host application can merge with its other
configuration sources.

The ConnectionInfo type describes how to reach an Azure Key Vault. It can be
built from its three parts or parsed from a connection string of the form
"VaultName={name};ClientId={id};ClientSecret={secret};".

The SecretClient and TokenProvider interfaces describe the two remote
collaborators needed to load secrets: the vault itself and the identity
authority that issues access tokens for it. The keyvault package provides the
Azure Key Vault implementation of a Source, and the identity package provides
the client credential TokenProvider.
*/
package kvconfig
