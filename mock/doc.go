/*
Package mock provides mock implementations of interfaces for testing purposes.

The SecretClient can be used for running tests without relying on an Azure Key
Vault to be set up, and the TokenProvider without relying on an identity
provider.
*/
package mock
