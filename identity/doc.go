/*
Package identity provides implementations of kvconfig.TokenProvider that
acquire access tokens from Microsoft Entra ID, along with a token cache to avoid
redundant authentication round-trips.

ClientCredentialProvider uses the OAuth2 client credentials flow, exchanging a
client ID and client secret for an access token. It does not rely on any global
state: tokens are only cached if a kvconfig.TokenCache is given, such as a
MemoryTokenCache, and the cache can be shared between providers.
*/
package identity
