package kvconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/mongodb/grip"
)

const (
	vaultURLFormat = "https://%s.vault.azure.net"

	partSeparator  = ";"
	valueSeparator = "="
	partCount      = 3

	vaultNameKey    = "VaultName"
	clientIDKey     = "ClientId"
	clientSecretKey = "ClientSecret"
)

// ConnectionInfo holds the information needed to connect to an Azure Key
// Vault. It should be treated as immutable once created.
type ConnectionInfo struct {
	// VaultName is the name of the vault, which determines its URL.
	VaultName string
	// ClientID is the application (client) ID used to authenticate.
	ClientID string
	// ClientSecret is the secret used to authenticate the client.
	ClientSecret string
}

// NewConnectionInfo creates connection information from its individual parts.
// All of the parts are required.
func NewConnectionInfo(vaultName, clientID, clientSecret string) (*ConnectionInfo, error) {
	if vaultName == "" {
		return nil, NewArgumentMissingError("vault name")
	}
	if clientID == "" {
		return nil, NewArgumentMissingError("client ID")
	}
	if clientSecret == "" {
		return nil, NewArgumentMissingError("client secret")
	}

	return &ConnectionInfo{
		VaultName:    vaultName,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}, nil
}

// NewConnectionInfoFromEnv is the same as NewConnectionInfo, except that each
// part may instead be the name of an environment variable holding its value.
// See ResolveEnv.
func NewConnectionInfoFromEnv(vaultName, clientID, clientSecret string) (*ConnectionInfo, error) {
	return NewConnectionInfo(ResolveEnv(vaultName), ResolveEnv(clientID), ResolveEnv(clientSecret))
}

// ResolveEnv returns the value of the environment variable named s if it is
// set to a non-empty value. Otherwise, s is returned as-is.
func ResolveEnv(s string) string {
	if s == "" {
		return s
	}
	if val := os.Getenv(s); val != "" {
		return val
	}
	return s
}

// ParseConnectionString parses connection information from a connection
// string of the form "VaultName={name};ClientId={id};ClientSecret={secret};".
//
// Field names are case-insensitive and a trailing separator is allowed. Values
// may contain "=" since only the first one in each field separates the name
// from the value. The string must have exactly three fields. Fields with
// unrecognized names are ignored and if a field name is repeated, the last one
// wins, so the parsed result may have empty parts; use Validate to check that
// every part is set.
func ParseConnectionString(s string) (*ConnectionInfo, error) {
	var parts []string
	for _, part := range strings.Split(s, partSeparator) {
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) != partCount {
		return nil, NewMalformedConnectionDescriptorError(fmt.Sprintf("found %d fields but expected %d", len(parts), partCount))
	}

	var info ConnectionInfo
	for i, part := range parts {
		name, value, ok := strings.Cut(part, valueSeparator)
		if !ok {
			return nil, NewMalformedConnectionDescriptorError(fmt.Sprintf("field %d is missing a '%s' separator", i+1, valueSeparator))
		}

		switch {
		case strings.EqualFold(name, vaultNameKey):
			info.VaultName = value
		case strings.EqualFold(name, clientIDKey):
			info.ClientID = value
		case strings.EqualFold(name, clientSecretKey):
			info.ClientSecret = value
		}
	}

	return &info, nil
}

// Validate checks that all the parts of the connection information are set.
func (i *ConnectionInfo) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(i.VaultName == "", "must specify a vault name")
	catcher.NewWhen(i.ClientID == "", "must specify a client ID")
	catcher.NewWhen(i.ClientSecret == "", "must specify a client secret")
	return catcher.Resolve()
}

// VaultURL returns the lower-cased URL of the vault.
func (i *ConnectionInfo) VaultURL() string {
	return strings.ToLower(fmt.Sprintf(vaultURLFormat, i.VaultName))
}

// String returns the connection information without the client secret.
func (i *ConnectionInfo) String() string {
	return fmt.Sprintf("%s=%s;%s=%s;%s=<redacted>;", vaultNameKey, i.VaultName, clientIDKey, i.ClientID, clientSecretKey)
}
