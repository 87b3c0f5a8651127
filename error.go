package kvconfig

import (
	"fmt"

	"github.com/pkg/errors"
)

// ArgumentMissingError indicates that a required input was not given.
type ArgumentMissingError struct {
	Argument string
}

// NewArgumentMissingError returns a new error indicating that the named
// argument is missing.
func NewArgumentMissingError(arg string) *ArgumentMissingError {
	return &ArgumentMissingError{Argument: arg}
}

// Error returns the formatted error message including the missing argument.
func (e *ArgumentMissingError) Error() string {
	return fmt.Sprintf("missing required argument '%s'", e.Argument)
}

// IsArgumentMissingError returns whether or not the error is due to a missing
// argument.
func IsArgumentMissingError(err error) bool {
	var target *ArgumentMissingError
	return errors.As(err, &target)
}

// MalformedConnectionDescriptorError indicates that a connection string could
// not be parsed into its VaultName, ClientId and ClientSecret parts.
type MalformedConnectionDescriptorError struct {
	Reason string
}

// NewMalformedConnectionDescriptorError returns a new error for a connection
// string that could not be parsed for the given reason.
func NewMalformedConnectionDescriptorError(reason string) *MalformedConnectionDescriptorError {
	return &MalformedConnectionDescriptorError{Reason: reason}
}

// Error returns the formatted error message. It never includes the connection
// string itself since it contains the client secret.
func (e *MalformedConnectionDescriptorError) Error() string {
	msg := "Azure Key Vault connection needs to have only the VaultName, ClientId and ClientSecret"
	if e.Reason == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

// IsMalformedConnectionDescriptorError returns whether or not the error is due
// to a malformed connection string.
func IsMalformedConnectionDescriptorError(err error) bool {
	var target *MalformedConnectionDescriptorError
	return errors.As(err, &target)
}

// AuthenticationError indicates that an access token could not be acquired
// from the identity authority.
type AuthenticationError struct {
	Authority string
	Err       error
}

// NewAuthenticationError returns a new error for a failed token request
// against the given authority.
func NewAuthenticationError(authority string, err error) *AuthenticationError {
	return &AuthenticationError{Authority: authority, Err: err}
}

// Error returns the formatted error message including the authority.
func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("acquiring access token from authority '%s'", e.Authority)
	}
	return fmt.Sprintf("acquiring access token from authority '%s': %s", e.Authority, e.Err.Error())
}

// Unwrap returns the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError returns whether or not the error is due to a failure
// to authenticate.
func IsAuthenticationError(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// SecretFetchError indicates that a secret could not be retrieved from the
// vault.
type SecretFetchError struct {
	Name string
	Err  error
}

// NewSecretFetchError returns a new error for a failed fetch of the named
// secret.
func NewSecretFetchError(name string, err error) *SecretFetchError {
	return &SecretFetchError{Name: name, Err: err}
}

// Error returns the formatted error message including the secret name.
func (e *SecretFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetching secret '%s'", e.Name)
	}
	return fmt.Sprintf("fetching secret '%s': %s", e.Name, e.Err.Error())
}

// Unwrap returns the underlying cause.
func (e *SecretFetchError) Unwrap() error {
	return e.Err
}

// IsSecretFetchError returns whether or not the error is due to a failure to
// fetch a secret.
func IsSecretFetchError(err error) bool {
	var target *SecretFetchError
	return errors.As(err, &target)
}
