package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/evergreen-ci/utility"
)

const (
	// FakeVaultTenantID is the tenant that the fake vault names in its
	// authentication challenge.
	FakeVaultTenantID = "fake-tenant"
	// FakeVaultResource is the resource that the fake vault names in its
	// authentication challenge.
	FakeVaultResource = "https://vault.azure.net"
)

type fakeSecretVersion struct {
	version string
	value   string
}

// FakeVaultServer is an HTTPS server that serves the subset of the Key Vault
// secrets API needed to get secrets. Requests without a bearer token are
// answered with an authentication challenge.
type FakeVaultServer struct {
	*httptest.Server

	mu          sync.Mutex
	secrets     map[string][]fakeSecretVersion
	requests    []*http.Request
	tokens      []string
	rejected    map[string]bool
	failureCode int
}

// NewFakeVaultServer starts a new fake vault server that is closed when the
// test finishes.
func NewFakeVaultServer(t *testing.T) *FakeVaultServer {
	s := &FakeVaultServer{
		secrets:  map[string][]fakeSecretVersion{},
		rejected: map[string]bool{},
	}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// PutSecret adds a new version of the secret and returns the version.
func (s *FakeVaultServer) PutSecret(name, value string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := strings.ReplaceAll(utility.RandomString(), "-", "")
	key := strings.ToLower(name)
	s.secrets[key] = append(s.secrets[key], fakeSecretVersion{version: version, value: value})

	return version
}

// FailRequests makes every authenticated request fail with the status code.
// A zero status code stops failing requests.
func (s *FakeVaultServer) FailRequests(statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failureCode = statusCode
}

// RejectToken makes the server answer requests that carry the bearer token
// with an authentication challenge, as a vault does for a revoked token.
func (s *FakeVaultServer) RejectToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejected[token] = true
}

// Requests returns the requests that were made to get secrets, excluding the
// unauthenticated requests that were answered with a challenge.
func (s *FakeVaultServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*http.Request{}, s.requests...)
}

// Tokens returns the bearer tokens that were given in authenticated requests.
func (s *FakeVaultServer) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.tokens...)
}

// HTTPClient returns an HTTP client that trusts the server and sends every
// request to the server regardless of the requested host, so that vault URLs
// such as https://{name}.vault.azure.net reach it.
func (s *FakeVaultServer) HTTPClient() *http.Client {
	u, _ := url.Parse(s.URL)
	return &http.Client{Transport: &redirectTransport{host: u.Host, base: s.Client().Transport}}
}

type redirectTransport struct {
	host string
	base http.RoundTripper
}

func (t *redirectTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Host = t.host
	return t.base.RoundTrip(r)
}

func (s *FakeVaultServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		writeFakeVaultChallenge(w, "request is missing a bearer token")
		return
	}
	if s.rejected[strings.TrimPrefix(auth, "Bearer ")] {
		writeFakeVaultChallenge(w, "bearer token is not valid")
		return
	}

	s.requests = append(s.requests, r)
	s.tokens = append(s.tokens, strings.TrimPrefix(auth, "Bearer "))

	if s.failureCode != 0 {
		writeFakeVaultError(w, s.failureCode, "Failure", "request failed")
		return
	}

	if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/secrets/") {
		writeFakeVaultError(w, http.StatusBadRequest, "BadParameter", "unsupported operation")
		return
	}

	name, version, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/secrets/"), "/")
	version = strings.Trim(version, "/")
	versions := s.secrets[strings.ToLower(name)]
	if len(versions) == 0 {
		writeFakeVaultError(w, http.StatusNotFound, "SecretNotFound", fmt.Sprintf("A secret with (name/id) %s was not found in this key vault.", name))
		return
	}

	found := versions[len(versions)-1]
	if version != "" {
		var ok bool
		for _, v := range versions {
			if v.version == version {
				found = v
				ok = true
			}
		}
		if !ok {
			writeFakeVaultError(w, http.StatusNotFound, "SecretNotFound", fmt.Sprintf("A secret with (name/id) %s/%s was not found in this key vault.", name, version))
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"value": found.value,
		"id":    fmt.Sprintf("https://%s/secrets/%s/%s", r.Host, name, found.version),
		"attributes": map[string]interface{}{
			"enabled": true,
		},
	})
}

func writeFakeVaultChallenge(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer authorization="https://login.microsoftonline.com/%s", resource="%s"`, FakeVaultTenantID, FakeVaultResource))
	writeFakeVaultError(w, http.StatusUnauthorized, "Unauthorized", msg)
}

func writeFakeVaultError(w http.ResponseWriter, statusCode int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": msg,
		},
	})
}
