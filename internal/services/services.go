package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// Cookie names the login handshake must produce before recipe API calls
// succeed. The locale and auth-flag cookies are synthesized client-side; the
// token and proxy cookies only come out of a real handshake.
const (
	TokenCookie    = "v-token"
	ProxyCookie    = "_oauth2_proxy"
	LocaleCookie   = "v-locale"
	AuthFlagCookie = "v-authenticated"
)

// maxBodyBytes caps how much of any platform response is read into memory.
const maxBodyBytes = 512 * 1024

// Authenticator produces a platform session credential.
type Authenticator interface {
	Authenticate(ctx context.Context) (*models.SessionCredential, error)
}

// StaticAuthenticator returns a fixed credential, for sessions captured
// outside the login handshake.
type StaticAuthenticator struct {
	Credential *models.SessionCredential
}

func (a *StaticAuthenticator) Authenticate(ctx context.Context) (*models.SessionCredential, error) {
	if a.Credential == nil || !a.Credential.Complete() {
		return nil, fmt.Errorf("%w: static session is missing cookies", shared.ErrMissingCredentials)
	}
	return a.Credential, nil
}

// CookieJar accumulates cookies across the redirect hops of the login
// handshake. The jar is deliberately domain-blind: the handshake never
// leaves the platform's hosts, and the login service expects to see its
// cookies echoed on every hop.
type CookieJar struct {
	cookies map[string]string
}

func NewCookieJar() *CookieJar {
	return &CookieJar{cookies: make(map[string]string)}
}

// Merge stores every cookie set by resp, later values overwriting earlier
// ones.
func (j *CookieJar) Merge(resp *http.Response) {
	for _, c := range resp.Cookies() {
		if c.Name == "" {
			continue
		}
		j.cookies[c.Name] = c.Value
	}
}

// Set stores a single cookie value.
func (j *CookieJar) Set(name, value string) {
	j.cookies[name] = value
}

// Get returns the value of a named cookie, empty when absent.
func (j *CookieJar) Get(name string) string {
	return j.cookies[name]
}

// Has reports whether every named cookie is present with a non-empty value.
func (j *CookieJar) Has(names ...string) bool {
	for _, n := range names {
		if j.cookies[n] == "" {
			return false
		}
	}
	return true
}

// Header renders the jar as a Cookie header value with names sorted for a
// stable wire form.
func (j *CookieJar) Header() string {
	names := make([]string, 0, len(j.cookies))
	for n := range j.cookies {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + j.cookies[n]
	}
	return strings.Join(parts, "; ")
}

// readBody drains and closes a response body, bounded by maxBodyBytes.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// discardBody closes a response body whose content is not needed.
func discardBody(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}

// snippet condenses a response body into a single short line for error
// messages.
func snippet(body []byte) string {
	const max = 200
	s := strings.Join(strings.Fields(string(body)), " ")
	if rs := []rune(s); len(rs) > max {
		return string(rs[:max]) + "..."
	}
	return s
}
