package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// maxRedirectHops bounds each redirect chase of the login handshake. The
// real chains run four to six hops; anything past twenty is a loop.
const maxRedirectHops = 20

// Handshake phase names, used in error reports.
const (
	phaseEntry   = "entry-chase"
	phaseSubmit  = "credential-submit"
	phaseSession = "session-chase"
)

// requiredCookies are the two cookies an authenticated session rests on.
var requiredCookies = []string{TokenCookie, ProxyCookie}

// The request id rides on redirect URLs when the login service issues it
// there, otherwise it is embedded in the login form markup.
var (
	requestIDInput  = regexp.MustCompile(`name="requestId"[^>]*value="([^"]+)"`)
	requestIDInline = regexp.MustCompile(`requestId["']?\s*[:=]\s*["']?([A-Za-z0-9_-]+)`)
)

// SessionConfig points the negotiator at a platform deployment.
type SessionConfig struct {
	// EntryURL starts the handshake, typically the profile page that
	// bounces unauthenticated visitors into the login service.
	EntryURL string
	// LoginURL receives the credential form post.
	LoginURL string
	Username string
	Password string
}

// HandshakeError reports a failed handshake phase with enough of the
// server's response to diagnose it without re-running the login.
type HandshakeError struct {
	Phase   string
	Status  int
	Snippet string
	Err     error
}

func (e *HandshakeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("login handshake failed during %s (status %d): %v", e.Phase, e.Status, e.Err)
	}
	return fmt.Sprintf("login handshake failed during %s: %v", e.Phase, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// SessionNegotiator implements [Authenticator] against the platform's hosted
// login service.
type SessionNegotiator struct {
	config     SessionConfig
	httpClient *http.Client
}

// NewSessionNegotiator builds a negotiator whose HTTP client surfaces every
// 3xx response instead of following it, so intermediate Set-Cookie headers
// can be harvested.
func NewSessionNegotiator(config SessionConfig) *SessionNegotiator {
	return &SessionNegotiator{
		config: config,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Authenticate runs the three-phase handshake and returns the harvested
// session credential.
func (n *SessionNegotiator) Authenticate(ctx context.Context) (*models.SessionCredential, error) {
	if n.config.Username == "" || n.config.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMissingCredentials)
	}

	jar := NewCookieJar()

	requestID, err := n.chaseEntry(ctx, jar)
	if err != nil {
		return nil, err
	}

	callback, err := n.submitCredentials(ctx, jar, requestID)
	if err != nil {
		return nil, err
	}

	if err := n.chaseSession(ctx, jar, callback); err != nil {
		return nil, err
	}

	return &models.SessionCredential{
		AuthToken:    jar.Get(TokenCookie),
		ProxySession: jar.Get(ProxyCookie),
	}, nil
}

// chaseEntry follows the entry redirect chain to the hosted login form and
// extracts the request id that must accompany the credential post. The id is
// taken from redirect URL queries when present, falling back to the form
// markup of the terminal page.
func (n *SessionNegotiator) chaseEntry(ctx context.Context, jar *CookieJar) (string, error) {
	current, err := url.Parse(n.config.EntryURL)
	if err != nil {
		return "", &HandshakeError{Phase: phaseEntry,
			Err: fmt.Errorf("%w: bad entry url %q", shared.ErrProtocol, n.config.EntryURL)}
	}

	requestID := current.Query().Get("requestId")

	for hop := 0; ; hop++ {
		if hop > maxRedirectHops {
			return "", &HandshakeError{Phase: phaseEntry,
				Err: fmt.Errorf("%w: redirect chain exceeded %d hops", shared.ErrProtocol, maxRedirectHops)}
		}

		resp, err := n.get(ctx, jar, current)
		if err != nil {
			return "", &HandshakeError{Phase: phaseEntry, Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
		}
		jar.Merge(resp)

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			next, err := resolveLocation(current, resp)
			discardBody(resp)
			if err != nil {
				return "", &HandshakeError{Phase: phaseEntry, Status: resp.StatusCode, Err: err}
			}
			if id := next.Query().Get("requestId"); id != "" {
				requestID = id
			}
			current = next
			continue
		}

		body, err := readBody(resp)
		if err != nil {
			return "", &HandshakeError{Phase: phaseEntry, Status: resp.StatusCode,
				Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
		}
		if resp.StatusCode != http.StatusOK {
			return "", &HandshakeError{Phase: phaseEntry, Status: resp.StatusCode, Snippet: snippet(body),
				Err: fmt.Errorf("%w: unexpected status fetching login form", shared.ErrProtocol)}
		}

		if requestID == "" {
			requestID = extractRequestID(string(body))
		}
		if requestID == "" {
			return "", &HandshakeError{Phase: phaseEntry, Status: resp.StatusCode, Snippet: snippet(body),
				Err: fmt.Errorf("%w: login form carries no request id", shared.ErrProtocol)}
		}
		return requestID, nil
	}
}

// submitCredentials posts the login form. A correct submission always
// answers with a redirect into the callback chain; a 200 here is the login
// form re-rendered, which means the credentials were rejected.
func (n *SessionNegotiator) submitCredentials(ctx context.Context, jar *CookieJar, requestID string) (*url.URL, error) {
	target, err := url.Parse(n.config.LoginURL)
	if err != nil {
		return nil, &HandshakeError{Phase: phaseSubmit,
			Err: fmt.Errorf("%w: bad login url %q", shared.ErrProtocol, n.config.LoginURL)}
	}

	form := url.Values{}
	form.Set("username", n.config.Username)
	form.Set("password", n.config.Password)
	form.Set("requestId", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &HandshakeError{Phase: phaseSubmit, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if h := jar.Header(); h != "" {
		req.Header.Set("Cookie", h)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, &HandshakeError{Phase: phaseSubmit, Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
	}
	jar.Merge(resp)

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		body, _ := readBody(resp)
		return nil, &HandshakeError{Phase: phaseSubmit, Status: resp.StatusCode, Snippet: snippet(body),
			Err: fmt.Errorf("%w: login did not redirect, credentials were likely rejected", shared.ErrProtocol)}
	}

	next, err := resolveLocation(target, resp)
	discardBody(resp)
	if err != nil {
		return nil, &HandshakeError{Phase: phaseSubmit, Status: resp.StatusCode, Err: err}
	}
	return next, nil
}

// chaseSession follows the callback chain until both session cookies are in
// the jar, stopping early as soon as they appear.
func (n *SessionNegotiator) chaseSession(ctx context.Context, jar *CookieJar, start *url.URL) error {
	if jar.Has(requiredCookies...) {
		return nil
	}

	current := start
	for hop := 0; ; hop++ {
		if hop > maxRedirectHops {
			return &HandshakeError{Phase: phaseSession,
				Err: fmt.Errorf("%w: session cookies still missing after %d hops", shared.ErrAuthMissing, maxRedirectHops)}
		}

		resp, err := n.get(ctx, jar, current)
		if err != nil {
			return &HandshakeError{Phase: phaseSession, Err: fmt.Errorf("%w: %v", shared.ErrNetwork, err)}
		}
		jar.Merge(resp)

		if jar.Has(requiredCookies...) {
			discardBody(resp)
			return nil
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			next, err := resolveLocation(current, resp)
			discardBody(resp)
			if err != nil {
				return &HandshakeError{Phase: phaseSession, Status: resp.StatusCode, Err: err}
			}
			current = next
			continue
		}

		body, _ := readBody(resp)
		return &HandshakeError{Phase: phaseSession, Status: resp.StatusCode, Snippet: snippet(body),
			Err: fmt.Errorf("%w: callback chain ended without session cookies", shared.ErrAuthMissing)}
	}
}

func (n *SessionNegotiator) get(ctx context.Context, jar *CookieJar, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if h := jar.Header(); h != "" {
		req.Header.Set("Cookie", h)
	}
	return n.httpClient.Do(req)
}

// resolveLocation resolves a redirect target against the URL that produced
// it, so relative Location headers work.
func resolveLocation(base *url.URL, resp *http.Response) (*url.URL, error) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, fmt.Errorf("%w: redirect without a location header", shared.ErrProtocol)
	}
	next, err := url.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect location %q", shared.ErrProtocol, loc)
	}
	return base.ResolveReference(next), nil
}

func extractRequestID(body string) string {
	if m := requestIDInput.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	if m := requestIDInline.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}
