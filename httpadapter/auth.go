package httpadapter

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
)

// Credentials is a username/password pair.
type Credentials struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password" json:"-"`
}

// Authenticator answers an authentication challenge. It receives the 401 or
// 407 response and returns the value for the Authorization (or
// Proxy-Authorization) header, or ok=false to leave the challenge unanswered.
type Authenticator interface {
	Authenticate(challenge *http.Response) (value string, ok bool)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(challenge *http.Response) (string, bool)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(challenge *http.Response) (string, bool) {
	return f(challenge)
}

// BasicAuthenticator answers Basic challenges with fixed credentials.
type BasicAuthenticator struct {
	creds Credentials
}

// BasicAuth creates a Basic challenge responder.
func BasicAuth(username, password string) *BasicAuthenticator {
	return &BasicAuthenticator{creds: Credentials{Username: username, Password: password}}
}

// Username returns the configured username.
func (a *BasicAuthenticator) Username() string {
	return a.creds.Username
}

// Authenticate implements Authenticator.
func (a *BasicAuthenticator) Authenticate(challenge *http.Response) (string, bool) {
	header := "WWW-Authenticate"
	if challenge.StatusCode == http.StatusProxyAuthRequired {
		header = "Proxy-Authenticate"
	}
	for _, ch := range challenge.Header.Values(header) {
		if challengeScheme(ch) == "basic" {
			raw := a.creds.Username + ":" + a.creds.Password
			return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw)), true
		}
	}
	return "", false
}

// challengeScheme returns the lower-cased auth scheme of a challenge header value.
func challengeScheme(challenge string) string {
	challenge = strings.TrimSpace(challenge)
	if i := strings.IndexAny(challenge, " \t,"); i >= 0 {
		challenge = challenge[:i]
	}
	return strings.ToLower(challenge)
}

// authHeaderFor returns the request header that answers a challenge with the
// given status, or "" if the status is not a challenge.
func authHeaderFor(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return "Authorization"
	case http.StatusProxyAuthRequired:
		return "Proxy-Authorization"
	default:
		return ""
	}
}

// challengeTransport answers one authentication challenge per request using
// the active Authenticator. A request that already carries the answering
// header is not re-sent, so a rejected credential surfaces as the 401 itself.
// Cookies set by the challenge response are stored in jar and sent with the
// re-send.
type challengeTransport struct {
	next        http.RoundTripper
	auth        Authenticator
	jar         CookieStore
	onChallenge func(ctx context.Context, statusCode int)
}

func (t *challengeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || t.auth == nil {
		return resp, err
	}

	header := authHeaderFor(resp.StatusCode)
	if header == "" || req.Header.Get(header) != "" {
		return resp, nil
	}

	value, ok := t.auth.Authenticate(resp)
	if !ok {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return resp, nil
		}
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	retry.Header.Set(header, value)
	t.keepChallengeCookies(resp, retry)

	if t.onChallenge != nil {
		t.onChallenge(req.Context(), resp.StatusCode)
	}
	discardBody(resp.Body)
	return t.next.RoundTrip(retry)
}

// keepChallengeCookies stores the cookies of a challenge response and makes
// the re-send carry the values the jar accepted in place of older ones.
func (t *challengeTransport) keepChallengeCookies(challenge *http.Response, retry *http.Request) {
	set := challenge.Cookies()
	if t.jar == nil || len(set) == 0 {
		return
	}
	t.jar.SetCookies(retry.URL, set)

	names := make(map[string]bool, len(set))
	for _, c := range set {
		names[c.Name] = true
	}
	existing := retry.Cookies()
	retry.Header.Del("Cookie")
	for _, c := range existing {
		if !names[c.Name] {
			retry.AddCookie(c)
		}
	}
	for _, c := range t.jar.Cookies(retry.URL) {
		if names[c.Name] {
			retry.AddCookie(c)
		}
	}
}
