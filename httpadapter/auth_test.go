package httpadapter

import (
	"encoding/base64"
	"net/http"
	"testing"
)

func TestBasicAuthenticator(t *testing.T) {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret"))

	tests := []struct {
		name   string
		status int
		header string
		value  string
		wantOK bool
	}{
		{"basic challenge", http.StatusUnauthorized, "WWW-Authenticate", `Basic realm="api"`, true},
		{"case insensitive", http.StatusUnauthorized, "WWW-Authenticate", `basic realm="api"`, true},
		{"bare scheme", http.StatusUnauthorized, "WWW-Authenticate", "Basic", true},
		{"proxy challenge", http.StatusProxyAuthRequired, "Proxy-Authenticate", `Basic realm="proxy"`, true},
		{"proxy status reads proxy header", http.StatusProxyAuthRequired, "WWW-Authenticate", `Basic realm="api"`, false},
		{"bearer only", http.StatusUnauthorized, "WWW-Authenticate", `Bearer realm="api"`, false},
		{"no challenge", http.StatusUnauthorized, "", "", false},
	}

	auth := BasicAuth("alice", "secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set(tt.header, tt.value)
			}
			got, ok := auth.Authenticate(resp)
			if ok != tt.wantOK {
				t.Fatalf("Authenticate() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != want {
				t.Errorf("Authenticate() = %q, want %q", got, want)
			}
		})
	}

	if auth.Username() != "alice" {
		t.Errorf("Username() = %q", auth.Username())
	}
}

func TestBasicAuthenticator_MultipleChallenges(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusUnauthorized, Header: http.Header{}}
	resp.Header.Add("WWW-Authenticate", `Bearer realm="api"`)
	resp.Header.Add("WWW-Authenticate", `Basic realm="api"`)

	if _, ok := BasicAuth("u", "p").Authenticate(resp); !ok {
		t.Error("Basic challenge among several should be answered")
	}
}

func TestAuthenticatorFunc(t *testing.T) {
	var called bool
	f := AuthenticatorFunc(func(*http.Response) (string, bool) {
		called = true
		return "Token abc", true
	})
	v, ok := f.Authenticate(&http.Response{})
	if !called || !ok || v != "Token abc" {
		t.Errorf("AuthenticatorFunc returned %q, %v", v, ok)
	}
}

func TestAuthHeaderFor(t *testing.T) {
	tests := map[int]string{
		http.StatusUnauthorized:      "Authorization",
		http.StatusProxyAuthRequired: "Proxy-Authorization",
		http.StatusForbidden:         "",
		http.StatusOK:                "",
	}
	for status, want := range tests {
		if got := authHeaderFor(status); got != want {
			t.Errorf("authHeaderFor(%d) = %q, want %q", status, got, want)
		}
	}
}
