package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kbukum/restadapter/testutil"
)

// TestAdapter_Session drives one adapter through a recording server the
// way a client library would: log in, keep the session cookie, follow a
// redirect and answer a Basic challenge.
func TestAdapter_Session(t *testing.T) {
	srv := testutil.T(t).Server(testutil.WithAccount("alice", "secret"))
	a := newTestAdapter(t)
	a.SetDefaultHeader("X-Client", "session-test")
	ctx := context.Background()

	mustOK := func(t *testing.T, path string) map[string]any {
		t.Helper()
		resp, err := a.Execute(ctx, &Request{URL: srv.URL() + path})
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Close()
		var out map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		return out
	}

	t.Run("cookies persist", func(t *testing.T) {
		mustOK(t, "/cookies/set?session=abc123")
		if got := mustOK(t, "/cookies")["session"]; got != "abc123" {
			t.Errorf("session cookie = %v", got)
		}
	})

	t.Run("redirect chain keeps defaults", func(t *testing.T) {
		srv.Reset(ctx)
		mustOK(t, "/redirect/2")
		reqs := srv.Requests()
		if len(reqs) != 3 {
			t.Fatalf("expected 3 hops, got %d", len(reqs))
		}
		for _, r := range reqs {
			if r.Header.Get("X-Client") != "session-test" {
				t.Errorf("hop %s missing default header", r.Path)
			}
		}
	})

	t.Run("basic challenge", func(t *testing.T) {
		srv.Reset(ctx)
		_, err := a.Execute(ctx, &Request{URL: srv.URL() + "/basic-auth"})
		if code, ok := StatusCode(err); !ok || code != http.StatusUnauthorized {
			t.Fatalf("expected 401 before authenticating, got %v", err)
		}

		a.Authenticate(Credentials{Username: "alice", Password: "secret"})
		srv.Reset(ctx)
		if got := mustOK(t, "/basic-auth")["user"]; got != "alice" {
			t.Errorf("user = %v", got)
		}
		reqs := srv.Requests()
		if len(reqs) != 2 || reqs[0].Header.Get("Authorization") != "" || reqs[1].Header.Get("Authorization") == "" {
			t.Errorf("expected unauthenticated attempt then one retry, got %d requests", len(reqs))
		}
	})
}
