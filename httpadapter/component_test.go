package httpadapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/restadapter/component"
	"github.com/kbukum/restadapter/security"
)

func TestComponent_Lifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	comp := NewComponent(Config{Name: "test-http"})

	// Before Start, adapter should be nil
	if comp.Adapter() != nil {
		t.Error("Adapter() should be nil before Start()")
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if comp.Adapter() == nil {
		t.Fatal("Adapter() should not be nil after Start()")
	}

	health := comp.Health(context.Background())
	if health.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", health.Status)
	}
	if health.Name != "test-http" {
		t.Errorf("expected name test-http, got %s", health.Name)
	}

	resp, err := comp.Adapter().Do(context.Background(), &Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Close()

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestComponent_StartInvalidConfig(t *testing.T) {
	comp := NewComponent(Config{Proxy: "bogus://x"})
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected Start() to fail for an invalid proxy")
	}
	if err := comp.Stop(context.Background()); err != nil {
		t.Errorf("Stop() without a started adapter should be a no-op, got %v", err)
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent(Config{Proxy: "socks5://u:p@127.0.0.1:1080"})
	if comp.Name() != defaultName {
		t.Errorf("Name() = %q", comp.Name())
	}

	desc := comp.Describe()
	if desc.Type != "http-adapter" {
		t.Errorf("Type = %q", desc.Type)
	}
	if strings.Contains(desc.Details, ":p@") {
		t.Errorf("Details must not leak the proxy password: %q", desc.Details)
	}

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer comp.Stop(context.Background())
	if d := comp.Describe().Details; !strings.Contains(d, "redirects=true") {
		t.Errorf("Details = %q", d)
	}
}

func TestComponent_DescribeTLS(t *testing.T) {
	comp := NewComponent(Config{TLS: &security.TLSConfig{SkipVerify: true, MinVersion: "1.3"}})
	if d := comp.Describe().Details; !strings.Contains(d, "tls=[verify=off min=1.3]") {
		t.Errorf("Details = %q", d)
	}
}
