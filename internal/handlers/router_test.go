package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterHealthAndReadiness(t *testing.T) {
	srv := httptest.NewServer(Router(RouterOptions{}))
	defer srv.Close()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestRouterReadinessFailure(t *testing.T) {
	srv := httptest.NewServer(Router(RouterOptions{
		Ready: func(*http.Request) error { return errors.New("store unreachable") },
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("GET /readyz = %d, want 503", resp.StatusCode)
	}
}
