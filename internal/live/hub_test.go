package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T) (*httptest.Server, *Session) {
	t.Helper()
	session, _, _ := newTestSession(t)
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	r := chi.NewRouter()
	NewHub(session).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, session
}

func TestProfileEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/profile/vitalik.eth")
	if err != nil {
		t.Fatalf("GET profile: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if profile.Name != "vitalik.eth" || profile.DisplayName != "Vitalik" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if !strings.Contains(profile.DescriptionHTML, "<p>ethereum</p>") {
		t.Fatalf("description not rendered to HTML: %q", profile.DescriptionHTML)
	}
}

func TestProfileNormalizesName(t *testing.T) {
	srv, _ := newTestServer(t)

	// Bare label without .eth resolves to the same identity.
	resp, err := http.Get(srv.URL + "/api/profile/VITALIK")
	if err != nil {
		t.Fatalf("GET profile: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestProfileNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/profile/nobody.eth")
	if err != nil {
		t.Fatalf("GET profile: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIndexServed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q, want text/html", ct)
	}
}
