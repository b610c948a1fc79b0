package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "tokens.json"))
}

func testManager(t *testing.T, creds Credentials, cache *Cache) *Manager {
	t.Helper()
	return NewManager(models.CatalogTidal, creds, cache, shared.ServerConfig{Host: "localhost", Port: 0}, shared.NewLogger(io.Discard))
}

// tokenEndpoint serves OAuth2 token responses and counts grant types seen.
func tokenEndpoint(t *testing.T, accessToken string, grants *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grants.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": accessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
}

func TestTokenValid(t *testing.T) {
	now := time.Now()

	tc := []struct {
		name  string
		token *Token
		want  bool
	}{
		{"nil token", nil, false},
		{"empty access token", &Token{}, false},
		{"no expiry never expires", &Token{AccessToken: "x"}, true},
		{"fresh", &Token{AccessToken: "x", Expiry: now.Add(time.Hour)}, true},
		{"expired", &Token{AccessToken: "x", Expiry: now.Add(-time.Hour)}, false},
		{"inside margin", &Token{AccessToken: "x", Expiry: now.Add(30 * time.Second)}, false},
		{"just outside margin", &Token{AccessToken: "x", Expiry: now.Add(90 * time.Second)}, true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCache(t *testing.T) {
	t.Run("round trip preserves other catalogs", func(t *testing.T) {
		cache := testCache(t)

		if err := cache.Store(models.CatalogTidal, &Token{AccessToken: "t1", RefreshToken: "r1"}); err != nil {
			t.Fatal(err)
		}
		if err := cache.Store(models.CatalogSpotify, &Token{AccessToken: "s1"}); err != nil {
			t.Fatal(err)
		}

		tok, err := cache.Load(models.CatalogTidal)
		if err != nil {
			t.Fatal(err)
		}
		if tok == nil || tok.AccessToken != "t1" || tok.RefreshToken != "r1" {
			t.Errorf("unexpected token %+v", tok)
		}

		if err := cache.Clear(models.CatalogTidal); err != nil {
			t.Fatal(err)
		}
		tok, err = cache.Load(models.CatalogTidal)
		if err != nil {
			t.Fatal(err)
		}
		if tok != nil {
			t.Errorf("expected nil after clear, got %+v", tok)
		}

		other, err := cache.Load(models.CatalogSpotify)
		if err != nil {
			t.Fatal(err)
		}
		if other == nil || other.AccessToken != "s1" {
			t.Error("clearing one catalog should not touch another")
		}
	})

	t.Run("missing file loads empty", func(t *testing.T) {
		cache := testCache(t)
		tok, err := cache.Load(models.CatalogTidal)
		if err != nil {
			t.Fatal(err)
		}
		if tok != nil {
			t.Errorf("expected nil, got %+v", tok)
		}
	})

	t.Run("corrupt file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewCache(path).Load(models.CatalogTidal); err == nil {
			t.Error("expected error for corrupt cache")
		}
	})
}

func TestManagerMode(t *testing.T) {
	tc := []struct {
		name  string
		creds Credentials
		want  Mode
	}{
		{"personal wins", Credentials{PersonalToken: "p", ClientID: "c", ClientSecret: "s"}, ModePersonal},
		{"client credentials", Credentials{ClientID: "c", ClientSecret: "s"}, ModeClientCredentials},
		{"pkce", Credentials{ClientID: "c"}, ModePKCE},
		{"none", Credentials{}, ModeNone},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := testManager(t, tt.creds, nil)
			if got := m.Mode(); got != tt.want {
				t.Errorf("Mode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManagerToken(t *testing.T) {
	ctx := context.Background()

	t.Run("personal token passes through", func(t *testing.T) {
		m := testManager(t, Credentials{PersonalToken: "personal"}, nil)

		tok, err := m.Token(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "personal" {
			t.Errorf("got %q", tok.AccessToken)
		}
		if !tok.Valid(time.Now().Add(24 * 365 * time.Hour)) {
			t.Error("personal tokens should never expire")
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		m := testManager(t, Credentials{}, nil)
		if _, err := m.Token(ctx); !errors.Is(err, shared.ErrAuthUnavailable) {
			t.Errorf("expected ErrAuthUnavailable, got %v", err)
		}
	})

	t.Run("client credentials grant", func(t *testing.T) {
		var grants atomic.Int32
		srv := tokenEndpoint(t, "app-token", &grants)
		defer srv.Close()

		m := testManager(t, Credentials{ClientID: "c", ClientSecret: "s", TokenURL: srv.URL}, nil)

		tok, err := m.Token(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "app-token" {
			t.Errorf("got %q", tok.AccessToken)
		}

		// Second call reuses the in-memory token.
		if _, err := m.Token(ctx); err != nil {
			t.Fatal(err)
		}
		if grants.Load() != 1 {
			t.Errorf("expected 1 grant, got %d", grants.Load())
		}
	})

	t.Run("pkce uses cached token without interaction", func(t *testing.T) {
		cache := testCache(t)
		if err := cache.Store(models.CatalogTidal, &Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}); err != nil {
			t.Fatal(err)
		}

		m := testManager(t, Credentials{ClientID: "c"}, cache)
		m.flow = func(ctx context.Context) (*oauth2.Token, error) {
			t.Fatal("interactive flow should not run")
			return nil, nil
		}

		tok, err := m.Token(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "cached" {
			t.Errorf("got %q", tok.AccessToken)
		}
	})

	t.Run("pkce refreshes expired cached token", func(t *testing.T) {
		var grants atomic.Int32
		srv := tokenEndpoint(t, "refreshed", &grants)
		defer srv.Close()

		cache := testCache(t)
		if err := cache.Store(models.CatalogTidal, &Token{
			AccessToken:  "stale",
			RefreshToken: "refresh-me",
			Expiry:       time.Now().Add(-time.Hour),
		}); err != nil {
			t.Fatal(err)
		}

		m := testManager(t, Credentials{ClientID: "c", TokenURL: srv.URL}, cache)
		m.flow = func(ctx context.Context) (*oauth2.Token, error) {
			t.Fatal("interactive flow should not run")
			return nil, nil
		}

		tok, err := m.Token(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "refreshed" {
			t.Errorf("got %q", tok.AccessToken)
		}
		if tok.RefreshToken != "refresh-me" {
			t.Errorf("refresh token should survive rotation, got %q", tok.RefreshToken)
		}

		// The refreshed token must be persisted.
		cached, err := cache.Load(models.CatalogTidal)
		if err != nil {
			t.Fatal(err)
		}
		if cached.AccessToken != "refreshed" {
			t.Errorf("cache holds %q", cached.AccessToken)
		}
	})

	t.Run("pkce falls back to interactive flow", func(t *testing.T) {
		cache := testCache(t)

		var flowRuns atomic.Int32
		m := testManager(t, Credentials{ClientID: "c"}, cache)
		m.flow = func(ctx context.Context) (*oauth2.Token, error) {
			flowRuns.Add(1)
			return &oauth2.Token{
				AccessToken:  "interactive",
				RefreshToken: "new-refresh",
				Expiry:       time.Now().Add(time.Hour),
			}, nil
		}

		tok, err := m.Token(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "interactive" {
			t.Errorf("got %q", tok.AccessToken)
		}
		if flowRuns.Load() != 1 {
			t.Errorf("expected 1 flow run, got %d", flowRuns.Load())
		}

		cached, err := cache.Load(models.CatalogTidal)
		if err != nil {
			t.Fatal(err)
		}
		if cached == nil || cached.AccessToken != "interactive" {
			t.Error("interactive token should be cached")
		}
	})
}

func TestManagerAuthorize(t *testing.T) {
	m := testManager(t, Credentials{PersonalToken: "personal"}, nil)

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := m.Authorize(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer personal" {
		t.Errorf("got %q", got)
	}
}

func TestManagerInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("pkce keeps refresh token", func(t *testing.T) {
		cache := testCache(t)
		if err := cache.Store(models.CatalogTidal, &Token{
			AccessToken:  "live",
			RefreshToken: "keep-me",
			Expiry:       time.Now().Add(time.Hour),
		}); err != nil {
			t.Fatal(err)
		}

		m := testManager(t, Credentials{ClientID: "c"}, cache)
		if _, err := m.Token(ctx); err != nil {
			t.Fatal(err)
		}

		if err := m.Invalidate(ctx); err != nil {
			t.Fatal(err)
		}

		cached, err := cache.Load(models.CatalogTidal)
		if err != nil {
			t.Fatal(err)
		}
		if cached.AccessToken != "" {
			t.Errorf("access token should be cleared, got %q", cached.AccessToken)
		}
		if cached.RefreshToken != "keep-me" {
			t.Errorf("refresh token should survive, got %q", cached.RefreshToken)
		}
	})

	t.Run("personal token is untouched", func(t *testing.T) {
		m := testManager(t, Credentials{PersonalToken: "p"}, nil)
		if _, err := m.Token(ctx); err != nil {
			t.Fatal(err)
		}

		if err := m.Invalidate(ctx); err != nil {
			t.Fatal(err)
		}

		tok, err := m.Token(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if tok.AccessToken != "p" {
			t.Errorf("got %q", tok.AccessToken)
		}
	})
}
