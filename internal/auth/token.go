package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// expiryMargin is how early a token is treated as expired, so a request never
// leaves with a token about to lapse mid-flight.
const expiryMargin = 60 * time.Second

// Token is a stored credential for one catalog. A zero Expiry means the token
// never expires (personal tokens).
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// Valid reports whether the access token is present and not within the expiry
// margin at the given time.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Before(t.Expiry.Add(-expiryMargin))
}

// Type returns the token type, defaulting to Bearer.
func (t *Token) Type() string {
	if t.TokenType == "" {
		return "Bearer"
	}
	return t.TokenType
}

// fromOAuth2 converts an oauth2 token to the stored form.
func fromOAuth2(tok *oauth2.Token) *Token {
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

// Cache persists tokens per catalog in a single JSON file. Writes go through
// a temp file and rename, so a crash mid-write cannot corrupt stored tokens.
type Cache struct {
	path string
	mu   sync.Mutex
}

// NewCache creates a token cache backed by the given file path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Load returns the stored token for a catalog, or nil when none is stored.
func (c *Cache) Load(catalog models.Catalog) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.read()
	if err != nil {
		return nil, err
	}
	return tokens[catalog.String()], nil
}

// Store saves the token for a catalog, preserving other catalogs' entries.
func (c *Cache) Store(catalog models.Catalog, token *Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.read()
	if err != nil {
		return err
	}
	tokens[catalog.String()] = token
	return c.write(tokens)
}

// Clear removes the stored token for a catalog.
func (c *Cache) Clear(catalog models.Catalog) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.read()
	if err != nil {
		return err
	}
	delete(tokens, catalog.String())
	return c.write(tokens)
}

func (c *Cache) read() (map[string]*Token, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return map[string]*Token{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	tokens := map[string]*Token{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}
	return tokens, nil
}

func (c *Cache) write(tokens map[string]*Token) error {
	data, err := shared.MarshalJSON(tokens, true)
	if err != nil {
		return fmt.Errorf("failed to encode token cache: %w", err)
	}
	return shared.WriteFileAtomic(c.path, data, 0600)
}
