package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// Mode identifies how a session obtains its credentials.
type Mode string

const (
	ModePersonal          Mode = "personal"
	ModeClientCredentials Mode = "client_credentials"
	ModePKCE              Mode = "pkce"
	ModeNone              Mode = "none"
)

// Credentials holds everything a catalog needs to authorize: configured
// secrets plus the provider's OAuth2 endpoints.
type Credentials struct {
	ClientID      string
	ClientSecret  string
	PersonalToken string
	RedirectURI   string
	Scopes        []string
	AuthURL       string
	TokenURL      string
}

// Manager is the session manager for one catalog. It implements
// httpx.AuthProvider: Authorize stamps requests with a valid token, and
// Invalidate reacts to a rejected token by forcing a refresh.
type Manager struct {
	catalog models.Catalog
	creds   Credentials
	cache   *Cache
	server  shared.ServerConfig
	logger  *log.Logger

	// now and flow are replaceable in tests.
	now  func() time.Time
	flow func(ctx context.Context) (*oauth2.Token, error)

	mu      sync.Mutex
	current *Token
}

// NewManager creates a session manager for the catalog.
func NewManager(catalog models.Catalog, creds Credentials, cache *Cache, server shared.ServerConfig, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	m := &Manager{
		catalog: catalog,
		creds:   creds,
		cache:   cache,
		server:  server,
		logger:  logger.With("catalog", catalog),
		now:     time.Now,
	}
	m.flow = m.pkceFlow
	return m
}

// Mode reports which authorization mode the configured credentials select.
func (m *Manager) Mode() Mode {
	switch {
	case m.creds.PersonalToken != "":
		return ModePersonal
	case m.creds.ClientSecret != "" && m.creds.ClientID != "":
		return ModeClientCredentials
	case m.creds.ClientID != "":
		return ModePKCE
	default:
		return ModeNone
	}
}

// Token returns a valid token for the catalog, acquiring or refreshing one as
// needed. Mode selection is by configured credentials: a personal token wins,
// then an app-only client credentials grant, then the interactive PKCE flow.
func (m *Manager) Token(ctx context.Context) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Valid(m.now()) {
		return m.current, nil
	}

	var (
		tok *Token
		err error
	)
	switch m.Mode() {
	case ModePersonal:
		tok = &Token{AccessToken: m.creds.PersonalToken}
	case ModeClientCredentials:
		tok, err = m.clientCredentialsToken(ctx)
	case ModePKCE:
		tok, err = m.pkceToken(ctx)
	default:
		return nil, fmt.Errorf("%w: no credentials configured for %s", shared.ErrAuthUnavailable, m.catalog)
	}
	if err != nil {
		return nil, err
	}

	m.current = tok
	return tok, nil
}

// Authorize implements httpx.AuthProvider.
func (m *Manager) Authorize(ctx context.Context, req *http.Request) error {
	tok, err := m.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return nil
}

// Invalidate implements httpx.AuthProvider. The in-memory access token is
// dropped so the next Token call acquires a fresh one; for PKCE sessions the
// cached access token is cleared too, keeping the refresh token.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Mode() == ModePersonal {
		// Nothing to refresh; the next rejection is terminal.
		return nil
	}

	if m.current != nil {
		m.current = &Token{RefreshToken: m.current.RefreshToken}
	}

	if m.Mode() == ModePKCE && m.cache != nil {
		cached, err := m.cache.Load(m.catalog)
		if err == nil && cached != nil {
			cached.AccessToken = ""
			if err := m.cache.Store(m.catalog, cached); err != nil {
				m.logger.Warn("failed to update token cache", "error", err)
			}
		}
	}

	return nil
}

// Status describes the session without acquiring new credentials.
func (m *Manager) Status() (Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode := m.Mode()
	if m.current.Valid(m.now()) {
		return mode, true
	}
	if mode == ModePKCE && m.cache != nil {
		if cached, err := m.cache.Load(m.catalog); err == nil && cached.Valid(m.now()) {
			return mode, true
		}
	}
	return mode, mode == ModePersonal
}

// clientCredentialsToken performs the app-only grant.
func (m *Manager) clientCredentialsToken(ctx context.Context) (*Token, error) {
	conf := &clientcredentials.Config{
		ClientID:     m.creds.ClientID,
		ClientSecret: m.creds.ClientSecret,
		TokenURL:     m.creds.TokenURL,
	}

	m.logger.Debug("requesting client credentials token")
	tok, err := conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: client credentials grant: %v", shared.ErrAuthFailed, err)
	}
	return fromOAuth2(tok), nil
}

// pkceToken resolves a user token: cached token first, then a silent refresh,
// then the full interactive flow.
func (m *Manager) pkceToken(ctx context.Context) (*Token, error) {
	var cached *Token
	if m.cache != nil {
		var err error
		if cached, err = m.cache.Load(m.catalog); err != nil {
			m.logger.Warn("token cache unreadable, ignoring", "error", err)
		}
	}

	if cached.Valid(m.now()) {
		return cached, nil
	}

	if cached != nil && cached.RefreshToken != "" {
		tok, err := m.refresh(ctx, cached.RefreshToken)
		if err == nil {
			return tok, nil
		}
		m.logger.Warn("token refresh failed, starting full authorization", "error", err)
	}

	m.logger.Info("starting interactive authorization")
	oauthTok, err := m.flow(ctx)
	if err != nil {
		return nil, err
	}

	tok := fromOAuth2(oauthTok)
	m.store(tok)
	return tok, nil
}

// refresh exchanges a refresh token for a new access token.
func (m *Manager) refresh(ctx context.Context, refreshToken string) (*Token, error) {
	conf := m.oauthConfig()
	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	oauthTok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	tok := fromOAuth2(oauthTok)
	if tok.RefreshToken == "" {
		// Providers that rotate refresh tokens omit the old one on renewal.
		tok.RefreshToken = refreshToken
	}
	m.store(tok)
	return tok, nil
}

func (m *Manager) store(tok *Token) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Store(m.catalog, tok); err != nil {
		m.logger.Warn("failed to persist token", "error", err)
	}
}

func (m *Manager) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     m.creds.ClientID,
		ClientSecret: m.creds.ClientSecret,
		RedirectURL:  m.creds.RedirectURI,
		Scopes:       m.creds.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  m.creds.AuthURL,
			TokenURL: m.creds.TokenURL,
		},
	}
}
