package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/cadence/internal/server"
	"github.com/desertthunder/cadence/internal/shared"
)

// flowTimeout bounds how long the interactive flow waits for the user to
// approve access in the browser.
const flowTimeout = 300 * time.Second

// pkceFlow executes the OAuth2 authorization code flow with PKCE using a
// temporary local HTTP server for the redirect leg.
func (m *Manager) pkceFlow(ctx context.Context) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	conf := m.oauthConfig()
	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(m.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", m.server.Host, m.server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		m.logger.Infof("starting authorization listener at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if err := shared.OpenBrowser(authURL); err != nil {
		m.logger.Warnf("failed to open browser automatically %v", err)
		m.logger.Infof("open this URL in your browser:\n%s", authURL)
	}

	timeout := time.NewTimer(flowTimeout)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("listener error: %w", err)
	case <-timeout.C:
		shutdown(httpServer, m.logger)
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrAuthTimeout, flowTimeout)
	case <-ctx.Done():
		shutdown(httpServer, m.logger)
		return nil, ctx.Err()
	}

	shutdown(httpServer, m.logger)

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	token, err := conf.Exchange(ctx, result.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)
	}

	return token, nil
}

func shutdown(srv *http.Server, logger *log.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down listener", "error", err)
	}
}
