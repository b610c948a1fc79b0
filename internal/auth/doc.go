// Package auth manages catalog credentials: a file-backed token cache and a
// session manager that picks the cheapest available authorization mode.
//
// Three modes are supported, tried in order:
//
//  1. Personal token: a long-lived token taken straight from configuration.
//  2. Client credentials: an app-only OAuth2 grant for endpoints that need no
//     user context.
//  3. Authorization code with PKCE: an interactive browser flow through a
//     temporary localhost listener, used when user-scoped access is required.
//
// Tokens obtained interactively are cached on disk and refreshed silently on
// later runs; the full browser flow only reappears when the refresh token is
// gone or rejected.
package auth
