// Package server provides HTTP routing, middleware, and the OAuth callback
// listener used during interactive authorization.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, with
// method matching delegated to the mux's "METHOD /path" patterns.
//
// # OAuth Callback Handler
//
// [CallbackHandler] receives the redirect leg of an authorization code flow.
//
// The handler validates the state parameter (CSRF protection) and delivers the
// authorization code through a channel; the token exchange itself happens in
// the session manager, which knows the verifier and client credentials.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs an authentication command, a temporary HTTP server starts
// on the configured localhost port, handles the redirect, and shuts down after
// the code is delivered or the flow times out.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
