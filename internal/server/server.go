// package server contains the routing and handler plumbing for the short-lived
// localhost listener used during interactive authorization.
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is implemented by handlers that know their own routes, so the
// listener can register them without a separate route table.
type Handler interface {
	http.Handler
	Routes() []string // path patterns this handler serves
}

// Router registers handlers and middleware for the callback listener.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// LogRequests returns middleware that records each request's method and path.
// The redirect leg is the only traffic the listener sees, so this is mostly a
// breadcrumb for diagnosing misconfigured redirect URIs.
func LogRequests(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("callback listener request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
