package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed      = fmt.Errorf("authentication failed")
	ErrAuthUnavailable = fmt.Errorf("no authentication strategy succeeded")
	ErrAuthExpired     = fmt.Errorf("access token expired")
	ErrAuthTimeout     = fmt.Errorf("timed out waiting for authorization callback")
	ErrRefreshFailed   = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken  = fmt.Errorf("no refresh token available")
	ErrStateMismatch   = fmt.Errorf("authorization state mismatch")

	// Remote call errors
	ErrExhaustedRetries = fmt.Errorf("exhausted retries")
	ErrFatalClient      = fmt.Errorf("fatal client error")
	ErrRateLimited      = fmt.Errorf("rate limited")

	// Catalog errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Checkpoint errors
	ErrCheckpointCorrupt = fmt.Errorf("checkpoint unreadable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
