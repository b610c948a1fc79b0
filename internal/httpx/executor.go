// package httpx provides a retrying HTTP executor shared by all catalog clients.
//
// The executor owns retry classification, exponential backoff with jitter,
// rate-limit header interpretation, and credential refresh on authorization
// failures. Catalog clients describe a request once; the executor replays it
// until it succeeds, becomes fatal, or the wait budget runs out.
package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/cadence/internal/shared"
)

// errAuthorize marks a request that could not be signed at all.
var errAuthorize = errors.New("failed to authorize request")

// Policy controls retry behavior for an Executor.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// BaseBackoff seeds the exponential backoff for server errors.
	BaseBackoff time.Duration
	// MaxBackoff caps any single wait, including server-instructed waits.
	MaxBackoff time.Duration
	// RequestTimeout bounds each individual attempt.
	RequestTimeout time.Duration
	// WaitBudget caps the cumulative time spent sleeping between attempts.
	WaitBudget time.Duration
	// RPS throttles outgoing requests client-side. Zero disables throttling.
	RPS float64
}

// DefaultPolicy returns the policy used against catalog APIs.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     2,
		BaseBackoff:    15 * time.Second,
		MaxBackoff:     600 * time.Second,
		RequestTimeout: 20 * time.Second,
		WaitBudget:     600 * time.Second,
	}
}

// AuthProvider supplies credentials for outgoing requests and refreshes them
// when the server rejects them.
type AuthProvider interface {
	// Authorize attaches credentials to the request.
	Authorize(ctx context.Context, req *http.Request) error
	// Invalidate discards the current credentials so the next Authorize call
	// produces fresh ones. Called once per Do after a 401.
	Invalidate(ctx context.Context) error
}

// Request describes an HTTP call in a replayable form. The body is held as
// bytes so retries can resend it.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Executor issues HTTP requests with retries, backoff, and credential refresh.
type Executor struct {
	client  *http.Client
	policy  Policy
	auth    AuthProvider
	limiter *rate.Limiter
	logger  *log.Logger

	// sleep and jitter are replaceable in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// New creates an Executor. auth may be nil for unauthenticated endpoints.
func New(policy Policy, auth AuthProvider, logger *log.Logger) *Executor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	e := &Executor{
		client: &http.Client{},
		policy: policy,
		auth:   auth,
		logger: logger,
		sleep:  sleepContext,
		jitter: func() float64 { return 0.8 + rand.Float64()*0.7 },
	}
	if policy.RPS > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(policy.RPS), 1)
	}
	return e
}

// SetClient replaces the underlying HTTP client, usually with a test server's.
func (e *Executor) SetClient(c *http.Client) {
	e.client = c
}

// Do executes the request, retrying retryable failures until success, a fatal
// response, retry exhaustion, or context cancellation. On success the caller
// owns the response body.
func (e *Executor) Do(ctx context.Context, req Request) (*http.Response, error) {
	var waited time.Duration
	refreshed := false

	for attempt := 0; ; {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		resp, err := e.attempt(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// No credentials means no request left the process; retrying
			// cannot help, and callers match on the auth sentinels.
			if errors.Is(err, errAuthorize) {
				return nil, err
			}
			// Transport failures retry like server errors.
			e.logger.Warn("request failed", "method", req.Method, "url", req.URL, "error", err)
			delay := e.backoff(attempt)
			if attempt >= e.policy.MaxRetries {
				return nil, fmt.Errorf("%w: %s %s after %d attempts: %v", shared.ErrExhaustedRetries, req.Method, req.URL, attempt+1, err)
			}
			if waited, err = e.wait(ctx, delay, waited); err != nil {
				return nil, err
			}
			attempt++
			continue
		}

		switch {
		case resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusUnauthorized:
			drain(resp)
			if e.auth == nil || refreshed {
				return nil, fmt.Errorf("%w: %s %s rejected credentials", shared.ErrAuthExpired, req.Method, req.URL)
			}
			e.logger.Info("credentials rejected, refreshing", "url", req.URL)
			if err := e.auth.Invalidate(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
			}
			refreshed = true
			// A refresh does not consume a retry and needs no backoff.
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := e.rateLimitDelay(resp, attempt)
			drain(resp)
			e.logger.Warn("rate limited", "url", req.URL, "wait", delay)
			if attempt >= e.policy.MaxRetries {
				return nil, fmt.Errorf("%w: %s %s still rate limited after %d attempts", shared.ErrRateLimited, req.Method, req.URL, attempt+1)
			}
			if waited, err = e.wait(ctx, delay, waited); err != nil {
				return nil, err
			}
			attempt++
			continue

		case resp.StatusCode >= 500:
			status := resp.StatusCode
			drain(resp)
			e.logger.Warn("server error", "url", req.URL, "status", status)
			if attempt >= e.policy.MaxRetries {
				return nil, fmt.Errorf("%w: %s %s returned %d after %d attempts", shared.ErrExhaustedRetries, req.Method, req.URL, status, attempt+1)
			}
			if waited, err = e.wait(ctx, e.backoff(attempt), waited); err != nil {
				return nil, err
			}
			attempt++
			continue

		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrFatalClient, req.Method, req.URL, resp.StatusCode, bytes.TrimSpace(body))
		}
	}
}

// attempt issues one request with the per-attempt timeout applied.
func (e *Executor) attempt(ctx context.Context, req Request) (*http.Response, error) {
	if e.policy.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.policy.RequestTimeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	if e.auth != nil {
		if err := e.auth.Authorize(ctx, httpReq); err != nil {
			return nil, fmt.Errorf("%w: %w", errAuthorize, err)
		}
	}

	return e.client.Do(httpReq)
}

// wait sleeps for delay and tracks the cumulative total against the budget.
func (e *Executor) wait(ctx context.Context, delay time.Duration, waited time.Duration) (time.Duration, error) {
	if e.policy.WaitBudget > 0 && waited+delay > e.policy.WaitBudget {
		return waited, fmt.Errorf("%w: wait budget of %s exceeded", shared.ErrExhaustedRetries, e.policy.WaitBudget)
	}
	if err := e.sleep(ctx, delay); err != nil {
		return waited, err
	}
	return waited + delay, nil
}

// backoff computes the jittered exponential delay for the given attempt.
func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.policy.BaseBackoff << attempt
	if delay > e.policy.MaxBackoff {
		delay = e.policy.MaxBackoff
	}
	return e.applyJitter(delay)
}

// rateLimitDelay derives the wait for a 429 response. A Retry-After header
// wins and is a lower bound, so jitter only ever lengthens it; otherwise the
// X-RateLimit token bucket headers estimate how long the bucket needs to
// replenish; otherwise fall back to exponential backoff.
func (e *Executor) rateLimitDelay(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			instructed := time.Duration(secs * float64(time.Second))
			return e.clamp(max(e.applyJitter(instructed), instructed))
		}
	}

	remaining, errA := headerFloat(resp, "X-RateLimit-Remaining")
	requested, errB := headerFloat(resp, "X-RateLimit-Requested-Tokens")
	replenish, errC := headerFloat(resp, "X-RateLimit-Replenish-Rate")
	if errA == nil && errB == nil && errC == nil && replenish > 0 && requested > remaining {
		secs := (requested - remaining) / replenish
		return e.clamp(e.applyJitter(time.Duration(secs * float64(time.Second))))
	}

	return e.backoff(attempt)
}

func (e *Executor) applyJitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * e.jitter())
}

func (e *Executor) clamp(d time.Duration) time.Duration {
	if e.policy.MaxBackoff > 0 && d > e.policy.MaxBackoff {
		return e.policy.MaxBackoff
	}
	return d
}

func headerFloat(resp *http.Response, key string) (float64, error) {
	return strconv.ParseFloat(resp.Header.Get(key), 64)
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
