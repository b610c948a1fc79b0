package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/cadence/internal/shared"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("delivers code on matching state", func(t *testing.T) {
		h := NewCallbackHandler("expected-state")
		req := httptest.NewRequest(http.MethodGet, "/callback?"+url.Values{
			"code":  {"auth-code"},
			"state": {"expected-state"},
		}.Encode(), nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		result := <-h.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Code != "auth-code" {
			t.Errorf("expected code auth-code, got %q", result.Code)
		}
	})

	t.Run("rejects mismatched state", func(t *testing.T) {
		h := NewCallbackHandler("expected-state")
		req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=forged", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrStateMismatch) {
			t.Errorf("expected ErrStateMismatch, got %v", result.Error())
		}
	})

	t.Run("reports provider error", func(t *testing.T) {
		h := NewCallbackHandler("s")
		req := httptest.NewRequest(http.MethodGet, "/callback?"+url.Values{
			"state":             {"s"},
			"error":             {"access_denied"},
			"error_description": {"user declined"},
		}.Encode(), nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("second callback is ignored", func(t *testing.T) {
		h := NewCallbackHandler("s")

		first := httptest.NewRequest(http.MethodGet, "/callback?code=one&state=s", nil)
		h.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?code=two&state=s", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replayed callback, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Code != "one" {
			t.Errorf("expected first code to win, got %q", result.Code)
		}
	})

	t.Run("routes", func(t *testing.T) {
		h := NewCallbackHandler("s")
		routes := h.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}
