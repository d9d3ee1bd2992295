package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// -----------------------------------------------------------------------------
// CORS Tests
// -----------------------------------------------------------------------------

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"http://localhost:8888"})(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:8888")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8888" {
			t.Errorf("Expected allowed origin header, got %q", got)
		}
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no CORS header, got %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/visualizations", nil)
		req.Header.Set("Origin", "http://localhost:8888")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", rec.Code)
		}
	})
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	handler := CORSMiddleware([]string{"*"})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://anywhere.example" {
		t.Errorf("Expected echoed origin, got %q", got)
	}
}

// -----------------------------------------------------------------------------
// Recovery and Logging Tests
// -----------------------------------------------------------------------------

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
	env := decode(t, rec, nil)
	if env.Error == nil || env.Error.Code != herrors.ErrInternalPanic {
		t.Errorf("Expected %s, got %+v", herrors.ErrInternalPanic, env.Error)
	}
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var captured *statusRecorder
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*statusRecorder)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	rec := httptest.NewRecorder()
	LoggingMiddleware(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured.status != http.StatusTeapot || captured.written != 15 {
		t.Errorf("Expected 418 and 15 bytes, got %d and %d", captured.status, captured.written)
	}
}

// -----------------------------------------------------------------------------
// Content-Type and Request ID Tests
// -----------------------------------------------------------------------------

func TestContentTypeMiddleware(t *testing.T) {
	handler := ContentTypeMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/visualizations", strings.NewReader("x=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("Expected status 415, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/visualizations", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("Expected generated UUID, got %q", rec.Header().Get("X-Request-ID"))
	}

	var seen string
	handler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-1" || seen != "upstream-1" {
		t.Errorf("Expected upstream id kept, got header %q context %q", got, seen)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID(""); got != "-" {
		t.Errorf("Expected -, got %q", got)
	}
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("Expected 01234567, got %q", got)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler(), mw("outer"), mw("inner")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("Expected [outer inner], got %v", order)
	}
}
