package api

import (
	"bufio"
	"context"
	"log"
	"mime"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the correlation ID stored by RequestIDMiddleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// shortID trims a request ID for log lines.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

// -----------------------------------------------------------------------------
// CORS
// -----------------------------------------------------------------------------

// CORSMiddleware answers preflight requests and sets CORS headers for the
// notebook origins in allowedOrigins. "*" allows any origin and echoes it
// back, since credentials are allowed.
func CORSMiddleware(allowedOrigins []string) Middleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	anyOrigin := allowed["*"]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && (anyOrigin || allowed[origin]) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
				h.Set("Access-Control-Expose-Headers", RequestIDHeader)
				h.Set("Access-Control-Max-Age", "600")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// -----------------------------------------------------------------------------
// Logging
// -----------------------------------------------------------------------------

// statusRecorder remembers the status and body size written through it.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.written += int64(n)
	return n, err
}

// Hijack lets WebSocket upgrades pass through the recorder.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingMiddleware logs one line per request:
//
//	[api] <request-id> METHOD /path status latency bytes
//
// A hijacked WebSocket request is logged when its handler returns, i.e.
// when the socket closes.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("[api] %s %s %s %d %s %d bytes",
			shortID(RequestID(r.Context())),
			r.Method,
			r.URL.Path,
			rec.status,
			formatLatency(time.Since(start)),
			rec.written,
		)
	})
}

func formatLatency(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

// -----------------------------------------------------------------------------
// Recovery
// -----------------------------------------------------------------------------

// RecoveryMiddleware turns a handler panic into an INTERNAL_PANIC response.
// The instance lock taken through Registry.Do is released by its defer, so
// the visualization stays usable.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[api] %s PANIC %s %s: %v\n%s",
					shortID(RequestID(r.Context())), r.Method, r.URL.Path, rec, debug.Stack())
				he := herrors.InternalPanic(rec)
				if id := RequestID(r.Context()); id != "" {
					he.WithContext("request_id", id)
				}
				WriteHeddleError(w, he)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// -----------------------------------------------------------------------------
// Content type
// -----------------------------------------------------------------------------

// ContentTypeMiddleware rejects POST bodies that are not JSON. Bodiless
// POSTs pass.
func ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength != 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				WriteError(w, http.StatusUnsupportedMediaType,
					"unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// -----------------------------------------------------------------------------
// Request ID
// -----------------------------------------------------------------------------

// RequestIDMiddleware stores a correlation ID in the request context and
// echoes it as X-Request-ID. An ID set by an upstream proxy is kept.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// Chain wraps handler so the first middleware sees the request first.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
