// Package api provides the HTTP/WebSocket host for mounted visualizations.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// HandlerFunc is the function signature for API handlers.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// Route represents a registered route with its handler.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Router is a simple HTTP router that supports path parameters.
type Router struct {
	routes []Route
	mu     sync.RWMutex

	// NotFound is called when no route matches
	NotFound http.Handler
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{
		routes: make([]Route, 0),
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
		}),
	}
}

// Handle registers a handler for the given method and pattern.
// Patterns support path parameters with :param syntax (e.g., /api/visualizations/:id).
func (rt *Router) Handle(method, pattern string, handler HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.routes = append(rt.routes, Route{
		Method:  method,
		Pattern: pattern,
		Handler: handler,
	})
}

// GET registers a handler for GET requests.
func (rt *Router) GET(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodGet, pattern, handler)
}

// POST registers a handler for POST requests.
func (rt *Router) POST(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodPost, pattern, handler)
}

// DELETE registers a handler for DELETE requests.
func (rt *Router) DELETE(pattern string, handler HandlerFunc) {
	rt.Handle(http.MethodDelete, pattern, handler)
}

// ServeHTTP implements the http.Handler interface. A path that matches a
// route under a different method answers 405.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	path := r.URL.Path
	pathMatched := false

	for _, route := range rt.routes {
		params, matched := matchPath(route.Pattern, path)
		if !matched {
			continue
		}
		if route.Method != r.Method {
			pathMatched = true
			continue
		}
		if len(params) > 0 {
			r = setPathParams(r, params)
		}
		route.Handler(w, r)
		return
	}

	if pathMatched {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method "+r.Method+" is not allowed on "+path)
		return
	}
	rt.NotFound.ServeHTTP(w, r)
}

// matchPath matches a URL path against a pattern and extracts path parameters.
// Pattern syntax: /api/visualizations/:id matches /api/visualizations/vis-1 with id=vis-1
func matchPath(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)

	for i, patternPart := range patternParts {
		if strings.HasPrefix(patternPart, ":") {
			if pathParts[i] == "" {
				return nil, false
			}
			params[patternPart[1:]] = pathParts[i]
		} else if patternPart != pathParts[i] {
			return nil, false
		}
	}

	return params, true
}

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const pathParamsKey contextKey = "pathParams"

// setPathParams stores path parameters in the request context.
func setPathParams(r *http.Request, params map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), pathParamsKey, params)
	return r.WithContext(ctx)
}

// PathParam extracts a path parameter from the request.
func PathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(pathParamsKey).(map[string]string)
	if !ok {
		return ""
	}
	return params[name]
}

// -----------------------------------------------------------------------------
// Response Helpers
// -----------------------------------------------------------------------------

// APIResponse is the standard response wrapper for API endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	// Headers are already sent; nothing to do on failure.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, &APIError{Code: code, Message: message})
}

// WriteHeddleError writes err with the status its code maps to. Structured
// errors keep their context and suggestions.
func WriteHeddleError(w http.ResponseWriter, err error) {
	he, ok := herrors.AsHeddleError(err)
	if !ok {
		WriteError(w, http.StatusInternalServerError, herrors.ErrInternalError, err.Error())
		return
	}
	writeAPIError(w, StatusFor(he), &APIError{
		Code:        he.Code,
		Message:     he.Message,
		Context:     he.Context,
		Suggestions: he.Suggestions,
	})
}

func writeAPIError(w http.ResponseWriter, status int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: apiErr})
}

// StatusFor maps a structured error to an HTTP status.
func StatusFor(he *herrors.HeddleError) int {
	switch he.Code {
	case herrors.ErrVisualizationNotFound:
		return http.StatusNotFound
	case herrors.ErrVisualizationExists:
		return http.StatusConflict
	}
	switch he.Category {
	case herrors.CategoryData, herrors.CategorySelection, herrors.CategoryValidation:
		return http.StatusBadRequest
	case herrors.CategoryIO:
		if he.Code == herrors.ErrIOUnmarshalFailed {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// ReadJSON reads and decodes a JSON request body into the given target.
func ReadJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
