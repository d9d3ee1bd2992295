package api

import (
	"bytes"
	"log"
	"net/http"

	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/export"
	"github.com/r3d91ll/heddle/pkg/interact"
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/render"
	"github.com/r3d91ll/heddle/pkg/state"
)

// VisualizationHandler serves the visualization endpoints.
type VisualizationHandler struct {
	registry *Registry
	hub      *Hub
	defaults dataset.Defaults
	png      *export.PNGConfig
}

// NewVisualizationHandler creates a handler. hub may be nil, in which case
// events are not fanned out to sockets.
func NewVisualizationHandler(registry *Registry, hub *Hub, defaults dataset.Defaults, png *export.PNGConfig) *VisualizationHandler {
	if png == nil {
		png = export.DefaultPNGConfig()
	}
	return &VisualizationHandler{
		registry: registry,
		hub:      hub,
		defaults: defaults,
		png:      png,
	}
}

// RegisterRoutes registers the visualization routes on the router.
func (h *VisualizationHandler) RegisterRoutes(router *Router) {
	router.GET("/api/health", h.Health)
	router.POST("/api/visualizations", h.Mount)
	router.GET("/api/visualizations", h.List)
	router.GET("/api/visualizations/:id", h.Get)
	router.DELETE("/api/visualizations/:id", h.Delete)
	router.POST("/api/visualizations/:id/events", h.Event)
	router.GET("/api/visualizations/:id/svg", h.SVG)
	router.GET("/api/visualizations/:id/png", h.PNG)
	router.GET("/ws/visualizations/:id", h.WebSocket)
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status         string `json:"status"`
	Visualizations int    `json:"visualizations"`
	Clients        int    `json:"clients"`
}

// VisualizationResponse describes one mounted instance.
type VisualizationResponse struct {
	ID        string         `json:"id"`
	Canvas    layout.Size    `json:"canvas"`
	State     state.Snapshot `json:"state"`
	Ops       []render.Op    `json:"ops,omitempty"`
	Recovered *APIError      `json:"recovered,omitempty"`
}

// ListResponse is the response for GET /api/visualizations.
type ListResponse struct {
	IDs []string `json:"ids"`
}

// EventResponse is the result of one event, returned to the sender and
// published to the instance's sockets.
type EventResponse struct {
	ID        string         `json:"id"`
	Scope     string         `json:"scope"`
	Ops       []render.Op    `json:"ops"`
	State     state.Snapshot `json:"state"`
	Recovered *APIError      `json:"recovered,omitempty"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// Health handles GET /api/health.
func (h *VisualizationHandler) Health(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if h.hub != nil {
		clients = h.hub.ClientCount()
	}
	WriteJSON(w, http.StatusOK, &HealthResponse{
		Status:         "ok",
		Visualizations: h.registry.Len(),
		Clients:        clients,
	})
}

// Mount handles POST /api/visualizations. The body is the instance params
// object; the response carries the initial scene operations.
func (h *VisualizationHandler) Mount(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	p, err := dataset.Load(r.Body, h.defaults)
	if err != nil {
		WriteHeddleError(w, err)
		return
	}

	ctrl, err := h.registry.Mount(p)
	if ctrl == nil {
		WriteHeddleError(w, err)
		return
	}

	// Drain under the instance lock; a socket may already be sending events.
	var resp *VisualizationResponse
	_ = h.registry.Do(ctrl.ID(), func(c *interact.Controller) error {
		resp = describe(c)
		resp.Ops = c.Drain()
		return nil
	})
	if resp == nil {
		WriteHeddleError(w, herrors.VisualizationNotFound(ctrl.ID()))
		return
	}
	resp.Recovered = apiErrorOf(err)
	WriteJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/visualizations.
func (h *VisualizationHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, &ListResponse{IDs: h.registry.IDs()})
}

// Get handles GET /api/visualizations/:id.
func (h *VisualizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	var resp *VisualizationResponse
	err := h.registry.Do(PathParam(r, "id"), func(c *interact.Controller) error {
		resp = describe(c)
		return nil
	})
	if err != nil {
		WriteHeddleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/visualizations/:id.
func (h *VisualizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "id")
	if err := h.registry.Delete(id); err != nil {
		WriteHeddleError(w, err)
		return
	}
	if h.hub != nil {
		_ = h.hub.PublishClosed(id)
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "closed"})
}

// Event handles POST /api/visualizations/:id/events. Clamped or rejected
// events still answer 200, with the problem in the recovered field.
func (h *VisualizationHandler) Event(w http.ResponseWriter, r *http.Request) {
	var ev interact.Event
	if err := ReadJSON(r, &ev); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Failed to parse event: "+err.Error())
		return
	}
	if ev.Type == "" {
		WriteHeddleError(w, herrors.ValidationRequired("type"))
		return
	}

	resp, err := h.apply(PathParam(r, "id"), ev)
	if err != nil {
		WriteHeddleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// SVG handles GET /api/visualizations/:id/svg.
func (h *VisualizationHandler) SVG(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, export.FormatSVG)
}

// PNG handles GET /api/visualizations/:id/png.
func (h *VisualizationHandler) PNG(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, export.FormatPNG)
}

func (h *VisualizationHandler) snapshot(w http.ResponseWriter, r *http.Request, format export.Format) {
	var buf bytes.Buffer
	err := h.registry.Do(PathParam(r, "id"), func(c *interact.Controller) error {
		return export.Write(&buf, format, c, h.png)
	})
	if err != nil {
		WriteHeddleError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// WebSocket handles GET /ws/visualizations/:id. Events arrive as "event"
// messages; every resulting op batch is published to all sockets following
// the instance.
func (h *VisualizationHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "id")
	if err := h.registry.Do(id, func(*interact.Controller) error { return nil }); err != nil {
		WriteHeddleError(w, err)
		return
	}
	if h.hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "ws_unavailable", "WebSocket hub is not running")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] %s: upgrade error: %v", id, err)
		return
	}

	client := NewClient(h.hub, conn, id, h.dispatch)
	if !h.hub.attach(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// dispatch applies a socket event. Errors reach the sockets as error
// messages.
func (h *VisualizationHandler) dispatch(id string, ev interact.Event) {
	if _, err := h.apply(id, ev); err != nil {
		_ = h.hub.Publish(id, &WSMessage{
			Type:      MessageTypeError,
			ID:        id,
			Data:      apiErrorOf(err),
			Timestamp: timestamp(),
		})
	}
}

// apply runs ev on the instance and publishes the result.
func (h *VisualizationHandler) apply(id string, ev interact.Event) (*EventResponse, error) {
	var resp *EventResponse
	err := h.registry.Do(id, func(c *interact.Controller) error {
		res := c.Handle(ev)
		resp = &EventResponse{
			ID:        id,
			Scope:     res.ScopeName(),
			Ops:       res.Ops,
			State:     c.Snapshot(),
			Recovered: apiErrorOf(res.Recovered),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.hub != nil {
		if err := h.hub.PublishOps(id, resp); err != nil {
			log.Printf("[ws] %s: publish failed: %v", id, err)
		}
	}
	return resp, nil
}

func describe(c *interact.Controller) *VisualizationResponse {
	return &VisualizationResponse{
		ID:     c.ID(),
		Canvas: c.Canvas(),
		State:  c.Snapshot(),
	}
}

// apiErrorOf converts err for transport. It returns nil for a nil error.
func apiErrorOf(err error) *APIError {
	if err == nil {
		return nil
	}
	he, ok := herrors.AsHeddleError(err)
	if !ok {
		return &APIError{Code: herrors.ErrInternalError, Message: err.Error()}
	}
	return &APIError{
		Code:        he.Code,
		Message:     he.Message,
		Context:     he.Context,
		Suggestions: he.Suggestions,
	}
}
