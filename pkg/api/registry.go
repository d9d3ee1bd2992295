package api

import (
	"sort"
	"sync"

	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/interact"
	"github.com/r3d91ll/heddle/pkg/layout"
)

// instance guards one controller. Events on the same instance are
// serialized; different instances run independently.
type instance struct {
	mu   sync.Mutex
	ctrl *interact.Controller
}

// Registry holds the mounted visualizations, keyed by container id.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*instance
	engine    *layout.Engine
}

// NewRegistry creates an empty registry. A nil engine uses the default
// geometry.
func NewRegistry(engine *layout.Engine) *Registry {
	if engine == nil {
		engine = layout.Default()
	}
	return &Registry{
		instances: make(map[string]*instance),
		engine:    engine,
	}
}

// Mount creates and registers a controller for prepared params. A recovered
// mount error is returned alongside the controller.
func (reg *Registry) Mount(p *dataset.Params) (*interact.Controller, error) {
	if p == nil {
		return nil, herrors.ValidationRequired("params")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.instances[p.RootDivID]; exists {
		return nil, herrors.VisualizationExists(p.RootDivID)
	}
	ctrl, err := interact.Mount(p, reg.engine)
	if ctrl == nil {
		return nil, err
	}
	reg.instances[ctrl.ID()] = &instance{ctrl: ctrl}
	return ctrl, err
}

// Do runs fn with exclusive access to the instance mounted as id.
func (reg *Registry) Do(id string, fn func(*interact.Controller) error) error {
	reg.mu.RLock()
	inst, ok := reg.instances[id]
	reg.mu.RUnlock()
	if !ok {
		return herrors.VisualizationNotFound(id)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.ctrl.Closed() {
		return herrors.VisualizationNotFound(id)
	}
	return fn(inst.ctrl)
}

// Delete tears down and unregisters the instance mounted as id.
func (reg *Registry) Delete(id string) error {
	reg.mu.Lock()
	inst, ok := reg.instances[id]
	delete(reg.instances, id)
	reg.mu.Unlock()
	if !ok {
		return herrors.VisualizationNotFound(id)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.ctrl.Teardown()
	return nil
}

// IDs returns the mounted container ids in sorted order.
func (reg *Registry) IDs() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	ids := make([]string, 0, len(reg.instances))
	for id := range reg.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of mounted instances.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.instances)
}

// Close tears down every instance.
func (reg *Registry) Close() {
	for _, id := range reg.IDs() {
		_ = reg.Delete(id)
	}
}
