package uimanager

import (
	"fmt"
	"sort"

	"github.com/go-drift/viewbridge/pkg/errors"
	"github.com/go-drift/viewbridge/pkg/view"
)

// ControllerHolder pairs a controller with its lazy flag. Several class
// names may share one holder.
type ControllerHolder struct {
	Controller ViewController
	Lazy       bool
}

// Registry maps class names to controllers and node ids to live views, and
// keeps the root surfaces in registration order.
//
// A Registry is owned by one Manager and is only touched from its UI
// thread.
type Registry struct {
	controllers map[string]*ControllerHolder
	views       map[int]view.View
	roots       map[int]view.Group
	rootIDs     []int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		controllers: make(map[string]*ControllerHolder),
		views:       make(map[int]view.View),
		roots:       make(map[int]view.Group),
	}
}

// AddControllerHolder registers holder under name. A later registration
// under the same name wins; the replaced holder is returned.
func (r *Registry) AddControllerHolder(name string, holder *ControllerHolder) (replaced *ControllerHolder) {
	replaced = r.controllers[name]
	r.controllers[name] = holder
	return replaced
}

// ControllerHolder returns the holder registered under name.
func (r *Registry) ControllerHolder(name string) (*ControllerHolder, bool) {
	h, ok := r.controllers[name]
	return h, ok
}

// ViewController returns the controller registered under className.
func (r *Registry) ViewController(className string) (ViewController, error) {
	h, ok := r.controllers[className]
	if !ok || h.Controller == nil {
		return nil, fmt.Errorf("%w: %q", ErrControllerNotFound, className)
	}
	return h.Controller, nil
}

// MustViewController is like ViewController but panics when className is
// unregistered. A missing controller means a controller package was not
// installed, which cannot be repaired at runtime.
func (r *Registry) MustViewController(className string) ViewController {
	c, err := r.ViewController(className)
	if err != nil {
		panic(&errors.UIError{
			Op:         "uimanager.MustViewController",
			Kind:       errors.KindConfig,
			Err:        err,
			StackTrace: errors.CaptureStack(),
		})
	}
	return c
}

// ControllerNames returns the registered class names in sorted order.
func (r *Registry) ControllerNames() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddView registers v under its current id.
func (r *Registry) AddView(v view.View) {
	if v == nil {
		return
	}
	r.views[v.ID()] = v
}

// View returns the live view for id. Root surfaces are found too, so they
// can be addressed as parents.
func (r *Registry) View(id int) view.View {
	if v, ok := r.views[id]; ok {
		return v
	}
	if root, ok := r.roots[id]; ok {
		return root
	}
	return nil
}

// ownView returns the view registered for id, ignoring root surfaces.
func (r *Registry) ownView(id int) view.View {
	return r.views[id]
}

// RemoveView unregisters id. Missing ids are ignored.
func (r *Registry) RemoveView(id int) {
	delete(r.views, id)
}

// ViewCount returns the number of registered non-root views.
func (r *Registry) ViewCount() int {
	return len(r.views)
}

// IDs returns the registered non-root view ids in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AddRootView registers a root surface. Registering an id twice replaces
// the surface but keeps its position.
func (r *Registry) AddRootView(root view.Group) {
	if root == nil {
		return
	}
	id := root.ID()
	if _, ok := r.roots[id]; !ok {
		r.rootIDs = append(r.rootIDs, id)
	}
	r.roots[id] = root
}

// RootView returns the root surface registered under id.
func (r *Registry) RootView(id int) view.Group {
	return r.roots[id]
}

// RemoveRootView unregisters a root surface. Positions of later roots shift
// down by one.
func (r *Registry) RemoveRootView(id int) {
	if _, ok := r.roots[id]; !ok {
		return
	}
	delete(r.roots, id)
	for i, rid := range r.rootIDs {
		if rid == id {
			r.rootIDs = append(r.rootIDs[:i], r.rootIDs[i+1:]...)
			break
		}
	}
}

// RootViewCount returns the number of root surfaces.
func (r *Registry) RootViewCount() int {
	return len(r.rootIDs)
}

// RootIDAt returns the id of the root at position index.
func (r *Registry) RootIDAt(index int) int {
	return r.rootIDs[index]
}
