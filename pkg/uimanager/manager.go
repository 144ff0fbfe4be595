// Package uimanager maintains the native view tree on behalf of a scripting
// layer.
//
// Commands address nodes by integer id and class name. The Manager resolves
// a controller for the class through its Registry, mutates the native tree
// through that controller, and applies props through an UpdateDispatcher.
// All Manager methods must run on the UI thread; use Post to get there from
// other goroutines.
package uimanager

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/viewbridge/pkg/errors"
	"github.com/go-drift/viewbridge/pkg/uithread"
	"github.com/go-drift/viewbridge/pkg/view"
)

// Manager orchestrates controllers, the registry and the update dispatcher.
type Manager struct {
	ctx        *Context
	registry   *Registry
	updater    *UpdateDispatcher
	preCache   map[int]view.View
	dispatcher uithread.Dispatcher
	handler    errors.Handler
	logger     *slog.Logger
	metrics    *metrics

	renderNodes    RenderNodeSource
	reportOverride bool
	metricsReg     prometheus.Registerer
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithErrorHandler routes diagnostics to h instead of the global handler.
func WithErrorHandler(h errors.Handler) Option {
	return func(m *Manager) {
		m.handler = h
	}
}

// WithDispatcher sets how work is marshaled onto the UI thread. The default
// runs it inline.
func WithDispatcher(d uithread.Dispatcher) Option {
	return func(m *Manager) {
		if d != nil {
			m.dispatcher = d
		}
	}
}

// WithMetrics registers the manager's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.metricsReg = reg
	}
}

// WithRenderNodeSource lets structural diagnostics name the parent's render
// node class.
func WithRenderNodeSource(src RenderNodeSource) Option {
	return func(m *Manager) {
		m.renderNodes = src
	}
}

// WithOverrideReporting reports replaced controller registrations to the
// error handler in addition to logging them.
func WithOverrideReporting(enabled bool) Option {
	return func(m *Manager) {
		m.reportOverride = enabled
	}
}

// WithInstanceID overrides the generated instance id.
func WithInstanceID(id string) Option {
	return func(m *Manager) {
		if id != "" {
			m.ctx.InstanceID = id
		}
	}
}

// NewManager creates a manager over toolkit and registers the controllers
// of packages. The root node controller is registered last.
func NewManager(toolkit view.Toolkit, packages []Package, opts ...Option) *Manager {
	m := &Manager{
		ctx: &Context{
			InstanceID: uuid.NewString(),
			Toolkit:    toolkit,
		},
		registry:   NewRegistry(),
		updater:    &UpdateDispatcher{},
		preCache:   make(map[int]view.View),
		dispatcher: uithread.Inline{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.metricsReg != nil {
		m.metrics = newMetrics(m.metricsReg, m.ctx.InstanceID)
	}
	m.logger = m.logger.With("instance", m.ctx.InstanceID)
	m.ctx.Logger = m.logger

	m.AddControllers(packages...)
	m.registry.AddControllerHolder(RootNodeClassName, &ControllerHolder{Controller: GroupController{}})
	return m
}

// Context returns the context handed to controllers.
func (m *Manager) Context() *Context { return m.ctx }

// Registry returns the manager's registry. Callers must stay on the UI
// thread while using it.
func (m *Manager) Registry() *Registry { return m.registry }

// Post runs fn with the manager on the UI thread.
func (m *Manager) Post(fn func(*Manager)) bool {
	if fn == nil {
		return false
	}
	return m.dispatcher.Post(func() { fn(m) })
}

// Destroy schedules teardown of every root surface on the UI thread. Roots
// are removed from the last registered to the first.
func (m *Manager) Destroy() bool {
	return m.dispatcher.Post(func() {
		for i := m.registry.RootViewCount() - 1; i >= 0; i-- {
			m.DeleteRootView(m.registry.RootIDAt(i))
		}
		for id := range m.preCache {
			delete(m.preCache, id)
		}
		m.updateSizes()
		m.logger.Debug("manager destroyed")
	})
}

// FindView returns the live view for id, or nil.
func (m *Manager) FindView(id int) view.View {
	return m.registry.View(id)
}

// HasView reports whether id has a live view.
func (m *Manager) HasView(id int) bool {
	return m.registry.View(id) != nil
}

// IsPreCached reports whether a view for id was built ahead of creation.
func (m *Manager) IsPreCached(id int) bool {
	_, ok := m.preCache[id]
	return ok
}

// IsControllerLazy reports whether className's controller creates nodes on
// demand. Unregistered class names are not lazy.
func (m *Manager) IsControllerLazy(className string) bool {
	h, ok := m.registry.ControllerHolder(className)
	return ok && h.Lazy
}

// AddRootView registers a root surface, typically when a scripting
// instance has loaded.
func (m *Manager) AddRootView(root view.Group) {
	m.registry.AddRootView(root)
}

// CreatePreView builds the view for id ahead of its creation command and
// parks it in the pre-cache. Nothing happens if id already has a view.
func (m *Manager) CreatePreView(root view.Group, id int, className string, props Props) {
	m.metrics.command("createPreView")
	if m.registry.View(id) != nil {
		return
	}
	if _, ok := m.preCache[id]; ok {
		return
	}
	ctrl := m.registry.MustViewController(className)
	if v := ctrl.CreateView(root, id, m.ctx, className, props); v != nil {
		m.preCache[id] = v
	}
	m.updateSizes()
}

// CreateView creates, registers and initializes the view for id. A view
// from the pre-cache is reused instead of building a new one. Duplicate
// create commands return the existing view.
func (m *Manager) CreateView(root view.Group, id int, className string, props Props) view.View {
	m.metrics.command("createView")
	if v := m.registry.View(id); v != nil {
		return v
	}

	v := m.preCache[id]
	delete(m.preCache, id)

	ctrl := m.registry.MustViewController(className)
	if v == nil {
		v = ctrl.CreateView(root, id, m.ctx, className, props)
	}
	if v != nil {
		m.registry.AddView(v)
		m.updater.UpdateProps(ctrl, v, props)
		ctrl.OnAfterUpdateProps(v)
	}
	m.updateSizes()
	return v
}

// CreateStyleNode asks className's controller for a layout node, trying the
// rooted variant first.
func (m *Manager) CreateStyleNode(className string, isVirtual bool, rootID int) StyleNode {
	ctrl := m.registry.MustViewController(className)
	if n := ctrl.CreateRootedNode(isVirtual, rootID); n != nil {
		return n
	}
	return ctrl.CreateNode(isVirtual)
}

// CreateRenderNode asks className's controller for a render node.
func (m *Manager) CreateRenderNode(id int, props Props, className string, root view.Group, lazy bool) *RenderNode {
	return m.registry.MustViewController(className).CreateRenderNode(id, props, className, root, m, lazy)
}

// UpdateView applies props to the view for id.
func (m *Manager) UpdateView(id int, className string, props Props) {
	m.metrics.command("updateView")
	v := m.registry.View(id)
	ctrl, err := m.registry.ViewController(className)
	if v == nil || err != nil || props == nil {
		return
	}
	m.updater.UpdateProps(ctrl, v, props)
	ctrl.OnAfterUpdateProps(v)
}

// UpdateLayout positions the view for id through its controller.
func (m *Manager) UpdateLayout(className string, id, x, y, width, height int) {
	m.metrics.command("updateLayout")
	ctrl, err := m.registry.ViewController(className)
	if err != nil || m.registry.View(id) == nil {
		return
	}
	ctrl.UpdateLayout(id, x, y, width, height, m.registry)
}

// UpdateExtra hands controller-specific data to the view for id.
func (m *Manager) UpdateExtra(id int, className string, extra any) {
	m.metrics.command("updateExtra")
	ctrl, err := m.registry.ViewController(className)
	v := m.registry.View(id)
	if err != nil || v == nil {
		return
	}
	ctrl.UpdateExtra(v, extra)
}

// Move detaches the view for id from its parent and attaches it to toID at
// index. Nothing changes unless both the view and a container for toID
// exist.
func (m *Manager) Move(id, toID, index int) {
	m.metrics.command("move")
	v := m.registry.View(id)
	if v == nil {
		return
	}
	newParent, ok := m.registry.View(toID).(view.Group)
	if !ok {
		return
	}
	if old := v.Parent(); old != nil {
		old.RemoveView(v)
	}
	m.attach(newParent, v, index)
	m.logger.Debug("move", "id", id, "toId", toID, "index", index)
}

// AddChild attaches the view for id under pid at index. A child that
// already has a parent was placed by an earlier move and is left alone.
// A missing child or a parent that cannot hold children is reported to the
// error handler and nothing is changed.
func (m *Manager) AddChild(pid, id, index int) {
	m.metrics.command("addChild")
	child := m.registry.View(id)
	parentView := m.registry.View(pid)
	parent, isGroup := parentView.(view.Group)

	if child != nil && isGroup {
		if child.Parent() == nil {
			m.logger.Debug("addChild", "id", id, "pid", pid, "index", index)
			m.attach(parent, child, index)
		}
		return
	}

	serr := &errors.StructureError{ParentID: pid, ChildID: id}
	if m.renderNodes != nil {
		if n := m.renderNodes.RenderNode(pid); n != nil {
			serr.RenderClass = n.ClassName
		}
	}
	if parentView != nil {
		serr.ParentClass = parentView.ClassName()
		serr.ParentKind = fmt.Sprintf("%T", parentView)
	}
	if child != nil {
		serr.ChildClass = child.ClassName()
		serr.ChildKind = fmt.Sprintf("%T", child)
	}
	m.metrics.structuralError()
	m.report(&errors.UIError{
		Op:         "uimanager.AddChild",
		Kind:       errors.KindStructure,
		ViewID:     pid,
		NonFatal:   true,
		Err:        serr,
		StackTrace: errors.CaptureStack(),
	})
}

// ReplaceID moves the live view for oldID to newID without rebuilding it.
// Recycling buffers and cached scroll offsets are reset for reuse, and any
// view parked in the pre-cache under newID is discarded.
func (m *Manager) ReplaceID(oldID, newID int) {
	m.metrics.command("replaceID")
	v := m.registry.ownView(oldID)
	m.registry.RemoveView(oldID)
	if v == nil {
		m.report(&errors.UIError{
			Op:       "uimanager.ReplaceID",
			Kind:     errors.KindStructure,
			ViewID:   oldID,
			NonFatal: true,
			Err:      fmt.Errorf("%w: replace %d with %d", ErrViewNotFound, oldID, newID),
		})
		return
	}
	if r, ok := v.(view.Recycler); ok {
		r.Clear()
	}
	v.SetID(newID)
	delete(m.preCache, newID)
	if s, ok := v.(view.ReusableScroller); ok {
		s.ResetContentOffsetForReuse()
	}
	m.registry.AddView(v)
}

// DispatchUIFunction invokes a named imperative action on the view for id.
// A nil or non-callback promise selects the fire-and-forget form. When the
// view is gone a waiting promise is rejected.
func (m *Manager) DispatchUIFunction(id int, className, name string, args []any, p Promise) {
	m.metrics.command("dispatchUIFunction")
	ctrl, err := m.registry.ViewController(className)
	v := m.registry.View(id)
	if err != nil || v == nil {
		if p != nil && p.IsCallback() {
			m.metrics.queryFailure()
			p.Reject(fmt.Sprintf("view %d not found for %s.%s", id, className, name))
		}
		return
	}
	if p == nil || !p.IsCallback() {
		ctrl.DispatchFunction(v, name, args)
		return
	}
	ctrl.DispatchFunctionWithResult(v, name, args, p)
}

// OnBatchStart tells the controller of id that a batch is starting.
func (m *Manager) OnBatchStart(className string, id int) {
	if ctrl, v := m.resolve(className, id); v != nil {
		ctrl.OnBatchStart(v)
	}
}

// OnBatchComplete tells the controller of id that a batch has ended.
func (m *Manager) OnBatchComplete(className string, id int) {
	if ctrl, v := m.resolve(className, id); v != nil {
		ctrl.OnBatchComplete(v)
	}
}

// OnManageChildComplete tells the controller of id that its children have
// been rearranged.
func (m *Manager) OnManageChildComplete(className string, id int) {
	if ctrl, v := m.resolve(className, id); v != nil {
		ctrl.OnManageChildComplete(v)
	}
}

// DeleteRootView tears down every child of a root surface, last child
// first, and unregisters the root.
func (m *Manager) DeleteRootView(id int) {
	m.metrics.command("deleteRootView")
	if root := m.registry.RootView(id); root != nil {
		for i := root.ChildCount() - 1; i >= 0; i-- {
			if child := root.ChildAt(i); child != nil {
				m.DeleteChild(id, child.ID())
			}
		}
	}
	m.registry.RemoveRootView(id)
}

// resolve returns the controller and view for a hook call, or a nil view
// when either is missing.
func (m *Manager) resolve(className string, id int) (ViewController, view.View) {
	ctrl, err := m.registry.ViewController(className)
	if err != nil {
		return nil, nil
	}
	return ctrl, m.registry.View(id)
}

// controllerFor returns the controller registered for v's class tag, or
// nil for untagged or unknown views.
func (m *Manager) controllerFor(v view.View) ViewController {
	name := v.ClassName()
	if name == "" {
		return nil
	}
	h, ok := m.registry.ControllerHolder(name)
	if !ok {
		return nil
	}
	return h.Controller
}

// attach adds child to parent through the parent's controller, or directly
// when the parent has none.
func (m *Manager) attach(parent view.Group, child view.View, index int) {
	if ctrl := m.controllerFor(parent); ctrl != nil {
		ctrl.AddView(parent, child, index)
		return
	}
	parent.AddView(child, index)
}

func (m *Manager) report(err *errors.UIError) {
	errors.ReportTo(m.handler, err)
}

func (m *Manager) updateSizes() {
	m.metrics.sizes(m.registry.ViewCount(), len(m.preCache))
}
