package uimanager

import (
	"github.com/go-drift/viewbridge/pkg/view"
)

// Props is a set of property values keyed by prop name.
type Props map[string]any

// PropSetter applies one prop value to a view.
type PropSetter func(v view.View, value any)

// PropTable maps prop names to setters. Controllers build it once; the
// update dispatcher looks props up here instead of reflecting on methods.
type PropTable map[string]PropSetter

// ViewController is the per-class capability set the manager drives.
//
// Concrete controllers embed BaseController for the container defaults and
// implement CreateView and whatever hooks their widget needs.
type ViewController interface {
	// CreateView builds the native view for id. root is the surface the
	// view will live under; it may be nil for views built ahead of time.
	CreateView(root view.Group, id int, ctx *Context, className string, props Props) view.View

	// CreateRenderNode builds the layout-tree description of a node. root
	// is nil for non-rooted nodes.
	CreateRenderNode(id int, props Props, className string, root view.Group, m *Manager, lazy bool) *RenderNode

	// CreateRootedNode returns the style node for a node under rootID, or
	// nil to let the manager fall back to CreateNode.
	CreateRootedNode(isVirtual bool, rootID int) StyleNode

	// CreateNode returns the style node for a node.
	CreateNode(isVirtual bool) StyleNode

	// Props returns the prop setters of this controller.
	Props() PropTable

	// OnAfterUpdateProps runs once after every prop in a batch is applied.
	OnAfterUpdateProps(v view.View)

	AddView(parent view.Group, child view.View, index int)
	DeleteChild(parent view.Group, child view.View, index int)

	// ChildCount and ChildAt enumerate logical children. Recycling
	// containers may hide buffered children here.
	ChildCount(parent view.Group) int
	ChildAt(parent view.Group, i int) view.View

	UpdateLayout(id, x, y, width, height int, reg *Registry)

	DispatchFunction(v view.View, name string, args []any)
	DispatchFunctionWithResult(v view.View, name string, args []any, p Promise)

	OnBatchStart(v view.View)
	OnBatchComplete(v view.View)
	OnManageChildComplete(v view.View)
	OnViewDestroy(v view.View)

	// UpdateExtra receives controller-specific data that is not a prop.
	UpdateExtra(v view.View, extra any)
}

// CustomPropSetter is implemented by controllers that accept props missing
// from their PropTable.
type CustomPropSetter interface {
	SetCustomProp(v view.View, name string, value any)
}

// StyleNode is a layout-engine node produced by a controller.
type StyleNode interface {
	IsVirtual() bool
}

// BasicStyleNode is the default StyleNode.
type BasicStyleNode struct {
	Virtual bool
	RootID  int
}

// IsVirtual implements StyleNode.
func (n *BasicStyleNode) IsVirtual() bool { return n.Virtual }

// BaseController provides native-container behavior for every hook except
// CreateView.
type BaseController struct{}

// CreateRenderNode implements ViewController.
func (BaseController) CreateRenderNode(id int, props Props, className string, root view.Group, m *Manager, lazy bool) *RenderNode {
	return NewRenderNode(id, props, className, root, m, lazy)
}

// CreateRootedNode implements ViewController. It returns nil so that the
// manager falls back to CreateNode.
func (BaseController) CreateRootedNode(isVirtual bool, rootID int) StyleNode {
	return nil
}

// CreateNode implements ViewController.
func (BaseController) CreateNode(isVirtual bool) StyleNode {
	return &BasicStyleNode{Virtual: isVirtual}
}

// Props implements ViewController.
func (BaseController) Props() PropTable { return nil }

// OnAfterUpdateProps implements ViewController.
func (BaseController) OnAfterUpdateProps(view.View) {}

// AddView implements ViewController.
func (BaseController) AddView(parent view.Group, child view.View, index int) {
	parent.AddView(child, index)
}

// DeleteChild implements ViewController.
func (BaseController) DeleteChild(parent view.Group, child view.View, index int) {
	parent.RemoveView(child)
}

// ChildCount implements ViewController.
func (BaseController) ChildCount(parent view.Group) int {
	return parent.ChildCount()
}

// ChildAt implements ViewController.
func (BaseController) ChildAt(parent view.Group, i int) view.View {
	return parent.ChildAt(i)
}

// UpdateLayout implements ViewController.
func (BaseController) UpdateLayout(id, x, y, width, height int, reg *Registry) {
	if v := reg.View(id); v != nil {
		v.Layout(x, y, width, height)
	}
}

// DispatchFunction implements ViewController.
func (BaseController) DispatchFunction(view.View, string, []any) {}

// DispatchFunctionWithResult implements ViewController.
func (BaseController) DispatchFunctionWithResult(v view.View, name string, args []any, p Promise) {}

// OnBatchStart implements ViewController.
func (BaseController) OnBatchStart(view.View) {}

// OnBatchComplete implements ViewController.
func (BaseController) OnBatchComplete(view.View) {}

// OnManageChildComplete implements ViewController.
func (BaseController) OnManageChildComplete(view.View) {}

// OnViewDestroy implements ViewController.
func (BaseController) OnViewDestroy(view.View) {}

// UpdateExtra implements ViewController.
func (BaseController) UpdateExtra(view.View, any) {}

// GroupController creates plain container views. The manager registers it
// for root nodes.
type GroupController struct {
	BaseController
}

// CreateView implements ViewController.
func (GroupController) CreateView(root view.Group, id int, ctx *Context, className string, props Props) view.View {
	return ctx.Toolkit.NewGroup(id, className)
}
