package uimanager

import (
	"github.com/go-drift/viewbridge/pkg/view"
)

// RenderNode describes a node that will become a native view. It exists in
// the layout tree before its view is materialized, and lazy nodes may never
// be materialized at all.
type RenderNode struct {
	ID        int
	ClassName string
	Props     Props
	Lazy      bool
	Root      view.Group
	Children  []*RenderNode

	manager *Manager
}

// NewRenderNode creates a render node bound to m.
func NewRenderNode(id int, props Props, className string, root view.Group, m *Manager, lazy bool) *RenderNode {
	return &RenderNode{
		ID:        id,
		ClassName: className,
		Props:     props,
		Lazy:      lazy,
		Root:      root,
		manager:   m,
	}
}

// RootID returns the id of the node's root surface, or 0 when unrooted.
func (n *RenderNode) RootID() int {
	if n.Root == nil {
		return 0
	}
	return n.Root.ID()
}

// AddChild inserts child at index, appending when index is out of range.
func (n *RenderNode) AddChild(child *RenderNode, index int) {
	if index < 0 || index > len(n.Children) {
		n.Children = append(n.Children, child)
		return
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[index+1:], n.Children[index:])
	n.Children[index] = child
}

// CreateView materializes the node through its manager and returns the
// native view, or nil if the node is unbound.
func (n *RenderNode) CreateView() view.View {
	if n.manager == nil {
		return nil
	}
	return n.manager.CreateView(n.Root, n.ID, n.ClassName, n.Props)
}

// RenderNodeSource resolves render nodes by id. The manager uses it only to
// enrich structural diagnostics.
type RenderNodeSource interface {
	RenderNode(id int) *RenderNode
}
