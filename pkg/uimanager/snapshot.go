package uimanager

import (
	"sort"

	"github.com/go-drift/viewbridge/pkg/view"
)

const maxTreeDepth = 500

// TreeSnapshot is a serializable picture of the native tree.
type TreeSnapshot struct {
	InstanceID string         `json:"instanceId"`
	Roots      []NodeSnapshot `json:"roots"`
	Views      int            `json:"views"`
	PreCached  []int          `json:"preCached,omitempty"`
}

// NodeSnapshot is one view in a TreeSnapshot.
type NodeSnapshot struct {
	ID        int            `json:"id"`
	ClassName string         `json:"className"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Children  []NodeSnapshot `json:"children,omitempty"`
}

type framed interface {
	Frame() (x, y, width, height int)
}

// Snapshot captures every root surface and its attached descendants.
func (m *Manager) Snapshot() TreeSnapshot {
	snap := TreeSnapshot{
		InstanceID: m.ctx.InstanceID,
		Views:      m.registry.ViewCount(),
	}
	for i := 0; i < m.registry.RootViewCount(); i++ {
		if root := m.registry.RootView(m.registry.RootIDAt(i)); root != nil {
			snap.Roots = append(snap.Roots, snapshotNode(root, 0))
		}
	}
	for id := range m.preCache {
		snap.PreCached = append(snap.PreCached, id)
	}
	sort.Ints(snap.PreCached)
	return snap
}

func snapshotNode(v view.View, depth int) NodeSnapshot {
	n := NodeSnapshot{
		ID:        v.ID(),
		ClassName: v.ClassName(),
		Width:     v.Width(),
		Height:    v.Height(),
	}
	if f, ok := v.(framed); ok {
		n.X, n.Y, n.Width, n.Height = f.Frame()
	}
	g, ok := v.(view.Group)
	if !ok || depth >= maxTreeDepth {
		return n
	}
	for i := 0; i < g.ChildCount(); i++ {
		if c := g.ChildAt(i); c != nil {
			n.Children = append(n.Children, snapshotNode(c, depth+1))
		}
	}
	return n
}
