package uimanager

import (
	"github.com/go-drift/viewbridge/pkg/view"
)

// DeleteChild removes the view for childID from pid and tears down its
// subtree.
func (m *Manager) DeleteChild(pid, childID int) {
	m.DeleteChildAt(pid, childID, -1)
}

// DeleteChildAt is DeleteChild with the child's index in its parent, for
// controllers that remove by position.
func (m *Manager) DeleteChildAt(pid, childID, index int) {
	m.metrics.command("deleteChild")
	parent, ok := m.registry.View(pid).(view.Group)
	child := m.registry.View(childID)
	if !ok || child == nil {
		return
	}
	m.DeleteChildRecursive(parent, child, index)
	m.updateSizes()
}

// deleteFrame is one pending detach in a subtree teardown.
type deleteFrame struct {
	parent   view.Group
	child    view.View
	index    int
	expanded bool
}

// DeleteChildRecursive tears down child and all of its descendants, then
// detaches child from parent. Descendants are finished before their
// ancestors: each node gets OnViewDestroy, is detached from its parent and
// is unregistered.
//
// The host tree can change under the traversal, so children are listed when
// a node is first visited, every view is finished at most once, and a pair
// whose child and parent both no longer match the registry is skipped.
func (m *Manager) DeleteChildRecursive(parent view.Group, child view.View, index int) {
	if parent == nil || child == nil {
		return
	}
	visited := make(map[view.View]struct{})
	stack := []deleteFrame{{parent: parent, child: child, index: index}}

	for len(stack) > 0 {
		top := len(stack) - 1
		frame := stack[top]

		if !frame.expanded {
			stack[top].expanded = true
			if _, seen := visited[frame.child]; seen {
				stack = stack[:top]
				continue
			}
			visited[frame.child] = struct{}{}
			stack = m.pushChildren(stack, frame.child)
			continue
		}

		stack = stack[:top]
		m.finishDelete(frame.parent, frame.child, frame.index)
	}
}

// pushChildren appends a frame for every child of v. The last child ends
// on top of the stack, so siblings are torn down from the end.
func (m *Manager) pushChildren(stack []deleteFrame, v view.View) []deleteFrame {
	group, ok := v.(view.Group)
	if !ok {
		return stack
	}
	ctrl := m.controllerFor(v)
	count := group.ChildCount()
	if ctrl != nil {
		count = ctrl.ChildCount(group)
	}
	for i := 0; i < count; i++ {
		var c view.View
		if ctrl != nil {
			c = ctrl.ChildAt(group, i)
		} else {
			c = group.ChildAt(i)
		}
		if c == nil {
			continue
		}
		stack = append(stack, deleteFrame{parent: group, child: c, index: -1})
	}
	return stack
}

func (m *Manager) finishDelete(parent view.Group, child view.View, index int) {
	if ctrl := m.controllerFor(child); ctrl != nil {
		ctrl.OnViewDestroy(child)
	}

	childLive := m.registry.View(child.ID()) == child
	parentLive := m.registry.View(parent.ID()) == parent
	if !childLive && !parentLive {
		return
	}

	if ctrl := m.controllerFor(parent); ctrl != nil {
		ctrl.DeleteChild(parent, child, index)
	} else {
		parent.RemoveView(child)
	}

	if childLive {
		m.registry.RemoveView(child.ID())
		m.metrics.viewDestroyed()
	}
}
