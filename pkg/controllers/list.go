package controllers

import (
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
	"github.com/go-drift/viewbridge/pkg/view/headless"
)

type recyclerToolkit interface {
	NewRecycler(id int, className string) *headless.RecyclerGroup
}

type recycler interface {
	Recycle(child view.View)
}

// ListController manages recycling lists. Each list carries an untagged
// footer view after its items; only tagged children are exposed to the
// manager, and deleted items are kept in the recycle buffer.
type ListController struct {
	uimanager.GroupController
}

// CreateView implements uimanager.ViewController.
func (c *ListController) CreateView(root view.Group, id int, ctx *uimanager.Context, className string, props uimanager.Props) view.View {
	var list view.Group
	if tk, ok := ctx.Toolkit.(recyclerToolkit); ok {
		list = tk.NewRecycler(id, className)
	} else {
		list = ctx.Toolkit.NewGroup(id, className)
	}
	list.AddView(ctx.Toolkit.NewView(0, ""), -1)
	return list
}

// Props implements uimanager.ViewController.
func (c *ListController) Props() uimanager.PropTable {
	return uimanager.PropTable{
		"initialListSize": setAttr("initialListSize"),
		"horizontal":      setAttr("horizontal"),
	}
}

// AddView keeps the footer last.
func (c *ListController) AddView(parent view.Group, child view.View, index int) {
	n := c.ChildCount(parent)
	if index < 0 || index > n {
		index = n
	}
	parent.AddView(child, c.nativeIndex(parent, index))
}

// DeleteChild recycles child when the list supports it.
func (c *ListController) DeleteChild(parent view.Group, child view.View, index int) {
	if r, ok := parent.(recycler); ok {
		r.Recycle(child)
		return
	}
	parent.RemoveView(child)
}

// ChildCount returns the number of items, excluding the footer.
func (c *ListController) ChildCount(parent view.Group) int {
	n := 0
	for i := 0; i < parent.ChildCount(); i++ {
		if isItem(parent.ChildAt(i)) {
			n++
		}
	}
	return n
}

// ChildAt returns the i-th item.
func (c *ListController) ChildAt(parent view.Group, i int) view.View {
	if i < 0 || i >= c.ChildCount(parent) {
		return nil
	}
	return parent.ChildAt(c.nativeIndex(parent, i))
}

// DispatchFunction handles scrollToIndex.
func (c *ListController) DispatchFunction(v view.View, name string, args []any) {
	if name != "scrollToIndex" {
		return
	}
	if index, ok := argInt(args, 0); ok {
		if a, ok := v.(attrView); ok {
			a.SetAttr("scrollIndex", index)
		}
	}
}

// OnViewDestroy drops recycled items.
func (c *ListController) OnViewDestroy(v view.View) {
	if r, ok := v.(view.Recycler); ok {
		r.Clear()
	}
}

// nativeIndex maps a logical item index to a native child index.
func (c *ListController) nativeIndex(parent view.Group, logical int) int {
	seen := 0
	for i := 0; i < parent.ChildCount(); i++ {
		if !isItem(parent.ChildAt(i)) {
			continue
		}
		if seen == logical {
			return i
		}
		seen++
	}
	// Past the last item: insert before the first trailing untagged view.
	for i := parent.ChildCount() - 1; i >= 0; i-- {
		if isItem(parent.ChildAt(i)) {
			return i + 1
		}
	}
	return 0
}

func isItem(v view.View) bool {
	return v != nil && v.ClassName() != ""
}
