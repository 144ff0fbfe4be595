package controllers

import (
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
	"github.com/go-drift/viewbridge/pkg/view/headless"
)

type scrollerToolkit interface {
	NewScroller(id int, className string) *headless.ScrollGroup
}

type scroller interface {
	ScrollTo(x, y int)
	ContentOffset() (int, int)
}

// ScrollController manages scroll containers.
type ScrollController struct {
	uimanager.GroupController
}

// CreateView implements uimanager.ViewController.
func (c *ScrollController) CreateView(root view.Group, id int, ctx *uimanager.Context, className string, props uimanager.Props) view.View {
	if tk, ok := ctx.Toolkit.(scrollerToolkit); ok {
		return tk.NewScroller(id, className)
	}
	return ctx.Toolkit.NewGroup(id, className)
}

// Props implements uimanager.ViewController.
func (c *ScrollController) Props() uimanager.PropTable {
	return uimanager.PropTable{
		"horizontal":     setAttr("horizontal"),
		"scrollEnabled":  setAttr("scrollEnabled"),
		"pagingEnabled":  setAttr("pagingEnabled"),
		"showScrollBars": setAttr("showScrollBars"),
	}
}

// DispatchFunction handles scrollTo with x and y arguments.
func (c *ScrollController) DispatchFunction(v view.View, name string, args []any) {
	s, ok := v.(scroller)
	if !ok || name != "scrollTo" {
		return
	}
	x, okX := argInt(args, 0)
	y, okY := argInt(args, 1)
	if okX && okY {
		s.ScrollTo(x, y)
	}
}

// DispatchFunctionWithResult answers getContentOffset.
func (c *ScrollController) DispatchFunctionWithResult(v view.View, name string, args []any, p uimanager.Promise) {
	s, ok := v.(scroller)
	if !ok || name != "getContentOffset" {
		p.Reject("unknown function " + name)
		return
	}
	x, y := s.ContentOffset()
	p.Resolve(map[string]any{"x": x, "y": y})
}
