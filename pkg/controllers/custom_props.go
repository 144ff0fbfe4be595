package controllers

import (
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
)

// CustomPropsController holds the props every view accepts regardless of
// class. The update dispatcher consults it after the view's own table.
type CustomPropsController struct {
	uimanager.BaseController
}

// CreateView implements uimanager.ViewController.
func (c *CustomPropsController) CreateView(root view.Group, id int, ctx *uimanager.Context, className string, props uimanager.Props) view.View {
	return ctx.Toolkit.NewView(id, className)
}

// Props implements uimanager.ViewController.
func (c *CustomPropsController) Props() uimanager.PropTable {
	return uimanager.PropTable{
		"testID":             setAttr("testID"),
		"nativeID":           setAttr("nativeID"),
		"accessibilityLabel": setAttr("accessibilityLabel"),
	}
}
