package controllers

import (
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
)

// GroupController manages plain containers.
type GroupController struct {
	uimanager.GroupController
}

// Props implements uimanager.ViewController.
func (c *GroupController) Props() uimanager.PropTable {
	return uimanager.PropTable{
		"backgroundColor": setAttr("backgroundColor"),
		"opacity":         setAttr("opacity"),
		"overflow":        setAttr("overflow"),
		"borderRadius":    setAttr("borderRadius"),
	}
}

// SetCustomProp keeps props without a setter so scripts can read them back.
func (c *GroupController) SetCustomProp(v view.View, name string, value any) {
	if a, ok := v.(attrView); ok {
		a.SetAttr("custom."+name, value)
	}
}
