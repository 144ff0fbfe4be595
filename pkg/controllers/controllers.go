// Package controllers provides the stock view controllers of the headless
// host: containers, text, recycling lists, scroll views and the shared
// custom-props table.
package controllers

import (
	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
)

// Class names registered by Package.
const (
	ViewClassName       = "View"
	ViewGroupClassName  = "ViewGroup"
	TextClassName       = "Text"
	ListClassName       = "ListView"
	ListItemClassName   = "ListViewItem"
	ScrollViewClassName = "ScrollView"
)

type stockPackage struct{}

// Package returns the stock controllers.
func Package() uimanager.Package { return stockPackage{} }

// APIVersion implements uimanager.Versioned.
func (stockPackage) APIVersion() string { return uimanager.APIVersion }

// Controllers implements uimanager.Package.
func (stockPackage) Controllers() []uimanager.Registration {
	return []uimanager.Registration{
		{Names: []string{ViewClassName, ViewGroupClassName, ListItemClassName}, New: func() uimanager.ViewController { return &GroupController{} }},
		{Names: []string{TextClassName}, New: func() uimanager.ViewController { return &TextController{} }},
		{Names: []string{ListClassName}, New: func() uimanager.ViewController { return &ListController{} }, Lazy: true},
		{Names: []string{ScrollViewClassName}, New: func() uimanager.ViewController { return &ScrollController{} }},
		{Names: []string{uimanager.CustomPropsClassName}, New: func() uimanager.ViewController { return &CustomPropsController{} }},
	}
}

// attrView is implemented by views that store applied props.
type attrView interface {
	SetAttr(key string, value any)
	Attr(key string) (any, bool)
}

// setAttr returns a setter that stores the value under key.
func setAttr(key string) uimanager.PropSetter {
	return func(v view.View, value any) {
		if a, ok := v.(attrView); ok {
			a.SetAttr(key, value)
		}
	}
}

// toInt converts a bridge number. JSON numbers arrive as float64.
func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}

func argInt(args []any, i int) (int, bool) {
	if i < 0 || i >= len(args) {
		return 0, false
	}
	return toInt(args[i])
}
