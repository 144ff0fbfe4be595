package controllers

import (
	"fmt"

	"github.com/go-drift/viewbridge/pkg/uimanager"
	"github.com/go-drift/viewbridge/pkg/view"
)

// TextController manages leaf text views.
type TextController struct {
	uimanager.BaseController
}

// CreateView implements uimanager.ViewController.
func (c *TextController) CreateView(root view.Group, id int, ctx *uimanager.Context, className string, props uimanager.Props) view.View {
	return ctx.Toolkit.NewView(id, className)
}

// Props implements uimanager.ViewController.
func (c *TextController) Props() uimanager.PropTable {
	return uimanager.PropTable{
		"text":          setAttr("text"),
		"color":         setAttr("color"),
		"fontSize":      setAttr("fontSize"),
		"fontWeight":    setAttr("fontWeight"),
		"numberOfLines": setAttr("numberOfLines"),
	}
}

// OnAfterUpdateProps normalizes the text attribute to a string.
func (c *TextController) OnAfterUpdateProps(v view.View) {
	a, ok := v.(attrView)
	if !ok {
		return
	}
	if text, ok := a.Attr("text"); ok {
		if _, isString := text.(string); !isString && text != nil {
			a.SetAttr("text", fmt.Sprint(text))
		}
	}
}

// DispatchFunctionWithResult answers getText.
func (c *TextController) DispatchFunctionWithResult(v view.View, name string, args []any, p uimanager.Promise) {
	switch name {
	case "getText":
		a, ok := v.(attrView)
		if !ok {
			p.Reject("text unavailable")
			return
		}
		text, _ := a.Attr("text")
		p.Resolve(text)
	default:
		p.Reject("unknown function " + name)
	}
}
