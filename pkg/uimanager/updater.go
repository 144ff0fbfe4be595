package uimanager

import (
	"sort"

	"github.com/go-drift/viewbridge/pkg/view"
)

// StylePropName is the prop whose map value is flattened into the
// surrounding props.
const StylePropName = "style"

// CustomPropsClassName is the class name the custom-props controller is
// registered under.
const CustomPropsClassName = "CustomProps"

// UpdateDispatcher applies prop batches to views through their controllers.
type UpdateDispatcher struct {
	custom ViewController
}

// SetCustomPropsController installs the controller consulted for props the
// view's own controller does not know.
func (d *UpdateDispatcher) SetCustomPropsController(c ViewController) {
	d.custom = c
}

type pendingProp struct {
	name  string
	value any
}

// UpdateProps applies props to v. Props known to ctrl are applied first in
// name order; the rest go to the custom-props controller afterwards so it
// can override. The caller runs OnAfterUpdateProps.
func (d *UpdateDispatcher) UpdateProps(ctrl ViewController, v view.View, props Props) {
	if ctrl == nil || v == nil || len(props) == 0 {
		return
	}
	var custom []pendingProp
	d.applyStandard(ctrl.Props(), v, props, &custom)

	var customTable PropTable
	if d.custom != nil {
		customTable = d.custom.Props()
	}
	fallback, _ := ctrl.(CustomPropSetter)
	for _, p := range custom {
		if setter, ok := customTable[p.name]; ok {
			setter(v, p.value)
			continue
		}
		if fallback != nil {
			fallback.SetCustomProp(v, p.name, p.value)
		}
	}
}

func (d *UpdateDispatcher) applyStandard(table PropTable, v view.View, props map[string]any, custom *[]pendingProp) {
	for _, name := range sortedKeys(props) {
		value := props[name]
		if setter, ok := table[name]; ok {
			setter(v, value)
			continue
		}
		if name == StylePropName {
			if style, ok := asMap(value); ok {
				d.applyStandard(table, v, style, custom)
				continue
			}
		}
		*custom = append(*custom, pendingProp{name: name, value: value})
	}
}

func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case Props:
		return m, true
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
