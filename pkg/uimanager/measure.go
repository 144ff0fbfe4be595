package uimanager

import (
	"fmt"

	"github.com/go-drift/viewbridge/pkg/view"
)

// Measurement is a view's on-screen frame in density-independent units.
// Y is relative to the area below the status bar.
type Measurement struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	StatusBarHeight float64 `json:"statusBarHeight"`
}

// AsMap returns the measurement keyed the way scripts read it.
func (r Measurement) AsMap() map[string]any {
	return map[string]any{
		"x":               r.X,
		"y":               r.Y,
		"width":           r.Width,
		"height":          r.Height,
		"statusBarHeight": r.StatusBarHeight,
	}
}

// MeasureInWindow resolves p with the Measurement of the view for id. An
// unknown id or a failed measurement rejects p.
func (m *Manager) MeasureInWindow(id int, p Promise) {
	m.metrics.command("measureInWindow")
	if p == nil {
		p = NoopPromise{}
	}
	v := m.registry.View(id)
	if v == nil {
		m.metrics.queryFailure()
		p.Reject("this view is null")
		return
	}
	res, err := m.measure(v)
	if err != nil {
		m.metrics.queryFailure()
		p.Reject("exception: " + err.Error())
		return
	}
	p.Resolve(res)
}

func (m *Manager) measure(v view.View) (res Measurement, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	x, y, err := v.LocationOnScreen()
	if err != nil {
		return Measurement{}, err
	}
	statusBar := m.ctx.Toolkit.StatusBarHeight()
	if statusBar > 0 {
		y -= statusBar
	}
	density := m.ctx.Toolkit.Density()
	return Measurement{
		X:               view.PxToDp(x, density),
		Y:               view.PxToDp(y, density),
		Width:           view.PxToDp(v.Width(), density),
		Height:          view.PxToDp(v.Height(), density),
		StatusBarHeight: view.PxToDp(statusBar, density),
	}, nil
}
