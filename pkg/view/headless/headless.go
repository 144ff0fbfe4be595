// Package headless implements view.Toolkit in memory.
//
// It is the host used by the replay CLI, the debug server and tests. Views
// keep their attributes in a map so controllers can apply props without a
// real widget set behind them.
package headless

import (
	"github.com/go-drift/viewbridge/pkg/view"
)

// RootClassName is the class tag given to root surfaces.
const RootClassName = "RootNode"

// Toolkit is an in-memory view.Toolkit.
type Toolkit struct {
	density         float64
	statusBarHeight int
	constructed     map[string]int
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithDensity sets pixels per density-independent pixel.
func WithDensity(density float64) Option {
	return func(t *Toolkit) {
		t.density = density
	}
}

// WithStatusBarHeight sets the status bar inset in pixels.
func WithStatusBarHeight(px int) Option {
	return func(t *Toolkit) {
		t.statusBarHeight = px
	}
}

// New creates a toolkit with density 1 and no status bar.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		density:     1,
		constructed: make(map[string]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Density implements view.Toolkit.
func (t *Toolkit) Density() float64 { return t.density }

// StatusBarHeight implements view.Toolkit.
func (t *Toolkit) StatusBarHeight() int { return t.statusBarHeight }

// NewView implements view.Toolkit.
func (t *Toolkit) NewView(id int, className string) view.View {
	t.constructed[className]++
	return t.newView(id, className)
}

// NewGroup implements view.Toolkit.
func (t *Toolkit) NewGroup(id int, className string) view.Group {
	t.constructed[className]++
	return &Group{View: *t.newView(id, className)}
}

// NewRecycler creates a container that buffers detached children.
func (t *Toolkit) NewRecycler(id int, className string) *RecyclerGroup {
	t.constructed[className]++
	r := &RecyclerGroup{Group: Group{View: *t.newView(id, className)}}
	r.outer = r
	return r
}

// NewScroller creates a container with a cached content offset.
func (t *Toolkit) NewScroller(id int, className string) *ScrollGroup {
	t.constructed[className]++
	s := &ScrollGroup{Group: Group{View: *t.newView(id, className)}}
	s.outer = s
	return s
}

// NewRoot creates a root surface. Roots are not counted as constructions.
func (t *Toolkit) NewRoot(id int) *Group {
	return &Group{View: *t.newView(id, RootClassName)}
}

// Constructed returns how many views of className the toolkit has built.
func (t *Toolkit) Constructed(className string) int {
	return t.constructed[className]
}

func (t *Toolkit) newView(id int, className string) *View {
	return &View{
		toolkit:   t,
		id:        id,
		className: className,
		attrs:     make(map[string]any),
	}
}

type parentSetter interface {
	setParent(p view.Group)
}

// View is a leaf view.
type View struct {
	toolkit   *Toolkit
	id        int
	className string
	parent    view.Group

	x, y, width, height int

	attrs      map[string]any
	measureErr error
}

// ID implements view.View.
func (v *View) ID() int { return v.id }

// SetID implements view.View.
func (v *View) SetID(id int) { v.id = id }

// ClassName implements view.View.
func (v *View) ClassName() string { return v.className }

// Parent implements view.View.
func (v *View) Parent() view.Group { return v.parent }

func (v *View) setParent(p view.Group) { v.parent = p }

// Layout implements view.View.
func (v *View) Layout(x, y, width, height int) {
	v.x, v.y, v.width, v.height = x, y, width, height
}

// Frame returns the last layout in parent coordinates.
func (v *View) Frame() (x, y, width, height int) {
	return v.x, v.y, v.width, v.height
}

// Width implements view.View.
func (v *View) Width() int { return v.width }

// Height implements view.View.
func (v *View) Height() int { return v.height }

// LocationOnScreen implements view.View. The origin is the sum of the
// ancestor offsets plus the status bar inset.
func (v *View) LocationOnScreen() (int, int, error) {
	if v.measureErr != nil {
		return 0, 0, v.measureErr
	}
	x, y := v.x, v.y
	for p := v.parent; p != nil; p = p.Parent() {
		if hv, ok := p.(interface{ Frame() (int, int, int, int) }); ok {
			px, py, _, _ := hv.Frame()
			x += px
			y += py
		}
	}
	if v.toolkit != nil {
		y += v.toolkit.statusBarHeight
	}
	return x, y, nil
}

// FailMeasure makes LocationOnScreen return err until cleared with nil.
func (v *View) FailMeasure(err error) { v.measureErr = err }

// SetAttr stores a controller-applied attribute.
func (v *View) SetAttr(key string, value any) { v.attrs[key] = value }

// Attr returns a stored attribute.
func (v *View) Attr(key string) (any, bool) {
	value, ok := v.attrs[key]
	return value, ok
}

// Attrs returns a copy of all stored attributes.
func (v *View) Attrs() map[string]any {
	out := make(map[string]any, len(v.attrs))
	for k, value := range v.attrs {
		out[k] = value
	}
	return out
}

// Group is a container view.
type Group struct {
	View
	children []view.View
	outer    view.Group
}

// ChildCount implements view.Group.
func (g *Group) ChildCount() int { return len(g.children) }

// ChildAt implements view.Group.
func (g *Group) ChildAt(i int) view.View {
	if i < 0 || i >= len(g.children) {
		return nil
	}
	return g.children[i]
}

// AddView implements view.Group. The child is detached from any previous
// parent first.
func (g *Group) AddView(child view.View, index int) {
	if child == nil {
		return
	}
	if old := child.Parent(); old != nil {
		old.RemoveView(child)
	}
	if index < 0 || index > len(g.children) {
		g.children = append(g.children, child)
	} else {
		g.children = append(g.children, nil)
		copy(g.children[index+1:], g.children[index:])
		g.children[index] = child
	}
	if ps, ok := child.(parentSetter); ok {
		ps.setParent(g.self())
	}
}

// RemoveView implements view.Group.
func (g *Group) RemoveView(child view.View) {
	for i, c := range g.children {
		if c == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			if ps, ok := child.(parentSetter); ok {
				ps.setParent(nil)
			}
			return
		}
	}
}

// self returns the outermost value embedding g so that children see the
// concrete container type as their parent.
func (g *Group) self() view.Group {
	if g.outer != nil {
		return g.outer
	}
	return g
}

// RecyclerGroup is a container that keeps detached children for reuse.
type RecyclerGroup struct {
	Group
	recycled []view.View
}

// Recycle detaches child and keeps it in the reuse buffer.
func (r *RecyclerGroup) Recycle(child view.View) {
	r.RemoveView(child)
	r.recycled = append(r.recycled, child)
}

// Recycled returns the number of buffered views.
func (r *RecyclerGroup) Recycled() int { return len(r.recycled) }

// Clear implements view.Recycler.
func (r *RecyclerGroup) Clear() { r.recycled = nil }

// ScrollGroup is a container with a content offset.
type ScrollGroup struct {
	Group
	offsetX, offsetY int
}

// ScrollTo sets the content offset.
func (s *ScrollGroup) ScrollTo(x, y int) { s.offsetX, s.offsetY = x, y }

// ContentOffset returns the content offset.
func (s *ScrollGroup) ContentOffset() (int, int) { return s.offsetX, s.offsetY }

// ResetContentOffsetForReuse implements view.ReusableScroller.
func (s *ScrollGroup) ResetContentOffsetForReuse() { s.offsetX, s.offsetY = 0, 0 }
