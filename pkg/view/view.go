// Package view defines the contract viewbridge needs from a host UI toolkit.
//
// The host owns the native objects; viewbridge only addresses them through
// these interfaces. Implementations are expected to be used from a single
// UI thread.
package view

// View is a native view created by a controller.
type View interface {
	// ID returns the node id the view is currently registered under.
	ID() int

	// SetID re-identifies the view. Used when a transient id is spliced into
	// a new logical identity.
	SetID(id int)

	// ClassName returns the class name tag the view was created with.
	// Transient toolkit-internal views return "".
	ClassName() string

	// Parent returns the container the view is attached to, or nil.
	Parent() Group

	// Layout positions the view in its parent, in pixels.
	Layout(x, y, width, height int)

	// LocationOnScreen returns the view origin in screen pixels, including
	// any status bar inset.
	LocationOnScreen() (x, y int, err error)

	// Width returns the laid out width in pixels.
	Width() int

	// Height returns the laid out height in pixels.
	Height() int
}

// Group is a View that can hold children.
type Group interface {
	View

	// ChildCount returns the number of attached children.
	ChildCount() int

	// ChildAt returns the child at index i, or nil if out of range.
	ChildAt(i int) View

	// AddView attaches child at index. A negative or out of range index
	// appends. The child's Parent must report this group afterwards.
	AddView(child View, index int)

	// RemoveView detaches child. Removing a view that is not a child is a
	// no-op.
	RemoveView(child View)
}

// Recycler is implemented by containers that buffer detached children for
// reuse. Clear drops the buffer.
type Recycler interface {
	Clear()
}

// ReusableScroller is implemented by scroll containers that cache a content
// offset which must be reset when the view is reused under a new id.
type ReusableScroller interface {
	ResetContentOffsetForReuse()
}

// Toolkit creates native views and exposes display metrics.
type Toolkit interface {
	// NewView creates a leaf view.
	NewView(id int, className string) View

	// NewGroup creates a container view.
	NewGroup(id int, className string) Group

	// Density returns physical pixels per density-independent pixel.
	Density() float64

	// StatusBarHeight returns the status bar inset in pixels.
	StatusBarHeight() int
}

// PxToDp converts pixels to density-independent pixels.
func PxToDp(px int, density float64) float64 {
	if density <= 0 {
		return float64(px)
	}
	return float64(px) / density
}
