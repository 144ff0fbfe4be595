package uimanager

import (
	"fmt"
	"testing"

	vberrors "github.com/go-drift/viewbridge/pkg/errors"
	"github.com/go-drift/viewbridge/pkg/view"
	"github.com/go-drift/viewbridge/pkg/view/headless"
)

// recordingHandler collects reported diagnostics.
type recordingHandler struct {
	errs   []*vberrors.UIError
	panics []*vberrors.PanicError
}

func (h *recordingHandler) HandleError(err *vberrors.UIError)    { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *vberrors.PanicError) { h.panics = append(h.panics, err) }

// journal records controller hook calls in order.
type journal struct {
	events []string
}

func (j *journal) add(format string, args ...any) {
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

// recordingController is a container controller that logs every hook.
type recordingController struct {
	GroupController
	j *journal
}

func (c *recordingController) Props() PropTable {
	return PropTable{
		"text": func(v view.View, value any) {
			c.j.add("prop text=%v", value)
			v.(*headless.Group).SetAttr("text", value)
		},
		"width": func(v view.View, value any) {
			c.j.add("prop width=%v", value)
		},
	}
}

func (c *recordingController) SetCustomProp(v view.View, name string, value any) {
	c.j.add("custom %s=%v", name, value)
}

func (c *recordingController) OnAfterUpdateProps(v view.View) {
	c.j.add("after %d", v.ID())
}

func (c *recordingController) OnViewDestroy(v view.View) {
	c.j.add("destroy %d", v.ID())
}

func (c *recordingController) OnBatchStart(v view.View)          { c.j.add("batchStart %d", v.ID()) }
func (c *recordingController) OnBatchComplete(v view.View)       { c.j.add("batchComplete %d", v.ID()) }
func (c *recordingController) OnManageChildComplete(v view.View) { c.j.add("manageChild %d", v.ID()) }

func (c *recordingController) UpdateExtra(v view.View, extra any) {
	c.j.add("extra %d %v", v.ID(), extra)
}

func (c *recordingController) DispatchFunction(v view.View, name string, args []any) {
	c.j.add("call %d %s %v", v.ID(), name, args)
}

func (c *recordingController) DispatchFunctionWithResult(v view.View, name string, args []any, p Promise) {
	c.j.add("callWithResult %d %s", v.ID(), name)
	p.Resolve(name + ":ok")
}

// recyclerController builds recycling scroll containers.
type recyclerController struct {
	GroupController
}

func (recyclerController) CreateView(root view.Group, id int, ctx *Context, className string, props Props) view.View {
	return ctx.Toolkit.(*headless.Toolkit).NewRecycler(id, className)
}

// scrollController builds scroll containers.
type scrollController struct {
	GroupController
}

func (scrollController) CreateView(root view.Group, id int, ctx *Context, className string, props Props) view.View {
	return ctx.Toolkit.(*headless.Toolkit).NewScroller(id, className)
}

type fixture struct {
	m       *Manager
	toolkit *headless.Toolkit
	root    *headless.Group
	handler *recordingHandler
	j       *journal
}

const rootID = 1

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	j := &journal{}
	pkg := PackageFunc(func() []Registration {
		return []Registration{
			{Names: []string{"View", "ViewGroup"}, New: func() ViewController { return &recordingController{j: j} }},
			{Names: []string{"Recycler"}, New: func() ViewController { return recyclerController{} }},
			{Names: []string{"Scroller"}, New: func() ViewController { return scrollController{} }},
			{Names: []string{"LazyList"}, New: func() ViewController { return GroupController{} }, Lazy: true},
		}
	})
	return newFixtureWith(t, []Package{pkg}, j, opts...)
}

func newFixtureWith(t *testing.T, packages []Package, j *journal, opts ...Option) *fixture {
	t.Helper()
	toolkit := headless.New()
	if j == nil {
		j = &journal{}
	}
	h := &recordingHandler{}
	opts = append([]Option{WithErrorHandler(h), WithInstanceID("test")}, opts...)
	m := NewManager(toolkit, packages, opts...)
	root := toolkit.NewRoot(rootID)
	m.AddRootView(root)
	return &fixture{m: m, toolkit: toolkit, root: root, handler: h, j: j}
}

// chain creates a chain of View groups under the root, first id outermost.
func (f *fixture) chain(ids ...int) {
	pid := rootID
	for _, id := range ids {
		f.m.CreateView(f.root, id, "View", nil)
		f.m.AddChild(pid, id, -1)
		pid = id
	}
}
