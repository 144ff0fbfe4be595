package uimanager

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	vberrors "github.com/go-drift/viewbridge/pkg/errors"
	"github.com/go-drift/viewbridge/pkg/uithread"
	"github.com/go-drift/viewbridge/pkg/view"
	"github.com/go-drift/viewbridge/pkg/view/headless"
)

func TestCreateThenDeleteTogglesHasView(t *testing.T) {
	f := newFixture(t)

	if f.m.HasView(2) {
		t.Fatal("view 2 exists before creation")
	}
	f.m.CreateView(f.root, 2, "View", nil)
	if !f.m.HasView(2) {
		t.Fatal("view 2 missing after creation")
	}
	f.m.AddChild(rootID, 2, 0)
	f.m.DeleteChild(rootID, 2)
	if f.m.HasView(2) {
		t.Error("view 2 still registered after deletion")
	}
	if f.root.ChildCount() != 0 {
		t.Errorf("root has %d children after deletion, want 0", f.root.ChildCount())
	}
}

func TestCreateViewReturnsExisting(t *testing.T) {
	f := newFixture(t)

	first := f.m.CreateView(f.root, 2, "View", nil)
	second := f.m.CreateView(f.root, 2, "View", nil)
	if first != second {
		t.Error("duplicate create built a second view")
	}
	if got := f.toolkit.Constructed("View"); got != 1 {
		t.Errorf("constructed %d views, want 1", got)
	}
}

func TestCreatePreViewIsReused(t *testing.T) {
	f := newFixture(t)

	f.m.CreatePreView(f.root, 7, "View", Props{"text": "early"})
	if !f.m.IsPreCached(7) {
		t.Fatal("view 7 not pre-cached")
	}
	if f.m.HasView(7) {
		t.Fatal("pre-cached view must not be live")
	}

	v := f.m.CreateView(f.root, 7, "View", Props{"text": "late"})
	if v == nil {
		t.Fatal("CreateView returned nil")
	}
	if got := f.toolkit.Constructed("View"); got != 1 {
		t.Errorf("constructed %d views, want 1", got)
	}
	if f.m.IsPreCached(7) {
		t.Error("pre-cache entry kept after creation")
	}
	if text, _ := v.(*headless.Group).Attr("text"); text != "late" {
		t.Errorf("text = %v, want late", text)
	}
}

func TestCreatePreViewSkipsLiveView(t *testing.T) {
	f := newFixture(t)

	f.m.CreateView(f.root, 3, "View", nil)
	f.m.CreatePreView(f.root, 3, "View", nil)
	if f.m.IsPreCached(3) {
		t.Error("live view was pre-cached")
	}
	if got := f.toolkit.Constructed("View"); got != 1 {
		t.Errorf("constructed %d views, want 1", got)
	}
}

func TestCreateViewAppliesPropsThenAfterHook(t *testing.T) {
	f := newFixture(t)

	f.m.CreateView(f.root, 2, "View", Props{
		"text":  "hi",
		"extra": 1,
		"style": map[string]any{"width": 10},
	})

	want := []string{
		"prop width=10",
		"prop text=hi",
		"custom extra=1",
		"after 2",
	}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateView(t *testing.T) {
	f := newFixture(t)
	f.m.CreateView(f.root, 2, "View", nil)
	f.j.events = nil

	f.m.UpdateView(2, "View", Props{"text": "new"})
	f.m.UpdateView(99, "View", Props{"text": "ignored"})
	f.m.UpdateView(2, "Missing", Props{"text": "ignored"})

	want := []string{"prop text=new", "after 2"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateLayout(t *testing.T) {
	f := newFixture(t)
	f.m.CreateView(f.root, 2, "View", nil)

	f.m.UpdateLayout("View", 2, 1, 2, 30, 40)
	x, y, w, h := f.m.FindView(2).(*headless.Group).Frame()
	if x != 1 || y != 2 || w != 30 || h != 40 {
		t.Errorf("frame = (%d,%d,%d,%d), want (1,2,30,40)", x, y, w, h)
	}

	// Unknown ids and classes are ignored.
	f.m.UpdateLayout("View", 42, 0, 0, 1, 1)
	f.m.UpdateLayout("Missing", 2, 0, 0, 1, 1)
	if f.m.FindView(2).Width() != 30 {
		t.Error("layout changed by an unresolved command")
	}
}

func TestUpdateExtra(t *testing.T) {
	f := newFixture(t)
	f.m.CreateView(f.root, 2, "View", nil)
	f.j.events = nil

	f.m.UpdateExtra(2, "View", "payload")
	f.m.UpdateExtra(3, "View", "dropped")

	if diff := cmp.Diff([]string{"extra 2 payload"}, f.j.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAddChildSkipsParentedChild(t *testing.T) {
	f := newFixture(t)
	f.chain(2)
	f.m.CreateView(f.root, 3, "View", nil)
	f.m.AddChild(rootID, 3, -1)
	f.m.CreateView(f.root, 4, "View", nil)
	f.m.AddChild(2, 4, 0)

	f.m.AddChild(3, 4, 0)

	child := f.m.FindView(4)
	if child.Parent() != f.m.FindView(2) {
		t.Errorf("child moved to %v, want it kept under 2", child.Parent())
	}
	if len(f.handler.errs) != 0 {
		t.Errorf("unexpected reports: %v", f.handler.errs)
	}
}

func TestAddChildReportsStructureError(t *testing.T) {
	f := newFixture(t)
	f.m.CreateView(f.root, 2, "View", nil)

	f.m.AddChild(2, 99, 0)

	if len(f.handler.errs) != 1 {
		t.Fatalf("got %d reports, want 1", len(f.handler.errs))
	}
	uerr := f.handler.errs[0]
	if uerr.Kind != vberrors.KindStructure || !uerr.NonFatal {
		t.Errorf("kind = %v nonFatal = %v, want structure non-fatal", uerr.Kind, uerr.NonFatal)
	}
	var serr *vberrors.StructureError
	if !errors.As(uerr, &serr) {
		t.Fatalf("report does not wrap a StructureError: %v", uerr)
	}
	if serr.ParentID != 2 || serr.ChildID != 99 || serr.ParentClass != "View" {
		t.Errorf("structure error = %+v", serr)
	}
	if !strings.Contains(serr.Error(), "childClass null") {
		t.Errorf("message %q should name the missing child as null", serr.Error())
	}
}

type renderNodes map[int]*RenderNode

func (r renderNodes) RenderNode(id int) *RenderNode { return r[id] }

func TestAddChildNonContainerNamesRenderNode(t *testing.T) {
	f := newFixture(t, WithRenderNodeSource(renderNodes{5: {ID: 5, ClassName: "TextNode"}}))
	leaf := f.toolkit.NewView(5, "Leaf")
	f.m.Registry().AddView(leaf)
	f.m.CreateView(f.root, 6, "View", nil)

	f.m.AddChild(5, 6, 0)

	if len(f.handler.errs) != 1 {
		t.Fatalf("got %d reports, want 1", len(f.handler.errs))
	}
	var serr *vberrors.StructureError
	if !errors.As(f.handler.errs[0], &serr) {
		t.Fatal("report does not wrap a StructureError")
	}
	if serr.RenderClass != "TextNode" || serr.ChildClass != "View" {
		t.Errorf("structure error = %+v", serr)
	}
	if f.m.FindView(6).Parent() != nil {
		t.Error("child attached to a non-container")
	}
}

func TestMove(t *testing.T) {
	f := newFixture(t)
	f.chain(2)
	f.m.CreateView(f.root, 3, "View", nil)
	f.m.AddChild(rootID, 3, -1)
	f.m.CreateView(f.root, 4, "View", nil)
	f.m.AddChild(2, 4, -1)

	f.m.Move(4, 3, 0)
	if got := f.m.FindView(4).Parent(); got != f.m.FindView(3) {
		t.Fatalf("parent after move = %v, want view 3", got)
	}
	if f.m.FindView(2).(view.Group).ChildCount() != 0 {
		t.Error("old parent still holds the moved child")
	}

	leaf := f.toolkit.NewView(8, "Leaf")
	f.m.Registry().AddView(leaf)
	f.m.Move(4, 8, 0)
	f.m.Move(4, 77, 0)
	if got := f.m.FindView(4).Parent(); got != f.m.FindView(3) {
		t.Error("move to a non-container changed the parent")
	}
}

func TestDeleteChildRecursivePostOrder(t *testing.T) {
	f := newFixture(t)
	f.chain(10, 11, 12, 13)
	f.j.events = nil

	f.m.DeleteChild(rootID, 10)

	want := []string{"destroy 13", "destroy 12", "destroy 11", "destroy 10"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []int{10, 11, 12, 13} {
		if f.m.HasView(id) {
			t.Errorf("view %d still registered", id)
		}
	}
	if f.root.ChildCount() != 0 {
		t.Error("subtree still attached to the root")
	}
}

func TestDeleteChildSiblingsLastFirst(t *testing.T) {
	f := newFixture(t)
	f.chain(2)
	for _, id := range []int{3, 4, 5} {
		f.m.CreateView(f.root, id, "View", nil)
		f.m.AddChild(2, id, -1)
	}
	f.j.events = nil

	f.m.DeleteChild(rootID, 2)

	want := []string{"destroy 5", "destroy 4", "destroy 3", "destroy 2"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteChildIgnoresUnknownIDs(t *testing.T) {
	f := newFixture(t)
	f.chain(2)

	f.m.DeleteChild(rootID, 42)
	f.m.DeleteChild(42, 2)

	if !f.m.HasView(2) {
		t.Error("unresolved delete removed a view")
	}
}

func TestDeleteChildRecursiveSkipsStalePair(t *testing.T) {
	f := newFixture(t)
	f.chain(2)
	parent := f.toolkit.NewGroup(70, "View")
	child := f.toolkit.NewView(71, "View")
	parent.AddView(child, -1)

	f.m.DeleteChildRecursive(parent, child, -1)

	if child.Parent() != parent || parent.ChildCount() != 1 {
		t.Error("unregistered child was detached from its unregistered parent")
	}
	if diff := cmp.Diff([]int{2}, f.m.Registry().IDs()); diff != "" {
		t.Errorf("registry ids mismatch (-want +got):\n%s", diff)
	}
	if f.root.ChildCount() != 1 {
		t.Error("root children changed")
	}
}

// hookController runs onDestroy from OnViewDestroy.
type hookController struct {
	GroupController
	onDestroy func(v view.View)
}

func (c *hookController) OnViewDestroy(v view.View) {
	if c.onDestroy != nil {
		c.onDestroy(v)
	}
}

func TestDeleteChildRecursiveRegistryChangedByHook(t *testing.T) {
	hooked := &hookController{}
	pkg := PackageFunc(func() []Registration {
		return []Registration{{Names: []string{"Hooked"}, New: func() ViewController { return hooked }}}
	})
	f := newFixtureWith(t, []Package{pkg}, nil)
	m := f.m

	outer := m.CreateView(f.root, 10, "Hooked", nil)
	m.AddChild(rootID, 10, -1)
	inner := m.CreateView(f.root, 11, "Hooked", nil)
	m.AddChild(10, 11, -1)

	// Destroying 11 unregisters both 11 and its parent before the detach.
	hooked.onDestroy = func(v view.View) {
		if v.ID() == 11 {
			m.Registry().RemoveView(11)
			m.Registry().RemoveView(10)
		}
	}

	m.DeleteChild(rootID, 10)

	if inner.Parent() != outer {
		t.Error("stale pair 10/11 was detached")
	}
	if outer.Parent() != nil || f.root.ChildCount() != 0 {
		t.Error("10 was not detached from the live root")
	}
	if m.HasView(10) || m.HasView(11) {
		t.Error("views still registered")
	}
	if len(f.handler.errs) != 0 || len(f.handler.panics) != 0 {
		t.Errorf("unexpected reports: %v %v", f.handler.errs, f.handler.panics)
	}
}

func TestDeleteChildUntaggedViews(t *testing.T) {
	f := newFixture(t)
	f.chain(2)
	transient := f.toolkit.NewGroup(0, "")
	f.m.FindView(2).(view.Group).AddView(transient, -1)
	f.m.CreateView(f.root, 3, "View", nil)
	transient.AddView(f.m.FindView(3), -1)
	f.j.events = nil

	f.m.DeleteChild(rootID, 2)

	want := []string{"destroy 3", "destroy 2"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
	if f.m.HasView(3) {
		t.Error("descendant of an untagged view still registered")
	}
}

func TestReplaceID(t *testing.T) {
	f := newFixture(t)
	v := f.m.CreateView(f.root, 5, "Recycler", nil)
	r := v.(*headless.RecyclerGroup)
	item := f.toolkit.NewView(0, "")
	r.AddView(item, -1)
	r.Recycle(item)

	f.m.ReplaceID(5, 6)

	if f.m.HasView(5) {
		t.Error("old id still registered")
	}
	if f.m.FindView(6) != v {
		t.Fatal("new id does not resolve to the same view")
	}
	if v.ID() != 6 {
		t.Errorf("view id = %d, want 6", v.ID())
	}
	if r.Recycled() != 0 {
		t.Errorf("recycle buffer holds %d views, want 0", r.Recycled())
	}
}

func TestReplaceIDDiscardsPreCachedTarget(t *testing.T) {
	f := newFixture(t)
	f.m.CreatePreView(f.root, 8, "View", nil)
	v := f.m.CreateView(f.root, 5, "View", nil)

	f.m.ReplaceID(5, 8)

	if f.m.IsPreCached(8) {
		t.Error("id 8 is both live and pre-cached")
	}
	if f.m.FindView(8) != v {
		t.Fatal("id 8 does not resolve to the replaced view")
	}
	if got := f.m.CreateView(f.root, 8, "View", nil); got != v {
		t.Error("create after replace did not return the live view")
	}
	if f.m.IsPreCached(8) {
		t.Error("pre-cache entry outlived the create")
	}
}

func TestReplaceIDResetsScroller(t *testing.T) {
	f := newFixture(t)
	s := f.m.CreateView(f.root, 5, "Scroller", nil).(*headless.ScrollGroup)
	s.ScrollTo(0, 300)

	f.m.ReplaceID(5, 9)

	if x, y := s.ContentOffset(); x != 0 || y != 0 {
		t.Errorf("content offset = (%d,%d), want (0,0)", x, y)
	}
}

func TestReplaceIDMissingReports(t *testing.T) {
	f := newFixture(t)

	f.m.ReplaceID(5, 6)

	if f.m.HasView(6) {
		t.Error("view registered under new id")
	}
	if len(f.handler.errs) != 1 || !errors.Is(f.handler.errs[0], ErrViewNotFound) {
		t.Errorf("reports = %v, want one ErrViewNotFound", f.handler.errs)
	}
}

func TestReplaceIDDoesNotTakeRoot(t *testing.T) {
	f := newFixture(t)

	f.m.ReplaceID(rootID, 50)

	if f.root.ID() != rootID {
		t.Error("root surface was re-identified")
	}
}

func TestDispatchUIFunction(t *testing.T) {
	f := newFixture(t)
	f.m.CreateView(f.root, 2, "View", nil)
	f.j.events = nil

	f.m.DispatchUIFunction(2, "View", "scrollTo", []any{1, 2}, nil)
	p := NewChanPromise()
	f.m.DispatchUIFunction(2, "View", "getValue", nil, p)

	res := <-p.Done()
	if res.Err != nil || res.Value != "getValue:ok" {
		t.Errorf("result = %+v, want getValue:ok", res)
	}
	want := []string{"call 2 scrollTo [1 2]", "callWithResult 2 getValue"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchUIFunctionMissingViewRejects(t *testing.T) {
	f := newFixture(t)

	p := NewChanPromise()
	f.m.DispatchUIFunction(99, "View", "getValue", nil, p)

	res := <-p.Done()
	if !errors.Is(res.Err, ErrRejected) {
		t.Errorf("err = %v, want rejection", res.Err)
	}

	// Fire and forget on a missing view is silent.
	f.m.DispatchUIFunction(99, "View", "scrollTo", nil, NoopPromise{})
	if len(f.j.events) != 0 {
		t.Errorf("unexpected events: %v", f.j.events)
	}
}

func TestBatchHooks(t *testing.T) {
	f := newFixture(t)
	f.m.CreateView(f.root, 2, "View", nil)
	f.j.events = nil

	f.m.OnBatchStart("View", 2)
	f.m.OnManageChildComplete("View", 2)
	f.m.OnBatchComplete("View", 2)
	f.m.OnBatchStart("View", 3)
	f.m.OnBatchComplete("Missing", 2)

	want := []string{"batchStart 2", "manageChild 2", "batchComplete 2"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestTextScenarioDeleteRootView(t *testing.T) {
	f := newFixture(t)

	f.m.CreateView(f.root, 2, "View", Props{"text": "hello"})
	f.m.AddChild(rootID, 2, 0)
	f.m.UpdateLayout("View", 2, 0, 0, 100, 20)
	f.m.CreateView(f.root, 3, "View", nil)
	f.m.AddChild(rootID, 3, 1)
	f.j.events = nil

	f.m.DeleteRootView(rootID)

	if f.m.HasView(2) || f.m.HasView(3) {
		t.Error("children of the deleted root still registered")
	}
	if got := f.m.Registry().RootViewCount(); got != 0 {
		t.Errorf("root count = %d, want 0", got)
	}
	want := []string{"destroy 3", "destroy 2"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
}

func TestDestroyTearsDownAllRoots(t *testing.T) {
	f := newFixture(t)
	second := f.toolkit.NewRoot(100)
	f.m.AddRootView(second)
	f.chain(2)
	f.m.CreateView(second, 101, "View", nil)
	f.m.AddChild(100, 101, 0)
	f.m.CreatePreView(second, 102, "View", nil)
	f.j.events = nil

	if !f.m.Destroy() {
		t.Fatal("Destroy was not scheduled")
	}

	want := []string{"destroy 101", "destroy 2"}
	if diff := cmp.Diff(want, f.j.events); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
	if f.m.Registry().RootViewCount() != 0 || f.m.Registry().ViewCount() != 0 {
		t.Error("views survived Destroy")
	}
	if f.m.IsPreCached(102) {
		t.Error("pre-cache survived Destroy")
	}
}

func TestMustViewControllerPanics(t *testing.T) {
	f := newFixture(t)

	defer func() {
		r := recover()
		uerr, ok := r.(*vberrors.UIError)
		if !ok {
			t.Fatalf("panic value = %#v, want *UIError", r)
		}
		if uerr.Kind != vberrors.KindConfig || !errors.Is(uerr, ErrControllerNotFound) {
			t.Errorf("panic = %v", uerr)
		}
	}()
	f.m.CreateView(f.root, 2, "Unregistered", nil)
	t.Fatal("CreateView with an unknown class did not panic")
}

func TestCreateStyleNode(t *testing.T) {
	f := newFixture(t)

	n := f.m.CreateStyleNode("View", true, rootID)
	if n == nil || !n.IsVirtual() {
		t.Errorf("style node = %#v, want virtual fallback node", n)
	}
}

type rootedController struct {
	GroupController
}

func (rootedController) CreateRootedNode(isVirtual bool, rootID int) StyleNode {
	return &BasicStyleNode{Virtual: isVirtual, RootID: rootID}
}

func TestCreateStyleNodePrefersRooted(t *testing.T) {
	pkg := PackageFunc(func() []Registration {
		return []Registration{{Names: []string{"Rooted"}, New: func() ViewController { return rootedController{} }}}
	})
	f := newFixtureWith(t, []Package{pkg}, nil)

	n, ok := f.m.CreateStyleNode("Rooted", false, 7).(*BasicStyleNode)
	if !ok || n.RootID != 7 {
		t.Errorf("style node = %#v, want rooted node for 7", n)
	}
}

func TestCreateRenderNode(t *testing.T) {
	f := newFixture(t)

	n := f.m.CreateRenderNode(4, Props{"text": "x"}, "View", f.root, false)
	if n.ID != 4 || n.ClassName != "View" || n.RootID() != rootID {
		t.Fatalf("render node = %+v", n)
	}
	v := n.CreateView()
	if v == nil || !f.m.HasView(4) {
		t.Error("render node did not materialize its view")
	}
}

func TestIsControllerLazy(t *testing.T) {
	f := newFixture(t)

	if !f.m.IsControllerLazy("LazyList") {
		t.Error("LazyList should be lazy")
	}
	if f.m.IsControllerLazy("View") || f.m.IsControllerLazy("Missing") {
		t.Error("non-lazy classes reported lazy")
	}
}

func TestManagerOnLooper(t *testing.T) {
	looper := uithread.NewLooper()
	defer looper.Quit()
	f := newFixture(t, WithDispatcher(looper))

	created := make(chan bool, 1)
	f.m.Post(func(m *Manager) {
		m.CreateView(f.root, 2, "View", nil)
		m.AddChild(rootID, 2, 0)
		created <- m.HasView(2)
	})
	if !<-created {
		t.Fatal("view not created on the looper")
	}

	if !f.m.Destroy() {
		t.Fatal("Destroy not posted")
	}
	var live bool
	looper.Sync(func() { live = f.m.HasView(2) })
	if live {
		t.Error("view survived Destroy on the looper")
	}
}
