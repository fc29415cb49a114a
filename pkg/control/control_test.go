package control_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lumina-dev/lumina/pkg/control"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/host/memhost"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

func mount(t *testing.T, node *vnode.Node) (*memhost.Host, *memhost.Widget) {
	t.Helper()
	h := memhost.Install()
	container := h.NewContainer()
	dispose, err := reconciler.RenderChild(node, container)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() {
		dispose()
		host.Set(nil)
	})
	return h, container
}

func labels(w *memhost.Widget) []string {
	var out []string
	for _, c := range w.Children {
		if l, ok := c.Prop("label").(string); ok {
			out = append(out, l)
		}
	}
	return out
}

func TestForFallbackThenItem(t *testing.T) {
	items := reactive.NewSignal([]int{})
	itemMounts := 0
	item := func(p vnode.Props) *vnode.Node {
		itemMounts++
		return vnode.H("label", vnode.Props{"label": fmt.Sprint(p["n"])})
	}

	_, container := mount(t, control.For(items.Get, func(n int, _ int) *vnode.Node {
		return vnode.H(item, vnode.Props{"n": n})
	}, vnode.Text("F")))

	box := container.Children[0]
	if got := labels(box); len(got) != 1 || got[0] != "F" {
		t.Fatalf("expected fallback F, got %v", got)
	}
	fallback := box.Children[0]

	items.Set([]int{1})

	if !fallback.Destroyed {
		t.Error("fallback should be unmounted")
	}
	if got := labels(box); len(got) != 1 || got[0] != "1" {
		t.Errorf("expected exactly one item, got %v", got)
	}
	if itemMounts != 1 {
		t.Errorf("expected one item subtree, got %d", itemMounts)
	}
}

func TestForFullRebuild(t *testing.T) {
	items := reactive.NewSignal([]string{"a", "b"})
	renders := 0
	var keys []string
	item := func(p vnode.Props) *vnode.Node {
		keys = append(keys, fmt.Sprint(p["key"]))
		return vnode.Text(p["s"].(string))
	}

	_, container := mount(t, control.For(items.Get, func(s string, _ int) *vnode.Node {
		renders++
		return vnode.H(item, vnode.Props{"s": s})
	}, nil))
	box := container.Children[0]
	old := box.Children[0]

	items.Set([]string{"a", "b", "c"})

	if renders != 5 {
		t.Errorf("expected every item rebuilt (5 renders), got %d", renders)
	}
	if !old.Destroyed {
		t.Error("previous item instances should be destroyed on rebuild")
	}
	if got := strings.Join(labels(box), ""); got != "abc" {
		t.Errorf("expected abc in order, got %s", got)
	}
	if got := strings.Join(keys[2:], ","); got != "0,1,2" {
		t.Errorf("expected injected index keys, got %s", got)
	}
}

func TestForKeepsExplicitKeys(t *testing.T) {
	items := reactive.NewSignal([]string{"x"})
	var key any
	item := func(p vnode.Props) *vnode.Node {
		key = p["key"]
		return nil
	}
	mount(t, control.For(items.Get, func(s string, _ int) *vnode.Node {
		return vnode.H(item, vnode.Props{"key": "id-" + s})
	}, nil))

	if key != "id-x" {
		t.Errorf("explicit key should be kept, got %v", key)
	}
}

func TestForItemReadsAreUntracked(t *testing.T) {
	items := reactive.NewSignal([]int{1})
	other := reactive.NewSignal(0)
	renders := 0

	mount(t, control.For(items.Get, func(n int, _ int) *vnode.Node {
		renders++
		return vnode.Textf("%d/%d", n, other.Get())
	}, nil))

	other.Set(1)
	if renders != 1 {
		t.Errorf("signals read while building items must not rebuild the list, got %d renders", renders)
	}
}

func TestForDisposesItemEffects(t *testing.T) {
	items := reactive.NewSignal([]int{1, 2})
	tick := reactive.NewSignal(0)
	cleanups := 0
	item := func(vnode.Props) *vnode.Node {
		reactive.Watch(func() {
			_ = tick.Get()
			reactive.OnCleanup(func() { cleanups++ })
		})
		return vnode.Text("i")
	}

	mount(t, control.For(items.Get, func(int, int) *vnode.Node {
		return vnode.H(item, nil)
	}, nil))

	items.Set([]int{3})
	if cleanups != 2 {
		t.Errorf("expected 2 item effects disposed, got %d", cleanups)
	}
	if tick.Subscribers() != 1 {
		t.Errorf("expected only the new item subscribed, got %d", tick.Subscribers())
	}
}

func TestForItemPanicLeavesNoMount(t *testing.T) {
	before := len(reconciler.Mounts())
	items := reactive.NewSignal([]int{1, 2})
	var caught error

	_, container := mount(t, control.ErrorBoundary(
		func(err error, _ func()) *vnode.Node { return vnode.Text("failed") },
		func(err error) { caught = err },
		control.For(items.Get, func(n int, _ int) *vnode.Node {
			if n == 2 {
				panic("bad item")
			}
			return vnode.Textf("%d", n)
		}, nil),
	))
	if caught == nil {
		t.Fatal("expected the item panic to reach the boundary")
	}
	if got := len(container.Children); got != 1 {
		t.Fatalf("expected one boundary box, got %d", got)
	}

	items.Set([]int{})
	// outer mount, boundary fallback
	if got := len(reconciler.Mounts()); got != before+2 {
		t.Errorf("expected %d live mounts, got %d", before+2, got)
	}
	for _, m := range reconciler.Mounts() {
		if m.Disposed() {
			t.Errorf("mount %d is listed after disposal", m.ID())
		}
	}
}

func TestForItemPanicWithoutBoundary(t *testing.T) {
	before := len(reconciler.Mounts())
	items := reactive.NewSignal([]int{1, 2})

	_, container := mount(t, control.For(items.Get, func(n int, _ int) *vnode.Node {
		if n == 2 {
			panic("bad item")
		}
		return vnode.Textf("%d", n)
	}, nil))

	box := container.Children[0]
	if got := labels(box); len(got) != 1 || got[0] != "1" {
		t.Errorf("expected only the first item, got %v", got)
	}
	if got := len(reconciler.Mounts()); got != before+2 {
		t.Errorf("expected outer and item mounts, got %d", got-before)
	}

	items.Set([]int{})
	if got := len(reconciler.Mounts()); got != before+1 {
		t.Errorf("expected only the outer mount to remain live, got %d", got-before)
	}
}

func TestShowMountsHiddenBranch(t *testing.T) {
	when := reactive.NewSignal(false)
	constructed := 0
	x := func(vnode.Props) *vnode.Node {
		constructed++
		return vnode.Text("X")
	}

	_, container := mount(t, control.Show(when.Get, vnode.H(x, nil), vnode.Text("fallback")))

	if constructed != 1 {
		t.Errorf("hidden branch must still be constructed, got %d", constructed)
	}
	if len(container.Children) != 2 {
		t.Fatalf("expected two branch boxes, got %d", len(container.Children))
	}
	shown, other := container.Children[0], container.Children[1]
	if shown.Visible() {
		t.Error("children box should be hidden while when() is false")
	}
	if !other.Visible() {
		t.Error("fallback box should be visible while when() is false")
	}

	when.Set(true)
	if !shown.Visible() || other.Visible() {
		t.Error("visibility should follow when()")
	}
	if constructed != 1 {
		t.Errorf("toggling must not remount, got %d constructions", constructed)
	}
}

func TestShowWithoutFallback(t *testing.T) {
	_, container := mount(t, control.Show(func() bool { return true }, "only", nil))
	if len(container.Children) != 1 {
		t.Errorf("expected a single box, got %d", len(container.Children))
	}
}

func TestSwitchFirstTruthyWins(t *testing.T) {
	state := reactive.NewSignal("idle")
	is := func(s string) func() bool {
		return func() bool { return state.Get() == s }
	}

	_, container := mount(t, control.Switch(vnode.Text("none"),
		control.MatchWhen(is("loading"), "loading"),
		control.MatchWhen(func() bool { return state.Get() != "idle" }, "busy"),
		control.MatchWhen(is("failed"), "failed"),
	))

	visible := func() []int {
		var out []int
		for i, c := range container.Children {
			if c.Visible() {
				out = append(out, i)
			}
		}
		return out
	}

	if got := visible(); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected fallback visible, got %v", got)
	}
	state.Set("loading")
	if got := visible(); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected first match visible, got %v", got)
	}
	state.Set("failed")
	if got := visible(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected first truthy guard to win, got %v", got)
	}
	if len(container.Children) != 4 {
		t.Errorf("every branch stays mounted, got %d boxes", len(container.Children))
	}
}

func TestErrorBoundaryFallbackAndReset(t *testing.T) {
	broken := reactive.NewSignal(true)
	var caught []error
	child := func(vnode.Props) (*vnode.Node, error) {
		if broken.Peek() {
			return nil, stderrors.New("sensor offline")
		}
		return vnode.Text("ok"), nil
	}

	var reset func()
	fallback := func(err error, r func()) *vnode.Node {
		reset = r
		return vnode.Text("fallback: " + err.Error())
	}

	_, container := mount(t, control.ErrorBoundary(fallback, func(err error) {
		caught = append(caught, err)
	}, vnode.H(child, nil), "sibling"))

	box := container.Children[0]
	got := labels(box)
	if len(got) != 1 || !strings.Contains(got[0], "sensor offline") {
		t.Fatalf("expected only the fallback, got %v", got)
	}
	if len(caught) != 1 {
		t.Errorf("expected onError once, got %d", len(caught))
	}

	broken.Set(false)
	reset()
	if got := labels(box); strings.Join(got, ",") != "ok,sibling" {
		t.Errorf("expected children after reset, got %v", got)
	}
}

func TestErrorBoundaryCatchesLateListErrors(t *testing.T) {
	items := reactive.NewSignal([]string{"ok"})
	item := func(p vnode.Props) (*vnode.Node, error) {
		if p["s"] == "bad" {
			return nil, stderrors.New("bad item")
		}
		return vnode.Text(p["s"].(string)), nil
	}

	_, container := mount(t, control.ErrorBoundary(control.ErrorFallback, nil,
		control.For(items.Get, func(s string, _ int) *vnode.Node {
			return vnode.H(item, vnode.Props{"s": s})
		}, nil),
	))
	box := container.Children[0]

	items.Set([]string{"bad"})

	if len(box.Children) != 1 || box.Children[0].Prop("className") != "error-fallback" {
		t.Fatalf("expected ErrorFallback to replace the list, got %s", memhost.Dump(box))
	}
	if n := len(memhost.Find(box, "button")); n != 1 {
		t.Errorf("expected a retry button, got %d", n)
	}
}

func TestWindowRoleDefaults(t *testing.T) {
	tests := []struct {
		name  string
		opts  control.WindowOptions
		flags int
		excl  int
		layer int
	}{
		{"panel", control.WindowOptions{Role: control.RolePanel}, 2 | 8 | 4, 1, 2},
		{"dock", control.WindowOptions{Role: control.RoleDock}, 16 | 8 | 4, 1, 2},
		{"notification", control.WindowOptions{Role: control.RoleNotification}, 2 | 4, 0, 3},
		{"desktop", control.WindowOptions{Role: control.RoleDesktop}, 2 | 16 | 8 | 4, -1, 0},
		{"no role", control.WindowOptions{}, 1, 0, 2},
		{"override", control.WindowOptions{
			Role:   control.RoleDialog,
			Anchor: []control.Anchor{control.AnchorBottomLeft},
			Layer:  control.LayerBottom,
		}, 16 | 8, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := control.WindowProps(tt.opts)
			if p["anchor"] != tt.flags {
				t.Errorf("anchor = %v, want %d", p["anchor"], tt.flags)
			}
			if p["exclusivity"] != tt.excl {
				t.Errorf("exclusivity = %v, want %d", p["exclusivity"], tt.excl)
			}
			if p["layer"] != tt.layer {
				t.Errorf("layer = %v, want %d", p["layer"], tt.layer)
			}
		})
	}
}

func TestWindowIsShown(t *testing.T) {
	h := memhost.Install()
	defer host.Set(nil)

	m, err := reconciler.Render(control.BarWindow("", "DP-1", false, 30, "clock"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Dispose()

	wins := h.Windows()
	if len(wins) != 1 || !wins[0].Shown {
		t.Fatal("expected one shown window")
	}
	w := wins[0]
	if w.Prop("name") != "bar-DP-1" || w.Prop("css") != "min-height: 30px;" {
		t.Errorf("unexpected window props %v", w.Props)
	}
	if len(w.Children) != 1 {
		t.Errorf("expected window content, got %d children", len(w.Children))
	}
}

func TestShowWithPassesValue(t *testing.T) {
	user := reactive.NewSignal("ada")
	var got []string

	_, container := mount(t, control.ShowWith(user.Get, func(name string) *vnode.Node {
		got = append(got, name)
		return vnode.Text("hello " + name)
	}, vnode.Text("nobody")))

	if len(got) != 1 || got[0] != "ada" {
		t.Fatalf("expected one render with ada, got %v", got)
	}
	children, fallback := container.Children[0], container.Children[1]
	if !children.Visible() || fallback.Visible() {
		t.Error("expected children visible for a non-empty value")
	}

	user.Set("")
	if children.Visible() || !fallback.Visible() {
		t.Error("expected fallback visible for the zero value")
	}
	if len(got) != 1 {
		t.Errorf("expected render to run once, got %d", len(got))
	}
}

func TestTruthy(t *testing.T) {
	var nilPtr *int
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{3, true},
		{"", false},
		{"x", true},
		{nilPtr, false},
		{[]int(nil), false},
		{[]int{}, true},
		{control.MonitorInfo{}, false},
		{control.MonitorInfo{Name: "DP-1"}, true},
	}
	for _, tt := range tests {
		if got := control.Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

// fakeClock installs a reactive clock that only moves when advanced.
func fakeClock(t *testing.T) func(time.Duration) {
	t.Helper()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	reactive.SetClock(func() time.Time { return now })
	t.Cleanup(func() { reactive.SetClock(nil) })
	return func(d time.Duration) { now = now.Add(d) }
}

func TestTransitionDelaysHide(t *testing.T) {
	advance := fakeClock(t)
	show := reactive.NewSignal(true)
	exited := 0

	_, container := mount(t, control.Transition(control.TransitionOptions{
		Show:     show.Get,
		Type:     control.TransitionSlideDown,
		Duration: 300 * time.Millisecond,
		OnExited: func() { exited++ },
	}, vnode.Text("toast")))

	rev := container.Children[0]
	if rev.Tag != control.RevealerTag || rev.Prop("transitionType") != "slide-down" || rev.Prop("transitionDuration") != 300 {
		t.Fatalf("unexpected revealer %s", memhost.Dump(rev))
	}
	if !rev.Visible() || rev.Prop("revealChild") != true {
		t.Fatal("expected revealer shown")
	}

	show.Set(false)
	if !rev.Visible() || rev.Prop("revealChild") != false {
		t.Error("expected revealer to stay visible while animating out")
	}
	advance(299 * time.Millisecond)
	reactive.Tick()
	if !rev.Visible() {
		t.Error("hidden before the duration elapsed")
	}
	advance(time.Millisecond)
	reactive.Tick()
	if rev.Visible() || exited != 1 {
		t.Errorf("expected hidden and one exit, got visible=%v exited=%d", rev.Visible(), exited)
	}
}

func TestTransitionShowCancelsHide(t *testing.T) {
	advance := fakeClock(t)
	show := reactive.NewSignal(true)
	exited := 0

	_, container := mount(t, control.Transition(control.TransitionOptions{
		Show:     show.Get,
		OnExited: func() { exited++ },
	}, "x"))
	rev := container.Children[0]

	show.Set(false)
	advance(100 * time.Millisecond)
	show.Set(true)
	advance(time.Second)
	reactive.Tick()

	if !rev.Visible() || exited != 0 {
		t.Errorf("expected pending hide cancelled, got visible=%v exited=%d", rev.Visible(), exited)
	}
	if reactive.CurrentStats().Timers != 0 {
		t.Errorf("expected no timers left, got %d", reactive.CurrentStats().Timers)
	}
}

func TestTransitionDisposeCancelsTimer(t *testing.T) {
	fakeClock(t)
	show := reactive.NewSignal(true)
	h := memhost.Install()
	defer host.Set(nil)

	dispose, err := reconciler.RenderChild(control.Transition(control.TransitionOptions{Show: show.Get}, "x"), h.NewContainer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	show.Set(false)
	if reactive.CurrentStats().Timers != 1 {
		t.Fatalf("expected a pending hide, got %d timers", reactive.CurrentStats().Timers)
	}
	dispose()
	if reactive.CurrentStats().Timers != 0 {
		t.Errorf("expected dispose to cancel the hide, got %d timers", reactive.CurrentStats().Timers)
	}
}

func TestAnimatePresenceKeepsLastNode(t *testing.T) {
	advance := fakeClock(t)
	msg := reactive.NewSignal("saved")
	exited := 0

	_, container := mount(t, control.AnimatePresence(func() *vnode.Node {
		if m := msg.Get(); m != "" {
			return vnode.H("label", vnode.Props{"label": m})
		}
		return nil
	}, control.TransitionOptions{OnExited: func() { exited++ }}))

	rev := container.Children[0]
	texts := func() []string {
		var out []string
		for _, w := range memhost.Find(rev, "label") {
			out = append(out, w.Prop("label").(string))
		}
		return out
	}
	if got := texts(); len(got) != 1 || got[0] != "saved" {
		t.Fatalf("expected saved, got %v", got)
	}

	msg.Set("synced")
	if got := texts(); len(got) != 1 || got[0] != "synced" {
		t.Errorf("expected synced to replace saved, got %v", got)
	}

	msg.Set("")
	if got := texts(); len(got) != 1 || got[0] != "synced" || rev.Prop("revealChild") != false {
		t.Errorf("expected synced kept while exiting, got %v", got)
	}
	advance(control.DefaultTransitionDuration)
	reactive.Tick()
	if rev.Visible() || exited != 1 {
		t.Errorf("expected exit to finish, got visible=%v exited=%d", rev.Visible(), exited)
	}
}

func installMonitors(t *testing.T, mons ...control.MonitorInfo) *control.MonitorList {
	t.Helper()
	list := control.NewMonitorList(mons...)
	control.SetMonitorProvider(list)
	t.Cleanup(func() { control.SetMonitorProvider(nil) })
	return list
}

func TestMonitorSelectors(t *testing.T) {
	mons := []control.MonitorInfo{{Index: 0, Name: "DP-1"}, {Index: 1, Name: "HDMI-1", Primary: true}}
	tests := []struct {
		name string
		sel  control.MonitorSelector
		want string
		ok   bool
	}{
		{"index", control.ByIndex(0), "DP-1", true},
		{"index out of range", control.ByIndex(2), "", false},
		{"name", control.ByName("HDMI-1"), "HDMI-1", true},
		{"unknown name", control.ByName("eDP-1"), "", false},
		{"primary", control.PrimaryMonitor(), "HDMI-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.sel(mons)
			if ok != tt.ok || m.Name != tt.want {
				t.Errorf("expected %q %v, got %q %v", tt.want, tt.ok, m.Name, ok)
			}
		})
	}

	m, ok := control.PrimaryMonitor()(mons[:1])
	if !ok || m.Name != "DP-1" {
		t.Errorf("expected first monitor without a primary, got %q %v", m.Name, ok)
	}
}

func TestMonitorFollowsProvider(t *testing.T) {
	list := installMonitors(t, control.MonitorInfo{Name: "DP-1"})
	renders := 0

	_, container := mount(t, control.Monitor(control.ByName("HDMI-1"), func(m control.MonitorInfo) *vnode.Node {
		renders++
		return vnode.Textf("%s %dx%d", m.Name, m.Width, m.Height)
	}))
	box := container.Children[0]
	if len(box.Children) != 0 {
		t.Fatalf("expected nothing without a match, got %s", memhost.Dump(box))
	}

	list.Set(control.MonitorInfo{Name: "DP-1"}, control.MonitorInfo{Name: "HDMI-1", Width: 1280, Height: 720})
	if got := labels(box); len(got) != 1 || got[0] != "HDMI-1 1280x720" {
		t.Errorf("expected HDMI-1 1280x720, got %v", got)
	}

	// unrelated change, same match
	list.Set(control.MonitorInfo{Name: "eDP-1"}, control.MonitorInfo{Name: "HDMI-1", Width: 1280, Height: 720})
	if renders != 1 {
		t.Errorf("expected no rebuild for an unchanged match, got %d renders", renders)
	}

	list.Set()
	if len(box.Children) != 0 {
		t.Errorf("expected the subtree removed, got %s", memhost.Dump(box))
	}
}

func TestMonitorsRendersEach(t *testing.T) {
	list := installMonitors(t, control.MonitorInfo{Name: "DP-1"}, control.MonitorInfo{Name: "HDMI-1"})

	_, container := mount(t, control.Monitors(func(m control.MonitorInfo, i int) *vnode.Node {
		return vnode.Textf("%d:%s", i, m.Name)
	}))
	box := container.Children[0]
	if got := strings.Join(labels(box), ","); got != "0:DP-1,1:HDMI-1" {
		t.Errorf("expected both monitors, got %s", got)
	}

	list.Set(control.MonitorInfo{Name: "eDP-1"})
	if got := strings.Join(labels(box), ","); got != "0:eDP-1" {
		t.Errorf("expected eDP-1 after hotplug, got %s", got)
	}
}

func TestMonitorsReleaseSubscription(t *testing.T) {
	list := installMonitors(t, control.MonitorInfo{Name: "DP-1"})
	h := memhost.Install()
	defer host.Set(nil)

	dispose, err := reconciler.RenderChild(control.Monitors(func(m control.MonitorInfo, _ int) *vnode.Node {
		return vnode.Text(m.Name)
	}), h.NewContainer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Subscribers() != 1 {
		t.Fatalf("expected one subscriber, got %d", list.Subscribers())
	}
	dispose()
	if list.Subscribers() != 0 {
		t.Errorf("expected subscription released, got %d", list.Subscribers())
	}
}

func TestMonitorsWithoutProvider(t *testing.T) {
	control.SetMonitorProvider(nil)
	_, container := mount(t, control.Monitors(func(m control.MonitorInfo, _ int) *vnode.Node {
		return vnode.Text(m.Name)
	}))
	if n := len(container.Children[0].Children); n != 0 {
		t.Errorf("expected no monitors, got %d", n)
	}
}
