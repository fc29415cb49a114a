package demo

import (
	"context"
	"testing"
	"time"

	"github.com/lumina-dev/lumina/pkg/control"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/host/memhost"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

func byClass(root *memhost.Widget, tag, class string) []*memhost.Widget {
	var out []*memhost.Widget
	for _, w := range memhost.Find(root, tag) {
		if w.Prop("className") == class {
			out = append(out, w)
		}
	}
	return out
}

func byLabel(root *memhost.Widget, tag, label string) *memhost.Widget {
	for _, w := range memhost.Find(root, tag) {
		if w.Prop("label") == label {
			return w
		}
	}
	return nil
}

func mountBar(t *testing.T) (*memhost.Host, *memhost.Widget, func(int)) {
	t.Helper()
	h := memhost.Install()
	st, set, dispose := NewState()
	m, err := reconciler.Render(Bar("DP-1", st, set))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() {
		m.Dispose()
		dispose()
		host.Set(nil)
	})
	wins := h.Windows()
	if len(wins) != 1 {
		t.Fatalf("expected one window, got %d", len(wins))
	}
	return h, wins[0], func(step int) { Advance(set, step) }
}

func TestBarInitialRender(t *testing.T) {
	_, win, _ := mountBar(t)

	if !win.Shown || win.Prop("name") != "bar-DP-1" {
		t.Errorf("unexpected window %s", memhost.Dump(win))
	}
	if c := byClass(win, "label", "clock"); len(c) != 1 || c[0].Prop("label") != "12:00" {
		t.Errorf("expected clock 12:00, got %v", c)
	}
	if n := len(byClass(win, "button", "workspace")) + len(byClass(win, "button", "workspace active")); n != 3 {
		t.Errorf("expected 3 workspace buttons, got %d", n)
	}
	if a := byClass(win, "button", "workspace active"); len(a) != 1 || a[0].Prop("label") != "1" {
		t.Errorf("expected workspace 1 active, got %v", a)
	}
	if byLabel(win, "label", "80%") == nil {
		t.Error("expected battery level label")
	}
	if len(byClass(win, "label", "weather")) != 1 {
		t.Error("expected weather label")
	}
}

func TestBarAdvanceAndOutage(t *testing.T) {
	h, win, advance := mountBar(t)

	advance(3)
	if c := byClass(win, "label", "clock"); c[0].Prop("label") != "12:03" {
		t.Errorf("expected clock 12:03, got %v", c[0].Prop("label"))
	}
	if byLabel(win, "label", "79%") == nil {
		t.Errorf("expected 79%%, got %s", memhost.Dump(win))
	}
	if len(byClass(win, "label", "weather")) != 0 {
		t.Error("weather should be replaced during an outage")
	}
	if len(byClass(win, "box", "error-fallback")) != 1 {
		t.Fatalf("expected error fallback, got %s", memhost.Dump(win))
	}

	advance(4)
	if len(byClass(win, "box", "error-fallback")) != 1 {
		t.Error("fallback stays until retried")
	}
	retry := byLabel(win, "button", "Retry")
	if retry == nil {
		t.Fatal("expected a retry button")
	}
	if h.Emit(retry, "clicked") != 1 {
		t.Fatal("retry handler not connected")
	}
	if len(byClass(win, "label", "weather")) != 1 || len(byClass(win, "box", "error-fallback")) != 0 {
		t.Errorf("expected weather after retry, got %s", memhost.Dump(win))
	}
}

func TestBarWorkspaceClick(t *testing.T) {
	h, win, _ := mountBar(t)

	two := byLabel(win, "button", "2")
	if two == nil {
		t.Fatal("expected workspace 2")
	}
	h.Emit(two, "clicked")

	if a := byClass(win, "button", "workspace active"); len(a) != 1 || a[0] != two {
		t.Errorf("expected workspace 2 active, got %v", a)
	}
}

func TestBarBatteryStates(t *testing.T) {
	_, win, advance := mountBar(t)
	battery := byClass(win, "box", "battery")[0]

	// Show box, then one box per Switch branch plus its fallback
	boxes := memhost.Find(battery, "box")[1:]
	if len(boxes) != 4 {
		t.Fatalf("expected 4 branch boxes, got %d", len(boxes))
	}
	charging, critical, low, full := boxes[0], boxes[1], boxes[2], boxes[3]
	if charging.Visible() || !full.Visible() || critical.Visible() || low.Visible() {
		t.Errorf("unexpected initial battery state %s", memhost.Dump(battery))
	}

	advance(8) // level 44, charging
	if !charging.Visible() || !full.Visible() {
		t.Errorf("expected charging at 44%%, got %s", memhost.Dump(battery))
	}

	advance(9) // level 37
	if charging.Visible() || !low.Visible() || full.Visible() {
		t.Errorf("expected low at 37%%, got %s", memhost.Dump(battery))
	}

	advance(13) // level 9
	if !critical.Visible() || low.Visible() {
		t.Errorf("expected only the first matching branch at 9%%, got %s", memhost.Dump(battery))
	}
}

func TestBarFollowsMonitor(t *testing.T) {
	list := control.NewMonitorList(control.MonitorInfo{Name: "DP-1", Width: 1920, Height: 1080})
	control.SetMonitorProvider(list)
	defer control.SetMonitorProvider(nil)
	_, win, _ := mountBar(t)

	if byLabel(win, "label", "1920x1080") == nil {
		t.Fatalf("expected resolution label, got %s", memhost.Dump(win))
	}

	list.Set(control.MonitorInfo{Name: "DP-1", Width: 2560, Height: 1440})
	if byLabel(win, "label", "2560x1440") == nil || byLabel(win, "label", "1920x1080") != nil {
		t.Errorf("expected the new resolution only, got %s", memhost.Dump(win))
	}

	list.Set(control.MonitorInfo{Name: "HDMI-1", Width: 1280, Height: 720})
	if n := len(byClass(win, "label", "resolution")); n != 0 {
		t.Errorf("expected no resolution once DP-1 is gone, got %d", n)
	}
}

func TestBarOfflineNoticeSlidesOut(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	reactive.SetClock(func() time.Time { return now })
	defer reactive.SetClock(nil)
	_, win, advance := mountBar(t)

	notice := memhost.Find(win, control.RevealerTag)[0]
	if notice.Visible() || notice.Prop("revealChild") != false {
		t.Fatalf("expected hidden notice, got %s", memhost.Dump(notice))
	}

	advance(3)
	if !notice.Visible() || notice.Prop("revealChild") != true {
		t.Errorf("expected notice during the outage, got %s", memhost.Dump(notice))
	}

	advance(4)
	if !notice.Visible() || notice.Prop("revealChild") != false {
		t.Errorf("expected notice animating out, got %s", memhost.Dump(notice))
	}
	now = now.Add(control.DefaultTransitionDuration)
	reactive.Tick()
	if notice.Visible() {
		t.Errorf("expected notice hidden after the transition, got %s", memhost.Dump(notice))
	}
}

func TestRun(t *testing.T) {
	h := memhost.Install()
	defer host.Set(nil)

	var steps []int
	err := Run(context.Background(), Options{
		Monitors: []string{"DP-1", "HDMI-1"},
		Steps:    3,
		AfterStep: func(step int) {
			steps = append(steps, step)
			if step == 0 && len(h.Windows()) != 2 {
				t.Errorf("expected a bar per monitor, got %d", len(h.Windows()))
			}
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 4 || steps[3] != 3 {
		t.Errorf("expected steps 0..3, got %v", steps)
	}
	if h.Live() != 0 {
		t.Errorf("expected every widget destroyed after Run, %d live", h.Live())
	}
}

func TestRunCancelled(t *testing.T) {
	memhost.Install()
	defer host.Set(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, Options{Steps: 1}); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithoutHost(t *testing.T) {
	host.Set(nil)
	if err := Run(context.Background(), Options{}); err == nil {
		t.Error("expected an error without a host")
	}
}
