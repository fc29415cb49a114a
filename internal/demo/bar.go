// Package demo is a small status bar built on every primitive. The CLI
// renders it against the in-memory host and drives it with Advance.
package demo

import (
	"fmt"
	"strconv"

	"github.com/lumina-dev/lumina/pkg/control"
	"github.com/lumina-dev/lumina/pkg/store"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// NewState returns the bar store.
func NewState() (*store.Node, *store.Setter, func()) {
	return store.New(map[string]any{
		"clock":      "12:00",
		"workspaces": []int{1, 2, 3},
		"active":     1,
		"status":     "ok",
		"battery": map[string]any{
			"level":    80,
			"charging": false,
		},
	})
}

// Bar builds the bar window for one monitor.
func Bar(monitor string, st *store.Node, set *store.Setter) *vnode.Node {
	return control.BarWindow("bar", monitor, false, 28,
		vnode.El(control.BoxTag, vnode.Props{"className": "bar"},
			vnode.El(control.BoxTag, vnode.Props{"className": "left"}, workspaces(st, set)),
			vnode.El(control.BoxTag, vnode.Props{"className": "center"},
				vnode.Named("Clock", clock, vnode.Props{"state": st}),
				resolution(monitor),
			),
			vnode.El(control.BoxTag, vnode.Props{"className": "right"},
				offlineNotice(st),
				battery(st.Child("battery")),
				control.ErrorBoundary(control.ErrorFallback, nil, weather(st)),
			),
		),
	)
}

func clock(p vnode.Props) (*vnode.Node, error) {
	st, ok := vnode.Prop[*store.Node](p, "state")
	if !ok {
		return nil, fmt.Errorf("clock: missing state")
	}
	return vnode.El("label", vnode.Props{
		"className": "clock",
		"label":     func() string { return store.Value[string](st, "clock") },
	}), nil
}

// resolution shows the size of the bar's monitor while the monitor
// provider lists it.
func resolution(monitor string) *vnode.Node {
	sel := control.ByName(monitor)
	if monitor == "" {
		sel = control.PrimaryMonitor()
	}
	return control.Monitor(sel, func(m control.MonitorInfo) *vnode.Node {
		return vnode.El("label", vnode.Props{
			"className": "resolution",
			"label":     fmt.Sprintf("%dx%d", m.Width, m.Height),
		})
	})
}

// offlineNotice slides in while the weather service is down and slides out
// once it recovers.
func offlineNotice(st *store.Node) *vnode.Node {
	offline := func() bool { return store.Value[string](st, "status") == "offline" }
	return control.Transition(control.TransitionOptions{
		Show: offline,
		Type: control.TransitionSlideLeft,
	}, vnode.El("label", vnode.Props{"className": "offline", "label": "offline"}))
}

func workspaces(st *store.Node, set *store.Setter) *vnode.Node {
	each := func() []int { return store.Value[[]int](st, "workspaces") }
	return control.For(each, func(id int, _ int) *vnode.Node {
		return vnode.El("button", vnode.Props{
			"label": strconv.Itoa(id),
			"className": func() string {
				if store.Value[int](st, "active") == id {
					return "workspace active"
				}
				return "workspace"
			},
			"onClicked": func() { set.Set("active", id) },
		})
	}, vnode.El("label", vnode.Props{"label": "no workspaces"}))
}

func battery(st *store.Node) *vnode.Node {
	level := func() int { return store.Value[int](st, "level") }
	return vnode.El(control.BoxTag, vnode.Props{"className": "battery"},
		control.Show(func() bool { return store.Value[bool](st, "charging") },
			vnode.El("icon", vnode.Props{"icon": "battery-charging"}), nil),
		control.Switch(vnode.El("icon", vnode.Props{"icon": "battery-full"}),
			control.MatchWhen(func() bool { return level() < 15 },
				vnode.El("icon", vnode.Props{"icon": "battery-caution", "className": "critical"})),
			control.MatchWhen(func() bool { return level() < 40 },
				vnode.El("icon", vnode.Props{"icon": "battery-low"})),
		),
		vnode.El("levelbar", vnode.Props{
			"value": func() float64 { return float64(level()) / 100 },
		}),
		vnode.El("label", vnode.Props{
			"label": func() string { return strconv.Itoa(level()) + "%" },
		}),
	)
}

// weather is rebuilt whenever the status changes, so an outage surfaces as
// an error raised after the first render.
func weather(st *store.Node) *vnode.Node {
	status := func() []string { return []string{store.Value[string](st, "status")} }
	return control.For(status, func(s string, _ int) *vnode.Node {
		return vnode.Named("Weather", forecast, vnode.Props{"status": s})
	}, nil)
}

func forecast(p vnode.Props) (*vnode.Node, error) {
	if vnode.PropOr(p, "status", "") == "offline" {
		return nil, fmt.Errorf("weather service offline")
	}
	return vnode.El("label", vnode.Props{"className": "weather", "label": "21°"}), nil
}

// Advance moves the bar state to step in one batch.
func Advance(set *store.Setter, step int) {
	ws := []int{1, 2, 3}
	for i := 0; i < step/5 && i < 3; i++ {
		ws = append(ws, 4+i)
	}
	set.Merge(map[string]any{
		"clock":      fmt.Sprintf("12:%02d", step%60),
		"workspaces": ws,
		"active":     step%len(ws) + 1,
		"status":     statusAt(step),
		"battery": map[string]any{
			"level":    100 - (step*7)%100,
			"charging": step%4 == 0,
		},
	})
}

func statusAt(step int) string {
	if step%6 == 3 {
		return "offline"
	}
	return "ok"
}
