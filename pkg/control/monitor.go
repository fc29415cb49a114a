package control

import (
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// MonitorInfo describes one display.
type MonitorInfo struct {
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	Model        string  `json:"model,omitempty"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	RefreshRate  float64 `json:"refreshRate,omitempty"`
	Scale        float64 `json:"scale,omitempty"`
	Primary      bool    `json:"primary"`
}

// MonitorProvider lists displays. Platform hosts implement it.
type MonitorProvider interface {
	Monitors() []MonitorInfo
	// OnChange registers fn to run, on the UI goroutine, whenever the set of
	// monitors changes. The returned function unregisters it.
	OnChange(fn func()) (unsubscribe func())
}

var monitorProvider MonitorProvider

// SetMonitorProvider registers the process-wide monitor provider. nil
// unregisters it.
func SetMonitorProvider(p MonitorProvider) {
	monitorProvider = p
}

// CurrentMonitorProvider returns the registered provider, or nil.
func CurrentMonitorProvider() MonitorProvider {
	return monitorProvider
}

// UseMonitors returns an accessor over the provider's monitors that
// updates when the provider reports a change. The subscription is released
// with the current owner. Without a provider the list is always empty.
func UseMonitors() func() []MonitorInfo {
	p := monitorProvider
	if p == nil {
		return func() []MonitorInfo { return nil }
	}
	monitors := reactive.NewSignal(p.Monitors())
	stop := p.OnChange(func() { monitors.Set(p.Monitors()) })
	reactive.OnCleanup(stop)
	return monitors.Get
}

// MonitorSelector picks one monitor from a list.
type MonitorSelector func([]MonitorInfo) (MonitorInfo, bool)

// ByIndex selects the monitor at position i.
func ByIndex(i int) MonitorSelector {
	return func(mons []MonitorInfo) (MonitorInfo, bool) {
		if i < 0 || i >= len(mons) {
			return MonitorInfo{}, false
		}
		return mons[i], true
	}
}

// ByName selects the monitor with the given connector name.
func ByName(name string) MonitorSelector {
	return func(mons []MonitorInfo) (MonitorInfo, bool) {
		for _, m := range mons {
			if m.Name == name {
				return m, true
			}
		}
		return MonitorInfo{}, false
	}
}

// PrimaryMonitor selects the primary monitor, or the first one when none is
// marked primary.
func PrimaryMonitor() MonitorSelector {
	return func(mons []MonitorInfo) (MonitorInfo, bool) {
		for _, m := range mons {
			if m.Primary {
				return m, true
			}
		}
		return ByIndex(0)(mons)
	}
}

// Monitor renders children for the monitor chosen by sel (the first monitor
// when sel is nil). Nothing is mounted while no monitor matches. The
// subtree is rebuilt only when the matched monitor's info changes.
func Monitor(sel MonitorSelector, children func(MonitorInfo) *vnode.Node) *vnode.Node {
	if sel == nil {
		sel = ByIndex(0)
	}
	comp := func(vnode.Props) *vnode.Node {
		monitors := UseMonitors()
		type match struct {
			info MonitorInfo
			ok   bool
		}
		target := reactive.CreateMemo(func() match {
			info, ok := sel(monitors())
			return match{info, ok}
		})
		each := func() []MonitorInfo {
			if m := target.Get(); m.ok {
				return []MonitorInfo{m.info}
			}
			return nil
		}
		return For(each, func(m MonitorInfo, _ int) *vnode.Node { return children(m) }, nil)
	}
	return vnode.Named("Monitor", vnode.Pure(comp), nil)
}

// Monitors renders children once per monitor and rebuilds the list when
// the provider reports a change.
func Monitors(children func(m MonitorInfo, index int) *vnode.Node) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		return For(UseMonitors(), children, nil)
	}
	return vnode.Named("Monitors", vnode.Pure(comp), nil)
}

// MonitorList is an in-memory MonitorProvider for tests, headless rendering
// and hosts that learn about displays from elsewhere. It is not safe for
// concurrent use.
type MonitorList struct {
	monitors []MonitorInfo
	subs     map[int]func()
	nextSub  int
}

// NewMonitorList creates a provider listing mons.
func NewMonitorList(mons ...MonitorInfo) *MonitorList {
	return &MonitorList{monitors: mons, subs: make(map[int]func())}
}

// Monitors implements MonitorProvider.
func (l *MonitorList) Monitors() []MonitorInfo {
	return append([]MonitorInfo(nil), l.monitors...)
}

// OnChange implements MonitorProvider.
func (l *MonitorList) OnChange(fn func()) func() {
	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn
	return func() { delete(l.subs, id) }
}

// Set replaces the monitor list and notifies subscribers in registration
// order, in one batch.
func (l *MonitorList) Set(mons ...MonitorInfo) {
	l.monitors = mons
	reactive.Batch(func() {
		for id := 1; id <= l.nextSub; id++ {
			if fn, ok := l.subs[id]; ok {
				fn()
			}
		}
	})
}

// Subscribers returns the number of registered change callbacks.
func (l *MonitorList) Subscribers() int {
	return len(l.subs)
}
