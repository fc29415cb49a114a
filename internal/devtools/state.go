package devtools

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

// State is one published view of the running UI.
type State struct {
	Seq    uint64       `json:"seq"`
	Time   time.Time    `json:"time"`
	Stats  Stats        `json:"stats"`
	Mounts []MountState `json:"mounts"`
}

// Stats mirrors reactive.Stats.
type Stats struct {
	Live       int `json:"live"`
	Pending    int `json:"pending"`
	BatchDepth int `json:"batchDepth"`
	Mounts     int `json:"queuedMounts"`
	Timers     int `json:"timers"`
}

// MountState is one live mount.
type MountState struct {
	ID     uint64               `json:"id"`
	Nested bool                 `json:"nested"`
	Tree   *reconciler.Snapshot `json:"tree,omitempty"`
}

// Capture reads the current runtime state. It must be called on the UI
// goroutine. Nested mounts are included only when nested is true.
func Capture(nested bool) State {
	rs := reactive.CurrentStats()
	st := State{
		Time: time.Now().UTC(),
		Stats: Stats{
			Live:       rs.Live,
			Pending:    rs.Pending,
			BatchDepth: rs.BatchDepth,
			Mounts:     rs.Mounts,
			Timers:     rs.Timers,
		},
	}
	for _, m := range reconciler.Mounts() {
		if m.Nested() && !nested {
			continue
		}
		st.Mounts = append(st.Mounts, MountState{
			ID:     m.ID(),
			Nested: m.Nested(),
			Tree:   m.Root().Snapshot(),
		})
	}
	sort.Slice(st.Mounts, func(i, j int) bool {
		return st.Mounts[i].ID < st.Mounts[j].ID
	})
	return st
}

// trackedHost counts structural mutations of the wrapped host.
type trackedHost struct {
	host.Host
	changes *atomic.Uint64
}

func (t trackedHost) AppendChild(parent, child host.Instance) {
	t.Host.AppendChild(parent, child)
	t.changes.Add(1)
}

func (t trackedHost) InsertBefore(parent, child host.Instance, index int) {
	t.Host.InsertBefore(parent, child, index)
	t.changes.Add(1)
}

func (t trackedHost) RemoveChild(parent, child host.Instance) {
	t.Host.RemoveChild(parent, child)
	t.changes.Add(1)
}

func (t trackedHost) ShowInstance(inst host.Instance) {
	t.Host.ShowInstance(inst)
	t.changes.Add(1)
}

func (t trackedHost) DestroyInstance(inst host.Instance) {
	t.Host.DestroyInstance(inst)
	t.changes.Add(1)
}
