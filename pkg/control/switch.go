package control

import (
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Match is one guarded branch of a Switch.
type Match struct {
	When     func() bool
	Children []any
}

// MatchWhen creates a Match.
func MatchWhen(when func() bool, children ...any) Match {
	return Match{When: when, Children: children}
}

// Switch mounts every branch, each in its own box, and shows only the first
// one whose guard is true. The fallback box, if any, is shown when no guard
// is true.
func Switch(fallback any, matches ...Match) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		active := reactive.CreateMemo(func() int {
			for i, m := range matches {
				if m.When != nil && m.When() {
					return i
				}
			}
			return -1
		})

		branches := make([]any, 0, len(matches)+1)
		for i, m := range matches {
			branches = append(branches, vnode.El(BoxTag, vnode.Props{
				"key":     i,
				"visible": func() bool { return active.Get() == i },
			}, m.Children...))
		}
		if fallback != nil {
			branches = append(branches, vnode.El(BoxTag, vnode.Props{
				"visible": func() bool { return active.Get() == -1 },
			}, fallback))
		}
		return vnode.Frag(branches...)
	}
	return vnode.Named("Switch", vnode.Pure(comp), nil)
}
