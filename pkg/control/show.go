package control

import (
	"reflect"

	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Show mounts children and, when non-nil, fallback. Each is wrapped in a
// box whose visible prop follows when() and !when() respectively. Both
// branches stay mounted for the lifetime of the Show.
func Show(when func() bool, children any, fallback any) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		return branches(when, children, fallback)
	}
	return vnode.Named("Show", vnode.Pure(comp), nil)
}

// ShowWith is Show for a guard that yields a value. The children branch is
// visible while the value is truthy: not the zero value of T, and for
// interfaces not nil. render is called once, when the Show mounts, with the
// value when() returns at that moment, which may be the zero value.
//
//	control.ShowWith(selected.Get, func(u *User) *vnode.Node {
//	    return vnode.H("label", vnode.Props{"label": func() string { return u.Name }})
//	}, vnode.Text("nobody"))
func ShowWith[T any](when func() T, render func(T) *vnode.Node, fallback any) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		var initial T
		reactive.Untracked(func() { initial = when() })
		visible := func() bool { return Truthy(when()) }
		return branches(visible, render(initial), fallback)
	}
	return vnode.Named("Show", vnode.Pure(comp), nil)
}

func branches(visible func() bool, children any, fallback any) *vnode.Node {
	out := []any{
		vnode.El(BoxTag, vnode.Props{"visible": visible}, children),
	}
	if fallback != nil {
		out = append(out,
			vnode.El(BoxTag, vnode.Props{"visible": func() bool { return !visible() }}, fallback))
	}
	return vnode.Frag(out...)
}

// Truthy reports whether v counts as present for ShowWith: false for nil,
// false, zero numbers, empty strings, nil pointers, nil slices and maps and
// zero structs. Empty but non-nil slices and maps are truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return !reflect.ValueOf(v).IsZero()
}
