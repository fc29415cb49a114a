package control

import (
	"time"

	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// RevealerTag is the element that animates its child in and out.
const RevealerTag = "revealer"

// TransitionType is the animation a revealer plays.
type TransitionType string

const (
	TransitionCrossfade  TransitionType = "crossfade"
	TransitionSlideUp    TransitionType = "slide-up"
	TransitionSlideDown  TransitionType = "slide-down"
	TransitionSlideLeft  TransitionType = "slide-left"
	TransitionSlideRight TransitionType = "slide-right"
	TransitionNone       TransitionType = "none"
)

// DefaultTransitionDuration is used when no duration is set.
const DefaultTransitionDuration = 200 * time.Millisecond

// TransitionOptions configures Transition.
type TransitionOptions struct {
	// Show drives the animation. nil means always shown.
	Show     func() bool
	Type     TransitionType
	Duration time.Duration
	// OnExited runs once the hide animation has finished.
	OnExited func()
}

func (o TransitionOptions) withDefaults() TransitionOptions {
	if o.Show == nil {
		o.Show = func() bool { return true }
	}
	if o.Type == "" {
		o.Type = TransitionCrossfade
	}
	if o.Duration <= 0 {
		o.Duration = DefaultTransitionDuration
	}
	return o
}

// Transition wraps children in a revealer whose revealChild prop follows
// Show. Hiding keeps the revealer visible for Duration so the animation can
// play, then hides it and calls OnExited. Showing again before that cancels
// the pending hide. The delay runs on reactive.After, so the host loop must
// call reactive.Tick.
func Transition(opts TransitionOptions, children ...any) *vnode.Node {
	opts = opts.withDefaults()
	comp := func(vnode.Props) *vnode.Node {
		var initial bool
		reactive.Untracked(func() { initial = opts.Show() })
		rendered := reactive.NewSignal(initial)

		reactive.CreateEffect(func() reactive.Cleanup {
			if opts.Show() {
				rendered.Set(true)
				return nil
			}
			if !rendered.Get() {
				return nil
			}
			return reactive.After(opts.Duration, func() {
				rendered.Set(false)
				if opts.OnExited != nil {
					opts.OnExited()
				}
			})
		})

		return vnode.El(RevealerTag, vnode.Props{
			"revealChild":        opts.Show,
			"transitionType":     string(opts.Type),
			"transitionDuration": int(opts.Duration / time.Millisecond),
			"visible":            rendered.Get,
		}, children...)
	}
	return vnode.Named("Transition", vnode.Pure(comp), nil)
}

// AnimatePresence keeps the last non-nil node returned by children on
// screen while it animates out. A Transition follows whether children()
// currently returns a node; a new node replaces the shown one right away.
// OnExited in opts is called once the exit animation has finished.
func AnimatePresence(children func() *vnode.Node, opts TransitionOptions) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		present := reactive.NewSignal(false)
		last := reactive.NewSignal[*vnode.Node](nil)

		reactive.Watch(func() {
			n := children()
			reactive.Batch(func() {
				present.Set(n != nil)
				if n != nil {
					last.Set(n)
				}
			})
		})

		opts.Show = present.Get
		current := func() []*vnode.Node {
			if n := last.Get(); n != nil {
				return []*vnode.Node{n}
			}
			return nil
		}
		return Transition(opts, For(current, func(n *vnode.Node, _ int) *vnode.Node { return n }, nil))
	}
	return vnode.Named("AnimatePresence", vnode.Pure(comp), nil)
}
