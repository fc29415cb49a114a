package control

import (
	"context"
	"log/slog"

	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Fallback renders the content shown by an ErrorBoundary after a failure.
// Calling reset remounts the children.
type Fallback func(err error, reset func()) *vnode.Node

// ErrorBoundary mounts children into a box and catches component errors
// raised while they render, including errors raised later by list
// primitives inside them. On failure the partial subtree is torn down,
// onError (if non-nil) is called and fallback is mounted in its place.
func ErrorBoundary(fallback Fallback, onError func(error), children ...any) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		attempt := reactive.NewSignal(0)
		failed := reactive.NewSignal[error](nil)

		reset := func() {
			reactive.Batch(func() {
				failed.Set(nil)
				attempt.Update(func(n int) int { return n + 1 })
			})
		}

		notify := func(err error) {
			if le, ok := err.(*errors.LuminaError); ok {
				slog.Default().Log(context.Background(), slog.LevelWarn, "error boundary caught", le.LogAttrs()...)
			}
			if onError != nil {
				onError(err)
			}
		}

		ref := host.Ref(func(container host.Instance) {
			reactive.CreateEffect(func() reactive.Cleanup {
				attempt.Get()
				if err := failed.Get(); err != nil {
					showFallback(fallback, err, reset, container)
					return nil
				}

				var caught error
				rendering := true
				handler := func(err error) {
					if rendering {
						if caught == nil {
							caught = err
						}
						return
					}
					notify(err)
					failed.Set(err)
				}

				var dispose func()
				var err error
				reconciler.WithErrorHandler(handler, func() {
					dispose, err = reconciler.RenderChild(vnode.Frag(children...), container)
				})
				rendering = false
				if err != nil && caught == nil {
					caught = err
				}
				if caught == nil {
					return nil
				}

				dispose()
				notify(caught)
				showFallback(fallback, caught, reset, container)
				return nil
			})
		})
		return vnode.El(BoxTag, vnode.Props{"ref": ref})
	}
	return vnode.Named("ErrorBoundary", vnode.Pure(comp), nil)
}

func showFallback(fallback Fallback, err error, reset func(), container host.Instance) {
	if fallback == nil {
		return
	}
	if _, ferr := reconciler.RenderChild(fallback(err, reset), container); ferr != nil {
		reporter("ErrorBoundary")(ferr)
	}
}

// ErrorFallback is a ready-made fallback: a box with the error message and,
// when reset is non-nil, a Retry button.
func ErrorFallback(err error, reset func()) *vnode.Node {
	var retry any
	if reset != nil {
		retry = vnode.El("button", vnode.Props{"label": "Retry", "onClicked": reset})
	}
	return vnode.El(BoxTag, vnode.Props{"className": "error-fallback"},
		vnode.El("label", vnode.Props{"label": "Error: " + err.Error()}),
		retry,
	)
}
