package control

import (
	"context"
	"log/slog"

	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

// BoxTag is the container element used by every primitive.
const BoxTag = "box"

// reporter returns a function that forwards subtree errors raised after the
// initial render to the error handler active when the primitive rendered,
// or logs them when there was none.
func reporter(name string) func(error) {
	handler := reconciler.CurrentErrorHandler()
	return func(err error) {
		if handler != nil {
			handler(err)
			return
		}
		le := errors.FromError(err, "E102")
		slog.Default().Log(context.Background(), slog.LevelError, name+": subtree render failed", le.LogAttrs()...)
	}
}
