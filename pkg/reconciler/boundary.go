package reconciler

// ErrorHandler receives errors raised while components render.
type ErrorHandler func(error)

var handlers []ErrorHandler

// PushErrorHandler makes fn the handler for component errors until it is
// popped.
func PushErrorHandler(fn ErrorHandler) {
	handlers = append(handlers, fn)
}

// PopErrorHandler removes the most recently pushed handler.
func PopErrorHandler() {
	if n := len(handlers); n > 0 {
		handlers = handlers[:n-1]
	}
}

// WithErrorHandler runs body with fn pushed as the current handler. The
// handler is popped on every exit path.
func WithErrorHandler(fn ErrorHandler, body func()) {
	PushErrorHandler(fn)
	defer PopErrorHandler()
	body()
}

// CurrentErrorHandler returns the handler on top of the stack, or nil.
func CurrentErrorHandler() ErrorHandler {
	if n := len(handlers); n > 0 {
		return handlers[n-1]
	}
	return nil
}
