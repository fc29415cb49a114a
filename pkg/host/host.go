// Package host defines the contract between the reconciler and the
// platform widget toolkit.
//
// The reconciler never touches widgets directly. It asks the registered
// Host to create, attach, show and tear down opaque instances. Property
// updates after mount do not go through the reconciler at all: a host binds
// function-valued props to its widgets with BindProps, and those bindings
// are ordinary effects.
package host

import (
	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Instance is an opaque widget owned by exactly one fiber.
type Instance = any

// HandlerID identifies a connected event handler.
type HandlerID uint64

// Host creates and manipulates platform widgets.
type Host interface {
	// CreateInstance creates a widget for tag. Props may hold static values,
	// accessor functions, event handlers (on*) and a ref callback.
	CreateInstance(tag string, props vnode.Props) (Instance, error)
	// CreateTextInstance creates a text widget.
	CreateTextInstance(text string) (Instance, error)

	AppendChild(parent, child Instance)
	// InsertBefore inserts child at position index of parent.
	InsertBefore(parent, child Instance, index int)
	RemoveChild(parent, child Instance)

	ConnectSignal(inst Instance, event string, handler any) HandlerID
	DisconnectSignal(inst Instance, id HandlerID)

	// ShowInstance makes a top-level window visible.
	ShowInstance(inst Instance)
	// DestroyInstance releases the widget.
	DestroyInstance(inst Instance)
	// DisposeInstance releases toolkit-side resources before destruction.
	DisposeInstance(inst Instance)
}

// ErrNoHost is returned by the first operation that needs a host when none
// has been registered.
var ErrNoHost = errors.New("E101").
	WithSuggestion("Call host.Set with a Host implementation before rendering")

var current Host

// Set registers h as the process-wide host. nil unregisters it.
func Set(h Host) {
	current = h
}

// Current returns the registered host or ErrNoHost.
func Current() (Host, error) {
	if current == nil {
		return nil, ErrNoHost
	}
	return current, nil
}
