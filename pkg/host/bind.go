package host

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Ref is the type of the "ref" prop. It is called with the created instance
// once all other props are bound.
type Ref func(Instance)

// eventNames maps handler props whose toolkit event name does not follow
// the default onFooBar -> foo-bar rule.
var eventNames = map[string]string{
	"onDragged":       "value-changed",
	"onScroll":        "scroll-event",
	"onEnter":         "enter-notify-event",
	"onLeave":         "leave-notify-event",
	"onKeyPressEvent": "key-press-event",
}

// reserved props are consumed by the framework and never reach a widget.
var reserved = map[string]bool{
	"key":              true,
	"ref":              true,
	vnode.ChildrenProp: true,
}

// IsEventProp reports whether key names an event handler prop.
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on") && unicode.IsUpper(rune(key[2]))
}

// EventName returns the toolkit event name for an on* prop.
func EventName(key string) string {
	if name, ok := eventNames[key]; ok {
		return name
	}
	var b strings.Builder
	for i, r := range key[2:] {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BindProps applies props to a freshly created instance:
//
//   - static values are passed to set once;
//   - niladic single-result functions are read inside an effect that calls
//     set on every change, owned by the current owner;
//   - on* handlers are connected with ConnectSignal and disconnected when
//     the current owner is disposed;
//   - a Ref (or func(any)) under "ref" is called last.
//
// Hosts call BindProps from CreateInstance.
func BindProps(h Host, inst Instance, props vnode.Props, set func(key string, value any)) {
	for key, value := range props {
		if reserved[key] || value == nil {
			continue
		}
		if IsEventProp(key) {
			connect(h, inst, key, value)
			continue
		}
		if read, ok := accessor(value); ok {
			reactive.Watch(func() {
				set(key, read())
			})
			continue
		}
		set(key, value)
	}

	switch ref := props["ref"].(type) {
	case Ref:
		ref(inst)
	case func(Instance):
		ref(inst)
	}
}

func connect(h Host, inst Instance, key string, handler any) {
	id := h.ConnectSignal(inst, EventName(key), handler)
	if reactive.CurrentOwner().IsZero() {
		return
	}
	reactive.OnCleanup(func() {
		h.DisconnectSignal(inst, id)
	})
}

// accessor returns a read function for values shaped like func() T.
func accessor(v any) (func() any, bool) {
	switch fn := v.(type) {
	case func() any:
		return fn, true
	case func() bool:
		return func() any { return fn() }, true
	case func() string:
		return func() any { return fn() }, true
	case func() int:
		return func() any { return fn() }, true
	case func() float64:
		return func() any { return fn() }, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return nil, false
	}
	typ := rv.Type()
	if typ.NumIn() != 0 || typ.NumOut() != 1 {
		return nil, false
	}
	return func() any { return rv.Call(nil)[0].Interface() }, true
}
