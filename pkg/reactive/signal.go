package reactive

import "reflect"

// subscriberSet is the ordered set of contexts subscribed to one signal.
type subscriberSet struct {
	handles []Handle
}

// add inserts h, reporting whether it was not already present.
func (s *subscriberSet) add(h Handle) bool {
	for _, existing := range s.handles {
		if existing == h {
			return false
		}
	}
	s.handles = append(s.handles, h)
	return true
}

// remove deletes h, keeping the remaining order.
func (s *subscriberSet) remove(h Handle) {
	for i, existing := range s.handles {
		if existing == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

// len returns the number of subscribers.
func (s *subscriberSet) len() int {
	return len(s.handles)
}

// Signal is a reactive value container.
// Reading a Signal with Get while an effect runs subscribes that effect;
// writing a different value re-runs it.
type Signal[T any] struct {
	value T
	subs  subscriberSet

	// equal decides whether a write is a no-op. nil means Same.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// CreateSignal creates a signal and returns its read and write accessors.
func CreateSignal[T any](initial T) (func() T, func(T)) {
	s := NewSignal(initial)
	return s.Get, s.Set
}

// Get returns the current value and subscribes the running effect, if any.
func (s *Signal[T]) Get() T {
	rt.track(&s.subs)
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores value and schedules subscribers if it differs from the current
// value. Writes equal to the current value are dropped.
func (s *Signal[T]) Set(value T) {
	if s.equals(s.value, value) {
		return
	}
	s.value = value
	rt.schedule(&s.subs)
}

// Update applies fn to the current value and stores the result.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// WithEquals returns the signal configured with a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Accessor returns the read accessor of the signal.
func (s *Signal[T]) Accessor() func() T {
	return s.Get
}

// Subscribers returns the number of effects currently subscribed.
func (s *Signal[T]) Subscribers() int {
	return s.subs.len()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return Same(a, b)
}

// Same reports identity/primitive equality: == for comparable values,
// reference identity for slices, maps, pointers and channels. Functions and
// values that are not comparable never compare equal, so writing a fresh
// composite value always propagates. There is no deep comparison.
func Same[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	}
	return sameValue(reflect.ValueOf(any(a)), reflect.ValueOf(any(b)))
}

func sameValue(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		return false
	}
	if !a.Comparable() || !b.Comparable() {
		return false
	}
	return a.Equal(b)
}
