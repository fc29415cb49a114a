// Package store provides nested reactive state built from a map.
//
// A store is created from an initial map whose shape is fixed at creation:
// every key whose initial value is a non-nil map[string]any is a nested
// branch, every other key is a leaf backed by a lazily created signal.
//
// Usage:
//
//	state, set, dispose := store.New(map[string]any{
//	    "user": map[string]any{"name": "ada", "age": 36},
//	    "theme": "dark",
//	})
//	defer dispose()
//
//	name := state.Child("user").Accessor("name")
//	reactive.Watch(func() { fmt.Println(name()) })
//
//	set.Child("user").Set("name", "grace")
//	set.Merge(map[string]any{"theme": "light", "user": map[string]any{"age": 37}})
//
// Leaf signals are kept in one flat map keyed by the dot-joined path, so
// repeated access to the same path always reuses the same signal.
package store
