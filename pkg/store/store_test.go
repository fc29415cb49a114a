package store

import (
	"sort"
	"testing"

	"github.com/lumina-dev/lumina/pkg/reactive"
)

func newProfile() (*Node, *Setter, func()) {
	return New(map[string]any{
		"user": map[string]any{
			"name": "ada",
			"age":  36,
			"address": map[string]any{
				"city": "london",
			},
		},
		"theme": "dark",
		"tags":  nil,
	})
}

func TestStoreReadsInitialValues(t *testing.T) {
	state, _, dispose := newProfile()
	defer dispose()

	if got := Value[string](state, "theme"); got != "dark" {
		t.Errorf("expected dark, got %q", got)
	}
	user := state.Child("user")
	if user == nil {
		t.Fatal("expected user to be nested")
	}
	if got := Value[int](user, "age"); got != 36 {
		t.Errorf("expected 36, got %d", got)
	}
	if got := Value[string](user.Child("address"), "city"); got != "london" {
		t.Errorf("expected london, got %q", got)
	}
	if user.Child("address").Path() != "user.address" {
		t.Errorf("expected path user.address, got %q", user.Child("address").Path())
	}
}

func TestStoreShapeIsFixed(t *testing.T) {
	state, _, dispose := newProfile()
	defer dispose()

	if state.Child("theme") != nil {
		t.Error("leaf key must not yield a nested node")
	}
	if state.IsNested("tags") {
		t.Error("nil initial value is a leaf")
	}
	if state.Accessor("user") != nil {
		t.Error("nested key must not yield a leaf accessor")
	}
	if state.Get("missing") != nil {
		t.Error("unknown key should read as nil")
	}
}

func TestStoreReusesSignalPerPath(t *testing.T) {
	state, set, dispose := newProfile()
	defer dispose()

	a := state.Child("user").Accessor("name")
	b := state.Child("user").Accessor("name")
	set.Child("user").Set("name", "grace")

	if a() != "grace" || b() != "grace" {
		t.Errorf("accessors should share one signal, got %v and %v", a(), b())
	}
	if state.Signals() != 1 {
		t.Errorf("expected 1 signal, got %d", state.Signals())
	}
}

func TestStoreLeafSetTriggersEffect(t *testing.T) {
	state, set, dispose := newProfile()
	defer dispose()

	runs := 0
	e := reactive.Watch(func() {
		runs++
		_ = state.Get("theme")
	})
	defer e.Dispose()

	set.Set("theme", "dark")
	if runs != 1 {
		t.Errorf("same value should be dropped, got %d runs", runs)
	}
	set.Set("theme", "light")
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}

	set.Update("theme", func(v any) any { return v.(string) + "!" })
	if got := Value[string](state, "theme"); got != "light!" {
		t.Errorf("expected light!, got %q", got)
	}
}

func TestStoreMergeBatches(t *testing.T) {
	state, set, dispose := newProfile()
	defer dispose()

	user := state.Child("user")
	runs := 0
	var seen string
	e := reactive.Watch(func() {
		runs++
		seen = Value[string](user, "name") + "/" + Value[string](state, "theme")
	})
	defer e.Dispose()

	set.Merge(map[string]any{
		"theme": "light",
		"user":  map[string]any{"name": "grace"},
	})

	if runs != 2 {
		t.Errorf("merge should re-run the effect once, got %d runs", runs-1)
	}
	if seen != "grace/light" {
		t.Errorf("expected grace/light, got %q", seen)
	}
}

func TestStoreNestedSetMerges(t *testing.T) {
	state, set, dispose := newProfile()
	defer dispose()

	set.Set("user", map[string]any{"age": 37})
	if got := Value[int](state.Child("user"), "age"); got != 37 {
		t.Errorf("expected 37, got %d", got)
	}
	if got := Value[string](state.Child("user"), "name"); got != "ada" {
		t.Errorf("untouched key should keep its value, got %q", got)
	}
}

func TestStoreDispose(t *testing.T) {
	state, set, dispose := newProfile()
	set.Set("theme", "light")
	_ = state.Child("user").Get("name")

	paths := state.Paths()
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "theme" || paths[1] != "user.name" {
		t.Errorf("unexpected paths %v", paths)
	}

	dispose()
	if state.Signals() != 0 {
		t.Errorf("expected no signals after dispose, got %d", state.Signals())
	}
	if got := Value[string](state, "theme"); got != "dark" {
		t.Errorf("signals recreated after dispose start from the initial value, got %q", got)
	}
}
