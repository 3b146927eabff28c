package di

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/taskbridge/errors"
)

func TestSetAndResolve(t *testing.T) {
	r := NewRegistry()
	r.Set("greeting", "hello")

	val, err := r.Resolve("greeting")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if val != "hello" {
		t.Errorf("expected 'hello', got %v", val)
	}
}

func TestResolveNotRegistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nonexistent")
	if err == nil {
		t.Fatal("expected error for unregistered capability")
	}
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' in error, got %q", err.Error())
	}
}

func TestProvideCalledEveryResolve(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Provide("counter", func() (any, error) {
		calls++
		return calls, nil
	})

	first, _ := r.Resolve("counter")
	second, _ := r.Resolve("counter")
	if first != 1 || second != 2 {
		t.Errorf("expected fresh values 1 and 2, got %v and %v", first, second)
	}
}

func TestProvideLazyCalledOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.ProvideLazy("pool", func() (any, error) {
		calls++
		return "pool", nil
	})

	info := r.Registrations()
	if info[0].Initialized {
		t.Error("lazy registration must not be initialized before first resolve")
	}

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve("pool"); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected provider called once, got %d", calls)
	}
	if !r.Registrations()[0].Initialized {
		t.Error("expected lazy registration to be initialized")
	}
}

func TestProvideLazyConcurrent(t *testing.T) {
	r := NewRegistry()
	var mu sync.Mutex
	calls := 0
	r.ProvideLazy("pool", func() (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "pool", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve("pool")
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("expected provider called once, got %d", calls)
	}
}

func TestProviderError(t *testing.T) {
	r := NewRegistry()
	r.Provide("broken", func() (any, error) {
		return nil, fmt.Errorf("no connection")
	})
	if _, err := r.Resolve("broken"); err == nil {
		t.Error("expected provider error")
	}
}

func TestSetOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Set("app", "first")
	r.Provide("app", func() (any, error) { return "second", nil })

	if r.Len() != 1 {
		t.Fatalf("expected 1 registration, got %d", r.Len())
	}
	val, _ := r.Resolve("app")
	if val != "second" {
		t.Errorf("expected overwritten value, got %v", val)
	}
}

func TestUpdate(t *testing.T) {
	r := NewRegistry()
	r.Update(map[Capability]any{
		"value":    42,
		"provider": Provider(func() (any, error) { return "built", nil }),
		"literal":  func() (any, error) { return "also built", nil },
	})

	if v, _ := r.Resolve("value"); v != 42 {
		t.Errorf("expected 42, got %v", v)
	}
	if v, _ := r.Resolve("provider"); v != "built" {
		t.Errorf("expected provider result, got %v", v)
	}
	if v, _ := r.Resolve("literal"); v != "also built" {
		t.Errorf("expected literal provider result, got %v", v)
	}
}

func TestDeleteAndHas(t *testing.T) {
	r := NewRegistry()
	r.Set("x", 1)
	if !r.Has("x") {
		t.Fatal("expected capability to be registered")
	}
	r.Delete("x")
	if r.Has("x") {
		t.Error("expected capability to be removed")
	}
}

func TestCapabilitiesSorted(t *testing.T) {
	r := NewRegistry()
	r.Set("b", 1)
	r.Set("a", 1)
	r.Set("c", 1)
	caps := r.Capabilities()
	if len(caps) != 3 || caps[0] != "a" || caps[1] != "b" || caps[2] != "c" {
		t.Errorf("expected sorted capabilities, got %v", caps)
	}
}

func TestRegistrationsModes(t *testing.T) {
	r := NewRegistry()
	r.Set("a", 1)
	r.Provide("b", func() (any, error) { return 2, nil })
	r.ProvideLazy("c", func() (any, error) { return 3, nil })

	info := r.Registrations()
	want := []Mode{ModeValue, ModeProvider, ModeLazy}
	for i, m := range want {
		if info[i].Mode != m {
			t.Errorf("registration %d: expected %s, got %s", i, m, info[i].Mode)
		}
	}
}

func TestRegisterConstructor(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterConstructor("greeting", func() string { return "hi" }); err != nil {
		t.Fatalf("RegisterConstructor failed: %v", err)
	}
	if v, _ := r.Resolve("greeting"); v != "hi" {
		t.Errorf("expected 'hi', got %v", v)
	}

	if err := r.RegisterConstructor("bad", "not a func"); err == nil {
		t.Error("expected error for non-function constructor")
	}
}

func TestInvokeSignatures(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	cases := []struct {
		name string
		fn   any
		want any
	}{
		{"plain", func() int { return 1 }, 1},
		{"with error", func() (int, error) { return 2, nil }, 2},
		{"context", func(ctx context.Context) any { return ctx.Value(key{}) }, "v"},
		{"context with error", func(ctx context.Context) (any, error) { return ctx.Value(key{}), nil }, "v"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Invoke(ctx, tc.fn)
			if err != nil {
				t.Fatalf("Invoke failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestInvokeNilContext(t *testing.T) {
	got, err := Invoke(nil, func(ctx context.Context) (bool, error) { return ctx != nil, nil })
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != true {
		t.Error("expected background context for nil ctx")
	}
}

func TestInvokeReturnsError(t *testing.T) {
	_, err := Invoke(nil, func() (string, error) { return "", fmt.Errorf("boom") })
	if err == nil || err.Error() != "boom" {
		t.Errorf("expected constructor error, got %v", err)
	}
}

func TestIsConstructor(t *testing.T) {
	cases := []struct {
		name string
		fn   any
		want bool
	}{
		{"nil", nil, false},
		{"value", 42, false},
		{"no results", func() {}, false},
		{"two args", func(a, b int) int { return a + b }, false},
		{"wrong arg", func(s string) int { return len(s) }, false},
		{"second not error", func() (int, int) { return 1, 2 }, false},
		{"variadic", func(...int) int { return 0 }, false},
		{"valid", func() int { return 1 }, true},
	}
	for _, tc := range cases {
		if got := IsConstructor(tc.fn); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestGenericResolve(t *testing.T) {
	r := NewRegistry()
	r.Set("name", "worker")

	name, err := Resolve[string](r, "name")
	if err != nil || name != "worker" {
		t.Fatalf("expected worker, got %q (%v)", name, err)
	}

	if _, err := Resolve[int](r, "name"); !errors.HasCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
	if _, err := Resolve[string](r, "missing"); !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestTryResolve(t *testing.T) {
	r := NewRegistry()
	r.Set("n", 3)
	if v, ok := TryResolve[int](r, "n"); !ok || v != 3 {
		t.Errorf("expected 3, got %v (%v)", v, ok)
	}
	if _, ok := TryResolve[int](r, "missing"); ok {
		t.Error("expected missing capability to report false")
	}
}

func TestMustResolvePanics(t *testing.T) {
	r := NewRegistry()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing capability")
		}
	}()
	MustResolve[string](r, "missing")
}
