package alloc

import "testing"

func TestResolveZeroValueGivesDefaults(t *testing.T) {
	resolved, err := Funcs{}.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolved.Complete() {
		t.Fatal("resolved hooks must be complete")
	}

	b := resolved.Alloc(resolved.Ctx, 16)
	if len(b) != 16 {
		t.Errorf("expected 16 bytes, got %d", len(b))
	}
}

func TestResolvePartialHooksRejected(t *testing.T) {
	partial := Funcs{
		Alloc: func(_ any, n int) []byte { return make([]byte, n) },
		Free:  func(_ any, _ []byte) {},
	}
	if _, err := partial.Resolve(); err != ErrIncompleteFuncs {
		t.Fatalf("expected ErrIncompleteFuncs, got %v", err)
	}
}

func TestDefaultReallocPreservesContent(t *testing.T) {
	f := Default()

	b := f.Alloc(nil, 4)
	copy(b, "abcd")
	grown := f.Realloc(nil, b, 64)

	if len(grown) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(grown))
	}
	if string(grown[:4]) != "abcd" {
		t.Errorf("content lost across realloc: %q", grown[:4])
	}
}

func TestCtxIsPassedThrough(t *testing.T) {
	var seen any
	f := Funcs{
		Alloc: func(ctx any, n int) []byte {
			seen = ctx
			return make([]byte, n)
		},
		Realloc: func(_ any, b []byte, n int) []byte { return b },
		Free:    func(_ any, _ []byte) {},
		Ctx:     "pool-7",
	}

	f.Alloc(f.Ctx, 1)
	if seen != "pool-7" {
		t.Errorf("expected ctx to reach the hook, got %v", seen)
	}
}
