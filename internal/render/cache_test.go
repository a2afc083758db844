package render

import (
	"sync"
	"testing"

	"github.com/charmbracelet/glamour"
)

func TestCacheSharesEquivalentOptions(t *testing.T) {
	ClearCache()
	defer ClearCache()

	if _, err := Markdown("hi", DefaultOptions().WithStyle("")); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if _, err := Markdown("hi", DefaultOptions().WithStyle(StyleDark)); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("empty style and dark should share renderers, got %d sets", CacheSize())
	}
}

func TestCacheReusesPerOptionSet(t *testing.T) {
	ClearCache()
	defer ClearCache()

	narrow := DefaultOptions().WithWidth(40)
	wide := DefaultOptions().WithWidth(120)

	first, err := renderers.acquire(narrow)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	renderers.release(narrow, first)

	again, err := renderers.acquire(narrow)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	if again != first {
		t.Error("idle renderer was not reused")
	}
	renderers.release(narrow, again)

	r, err := renderers.acquire(wide)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	renderers.release(wide, r)

	if CacheSize() != 2 {
		t.Errorf("expected 2 option sets, got %d", CacheSize())
	}

	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("expected 0 option sets after clear, got %d", CacheSize())
	}
}

func TestCacheKeepsBoundedIdle(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	var held []*glamour.TermRenderer
	for i := 0; i < maxIdle+3; i++ {
		r, err := renderers.acquire(opts)
		if err != nil {
			t.Fatalf("acquire() error = %v", err)
		}
		held = append(held, r)
	}
	for _, r := range held {
		renderers.release(opts, r)
	}

	if n := len(renderers.idle[opts]); n != maxIdle {
		t.Errorf("idle renderers = %d, want %d", n, maxIdle)
	}
}

func TestPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("**Slurpee** of the day", opts); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render error: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("expected 1 pool after concurrent access, got %d", CacheSize())
	}
}

func TestCreateRenderer(t *testing.T) {
	for _, style := range []string{"", StyleDark, StyleLight, StyleNoTTY, StyleASCII} {
		r, err := createRenderer(DefaultOptions().WithStyle(style))
		if err != nil {
			t.Fatalf("createRenderer(%q) error = %v", style, err)
		}
		if out, err := r.Render("# Test"); err != nil || out == "" {
			t.Errorf("Render() with style %q = %q, %v", style, out, err)
		}
	}

	if _, err := createRenderer(DefaultOptions().WithStyle("invalid_style_path")); err == nil {
		t.Error("expected error for invalid style")
	}
}
