package sandbox

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestAcquireFallsBackWithoutDocker(t *testing.T) {
	p := &Provisioner{dockerPath: ""}

	h := p.Acquire(context.Background(), "")
	if h == nil {
		t.Fatal("Acquire returned nil handle")
	}
	t.Cleanup(func() { p.Release(context.Background(), h) })

	if h.Kind != KindDirectory {
		t.Fatalf("expected directory fallback, got %s", h.Kind)
	}
	if h.Path == "" {
		t.Fatal("directory handle has no path")
	}
	if !strings.Contains(h.Path, "doc-verify-") {
		t.Errorf("unexpected directory name: %s", h.Path)
	}

	info, err := os.Stat(h.Path)
	if err != nil {
		t.Fatalf("verification dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", h.Path)
	}
}

func TestAcquireHandlesAreDistinct(t *testing.T) {
	p := &Provisioner{dockerPath: ""}
	ctx := context.Background()

	a := p.Acquire(ctx, "")
	b := p.Acquire(ctx, "")
	t.Cleanup(func() {
		p.Release(ctx, a)
		p.Release(ctx, b)
	})

	if a.Path == b.Path {
		t.Fatalf("two acquisitions shared a directory: %s", a.Path)
	}
}

func TestReleaseRemovesDirectory(t *testing.T) {
	p := &Provisioner{dockerPath: ""}
	ctx := context.Background()

	h := p.Acquire(ctx, "")
	p.Release(ctx, h)

	if _, err := os.Stat(h.Path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat err: %v", h.Path, err)
	}
}

func TestReleaseNilHandle(t *testing.T) {
	p := &Provisioner{dockerPath: ""}
	// Must not panic.
	p.Release(context.Background(), nil)
}
