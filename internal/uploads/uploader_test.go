// internal/uploads/uploader_test.go
//
// Unit-tests for the derivative pipeline against a temp directory.
//
// Run: go test ./internal/uploads -v

package uploads

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

// opaqueImage returns a fully opaque test image, stored as JPEG.
func opaqueImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

// alphaImage returns an image with transparency, stored as PNG.
func alphaImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 10, B: 10, A: 120})
	return img
}

func newDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, MobileDir), 0o755); err != nil {
		t.Fatalf("mkdir mobile: %v", err)
	}
	return dir
}

func mustExist(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected file %s: %v", p, err)
		}
	}
}

func mustNotExist(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			t.Errorf("file %s must not exist", p)
		}
	}
}

func TestHandleWritesFullFamily(t *testing.T) {
	dir := newDir(t)
	up := New(dir)

	stored, err := up.Handle(opaqueImage(), "cover_1", &DefaultMobile, &DefaultDesktop, true)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if stored != "cover_1.jpg" {
		t.Fatalf("stored = %q, want cover_1.jpg", stored)
	}

	mustExist(t,
		filepath.Join(dir, "cover_1.jpg"),
		filepath.Join(dir, "cover_1.webp"),
		filepath.Join(dir, MobileDir, "cover_1.jpg"),
		filepath.Join(dir, MobileDir, "cover_1.webp"),
	)
	if got := len(up.Written()); got != 4 {
		t.Fatalf("tracked %d files, want 4", got)
	}
}

func TestHandleAlphaBecomesPNG(t *testing.T) {
	dir := newDir(t)
	up := New(dir)

	stored, err := up.Handle(alphaImage(), "logo", &DefaultMobile, &DefaultDesktop, false)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if stored != "logo.png" {
		t.Fatalf("stored = %q, want logo.png", stored)
	}
	mustNotExist(t, filepath.Join(dir, "logo.webp"))
}

func TestHandleSkipsNilTier(t *testing.T) {
	dir := newDir(t)
	up := New(dir)

	if _, err := up.Handle(opaqueImage(), "d_only", nil, &DefaultDesktop, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	mustExist(t, filepath.Join(dir, "d_only.jpg"), filepath.Join(dir, "d_only.webp"))
	mustNotExist(t, filepath.Join(dir, MobileDir, "d_only.jpg"))
}

func TestHandleFailureRemovesPartialWrites(t *testing.T) {
	dir := newDir(t)
	up := New(dir)

	// Occupy the desktop raster path with a directory so the third write
	// fails after both mobile derivatives succeeded.
	if err := os.Mkdir(filepath.Join(dir, "broken.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := up.Handle(opaqueImage(), "broken", &DefaultMobile, &DefaultDesktop, true); err == nil {
		t.Fatal("expected Handle to fail")
	}
	mustNotExist(t,
		filepath.Join(dir, MobileDir, "broken.jpg"),
		filepath.Join(dir, MobileDir, "broken.webp"),
	)
	if got := len(up.Written()); got != 0 {
		t.Fatalf("failed call must track nothing, tracked %d", got)
	}
}

func TestRollbackRemovesTracked(t *testing.T) {
	dir := newDir(t)
	up := New(dir)

	if _, err := up.Handle(opaqueImage(), "a", &DefaultMobile, &DefaultDesktop, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	up.Rollback()

	mustNotExist(t,
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "a.webp"),
		filepath.Join(dir, MobileDir, "a.jpg"),
		filepath.Join(dir, MobileDir, "a.webp"),
	)
}

func TestCommitMakesRollbackNoOp(t *testing.T) {
	dir := newDir(t)
	up := New(dir)

	if _, err := up.Handle(opaqueImage(), "b", &DefaultMobile, &DefaultDesktop, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	up.Commit()
	up.Rollback()

	mustExist(t, filepath.Join(dir, "b.jpg"), filepath.Join(dir, MobileDir, "b.jpg"))
}

func TestDerivativePaths(t *testing.T) {
	got := DerivativePaths("/up", "cover_17.jpg")
	want := []string{
		filepath.Join("/up", "cover_17.jpg"),
		filepath.Join("/up", MobileDir, "cover_17.jpg"),
		filepath.Join("/up", "cover_17.webp"),
		filepath.Join("/up", MobileDir, "cover_17.webp"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d paths, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRemoveFilesIgnoresMissing(t *testing.T) {
	// Must not panic or err on already-deleted paths.
	RemoveFiles([]string{filepath.Join(t.TempDir(), "nope.jpg")})
}
