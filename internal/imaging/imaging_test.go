package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bdrennan/mailkit/internal/fileset"
)

// writePNG writes a w-by-h PNG to path.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
}

// decodeDims decodes data and returns its pixel dimensions.
func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestIsImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"scan.TIFF", true},
		{"icon.bmp", true},
		{"anim.gif", true},
		{"doc.pdf", false},
		{"notes.txt", false},
	}

	for _, tc := range cases {
		path := filepath.Join(dir, tc.name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", tc.name, err)
		}
		got, err := IsImage(path)
		if err != nil {
			t.Fatalf("IsImage(%q): unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("IsImage(%q): got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsImage_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := IsImage(filepath.Join(t.TempDir(), "ghost.png"))
	if err == nil {
		t.Fatal("expected error for missing path")
	}
	var notFound *fileset.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error type: got %T, want *fileset.NotFoundError", err)
	}
}

func TestEncodeBounded_DownscalesLargeImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, path, 2048, 512)

	data, err := EncodeBounded(path, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeDims(t, data)
	if w < 1023 || w > 1025 {
		t.Errorf("width: got %d, want 1024 (±1)", w)
	}
	// 4:1 aspect ratio must survive the rescale within rounding
	if h < 255 || h > 257 {
		t.Errorf("height: got %d, want 256 (±1)", h)
	}
}

func TestEncodeBounded_TallImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tall.png")
	writePNG(t, path, 512, 2048)

	data, err := EncodeBounded(path, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeDims(t, data)
	if h < 1023 || h > 1025 {
		t.Errorf("height: got %d, want 1024 (±1)", h)
	}
	if w < 255 || w > 257 {
		t.Errorf("width: got %d, want 256 (±1)", w)
	}
}

func TestEncodeBounded_SmallImagePassesThrough(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "small.png")
	writePNG(t, path, 640, 480)

	data, err := EncodeBounded(path, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeDims(t, data)
	if w != 640 || h != 480 {
		t.Errorf("dimensions: got %dx%d, want 640x480", w, h)
	}
}

func TestEncodeBounded_ExactBoundUnresized(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exact.png")
	writePNG(t, path, 1024, 300)

	data, err := EncodeBounded(path, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, h := decodeDims(t, data)
	if w != 1024 || h != 300 {
		t.Errorf("dimensions: got %dx%d, want 1024x300", w, h)
	}
}

func TestEncodeBounded_CorruptImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := EncodeBounded(path, 1024); err == nil {
		t.Fatal("expected decode error for corrupt image")
	}
}

func TestEncodeBounded_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := EncodeBounded(filepath.Join(t.TempDir(), "ghost.png"), 1024)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var notFound *fileset.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error type: got %T, want *fileset.NotFoundError", err)
	}
}
