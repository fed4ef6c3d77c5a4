package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, name string, width, height int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func TestImageCacheLoad(t *testing.T) {
	cache := NewImageCache()
	path := writeTestPNG(t, "checker.png", 6, 4)

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Fatalf("loaded image = %dx%d, want 6x4", b.Dx(), b.Dy())
	}

	// Second load returns the cached decode.
	again, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if again != img {
		t.Error("second load did not hit the cache")
	}

	// Eviction forces a fresh decode.
	cache.Evict(path)
	fresh, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load after Evict failed: %v", err)
	}
	if fresh == img {
		t.Error("evicted entry still served from cache")
	}

	cache.Clear()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load after Clear failed: %v", err)
	}
}

func TestImageCacheLoadMissing(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("loading a missing file did not fail")
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	path := writeTestPNG(t, "info.png", 10, 7)

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 10 || info.Height != 7 {
		t.Errorf("dimensions = %dx%d, want 10x7", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format = %q, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("file size = %d, want > 0", info.FileSizeBytes)
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	path := writeTestPNG(t, "dims.png", 12, 5)

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 12 || dims.Height != 5 {
		t.Errorf("dimensions = %dx%d, want 12x5", dims.Width, dims.Height)
	}
}
