package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writePNG encodes img into a temp file and returns its path.
// The file is removed when the test finishes.
func writePNG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return path
}

// grayRamp builds a grayscale image whose intensity increases left to right.
func grayRamp(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * 255) / max(width-1, 1))})
		}
	}
	return img
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache.images == nil || cache.grays == nil {
		t.Fatal("NewImageCache did not initialize its maps")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, grayRamp(64, 32))

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1.Bounds().Dx() != 64 || img1.Bounds().Dy() != 32 {
		t.Errorf("unexpected dimensions: got %dx%d, want 64x32", img1.Bounds().Dx(), img1.Bounds().Dy())
	}

	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_LoadGray(t *testing.T) {
	cache := NewImageCache()
	src := grayRamp(40, 24)
	path := writePNG(t, src)

	g, err := cache.LoadGray(path)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}

	rows, cols := g.Dims()
	if rows != 24 || cols != 40 {
		t.Fatalf("dims: got %dx%d, want 24x40", rows, cols)
	}
	for _, x := range []int{0, 13, 39} {
		want := float64(src.GrayAt(x, 5).Y)
		if got := g.At(5, x); got != want {
			t.Errorf("pixel (5,%d): got %v, want %v", x, got, want)
		}
	}

	again, err := cache.LoadGray(path)
	if err != nil {
		t.Fatalf("second LoadGray failed: %v", err)
	}
	if again != g {
		t.Error("second LoadGray did not return cached matrix")
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, grayRamp(16, 16))

	if _, err := cache.LoadGray(path); err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}

	cache.Evict(path)
	cache.mu.RLock()
	_, img := cache.images[path]
	_, gray := cache.grays[path]
	cache.mu.RUnlock()
	if img || gray {
		t.Error("Evict left entries behind")
	}

	// evicting an unknown path is a no-op
	cache.Evict("/nonexistent/path")

	if _, err := cache.LoadGray(path); err != nil {
		t.Fatalf("LoadGray after Evict failed: %v", err)
	}
}

func TestImageCache_ConcurrentLoadGray(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, grayRamp(32, 32))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.LoadGray(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent LoadGray error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, grayRamp(200, 150))

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 200 || info.Height != 150 {
		t.Errorf("size: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.HasAlpha {
		t.Error("grayscale PNG reported an alpha channel")
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}

	if _, err := LoadImageInfo(cache, "/nonexistent/image.png"); err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, grayRamp(300, 200))

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("got %dx%d, want 300x200", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(cache, "/nonexistent/image.png"); err == nil {
		t.Error("GetDimensions should fail for non-existent file")
	}
}
