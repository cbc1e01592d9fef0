package icon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stardust-xr/protostar/internal/config"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<ellipse cx="50" cy="80" rx="46" ry="19" fill="#07c"/>
<path d="M43,0c-6,25,16,22,1,52c11,3,19,0,19-22c38,18,16,63-12,64c-25,2-55-39-8-94" fill="#e34"/>
</svg>`

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	cacheDir := filepath.Join(t.TempDir(), "protostar_icon_cache")
	cfg := config.DefaultConfig
	cfg.Icons.CacheDir = cacheDir
	return NewCache(&cfg), cacheDir
}

func writeSVG(t *testing.T, dir, name, content string) Candidate {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write SVG: %v", err)
	}
	return Candidate{Kind: KindVector, Path: path, Size: 0}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read cache dir: %v", err)
	}
	return len(entries)
}

func TestMaterialize_PassThrough(t *testing.T) {
	cache, _ := newTestCache(t)

	for _, cand := range []Candidate{
		{Kind: KindRaster, Path: "/some/icon.png", Size: 64},
		{Kind: KindModel3D, Path: "/some/icon.glb", Size: 0},
	} {
		got, err := cache.Materialize(cand, 128)
		if err != nil {
			t.Fatalf("Materialize failed for %v: %v", cand.Kind, err)
		}
		if got != cand {
			t.Errorf("Expected %v candidate unchanged, got %+v", cand.Kind, got)
		}
	}

	if cache.RenderCount() != 0 {
		t.Errorf("Expected no renders for pass-through, got %d", cache.RenderCount())
	}
}

func TestMaterialize_CreatesCacheDirAndFile(t *testing.T) {
	cache, cacheDir := newTestCache(t)
	cand := writeSVG(t, t.TempDir(), "app.svg", testSVG)

	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Fatal("Cache dir should not exist before first materialize")
	}

	got, err := cache.Materialize(cand, 64)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	if got.Kind != KindRaster {
		t.Errorf("Expected raster result, got %v", got.Kind)
	}
	if got.Size != 64 {
		t.Errorf("Expected size 64, got %d", got.Size)
	}
	if filepath.Dir(got.Path) != cacheDir {
		t.Errorf("Expected output inside cache dir, got %s", got.Path)
	}
	if filepath.Ext(got.Path) != ".png" {
		t.Errorf("Expected .png output, got %s", got.Path)
	}
	if countFiles(t, cacheDir) != 1 {
		t.Errorf("Expected exactly 1 cache file, got %d", countFiles(t, cacheDir))
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	cache, cacheDir := newTestCache(t)
	cand := writeSVG(t, t.TempDir(), "app.svg", testSVG)

	first, err := cache.Materialize(cand, 64)
	if err != nil {
		t.Fatalf("First materialize failed: %v", err)
	}
	if cache.RenderCount() != 1 {
		t.Fatalf("Expected 1 render after first call, got %d", cache.RenderCount())
	}
	firstBytes, err := os.ReadFile(first.Path)
	if err != nil {
		t.Fatalf("Failed to read cached file: %v", err)
	}

	second, err := cache.Materialize(cand, 64)
	if err != nil {
		t.Fatalf("Second materialize failed: %v", err)
	}

	if second.Path != first.Path {
		t.Errorf("Expected identical output path, got %s and %s", first.Path, second.Path)
	}
	if cache.RenderCount() != 1 {
		t.Errorf("Expected second call to skip the rasterizer, render count %d", cache.RenderCount())
	}

	secondBytes, err := os.ReadFile(second.Path)
	if err != nil {
		t.Fatalf("Failed to re-read cached file: %v", err)
	}
	if string(firstBytes) != string(secondBytes) {
		t.Error("Expected identical output bytes across calls")
	}
	if countFiles(t, cacheDir) != 1 {
		t.Errorf("Expected 1 cache file after repeat call, got %d", countFiles(t, cacheDir))
	}
}

func TestMaterialize_DistinctKeysAddDistinctFiles(t *testing.T) {
	cache, cacheDir := newTestCache(t)
	srcDir := t.TempDir()
	first := writeSVG(t, srcDir, "one.svg", testSVG)

	firstOut, err := cache.Materialize(first, 64)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	// Unrelated key: different source content.
	other := writeSVG(t, srcDir, "two.svg",
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="#222"/></svg>`)
	if _, err := cache.Materialize(other, 64); err != nil {
		t.Fatalf("Materialize of second key failed: %v", err)
	}

	if countFiles(t, cacheDir) != 2 {
		t.Errorf("Expected exactly 2 cache files, got %d", countFiles(t, cacheDir))
	}
	if _, err := os.Stat(firstOut.Path); err != nil {
		t.Errorf("First cache file disturbed: %v", err)
	}
}

func TestMaterialize_SizeIsPartOfKey(t *testing.T) {
	cache, cacheDir := newTestCache(t)
	cand := writeSVG(t, t.TempDir(), "app.svg", testSVG)

	small, err := cache.Materialize(cand, 32)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	large, err := cache.Materialize(cand, 128)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	if small.Path == large.Path {
		t.Error("Expected distinct cache paths for distinct target sizes")
	}
	if countFiles(t, cacheDir) != 2 {
		t.Errorf("Expected 2 cache files, got %d", countFiles(t, cacheDir))
	}
}

func TestMaterialize_SourceErrors(t *testing.T) {
	cache, _ := newTestCache(t)

	missing := Candidate{Kind: KindVector, Path: filepath.Join(t.TempDir(), "nope.svg")}
	if _, err := cache.Materialize(missing, 64); err == nil {
		t.Error("Expected error for missing source file")
	}

	garbage := writeSVG(t, t.TempDir(), "bad.svg", "this is not svg at all <<<")
	if _, err := cache.Materialize(garbage, 64); err == nil {
		t.Error("Expected error for unparseable SVG")
	}
}
