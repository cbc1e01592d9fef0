package icon

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/stardust-xr/protostar/internal/config"
)

// Cache is the content-addressed on-disk rasterization cache. Vector
// candidates are rendered to PNG once per (source bytes, target size) key;
// raster and 3D candidates pass through untouched.
//
// The cache directory is append-only. Writes go through a temp file and an
// atomic rename, so concurrent materializations of the same key cannot
// corrupt each other and a crash never leaves a partial file visible.
type Cache struct {
	dir     string
	renders int64
}

func NewCache(cfg *config.Config) *Cache {
	return &Cache{dir: cfg.Icons.CacheDir}
}

// RenderCount reports how many times the rasterizer actually ran. Cache hits
// do not increment it.
func (c *Cache) RenderCount() int64 {
	return atomic.LoadInt64(&c.renders)
}

// Materialize guarantees the candidate is renderable: vectors come back as a
// cached raster candidate, everything else is returned unchanged. Repeated
// calls with the same source bytes and size reuse the cached file without
// re-rendering.
func (c *Cache) Materialize(cand Candidate, targetSize int) (Candidate, error) {
	if cand.Kind != KindVector {
		return cand, nil
	}

	data, err := os.ReadFile(cand.Path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to read icon source %s: %w", cand.Path, err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return Candidate{}, fmt.Errorf("failed to create icon cache directory: %w", err)
	}

	dest := filepath.Join(c.dir, cacheFileName(cand.Path, data, targetSize))
	if _, err := os.Stat(dest); err == nil {
		return Candidate{Kind: KindRaster, Path: dest, Size: targetSize}, nil
	}

	img, err := c.rasterize(data, targetSize)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to rasterize %s: %w", cand.Path, err)
	}

	if err := writePNGAtomic(c.dir, dest, img); err != nil {
		return Candidate{}, fmt.Errorf("failed to write cached icon: %w", err)
	}

	return Candidate{Kind: KindRaster, Path: dest, Size: targetSize}, nil
}

// cacheFileName builds the content-addressed name <stem>-<hex digest>.png.
// The digest covers the source bytes and the target size, so resizing the
// same SVG yields a distinct cache key.
func cacheFileName(srcPath string, data []byte, targetSize int) string {
	h := sha256.New224()
	h.Write(data)
	fmt.Fprintf(h, ":%d", targetSize)

	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s-%x.png", stem, h.Sum(nil))
}

// rasterize renders SVG data into a square pixmap using width-fit scaling.
func (c *Cache) rasterize(data []byte, targetSize int) (image.Image, error) {
	svg, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	width := svg.ViewBox.W
	height := svg.ViewBox.H
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svg has no usable view box")
	}

	scale := float64(targetSize) / width
	svg.SetTarget(0, 0, float64(targetSize), height*scale)

	img := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	scanner := rasterx.NewScannerGV(targetSize, targetSize, img, img.Bounds())
	svg.Draw(rasterx.NewDasher(targetSize, targetSize, scanner), 1.0)

	atomic.AddInt64(&c.renders, 1)
	return img, nil
}

func writePNGAtomic(dir, dest string, img image.Image) error {
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
