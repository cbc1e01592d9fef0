package icon

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/stardust-xr/protostar/internal/config"
	"github.com/stardust-xr/protostar/internal/entry"
)

// sizeBuckets is the fixed set of theme subdirectories searched, in scan
// order. The scalable bucket holds vectors, which declare size 0.
var sizeBuckets = []struct {
	name string
	size int
}{
	{"64x64", 64},
	{"32x32", 32},
	{"scalable", 0},
	{"128x128", 128},
}

// Resolver finds candidate icon assets for desktop entries across the
// configured data directories and icon theme.
type Resolver struct {
	dataDirs []string
	theme    string
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		dataDirs: cfg.Data.DataDirs,
		theme:    cfg.Data.IconTheme,
	}
}

// Resolve returns every candidate asset for the entry's icon name, in
// deterministic scan order. An entry without an icon name resolves to nil;
// so does an icon that cannot be found. Neither is an error — callers fall
// back to a default icon.
func (r *Resolver) Resolve(e entry.Entry, preferredSize int) []Candidate {
	if e.Icon == "" {
		return nil
	}

	// An icon name that resolves as a path relative to the entry's own
	// directory is the sole candidate.
	relPath := filepath.Join(filepath.Dir(e.Path), e.Icon)
	if info, err := os.Stat(relPath); err == nil && info.Mode().IsRegular() {
		if kind, ok := kindFromPath(relPath); ok {
			size := 0
			if kind == KindRaster {
				size = preferredSize
			}
			return []Candidate{{Kind: kind, Path: relPath, Size: size}}
		}
	}

	var candidates []Candidate
	for _, dataDir := range r.dataDirs {
		for _, bucket := range sizeBuckets {
			dir := filepath.Join(dataDir, "icons", r.theme, bucket.name, "apps")
			candidates = append(candidates, scanBucket(dir, e.Icon, bucket.size)...)
		}
	}
	return candidates
}

// scanBucket collects regular files in dir whose stem equals the icon name,
// typed by extension. Unrecognized extensions are dropped.
func scanBucket(dir, iconName string, size int) []Candidate {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []Candidate
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) != iconName {
			continue
		}
		path := filepath.Join(dir, name)
		kind, ok := kindFromPath(path)
		if !ok {
			continue
		}
		declared := size
		if kind != KindRaster {
			declared = 0
		}
		out = append(out, Candidate{Kind: kind, Path: path, Size: declared})
	}
	return out
}
