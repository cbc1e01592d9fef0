package icon

import "path/filepath"

// Kind classifies an icon asset by what is needed to render it.
type Kind int

const (
	KindRaster Kind = iota
	KindVector
	KindModel3D
)

func (k Kind) String() string {
	switch k {
	case KindRaster:
		return "raster"
	case KindVector:
		return "vector"
	case KindModel3D:
		return "model3d"
	default:
		return "unknown"
	}
}

// Candidate is one discovered icon asset. Size is the declared pixel size;
// vector and 3D assets report 0.
type Candidate struct {
	Kind Kind
	Path string
	Size int
}

// kindFromPath types a file by extension. The second return is false for
// extensions this launcher cannot render.
func kindFromPath(path string) (Kind, bool) {
	switch filepath.Ext(path) {
	case ".png":
		return KindRaster, true
	case ".svg":
		return KindVector, true
	case ".glb", ".gltf":
		return KindModel3D, true
	default:
		return 0, false
	}
}

// Select picks the winning candidate: with prefer3D the first 3D model wins
// outright, otherwise the largest declared size. Ties keep scan order. The
// second return is false when candidates is empty.
func Select(candidates []Candidate, prefer3D bool) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	if prefer3D {
		for _, c := range candidates {
			if c.Kind == KindModel3D {
				return c, true
			}
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Size > best.Size {
			best = c
		}
	}
	return best, true
}
