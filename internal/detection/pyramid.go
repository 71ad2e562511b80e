package detection

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
	"github.com/ironsheep/hog-detector-mcp/internal/imaging"
)

// BuildPyramid resizes im once per scale factor. Level k has dimensions
// trunc(rows·scales[k]) × trunc(cols·scales[k]). A factor of exactly 1 reuses im
// without resampling; levels never share storage otherwise.
func BuildPyramid(im *mat.Dense, scales []float64, resizer imaging.Resizer) ([]*mat.Dense, error) {
	if im == nil || im.IsEmpty() {
		return nil, errors.Wrap(hog.ErrInput, "empty image")
	}
	if err := checkScales(scales); err != nil {
		return nil, err
	}

	rows, cols := im.Dims()
	levels := make([]*mat.Dense, len(scales))
	for k, s := range scales {
		if s == 1 {
			levels[k] = im
			continue
		}
		lr := int(float64(rows) * s)
		lc := int(float64(cols) * s)
		if lr < 1 || lc < 1 {
			return nil, errors.Wrapf(hog.ErrInput, "scale %g shrinks %dx%d image to nothing", s, rows, cols)
		}
		level, err := resizer.Resize(im, lr, lc)
		if err != nil {
			return nil, errors.Wrapf(err, "scale %g", s)
		}
		levels[k] = level
	}
	return levels, nil
}

func checkScales(scales []float64) error {
	for k, s := range scales {
		if !(s > 0) || math.IsInf(s, 0) {
			return errors.Wrapf(hog.ErrInput, "scale %d is %g, must be positive and finite", k, s)
		}
	}
	return nil
}
