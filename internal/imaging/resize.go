package imaging

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/mat"
)

// Resizer resamples a grayscale matrix to arbitrary target dimensions. It is the
// resize primitive the scale pyramid is built with.
type Resizer interface {
	Resize(m *mat.Dense, rows, cols int) (*mat.Dense, error)
}

// ImagingResizer resamples through disintegration/imaging with the given filter.
// Intensities are quantised to 8 bits on the way through.
type ImagingResizer struct {
	Filter imaging.ResampleFilter
}

// NewLinearResizer returns the default pyramid resizer: bilinear interpolation via
// disintegration/imaging.
func NewLinearResizer() ImagingResizer {
	return ImagingResizer{Filter: imaging.Linear}
}

// Resize implements Resizer.
func (r ImagingResizer) Resize(m *mat.Dense, rows, cols int) (*mat.Dense, error) {
	if err := checkTarget(m, rows, cols); err != nil {
		return nil, err
	}
	resized := imaging.Resize(ToImage(m), cols, rows, r.Filter)
	return ToGray(resized)
}

// NfntResizer resamples through nfnt/resize with the given interpolation function.
type NfntResizer struct {
	Interp resize.InterpolationFunction
}

// NewBilinearResizer returns an nfnt/resize backed bilinear resizer.
func NewBilinearResizer() NfntResizer {
	return NfntResizer{Interp: resize.Bilinear}
}

// Resize implements Resizer.
func (r NfntResizer) Resize(m *mat.Dense, rows, cols int) (*mat.Dense, error) {
	if err := checkTarget(m, rows, cols); err != nil {
		return nil, err
	}
	resized := resize.Resize(uint(cols), uint(rows), ToImage(m), r.Interp)
	return ToGray(resized)
}

func checkTarget(m *mat.Dense, rows, cols int) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("cannot resize an empty image")
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("invalid target size %dx%d", rows, cols)
	}
	return nil
}
