package hog

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// GradientField holds the co-indexed gradient maps of a padded image.
type GradientField struct {
	GradX     *mat.Dense
	GradY     *mat.Dense
	Angle     *mat.Dense
	Magnitude *mat.Dense
}

// ComputeGradients correlates the image with [-1, 0, 1] horizontally and with the
// negated transpose vertically:
//
//	gradX(r, c) = p(r, c+1) - p(r, c-1)
//	gradY(r, c) = p(r-1, c) - p(r+1, c)
//
// Indices outside the image replicate the nearest edge pixel. The angle is
// atan2(gradY, gradX) in (-π, π] and the magnitude is the Euclidean norm.
//
// Returns an ErrInput error for a nil or empty matrix.
func ComputeGradients(padded *mat.Dense) (*GradientField, error) {
	if padded == nil || padded.IsEmpty() {
		return nil, errors.Wrap(ErrInput, "empty image")
	}
	rows, cols := padded.Dims()

	field := &GradientField{
		GradX:     mat.NewDense(rows, cols, nil),
		GradY:     mat.NewDense(rows, cols, nil),
		Angle:     mat.NewDense(rows, cols, nil),
		Magnitude: mat.NewDense(rows, cols, nil),
	}

	for r := 0; r < rows; r++ {
		up := clamp(r-1, 0, rows-1)
		down := clamp(r+1, 0, rows-1)
		for c := 0; c < cols; c++ {
			left := clamp(c-1, 0, cols-1)
			right := clamp(c+1, 0, cols-1)

			gx := padded.At(r, right) - padded.At(r, left)
			gy := padded.At(up, c) - padded.At(down, c)

			field.GradX.Set(r, c, gx)
			field.GradY.Set(r, c, gy)
			field.Angle.Set(r, c, orientation(gy, gx))
			field.Magnitude.Set(r, c, math.Hypot(gx, gy))
		}
	}
	return field, nil
}

// orientation maps atan2 into (-π, π]. math.Atan2 returns -π for a negative-zero y
// with negative x; that direction is reported as π.
func orientation(y, x float64) float64 {
	a := math.Atan2(y, x)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// clamp constrains val to [lo, hi]. Used for replicate-border indexing.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
