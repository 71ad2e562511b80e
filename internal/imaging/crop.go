package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// CropWindow cuts r out of img and resamples it to rows×cols, returning luminance
// the way ToGray does. It turns an arbitrary labelled region into a detection-window
// sized sample. A region already rows×cols is copied without resampling.
func CropWindow(img image.Image, r image.Rectangle, rows, cols int) (*mat.Dense, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", rows, cols)
	}

	cropped := imaging.Crop(img, r)
	if cropped.Bounds().Dx() != cols || cropped.Bounds().Dy() != rows {
		cropped = imaging.Resize(cropped, cols, rows, imaging.Linear)
	}
	return ToGray(cropped)
}
