package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// ToGray converts an image into a matrix of luminance values on a 0-255 scale,
// indexed (row, column) from the image's top-left corner.
//
// *image.Gray sources are copied directly. Other color models are converted with the
// ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B) on straight (non-premultiplied)
// color and rounded to whole intensity levels, so an 8-bit gray image survives a
// round trip through any RGB encoding unchanged. Fully transparent pixels are black.
//
// Returns an error if the image has no pixels.
func ToGray(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", width, height)
	}

	out := mat.NewDense(height, width, nil)

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(y, x, float64(g.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y))
			}
		}
		return out, nil
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Set(y, x, luma(img.At(x+bounds.Min.X, y+bounds.Min.Y)))
		}
	}
	return out, nil
}

func luma(c color.Color) float64 {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	return math.Round(255 * (0.299*col.R + 0.587*col.G + 0.114*col.B))
}

// ToImage renders a matrix as an 8-bit grayscale image. Values are rounded and
// clamped to [0, 255].
func ToImage(m *mat.Dense) *image.Gray {
	rows, cols := m.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := math.Round(m.At(y, x))
			img.SetGray(x, y, color.Gray{Y: uint8(clampF(v, 0, 255))})
		}
	}
	return img
}

func clampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
