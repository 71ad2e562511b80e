package hog

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FeatureMap is a dense rows×cols grid of fixed-length vectors, stored row-major with
// the channel index varying fastest. It backs cell histograms, block descriptors and
// detection templates alike.
type FeatureMap struct {
	Rows     int
	Cols     int
	Channels int
	Data     []float64
}

// NewFeatureMap allocates a zeroed feature map.
func NewFeatureMap(rows, cols, channels int) *FeatureMap {
	return &FeatureMap{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Data:     make([]float64, rows*cols*channels),
	}
}

func (f *FeatureMap) index(r, c, ch int) int {
	return (r*f.Cols+c)*f.Channels + ch
}

// At returns the value of channel ch at (r, c).
func (f *FeatureMap) At(r, c, ch int) float64 {
	return f.Data[f.index(r, c, ch)]
}

// Set stores v in channel ch at (r, c).
func (f *FeatureMap) Set(r, c, ch int, v float64) {
	f.Data[f.index(r, c, ch)] = v
}

// Add accumulates v into channel ch at (r, c).
func (f *FeatureMap) Add(r, c, ch int, v float64) {
	f.Data[f.index(r, c, ch)] += v
}

// Vector returns the channel vector at (r, c). The slice aliases the map's storage.
func (f *FeatureMap) Vector(r, c int) []float64 {
	i := f.index(r, c, 0)
	return f.Data[i : i+f.Channels : i+f.Channels]
}

// Channel copies one channel out as a rows×cols matrix.
func (f *FeatureMap) Channel(ch int) *mat.Dense {
	out := mat.NewDense(f.Rows, f.Cols, nil)
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			out.Set(r, c, f.At(r, c, ch))
		}
	}
	return out
}

// Flatten returns a copy of the underlying row-major data.
func (f *FeatureMap) Flatten() []float64 {
	out := make([]float64, len(f.Data))
	copy(out, f.Data)
	return out
}

func (f *FeatureMap) String() string {
	return fmt.Sprintf("%dx%dx%d", f.Rows, f.Cols, f.Channels)
}
