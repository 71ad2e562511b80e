package hog

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Epsilon guards block normalisation against all-zero blocks. It is the float32
// machine epsilon.
const Epsilon = 1.1920929e-07

// Extractor computes block descriptors with a fixed Config.
type Extractor struct {
	cfg Config
}

// NewExtractor validates cfg and returns an extractor bound to it.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

// Config returns the parameters the extractor was built with.
func (e *Extractor) Config() Config {
	return e.cfg
}

// ExtractHOG converts a grayscale image into its block descriptor map.
//
// Parameters:
//   - im: Intensity grid, indexed (row, column). It is not modified.
//
// Returns:
//   - *FeatureMap: (cellRows-BlockSize+1) × (cellCols-BlockSize+1) blocks, each with
//     BlockSize²·Bins channels. For the default configuration that is
//     (cellRows-1) × (cellCols-1) × 36.
//   - error: ErrInput if the image is empty or pads to fewer than BlockSize cells in
//     either dimension.
func (e *Extractor) ExtractHOG(im *mat.Dense) (*FeatureMap, error) {
	if im == nil || im.IsEmpty() {
		return nil, errors.Wrap(ErrInput, "empty image")
	}

	padded := Pad(im, e.cfg.CellSize)
	rows, cols := padded.Dims()
	cellRows, cellCols := rows/e.cfg.CellSize, cols/e.cfg.CellSize
	if cellRows < e.cfg.BlockSize || cellCols < e.cfg.BlockSize {
		r, c := im.Dims()
		return nil, errors.Wrapf(ErrInput, "image %dx%d yields %dx%d cells, need at least %d in each dimension",
			r, c, cellRows, cellCols, e.cfg.BlockSize)
	}

	field, err := ComputeGradients(padded)
	if err != nil {
		return nil, err
	}
	cells := CellHistograms(field, e.cfg.CellSize, e.cfg.Bins)
	return BlockDescriptors(cells, e.cfg.BlockSize), nil
}

// Pad returns a copy of im extended on the bottom and right with zeros so that both
// dimensions are the smallest multiples of cellSize not below the originals.
func Pad(im *mat.Dense, cellSize int) *mat.Dense {
	rows, cols := im.Dims()
	out := mat.NewDense(rows+padding(rows, cellSize), cols+padding(cols, cellSize), nil)
	out.Slice(0, rows, 0, cols).(*mat.Dense).Copy(im)
	return out
}

func padding(dim, cellSize int) int {
	return (cellSize - dim%cellSize) % cellSize
}

// BinIndex maps an orientation in (-π, π] to a histogram bin:
//
//	ceil(angle/interval + bins/2) mod bins,  interval = 2π/bins
//
// The raw value lies in (0, bins] for angles in range, so an angle of exactly π
// gives bins and wraps to 0, the bin holding (π-interval, π]. Every index in
// [0, bins) then covers exactly one interval. Rounding can push the raw value one
// step past either end; it is clamped to [0, bins] before wrapping so it never lands
// in a distant bin.
func BinIndex(angle float64, bins int) int {
	interval := 2 * math.Pi / float64(bins)
	raw := int(math.Ceil(angle/interval + float64(bins)/2))
	if raw > bins {
		raw = bins
	}
	if raw < 0 {
		raw = 0
	}
	return raw % bins
}

// CellHistograms accumulates gradient magnitudes into per-cell orientation
// histograms. The field's dimensions must be multiples of cellSize.
func CellHistograms(field *GradientField, cellSize, bins int) *FeatureMap {
	rows, cols := field.Magnitude.Dims()
	cells := NewFeatureMap(rows/cellSize, cols/cellSize, bins)

	for r := 0; r < cells.Rows*cellSize; r++ {
		for c := 0; c < cells.Cols*cellSize; c++ {
			bin := BinIndex(field.Angle.At(r, c), bins)
			cells.Add(r/cellSize, c/cellSize, bin, field.Magnitude.At(r, c))
		}
	}
	return cells
}

// BlockDescriptors concatenates every blockSize×blockSize neighbourhood of cells and
// normalises it. Cells are taken row-major within the block, so a 2×2 block is laid
// out top-left, top-right, bottom-left, bottom-right, each contributing Bins
// consecutive entries.
func BlockDescriptors(cells *FeatureMap, blockSize int) *FeatureMap {
	bins := cells.Channels
	blocks := NewFeatureMap(cells.Rows-blockSize+1, cells.Cols-blockSize+1, blockSize*blockSize*bins)

	for r := 0; r < blocks.Rows; r++ {
		for c := 0; c < blocks.Cols; c++ {
			v := blocks.Vector(r, c)
			k := 0
			for dr := 0; dr < blockSize; dr++ {
				for dc := 0; dc < blockSize; dc++ {
					copy(v[k*bins:(k+1)*bins], cells.Vector(r+dr, c+dc))
					k++
				}
			}
			normalizeL1Sqrt(v)
		}
	}
	return blocks
}

// normalizeL1Sqrt applies v <- sqrt(v / (|v|_1 + Epsilon)) in place. Entries are
// non-negative histogram mass, so the square root is always defined.
func normalizeL1Sqrt(v []float64) {
	norm := floats.Norm(v, 1) + Epsilon
	for i := range v {
		v[i] = math.Sqrt(v[i] / norm)
	}
}
