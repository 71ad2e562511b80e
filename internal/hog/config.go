package hog

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Default HOG parameters.
const (
	DefaultBins      = 9
	DefaultCellSize  = 8
	DefaultBlockSize = 2
)

// Config holds the HOG parameters. They are fixed when an Extractor is built and must
// match between training-time and detection-time extraction.
type Config struct {
	// Bins is the number of orientation bins covering (-π, π].
	Bins int `json:"bins"`

	// CellSize is the side of a square cell in pixels.
	CellSize int `json:"cell_size"`

	// BlockSize is the side of a square block in cells.
	BlockSize int `json:"block_size"`
}

// DefaultConfig returns 9 bins, 8-pixel cells and 2×2-cell blocks.
func DefaultConfig() Config {
	return Config{
		Bins:      DefaultBins,
		CellSize:  DefaultCellSize,
		BlockSize: DefaultBlockSize,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.Bins <= 0 {
		err = multierr.Append(err, errors.Errorf("bins must be positive, got %d", c.Bins))
	}
	if c.CellSize <= 0 {
		err = multierr.Append(err, errors.Errorf("cell size must be positive, got %d", c.CellSize))
	}
	if c.BlockSize <= 0 {
		err = multierr.Append(err, errors.Errorf("block size must be positive, got %d", c.BlockSize))
	}
	if err != nil {
		return errors.Wrapf(ErrConfig, "%v", err)
	}
	return nil
}

// Channels is the depth of one block descriptor: BlockSize²·Bins.
func (c Config) Channels() int {
	return c.BlockSize * c.BlockSize * c.Bins
}

// BinInterval is the angular width of one orientation bin.
func (c Config) BinInterval() float64 {
	return 2 * math.Pi / float64(c.Bins)
}
