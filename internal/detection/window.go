package detection

import (
	"github.com/ironsheep/hog-detector-mcp/internal/hog"
)

// Default scan margins, in feature-map positions. Positions closer to the border are
// never reported.
const (
	DefaultMarginRows = 4
	DefaultMarginCols = 1
)

// Window maps feature-map positions to pixel boxes.
//
// A template of R×C blocks spans R+BlockSize-1 by C+BlockSize-1 cells, so the
// default 15×7 template covers a 16×8-cell window, 128×64 pixels with 8-pixel cells.
// The template is anchored at its centre block (R/2, C/2), which places the window's
// top-left cell that many positions above and left of the scored position.
type Window struct {
	CellSize   int
	Rows       int // window height in cells
	Cols       int // window width in cells
	AnchorRow  int
	AnchorCol  int
	MarginRows int
	MarginCols int
}

// NewWindow derives the window geometry for a template scanned over features
// extracted with cfg, using the default margins.
func NewWindow(cfg hog.Config, t *Template) Window {
	return Window{
		CellSize:   cfg.CellSize,
		Rows:       t.Rows() + cfg.BlockSize - 1,
		Cols:       t.Cols() + cfg.BlockSize - 1,
		AnchorRow:  t.Rows() / 2,
		AnchorCol:  t.Cols() / 2,
		MarginRows: DefaultMarginRows,
		MarginCols: DefaultMarginCols,
	}
}

// ScanRange returns the half-open range of positions scanned on a rows×cols feature
// map. ok is false when the margins leave no position.
func (w Window) ScanRange(rows, cols int) (r0, r1, c0, c1 int, ok bool) {
	r0, r1 = w.MarginRows, rows-w.MarginRows
	c0, c1 = w.MarginCols, cols-w.MarginCols
	return r0, r1, c0, c1, r0 < r1 && c0 < c1
}

// Box maps feature position (i, j) to a detection on an imageRows×imageCols image.
// Each coordinate is clamped into [0, dim-1] of its axis.
func (w Window) Box(i, j, imageRows, imageCols int, score float64) Detection {
	x1 := w.CellSize * (i - w.AnchorRow)
	y1 := w.CellSize * (j - w.AnchorCol)
	x2 := x1 + w.Rows*w.CellSize
	y2 := y1 + w.Cols*w.CellSize

	return Detection{
		X1:    float64(clamp(x1, 0, imageRows-1)),
		Y1:    float64(clamp(y1, 0, imageCols-1)),
		X2:    float64(clamp(x2, 0, imageRows-1)),
		Y2:    float64(clamp(y2, 0, imageCols-1)),
		Score: score,
	}
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
