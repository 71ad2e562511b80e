package detection

import (
	"github.com/pkg/errors"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
)

// Template is a dense correlation filter shaped like a patch of the block descriptor
// map: Rows × Cols positions of Channels weights each. It is read-only once built and
// may be shared between concurrent detections.
type Template struct {
	weights *hog.FeatureMap
}

// NewTemplate reshapes a flat weight vector into a rows×cols×channels filter. The
// vector is read in the feature map's layout: row-major positions, channel fastest.
//
// Returns an ErrShape error when a dimension is not positive or when
// rows·cols·channels differs from len(weights). The weights are copied.
func NewTemplate(weights []float64, rows, cols, channels int) (*Template, error) {
	if rows <= 0 || cols <= 0 || channels <= 0 {
		return nil, errors.Wrapf(hog.ErrShape, "invalid template shape %dx%dx%d", rows, cols, channels)
	}
	if rows*cols*channels != len(weights) {
		return nil, errors.Wrapf(hog.ErrShape, "cannot reshape %d weights into %dx%dx%d",
			len(weights), rows, cols, channels)
	}

	f := hog.NewFeatureMap(rows, cols, channels)
	copy(f.Data, weights)
	return &Template{weights: f}, nil
}

// TemplateFromModel derives the weight vector from a trained model and reshapes it.
func TemplateFromModel(m SupportVectorModel, rows, cols, channels int) (*Template, error) {
	w, err := WeightsFromModel(m)
	if err != nil {
		return nil, err
	}
	return NewTemplate(w, rows, cols, channels)
}

// Rows is the template height in blocks.
func (t *Template) Rows() int { return t.weights.Rows }

// Cols is the template width in blocks.
func (t *Template) Cols() int { return t.weights.Cols }

// Channels is the per-position weight vector length.
func (t *Template) Channels() int { return t.weights.Channels }

// At returns the weight of channel ch at (r, c).
func (t *Template) At(r, c, ch int) float64 { return t.weights.At(r, c, ch) }

// Flatten returns a copy of the weights in the order NewTemplate read them.
func (t *Template) Flatten() []float64 { return t.weights.Flatten() }

// vector returns the weights at (r, c) without copying.
func (t *Template) vector(r, c int) []float64 { return t.weights.Vector(r, c) }
