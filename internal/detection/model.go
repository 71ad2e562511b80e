package detection

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
)

// SupportVectorModel is the view of a trained linear SVM the template builder needs.
// The trainer that produces it lives outside this module.
type SupportVectorModel interface {
	// VarCount is the feature vector length, var_all.
	VarCount() int
	// SupportVectorCount is the number of support vectors.
	SupportVectorCount() int
	// SupportVector returns the i-th support vector, VarCount values long.
	SupportVector(i int) []float64
	// Alpha returns the decision-function coefficient of the i-th support vector.
	Alpha(i int) float64
}

// Trainer fits a linear classifier to one feature vector per row of samples.
type Trainer interface {
	Train(samples *mat.Dense, labels []float64) (SupportVectorModel, error)
}

// LinearModel is a plain SupportVectorModel, used for model files.
type LinearModel struct {
	Vars           int         `json:"var_count"`
	SupportVectors [][]float64 `json:"support_vectors"`
	Alphas         []float64   `json:"alphas"`
}

// VarCount implements SupportVectorModel.
func (m *LinearModel) VarCount() int { return m.Vars }

// SupportVectorCount implements SupportVectorModel.
func (m *LinearModel) SupportVectorCount() int { return len(m.SupportVectors) }

// SupportVector implements SupportVectorModel.
func (m *LinearModel) SupportVector(i int) []float64 { return m.SupportVectors[i] }

// Alpha implements SupportVectorModel.
func (m *LinearModel) Alpha(i int) float64 { return m.Alphas[i] }

// Validate checks that there is one alpha per support vector.
func (m *LinearModel) Validate() error {
	if len(m.Alphas) != len(m.SupportVectors) {
		return errors.Wrapf(hog.ErrShape, "%d support vectors but %d alphas", len(m.SupportVectors), len(m.Alphas))
	}
	return nil
}

// WeightsFromModel collapses the support vectors into a single weight vector:
//
//	w = -Σ alpha_i · sv_i
//
// The negation makes a higher correlation score mean a better match.
func WeightsFromModel(m SupportVectorModel) ([]float64, error) {
	n := m.VarCount()
	if n <= 0 {
		return nil, errors.Wrapf(hog.ErrShape, "model has %d variables", n)
	}

	w := make([]float64, n)
	for i := 0; i < m.SupportVectorCount(); i++ {
		sv := m.SupportVector(i)
		if len(sv) != n {
			return nil, errors.Wrapf(hog.ErrShape, "support vector %d has %d values, want %d", i, len(sv), n)
		}
		floats.AddScaled(w, -m.Alpha(i), sv)
	}
	return w, nil
}
