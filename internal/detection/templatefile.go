package detection

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
)

// templateFile is the JSON layout of a stored template. Exactly one of Weights and
// Model is set: either the dense filter, or the trained model it derives from.
type templateFile struct {
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Channels int          `json:"channels"`
	Weights  []float64    `json:"weights,omitempty"`
	Model    *LinearModel `json:"model,omitempty"`
}

// ReadTemplate decodes a template from JSON.
func ReadTemplate(r io.Reader) (*Template, error) {
	var f templateFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to decode template")
	}

	switch {
	case f.Weights != nil && f.Model != nil:
		return nil, errors.Wrap(hog.ErrShape, "template holds both weights and a model")
	case f.Weights != nil:
		return NewTemplate(f.Weights, f.Rows, f.Cols, f.Channels)
	case f.Model != nil:
		if err := f.Model.Validate(); err != nil {
			return nil, err
		}
		return TemplateFromModel(f.Model, f.Rows, f.Cols, f.Channels)
	default:
		return nil, errors.Wrap(hog.ErrShape, "template holds neither weights nor a model")
	}
}

// LoadTemplateFile reads a template from a JSON file.
func LoadTemplateFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open template")
	}
	defer f.Close()

	t, err := ReadTemplate(f)
	if err != nil {
		return nil, errors.Wrapf(err, "template %s", path)
	}
	return t, nil
}

// WriteTemplate encodes the dense form of t as JSON.
func WriteTemplate(w io.Writer, t *Template) error {
	return json.NewEncoder(w).Encode(templateFile{
		Rows:     t.Rows(),
		Cols:     t.Cols(),
		Channels: t.Channels(),
		Weights:  t.Flatten(),
	})
}

// SaveTemplateFile writes the dense form of t to path.
func SaveTemplateFile(path string, t *Template) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create template")
	}
	if err := WriteTemplate(f, t); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write template %s", path)
	}
	return f.Close()
}
