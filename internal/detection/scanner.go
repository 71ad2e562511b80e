package detection

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/hog-detector-mcp/internal/hog"
	"github.com/ironsheep/hog-detector-mcp/internal/imaging"
)

// ScoreMap correlates t with every position of features and sums over channels:
//
//	score(i, j) = Σ_u Σ_v Σ_ch F(i+u-ar, j+v-ac, ch) · T(u, v, ch)
//
// where (ar, ac) = (t.Rows()/2, t.Cols()/2) is the template anchor. Feature positions
// outside the map contribute zero. The result has the feature map's rows and columns.
//
// Returns an ErrShape error when the channel counts differ.
func ScoreMap(features *hog.FeatureMap, t *Template) (*mat.Dense, error) {
	if features.Channels != t.Channels() {
		return nil, errors.Wrapf(hog.ErrShape, "template has %d channels, features have %d",
			t.Channels(), features.Channels)
	}

	ar, ac := t.Rows()/2, t.Cols()/2
	scores := mat.NewDense(features.Rows, features.Cols, nil)
	for i := 0; i < features.Rows; i++ {
		for j := 0; j < features.Cols; j++ {
			var sum float64
			for u := 0; u < t.Rows(); u++ {
				fr := i + u - ar
				if fr < 0 || fr >= features.Rows {
					continue
				}
				for v := 0; v < t.Cols(); v++ {
					fc := j + v - ac
					if fc < 0 || fc >= features.Cols {
						continue
					}
					sum += floats.Dot(features.Vector(fr, fc), t.vector(u, v))
				}
			}
			scores.Set(i, j, sum)
		}
	}
	return scores, nil
}

// Option configures a Detector.
type Option func(*Detector)

// WithResizer sets the primitive used to build the scale pyramid.
func WithResizer(r imaging.Resizer) Option {
	return func(d *Detector) { d.resizer = r }
}

// WithLogger sets the logger. Detectors log nothing by default.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// WithMargins overrides the number of border positions skipped while scanning.
func WithMargins(rows, cols int) Option {
	return func(d *Detector) { d.marginRows, d.marginCols = rows, cols }
}

// WithWorkers limits how many pyramid levels are scanned at once.
func WithWorkers(n int) Option {
	return func(d *Detector) { d.workers = n }
}

// WithTemplate sets the initial template.
func WithTemplate(t *Template) Option {
	return func(d *Detector) { d.template = t }
}

// Detector scans a linear template over HOG features at one or more image scales.
//
// Detection calls only read the detector's state, so one Detector may serve
// concurrent Detect and MultiscaleDetect calls. Train and SetTemplate replace the
// template and are safe to call concurrently with detection; a call in flight keeps
// the template it started with.
type Detector struct {
	extractor  *hog.Extractor
	resizer    imaging.Resizer
	logger     *zap.Logger
	marginRows int
	marginCols int
	workers    int

	mu       sync.RWMutex
	template *Template
}

// NewDetector builds a detector over ext. Without options it resizes with
// imaging.NewLinearResizer, uses the default margins and scans up to GOMAXPROCS
// levels at once.
func NewDetector(ext *hog.Extractor, opts ...Option) *Detector {
	d := &Detector{
		extractor:  ext,
		resizer:    imaging.NewLinearResizer(),
		logger:     zap.NewNop(),
		marginRows: DefaultMarginRows,
		marginCols: DefaultMarginCols,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = 1
	}
	return d
}

// Extractor returns the feature extractor the detector scans with.
func (d *Detector) Extractor() *hog.Extractor {
	return d.extractor
}

// SetTemplate replaces the template.
func (d *Detector) SetTemplate(t *Template) {
	d.mu.Lock()
	d.template = t
	d.mu.Unlock()
}

// Template returns the current template, or nil if none has been set.
func (d *Detector) Template() *Template {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.template
}

// Train fits a model with trainer and installs the rows×cols template derived from
// it. The channel count comes from the extractor's configuration, so samples must be
// flattened windows of features from the same extractor.
func (d *Detector) Train(trainer Trainer, samples *mat.Dense, labels []float64, rows, cols int) error {
	model, err := trainer.Train(samples, labels)
	if err != nil {
		return errors.Wrap(err, "training failed")
	}
	t, err := TemplateFromModel(model, rows, cols, d.extractor.Config().Channels())
	if err != nil {
		return err
	}
	d.SetTemplate(t)
	return nil
}

// Window returns the pixel geometry of the current template.
func (d *Detector) Window() (Window, error) {
	t := d.Template()
	if t == nil {
		return Window{}, errors.Wrap(hog.ErrShape, "detector has no template")
	}
	return d.window(t), nil
}

func (d *Detector) window(t *Template) Window {
	w := NewWindow(d.extractor.Config(), t)
	w.MarginRows, w.MarginCols = d.marginRows, d.marginCols
	return w
}

// Detect runs the template over im at its native scale.
//
// Parameters:
//   - im: Grayscale image, indexed (row, column).
//   - threshold: Positions scoring strictly above it are reported.
//
// Returns:
//   - []Detection: One box per surviving position, clamped to the image, in scan
//     order. Empty when nothing passes.
//   - error: ErrShape without a template or on a channel mismatch, ErrInput when the
//     image is empty or too small to leave a position inside the scan margins.
func (d *Detector) Detect(im *mat.Dense, threshold float64) ([]Detection, error) {
	t := d.Template()
	if t == nil {
		return nil, errors.Wrap(hog.ErrShape, "detector has no template")
	}
	return d.detect(im, t, threshold)
}

func (d *Detector) detect(im *mat.Dense, t *Template, threshold float64) ([]Detection, error) {
	features, err := d.extractor.ExtractHOG(im)
	if err != nil {
		return nil, err
	}

	w := d.window(t)
	r0, r1, c0, c1, ok := w.ScanRange(features.Rows, features.Cols)
	if !ok {
		rows, cols := im.Dims()
		return nil, errors.Wrapf(hog.ErrInput, "image %dx%d gives a %s feature map with no position inside the %dx%d margins",
			rows, cols, features, w.MarginRows, w.MarginCols)
	}

	scores, err := ScoreMap(features, t)
	if err != nil {
		return nil, err
	}

	rows, cols := im.Dims()
	detections := make([]Detection, 0)
	for i := r0; i < r1; i++ {
		for j := c0; j < c1; j++ {
			if s := scores.At(i, j); s > threshold {
				detections = append(detections, w.Box(i, j, rows, cols, s))
			}
		}
	}
	return detections, nil
}

// MultiscaleDetect resizes im by every factor in scales, runs Detect on each level
// with the matching threshold and maps the boxes back onto im by dividing by the
// factor. Scores are left as computed.
//
// Levels are scanned concurrently; the result lists them in the order of scales.
// Overlapping boxes from different scales are all kept.
//
// Returns an ErrConfig error when the two lists differ in length and an ErrInput error
// for a non-positive factor, both before any resizing. Levels are not skipped: a
// factor that shrinks the image below one scan position fails the whole call with
// ErrInput instead of contributing no boxes, as does any other per-level error.
func (d *Detector) MultiscaleDetect(im *mat.Dense, scales, thresholds []float64) ([]Detection, error) {
	if len(scales) != len(thresholds) {
		return nil, errors.Wrapf(hog.ErrConfig, "%d scales but %d thresholds", len(scales), len(thresholds))
	}
	if err := checkScales(scales); err != nil {
		return nil, err
	}
	t := d.Template()
	if t == nil {
		return nil, errors.Wrap(hog.ErrShape, "detector has no template")
	}

	pyramid, err := BuildPyramid(im, scales, d.resizer)
	if err != nil {
		return nil, err
	}

	perScale := make([][]Detection, len(scales))
	var g errgroup.Group
	g.SetLimit(d.workers)
	for k := range pyramid {
		k := k
		g.Go(func() error {
			found, err := d.detect(pyramid[k], t, thresholds[k])
			if err != nil {
				return errors.Wrapf(err, "scale %g", scales[k])
			}
			for i := range found {
				found[i] = found[i].Unscale(scales[k])
			}
			perScale[k] = found

			rows, cols := pyramid[k].Dims()
			d.logger.Debug("scanned pyramid level",
				zap.Float64("scale", scales[k]),
				zap.Int("rows", rows),
				zap.Int("cols", cols),
				zap.Float64("threshold", thresholds[k]),
				zap.Int("detections", len(found)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, found := range perScale {
		total += len(found)
	}
	detections := make([]Detection, 0, total)
	for _, found := range perScale {
		detections = append(detections, found...)
	}
	return detections, nil
}
