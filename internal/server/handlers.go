package server

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/hog-detector-mcp/internal/detection"
	"github.com/ironsheep/hog-detector-mcp/internal/hog"
	"github.com/ironsheep/hog-detector-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "hog_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	case "hog_extract":
		return s.handleHOGExtract(args)
	case "hog_template_info":
		return s.handleTemplateInfo(args)
	case "hog_template_save":
		return s.handleTemplateSave(args)
	case "hog_detect":
		return s.handleDetect(args)
	case "hog_detect_multiscale":
		return s.handleDetectMultiscale(args)
	case "hog_window_features":
		return s.handleWindowFeatures(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

type imageLoadArgs struct {
	Path string `json:"path"`
	// Reload drops the cached image so a rewritten file is read again.
	Reload bool `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === HOG Handlers ===

// ExtractResult summarises the feature map of one image.
type ExtractResult struct {
	Config        hog.Config `json:"config"`
	ImageRows     int        `json:"image_rows"`
	ImageCols     int        `json:"image_cols"`
	PaddedRows    int        `json:"padded_rows"`
	PaddedCols    int        `json:"padded_cols"`
	FeatureRows   int        `json:"feature_rows"`
	FeatureCols   int        `json:"feature_cols"`
	Channels      int        `json:"channels"`
	NonZeroBlocks int        `json:"non_zero_blocks"`
}

func (s *Server) handleHOGExtract(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	im, err := s.cache.LoadGray(a.Path)
	if err != nil {
		return nil, err
	}
	features, err := s.extractor.ExtractHOG(im)
	if err != nil {
		return nil, err
	}

	cfg := s.extractor.Config()
	rows, cols := im.Dims()
	pr, pc := hog.Pad(im, cfg.CellSize).Dims()

	var nonZero int
	for r := 0; r < features.Rows; r++ {
		for c := 0; c < features.Cols; c++ {
			if floats.Max(features.Vector(r, c)) > 0 {
				nonZero++
			}
		}
	}

	return &ExtractResult{
		Config:        cfg,
		ImageRows:     rows,
		ImageCols:     cols,
		PaddedRows:    pr,
		PaddedCols:    pc,
		FeatureRows:   features.Rows,
		FeatureCols:   features.Cols,
		Channels:      features.Channels,
		NonZeroBlocks: nonZero,
	}, nil
}

type templateArgs struct {
	TemplatePath string `json:"template_path"`
	// Reload drops the cached copy and rereads the file.
	Reload bool `json:"reload"`
}

// TemplateInfo describes a stored template and the window it scans.
type TemplateInfo struct {
	Rows         int     `json:"rows"`
	Cols         int     `json:"cols"`
	Channels     int     `json:"channels"`
	WindowHeight int     `json:"window_height"`
	WindowWidth  int     `json:"window_width"`
	MinWeight    float64 `json:"min_weight"`
	MaxWeight    float64 `json:"max_weight"`
	// Compatible is false when the channel count differs from the server's extractor.
	Compatible bool `json:"compatible"`
}

func (s *Server) handleTemplateInfo(args json.RawMessage) (interface{}, error) {
	var a templateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.templates.Evict(a.TemplatePath)
	}
	t, err := s.templates.Load(a.TemplatePath)
	if err != nil {
		return nil, err
	}
	return s.templateInfo(t), nil
}

func (s *Server) templateInfo(t *detection.Template) *TemplateInfo {
	cfg := s.extractor.Config()
	w := detection.NewWindow(cfg, t)
	weights := t.Flatten()
	return &TemplateInfo{
		Rows:         t.Rows(),
		Cols:         t.Cols(),
		Channels:     t.Channels(),
		WindowHeight: w.Rows * w.CellSize,
		WindowWidth:  w.Cols * w.CellSize,
		MinWeight:    floats.Min(weights),
		MaxWeight:    floats.Max(weights),
		Compatible:   t.Channels() == cfg.Channels(),
	}
}

type templateSaveArgs struct {
	TemplatePath string `json:"template_path"`
	OutputPath   string `json:"output_path"`
}

// TemplateSaveResult describes a template written in dense form.
type TemplateSaveResult struct {
	OutputPath string `json:"output_path"`
	TemplateInfo
}

// handleTemplateSave rereads template_path, which may hold a model, and writes its
// dense weights to output_path. The output's cache entry is dropped so later calls
// see the new file.
func (s *Server) handleTemplateSave(args json.RawMessage) (interface{}, error) {
	var a templateSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}

	s.templates.Evict(a.TemplatePath)
	t, err := s.templates.Load(a.TemplatePath)
	if err != nil {
		return nil, err
	}
	if err := detection.SaveTemplateFile(a.OutputPath, t); err != nil {
		return nil, err
	}
	s.templates.Evict(a.OutputPath)
	s.logger.Info("saved template", zap.String("from", a.TemplatePath), zap.String("to", a.OutputPath))

	return &TemplateSaveResult{OutputPath: a.OutputPath, TemplateInfo: *s.templateInfo(t)}, nil
}

// DetectResult lists the windows that passed.
type DetectResult struct {
	ImageRows  int                     `json:"image_rows"`
	ImageCols  int                     `json:"image_cols"`
	Count      int                     `json:"count"`
	Detections []detection.Detection   `json:"detections"`
	Annotated  *imaging.AnnotatedImage `json:"annotated,omitempty"`
}

// annotateArgs are the rendering options shared by the detection tools.
type annotateArgs struct {
	Annotate bool   `json:"annotate"`
	BoxColor string `json:"box_color"`
}

type detectArgs struct {
	Path         string   `json:"path"`
	TemplatePath string   `json:"template_path"`
	Threshold    float64  `json:"threshold"`
	MinScore     *float64 `json:"min_score,omitempty"`
	MinArea      *float64 `json:"min_area,omitempty"`
	annotateArgs
}

func (s *Server) handleDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.detector(a.TemplatePath)
	if err != nil {
		return nil, err
	}
	im, err := s.cache.LoadGray(a.Path)
	if err != nil {
		return nil, err
	}

	found, err := d.Detect(im, a.Threshold)
	if err != nil {
		return nil, err
	}
	return s.newDetectResult(a.Path, im, filter(found, a.MinScore, a.MinArea), a.annotateArgs)
}

type detectMultiscaleArgs struct {
	Path         string    `json:"path"`
	TemplatePath string    `json:"template_path"`
	Scales       []float64 `json:"scales"`
	Thresholds   []float64 `json:"thresholds"`
	MinScore     *float64  `json:"min_score,omitempty"`
	MinArea      *float64  `json:"min_area,omitempty"`
	annotateArgs
}

func (s *Server) handleDetectMultiscale(args json.RawMessage) (interface{}, error) {
	var a detectMultiscaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.detector(a.TemplatePath)
	if err != nil {
		return nil, err
	}
	im, err := s.cache.LoadGray(a.Path)
	if err != nil {
		return nil, err
	}

	found, err := d.MultiscaleDetect(im, a.Scales, a.Thresholds)
	if err != nil {
		return nil, err
	}
	return s.newDetectResult(a.Path, im, filter(found, a.MinScore, a.MinArea), a.annotateArgs)
}

func (s *Server) detector(templatePath string) (*detection.Detector, error) {
	t, err := s.templates.Load(templatePath)
	if err != nil {
		return nil, err
	}
	return detection.NewDetector(s.extractor,
		detection.WithTemplate(t),
		detection.WithResizer(s.resizer),
		detection.WithWorkers(s.workers),
		detection.WithLogger(s.logger.Named("detector")),
	), nil
}

func filter(found []detection.Detection, minScore, minArea *float64) []detection.Detection {
	if minScore != nil {
		found = detection.NewScoreFilter(*minScore)(found)
	}
	if minArea != nil {
		found = detection.NewAreaFilter(*minArea)(found)
	}
	return found
}

func (s *Server) newDetectResult(path string, im *mat.Dense, found []detection.Detection, opts annotateArgs) (*DetectResult, error) {
	if found == nil {
		found = []detection.Detection{}
	}
	rows, cols := im.Dims()
	res := &DetectResult{
		ImageRows:  rows,
		ImageCols:  cols,
		Count:      len(found),
		Detections: found,
	}
	if !opts.Annotate {
		return res, nil
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	boxes := make([]imaging.Box, len(found))
	for i, d := range found {
		boxes[i] = imaging.Box{Rect: d.Rect(), Label: strconv.FormatFloat(d.Score, 'f', 2, 64)}
	}
	if res.Annotated, err = imaging.Annotate(img, boxes, opts.BoxColor); err != nil {
		return nil, err
	}
	return res, nil
}

type windowFeaturesArgs struct {
	Path         string `json:"path"`
	TemplatePath string `json:"template_path"`
	X1           int    `json:"x1"`
	Y1           int    `json:"y1"`
	X2           int    `json:"x2"`
	Y2           int    `json:"y2"`
}

// WindowFeatures is the descriptor of one region resampled to the template's window.
// Features has the template's layout, so it can serve as a training sample.
type WindowFeatures struct {
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Channels int       `json:"channels"`
	Score    float64   `json:"score"`
	Features []float64 `json:"features"`
}

// handleWindowFeatures takes the region in detection coordinates (x along rows).
func (s *Server) handleWindowFeatures(args json.RawMessage) (interface{}, error) {
	var a windowFeaturesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.templates.Load(a.TemplatePath)
	if err != nil {
		return nil, err
	}
	if t.Channels() != s.extractor.Config().Channels() {
		return nil, errors.Wrapf(hog.ErrShape, "template has %d channels, extractor produces %d",
			t.Channels(), s.extractor.Config().Channels())
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	w := detection.NewWindow(s.extractor.Config(), t)
	region := detection.Detection{X1: float64(a.X1), Y1: float64(a.Y1), X2: float64(a.X2), Y2: float64(a.Y2)}.Rect()
	sample, err := imaging.CropWindow(img, region, w.Rows*w.CellSize, w.Cols*w.CellSize)
	if err != nil {
		return nil, err
	}
	features, err := s.extractor.ExtractHOG(sample)
	if err != nil {
		return nil, err
	}

	flat := features.Flatten()
	return &WindowFeatures{
		Rows:     features.Rows,
		Cols:     features.Cols,
		Channels: features.Channels,
		Score:    floats.Dot(flat, t.Flatten()),
		Features: flat,
	}, nil
}
