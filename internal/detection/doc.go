// Package detection slides a linear template over HOG feature maps to find objects.
//
// A Template is the dense form of a trained linear SVM: the support vectors are
// collapsed into one weight vector and reshaped to the geometry of a patch of block
// descriptors. A Detector extracts features from an image, correlates the template
// with every feature position, and reports the positions scoring above a threshold as
// pixel boxes.
//
// # Pipeline
//
//  1. Feature extraction: hog.Extractor turns the image into block descriptors.
//  2. Scoring: ScoreMap sums the per-channel correlation of template and features.
//  3. Thresholding: positions inside the scan margins scoring above the threshold
//     survive.
//  4. Box mapping: Window converts each position into a clamped pixel box.
//
// MultiscaleDetect repeats the pipeline on a resized copy of the image per scale and
// divides the boxes by the scale, so one fixed-size template finds objects of
// different sizes. Overlapping boxes are not merged; chain a Postprocessor or a
// non-maximum suppression step over the result if needed.
//
// # Coordinate System
//
// Detection tuples are (x1, y1, x2, y2, score) with X along image rows and Y along
// columns, in pixels of the original image. Detection.Rect converts to the usual
// image.Rectangle convention.
//
// # Concurrency
//
// Templates are immutable. A Detector may be shared between goroutines; pyramid
// levels are scanned in parallel up to the configured worker limit. Result order
// within a call is deterministic but carries no meaning.
package detection
