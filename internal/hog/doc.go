// Package hog extracts Histogram-of-Oriented-Gradients features from grayscale images.
//
// The extractor turns a 2D intensity grid into a dense multi-channel feature map in
// three stages:
//
//  1. Gradient field: horizontal and vertical differences with the [-1, 0, 1] kernel,
//     giving a per-pixel orientation in (-π, π] and a non-negative magnitude.
//  2. Cell histograms: the padded image is tiled into CellSize×CellSize cells and every
//     pixel adds its magnitude to one of Bins orientation bins of its cell.
//  3. Block descriptors: every BlockSize×BlockSize neighbourhood of cells is
//     concatenated row-major and normalised with L1-sqrt.
//
// # Coordinate System
//
// Matrices are indexed (row, column). Row 0 is the top of the image. A positive
// vertical gradient means intensity increases toward the top of the image.
//
// # Boundary Handling
//
// The image is zero-padded on the bottom and right to a whole number of cells. The
// gradient kernel then replicates edge pixels, so the outermost row and column of the
// padded image see a one-sided difference rather than a jump to zero.
//
// # Errors
//
// Every failure wraps one of ErrConfig, ErrShape or ErrInput, so callers can branch
// with errors.Is. There is no partial output: a stage either produces a complete
// structure or an error.
//
// # Thread Safety
//
// An Extractor is immutable after construction and may be shared between goroutines.
// Outputs are freshly allocated on every call.
package hog
