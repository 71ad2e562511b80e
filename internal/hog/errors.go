package hog

import "github.com/pkg/errors"

// Error kinds shared by the feature pipeline and the detector built on top of it.
var (
	// ErrConfig reports invalid bin, cell or block parameters, or mismatched
	// scale/threshold lists.
	ErrConfig = errors.New("invalid configuration")

	// ErrShape reports a reshape whose target size does not match the weight vector,
	// or a filter whose channel count differs from the feature map.
	ErrShape = errors.New("shape mismatch")

	// ErrInput reports an empty or undersized image, or a non-positive scale factor.
	ErrInput = errors.New("invalid input")
)
