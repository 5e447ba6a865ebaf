package vision

import "errors"

var (
	// ErrCameraUnavailable is returned when the frame source cannot be opened or read.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrTemplateNotLoaded is returned when matching is requested without a template.
	ErrTemplateNotLoaded = errors.New("template not loaded")

	// ErrInsufficientMatches means the ratio test left too few correspondences.
	ErrInsufficientMatches = errors.New("insufficient matches")

	// ErrGeometryEstimationFailed means no usable homography could be fitted.
	ErrGeometryEstimationFailed = errors.New("geometry estimation failed")
)
