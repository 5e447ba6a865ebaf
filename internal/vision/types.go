package vision

import (
	"image"

	"github.com/lkarlslund/templatecam/internal/match"
	"gocv.io/x/gocv"
)

// Features are the keypoints of one image and their parallel descriptor rows.
type Features struct {
	Keypoints   []gocv.KeyPoint
	Descriptors gocv.Mat
}

// Empty reports whether there is nothing to match against.
func (f Features) Empty() bool {
	return len(f.Keypoints) == 0 || f.Descriptors.Ptr() == nil || f.Descriptors.Empty()
}

// Close releases the descriptor matrix.
func (f *Features) Close() {
	f.Descriptors.Close()
	f.Keypoints = nil
}

// Detection is the outcome of one successful localisation. It is only
// meaningful for the frame it was computed from.
type Detection struct {
	Corners    [4]image.Point
	Homography match.Homography
	Matches    int
	Inliers    int
}
