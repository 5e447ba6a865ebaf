package vision

import (
	"gocv.io/x/gocv"
)

// Extractor computes SIFT keypoints and descriptors.
type Extractor struct {
	sift gocv.SIFT
}

func NewExtractor() *Extractor {
	return &Extractor{sift: gocv.NewSIFT()}
}

// Extract runs detection on img. Colour input is converted to grayscale first.
// An empty image yields empty Features, not an error.
func (e *Extractor) Extract(img gocv.Mat) Features {
	if img.Empty() {
		return Features{Descriptors: gocv.NewMat()}
	}

	gray := img
	if img.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		code := gocv.ColorBGRToGray
		if img.Channels() == 4 {
			code = gocv.ColorBGRAToGray
		}
		gocv.CvtColor(img, &gray, code)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := e.sift.DetectAndCompute(gray, mask)
	return Features{Keypoints: kps, Descriptors: desc}
}

func (e *Extractor) Close() error {
	return e.sift.Close()
}
