package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Sink presents the template pane and the live pane. Implementations must copy
// what they keep; the caller reuses and closes the matrices it passes in.
type Sink interface {
	ShowTemplate(img image.Image)
	ShowFrame(frame gocv.Mat) error
}

// ToRGBA converts a BGR (or gray) Mat into a Go image for toolkits that do not speak OpenCV.
func ToRGBA(frame gocv.Mat) (*image.RGBA, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	var code gocv.ColorConversionCode
	switch frame.Channels() {
	case 1:
		code = gocv.ColorGrayToRGBA
	case 3:
		code = gocv.ColorBGRToRGBA
	case 4:
		code = gocv.ColorBGRAToRGBA
	default:
		return nil, fmt.Errorf("unsupported channel count %d", frame.Channels())
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(frame, &rgba, code)

	img := image.NewRGBA(image.Rect(0, 0, rgba.Cols(), rgba.Rows()))
	copy(img.Pix, rgba.ToBytes())
	return img, nil
}
