package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lkarlslund/templatecam/internal/vision"
	"gocv.io/x/gocv"
)

type Style struct {
	Color     color.RGBA
	Thickness int
	ShowStats bool
}

// Draw returns a copy of frame with the detected outline drawn on it. frame itself is left untouched.
func Draw(frame gocv.Mat, det vision.Detection, style Style) gocv.Mat {
	out := frame.Clone()

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{det.Corners[:]})
	defer pts.Close()
	gocv.Polylines(&out, pts, true, style.Color, style.Thickness)

	if style.ShowStats {
		label := fmt.Sprintf("%d matches %d inliers", det.Matches, det.Inliers)
		gocv.PutText(&out, label, image.Pt(4, 12), gocv.FontHersheyPlain, 1, style.Color, 1)
	}
	return out
}
