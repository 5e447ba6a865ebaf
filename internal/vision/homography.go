package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/lkarlslund/templatecam/internal/match"
	"gocv.io/x/gocv"
)

// Smallest number of point pairs a homography is defined for.
const minHomographyPoints = 4

// Estimator fits a template-to-frame homography with RANSAC.
type Estimator struct {
	ReprojThreshold float64
	MaxIters        int
	Confidence      float64
}

// Estimate returns the homography and its RANSAC inlier count.
func (e Estimator) Estimate(corrs []match.Correspondence, query, train []gocv.KeyPoint) (match.Homography, int, error) {
	if len(corrs) < minHomographyPoints {
		return match.Homography{}, 0, fmt.Errorf("%w: %d correspondences, need %d", ErrGeometryEstimationFailed, len(corrs), minHomographyPoints)
	}

	src := make([]gocv.Point2f, 0, len(corrs))
	dst := make([]gocv.Point2f, 0, len(corrs))
	for _, c := range corrs {
		if c.QueryIdx < 0 || c.QueryIdx >= len(query) || c.TrainIdx < 0 || c.TrainIdx >= len(train) {
			return match.Homography{}, 0, fmt.Errorf("%w: correspondence %d->%d out of range", ErrGeometryEstimationFailed, c.QueryIdx, c.TrainIdx)
		}
		q := query[c.QueryIdx]
		t := train[c.TrainIdx]
		src = append(src, gocv.Point2f{X: float32(q.X), Y: float32(q.Y)})
		dst = append(dst, gocv.Point2f{X: float32(t.X), Y: float32(t.Y)})
	}

	srcVec := gocv.NewPoint2fVectorFromPoints(src)
	defer srcVec.Close()
	dstVec := gocv.NewPoint2fVectorFromPoints(dst)
	defer dstVec.Close()

	srcMat := gocv.NewMatFromPoint2fVector(srcVec, true)
	defer srcMat.Close()
	dstMat := gocv.NewMatFromPoint2fVector(dstVec, true)
	defer dstMat.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	hm := gocv.FindHomography(srcMat, &dstMat, gocv.HomograpyMethodRANSAC, e.ReprojThreshold, &mask, e.MaxIters, e.Confidence)
	defer hm.Close()

	if hm.Empty() || hm.Rows() != 3 || hm.Cols() != 3 {
		return match.Homography{}, 0, fmt.Errorf("%w: no model found", ErrGeometryEstimationFailed)
	}

	var h match.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := hm.GetDoubleAt(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return match.Homography{}, 0, fmt.Errorf("%w: non-finite model", ErrGeometryEstimationFailed)
			}
			h[r][c] = v
		}
	}

	inliers := len(corrs)
	if !mask.Empty() {
		inliers = gocv.CountNonZero(mask)
	}
	return h, inliers, nil
}

// ProjectCorners maps the template outline of the given size into frame coordinates.
func ProjectCorners(h match.Homography, width, height int) ([4]image.Point, error) {
	corners := match.Corners(width, height)

	pts := make([]gocv.Point2f, len(corners))
	for i, c := range corners {
		pts[i] = gocv.Point2f{X: float32(c.X), Y: float32(c.Y)}
	}
	vec := gocv.NewPoint2fVectorFromPoints(pts)
	defer vec.Close()
	src := gocv.NewMatFromPoint2fVector(vec, true)
	defer src.Close()

	hm := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer hm.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			hm.SetDoubleAt(r, c, h[r][c])
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.PerspectiveTransform(src, &dst, hm)
	if dst.Rows() != len(corners) {
		return [4]image.Point{}, fmt.Errorf("%w: projected %d corners", ErrGeometryEstimationFailed, dst.Rows())
	}

	var out [4]image.Point
	for i := range out {
		v := dst.GetVecfAt(i, 0)
		if len(v) < 2 {
			return [4]image.Point{}, fmt.Errorf("%w: malformed projection", ErrGeometryEstimationFailed)
		}
		out[i] = image.Pt(int(math.Round(float64(v[0]))), int(math.Round(float64(v[1]))))
	}
	return out, nil
}
