// Package match holds the pure geometry and filtering rules of the matcher:
// the nearest-neighbour ratio test, homography application and sanity checks
// on projected quadrilaterals. Nothing in here touches native memory.
package match

import (
	"image"
	"math"
)

// Correspondence pairs a template (query) keypoint with a frame (train) keypoint.
type Correspondence struct {
	QueryIdx int
	TrainIdx int
	Distance float64
}

// Candidate is the k=2 neighbourhood of one query descriptor. Second is nil
// when the frame had only one descriptor to offer.
type Candidate struct {
	Best   Correspondence
	Second *Correspondence
}

// RatioTest keeps the best correspondence of each candidate whose distance is
// strictly below ratio times the second best distance.
func RatioTest(candidates []Candidate, ratio float64) []Correspondence {
	accepted := make([]Correspondence, 0, len(candidates))
	for _, c := range candidates {
		if c.Second == nil {
			continue
		}
		if c.Best.Distance < ratio*c.Second.Distance {
			accepted = append(accepted, c.Best)
		}
	}
	return accepted
}

// Homography is a row-major 3x3 projective transform.
type Homography [3][3]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Project maps (x, y) through h. ok is false when the point lands on the line at infinity.
func (h Homography) Project(x, y float64) (px, py float64, ok bool) {
	w := h[2][0]*x + h[2][1]*y + h[2][2]
	if math.Abs(w) < 1e-12 {
		return 0, 0, false
	}
	px = (h[0][0]*x + h[0][1]*y + h[0][2]) / w
	py = (h[1][0]*x + h[1][1]*y + h[1][2]) / w
	return px, py, true
}

// Corners returns the template outline in drawing order: (0,0), (0,h), (w,h), (w,0).
func Corners(width, height int) [4]image.Point {
	return [4]image.Point{
		{0, 0},
		{0, height},
		{width, height},
		{width, 0},
	}
}

// Area returns the absolute polygon area (shoelace formula).
func Area(quad [4]image.Point) float64 {
	var sum int
	for i := range quad {
		j := (i + 1) % len(quad)
		sum += quad[i].X*quad[j].Y - quad[j].X*quad[i].Y
	}
	return math.Abs(float64(sum)) / 2
}

// IsConvex reports whether quad is a convex, non self-intersecting quadrilateral.
func IsConvex(quad [4]image.Point) bool {
	sign := 0
	for i := range quad {
		a := quad[i]
		b := quad[(i+1)%4]
		c := quad[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			return false
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// Plausible rejects quads a sane homography of a flat template cannot produce.
func Plausible(quad [4]image.Point, minArea float64) bool {
	return IsConvex(quad) && Area(quad) >= minArea
}
