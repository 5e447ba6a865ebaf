package vision

import (
	"fmt"

	"github.com/lkarlslund/templatecam/internal/match"
	"gocv.io/x/gocv"
)

type knnMatcher interface {
	KnnMatch(query, train gocv.Mat, k int) [][]gocv.DMatch
	Close() error
}

// Matcher finds the two nearest frame descriptors for each template descriptor
// and keeps the unambiguous ones.
type Matcher struct {
	knn   knnMatcher
	ratio float64
}

// NewMatcher creates a "flann" or "bf" (brute force, L2) matcher.
func NewMatcher(kind string, ratio float64) (*Matcher, error) {
	var knn knnMatcher
	switch kind {
	case "flann":
		m := gocv.NewFlannBasedMatcher()
		knn = &m
	case "bf":
		m := gocv.NewBFMatcher()
		knn = &m
	default:
		return nil, fmt.Errorf("unknown matcher %q", kind)
	}
	return &Matcher{knn: knn, ratio: ratio}, nil
}

// Candidates returns the k=2 neighbourhood of every query descriptor.
func (m *Matcher) Candidates(query, train Features) []match.Candidate {
	if query.Empty() || train.Empty() {
		return nil
	}

	pairs := m.knn.KnnMatch(query.Descriptors, train.Descriptors, 2)
	candidates := make([]match.Candidate, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) == 0 {
			continue
		}
		c := match.Candidate{Best: toCorrespondence(pair[0])}
		if len(pair) > 1 {
			second := toCorrespondence(pair[1])
			c.Second = &second
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// Match returns the correspondences that pass the ratio test.
func (m *Matcher) Match(query, train Features) []match.Correspondence {
	return match.RatioTest(m.Candidates(query, train), m.ratio)
}

func (m *Matcher) Close() error {
	return m.knn.Close()
}

func toCorrespondence(d gocv.DMatch) match.Correspondence {
	return match.Correspondence{
		QueryIdx: d.QueryIdx,
		TrainIdx: d.TrainIdx,
		Distance: float64(d.Distance),
	}
}
