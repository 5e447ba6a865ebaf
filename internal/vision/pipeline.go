package vision

import (
	"fmt"
	"image"

	"github.com/lkarlslund/templatecam/internal/match"
	"gocv.io/x/gocv"
)

// DefaultMinOutlineArea is the smallest projected outline, in square pixels,
// accepted as a detection.
const DefaultMinOutlineArea = 16.0

// PipelineConfig carries the matching and estimation parameters.
type PipelineConfig struct {
	Matcher        string
	RatioThreshold float64
	MinMatchNumber int
	Estimator      Estimator
	// MinOutlineArea defaults to DefaultMinOutlineArea when zero.
	MinOutlineArea float64
}

// Pipeline locates a template in frames. It keeps no state between frames.
type Pipeline struct {
	extractor *Extractor
	matcher   *Matcher
	estimator Estimator
	minMatch  int
	minArea   float64
}

func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	matcher, err := NewMatcher(cfg.Matcher, cfg.RatioThreshold)
	if err != nil {
		return nil, err
	}
	minArea := cfg.MinOutlineArea
	if minArea <= 0 {
		minArea = DefaultMinOutlineArea
	}
	return &Pipeline{
		extractor: NewExtractor(),
		matcher:   matcher,
		estimator: cfg.Estimator,
		minMatch:  cfg.MinMatchNumber,
		minArea:   minArea,
	}, nil
}

// LoadTemplate loads path with the pipeline's extractor.
func (p *Pipeline) LoadTemplate(path string, maxSide int) (*Template, error) {
	return LoadTemplate(path, maxSide, p.extractor)
}

// Locate finds t in frame. ErrInsufficientMatches and ErrGeometryEstimationFailed
// are expected outcomes that mean "not found".
func (p *Pipeline) Locate(t *Template, frame gocv.Mat) (Detection, error) {
	if t == nil {
		return Detection{}, ErrTemplateNotLoaded
	}

	features := p.extractor.Extract(frame)
	defer features.Close()

	corrs := p.matcher.Match(t.Features, features)
	if len(corrs) <= p.minMatch {
		return Detection{Matches: len(corrs)}, fmt.Errorf("%w: %d accepted, need more than %d", ErrInsufficientMatches, len(corrs), p.minMatch)
	}

	h, inliers, err := p.estimator.Estimate(corrs, t.Features.Keypoints, features.Keypoints)
	if err != nil {
		return Detection{Matches: len(corrs)}, err
	}

	w, hgt := t.Size()
	corners, err := Outline(h, w, hgt, p.minArea)
	if err != nil {
		return Detection{Matches: len(corrs), Inliers: inliers}, err
	}

	return Detection{
		Corners:    corners,
		Homography: h,
		Matches:    len(corrs),
		Inliers:    inliers,
	}, nil
}

// Outline projects the template rectangle through h and rejects outlines that
// are not convex or cover less than minArea.
func Outline(h match.Homography, width, height int, minArea float64) ([4]image.Point, error) {
	corners, err := ProjectCorners(h, width, height)
	if err != nil {
		return corners, err
	}
	if !match.Plausible(corners, minArea) {
		return corners, fmt.Errorf("%w: degenerate outline %v", ErrGeometryEstimationFailed, corners)
	}
	return corners, nil
}

func (p *Pipeline) Close() error {
	err := p.matcher.Close()
	if xerr := p.extractor.Close(); err == nil {
		err = xerr
	}
	return err
}
