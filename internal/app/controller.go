package app

import (
	"errors"
	"fmt"

	"github.com/lkarlslund/templatecam/internal/camera"
	"github.com/lkarlslund/templatecam/internal/display"
	"github.com/lkarlslund/templatecam/internal/logger"
	"github.com/lkarlslund/templatecam/internal/overlay"
	"github.com/lkarlslund/templatecam/internal/vision"
	"gocv.io/x/gocv"
)

// Options are the controller settings that do not belong to the pipeline itself.
type Options struct {
	TemplateMaxSide int
	Style           overlay.Style
	SnapshotDir     string
}

// Controller owns the application state and implements the button and timer handlers.
// All methods must be called from the event loop goroutine.
type Controller struct {
	opts     Options
	source   camera.Source
	pipeline *vision.Pipeline
	sink     display.Sink
	timer    Timer

	state State

	frame     gocv.Mat
	lastshown gocv.Mat

	// OnCameraState is called after every toggle, e.g. to relabel a button.
	OnCameraState func(CameraState)
}

func NewController(opts Options, source camera.Source, pipeline *vision.Pipeline, sink display.Sink, timer Timer) *Controller {
	return &Controller{
		opts:      opts,
		source:    source,
		pipeline:  pipeline,
		sink:      sink,
		timer:     timer,
		frame:     gocv.NewMat(),
		lastshown: gocv.NewMat(),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Toggle flips the camera between Disabled and Enabled, starting or stopping the polling timer.
func (c *Controller) Toggle() CameraState {
	if c.state.Camera == Enabled {
		c.timer.Stop()
		c.state.Camera = Disabled
	} else {
		c.timer.Start()
		c.state.Camera = Enabled
	}
	logger.Info("Camera %s", c.state.Camera)
	if c.OnCameraState != nil {
		c.OnCameraState(c.state.Camera)
	}
	return c.state.Camera
}

// SelectTemplate loads path and replaces the current template. On failure the
// previous template stays in use.
func (c *Controller) SelectTemplate(path string) error {
	t, err := c.pipeline.LoadTemplate(path, c.opts.TemplateMaxSide)
	if err != nil {
		logger.Error("Loading template %s: %v", path, err)
		return err
	}

	old := c.state.Template
	c.state.Template = t
	c.state.TemplatePath = path
	old.Close()

	w, h := t.Size()
	logger.Info("Loaded template image file: %s (%dx%d, %d keypoints)", path, w, h, len(t.Features.Keypoints))
	if c.sink != nil {
		c.sink.ShowTemplate(t.Source)
	}
	return nil
}

// Reload reads the current template path from disk again.
func (c *Controller) Reload() error {
	if c.state.TemplatePath == "" {
		return vision.ErrTemplateNotLoaded
	}
	return c.SelectTemplate(c.state.TemplatePath)
}

// Tick runs one capture-and-match cycle. Only camera failures and a missing
// template are returned; not finding the template is a normal outcome.
func (c *Controller) Tick() error {
	if err := c.source.Read(&c.frame); err != nil {
		logger.Error("%v", err)
		return err
	}

	out, det, err := c.process(c.frame)
	defer out.Close()

	if err == nil {
		logger.Debug("Template at %v, %d matches, %d inliers", det.Corners, det.Matches, det.Inliers)
	} else {
		logger.Debug("No match: %v", err)
	}

	out.CopyTo(&c.lastshown)
	if c.sink != nil {
		if serr := c.sink.ShowFrame(out); serr != nil {
			logger.Error("Displaying frame: %v", serr)
		}
	}

	if errors.Is(err, vision.ErrTemplateNotLoaded) {
		return err
	}
	return nil
}

// process returns the frame to display: annotated when the template was
// located, an unmodified copy otherwise.
func (c *Controller) process(frame gocv.Mat) (gocv.Mat, vision.Detection, error) {
	if !c.state.TemplateLoaded() {
		return frame.Clone(), vision.Detection{}, vision.ErrTemplateNotLoaded
	}

	det, err := c.pipeline.Locate(c.state.Template, frame)
	switch {
	case err == nil:
		return overlay.Draw(frame, det, c.opts.Style), det, nil
	case errors.Is(err, vision.ErrInsufficientMatches), errors.Is(err, vision.ErrGeometryEstimationFailed):
		return frame.Clone(), det, err
	default:
		return frame.Clone(), det, fmt.Errorf("locating template: %w", err)
	}
}

// Close stops the timer and releases the template and frame buffers.
func (c *Controller) Close() {
	if c.timer.Running() {
		c.timer.Stop()
	}
	c.state.Template.Close()
	c.state.Template = nil
	c.frame.Close()
	c.lastshown.Close()
}
