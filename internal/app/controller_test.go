package app

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/lkarlslund/templatecam/internal/camera"
	"github.com/lkarlslund/templatecam/internal/display"
	"github.com/lkarlslund/templatecam/internal/overlay"
	"github.com/lkarlslund/templatecam/internal/synth"
	"github.com/lkarlslund/templatecam/internal/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fakeTimer struct {
	running       bool
	starts, stops int
}

func (f *fakeTimer) Start()        { f.running = true; f.starts++ }
func (f *fakeTimer) Stop()         { f.running = false; f.stops++ }
func (f *fakeTimer) Running() bool { return f.running }

type fakeSink struct {
	templates []image.Image
	frames    []*image.RGBA
}

func (s *fakeSink) ShowTemplate(img image.Image) {
	s.templates = append(s.templates, img)
}

func (s *fakeSink) ShowFrame(frame gocv.Mat) error {
	img, err := display.ToRGBA(frame)
	if err != nil {
		return err
	}
	s.frames = append(s.frames, img)
	return nil
}

type fixture struct {
	ctrl  *Controller
	timer *fakeTimer
	sink  *fakeSink
	scene image.Image
	dir   string
}

func pipelineConfig() vision.PipelineConfig {
	return vision.PipelineConfig{
		Matcher:        "bf",
		RatioThreshold: 0.6,
		MinMatchNumber: 10,
		Estimator:      vision.Estimator{ReprojThreshold: 5.0, MaxIters: 2000, Confidence: 0.995},
	}
}

func newFixture(t *testing.T, scene image.Image) *fixture {
	t.Helper()
	return newFixtureWith(t, scene, pipelineConfig())
}

func newFixtureWith(t *testing.T, scene image.Image, cfg vision.PipelineConfig) *fixture {
	t.Helper()

	pipeline, err := vision.NewPipeline(cfg)
	require.NoError(t, err)

	frame, err := synth.Frame(scene)
	require.NoError(t, err)
	source := camera.NewStill(frame)

	dir := t.TempDir()
	f := &fixture{
		timer: &fakeTimer{},
		sink:  &fakeSink{},
		scene: scene,
		dir:   dir,
	}
	f.ctrl = NewController(Options{
		Style:       overlay.Style{Color: color.RGBA{0, 0, 255, 0}, Thickness: 3},
		SnapshotDir: filepath.Join(dir, "snapshots"),
	}, source, pipeline, f.sink, f.timer)

	t.Cleanup(func() {
		f.ctrl.Close()
		source.Close()
		pipeline.Close()
	})
	return f
}

func (f *fixture) saveBoard(t *testing.T, name string, seed int64) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, imaging.Save(synth.Checkerboard(100, 10, seed), path))
	return path
}

func samePixels(t *testing.T, want image.Image, got *image.RGBA) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			wr, wg, wb, _ := want.At(x, y).RGBA()
			c := got.RGBAAt(x, y)
			if uint8(wr>>8) != c.R || uint8(wg>>8) != c.G || uint8(wb>>8) != c.B {
				t.Fatalf("pixel (%d,%d) differs: want %v got %v", x, y, want.At(x, y), c)
			}
		}
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	f := newFixture(t, synth.Blank(320, 240))

	var seen []CameraState
	f.ctrl.OnCameraState = func(s CameraState) { seen = append(seen, s) }

	assert.Equal(t, Disabled, f.ctrl.State().Camera)
	assert.False(t, f.timer.Running())

	assert.Equal(t, Enabled, f.ctrl.Toggle())
	assert.True(t, f.timer.Running())

	assert.Equal(t, Disabled, f.ctrl.Toggle())
	assert.False(t, f.timer.Running())

	assert.Equal(t, 1, f.timer.starts)
	assert.Equal(t, 1, f.timer.stops)
	assert.Equal(t, []CameraState{Enabled, Disabled}, seen)
}

func TestTick_NoTemplate(t *testing.T) {
	scene := synth.Scene(synth.Checkerboard(100, 10, 1), 320, 240, 0.5, image.Pt(50, 50))
	f := newFixture(t, scene)

	err := f.ctrl.Tick()
	assert.True(t, errors.Is(err, vision.ErrTemplateNotLoaded))
	require.Len(t, f.sink.frames, 1)
	samePixels(t, scene, f.sink.frames[0])
}

func TestTick_InsufficientMatchesShowsRawFrame(t *testing.T) {
	scene := synth.Blank(320, 240)
	f := newFixture(t, scene)
	require.NoError(t, f.ctrl.SelectTemplate(f.saveBoard(t, "board.png", 1)))

	require.NoError(t, f.ctrl.Tick())
	require.Len(t, f.sink.frames, 1)
	samePixels(t, scene, f.sink.frames[0])
}

func TestTick_DrawsOutline(t *testing.T) {
	scene := boardScene()
	f := newFixture(t, scene)
	require.NoError(t, f.ctrl.SelectTemplate(f.saveBoard(t, "board.png", 1)))

	require.NoError(t, f.ctrl.Tick())
	require.Len(t, f.sink.frames, 1)

	out := f.sink.frames[0]
	blue := 0
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			if out.RGBAAt(x, y) == (color.RGBA{0, 0, 255, 255}) {
				blue++
				// every stroke pixel sits around the pasted board
				assert.True(t, x >= 45 && x <= 105 && y >= 45 && y <= 105, "stroke pixel at (%d,%d)", x, y)
			}
		}
	}
	// four sides of ~50px with a 3px stroke
	assert.Greater(t, blue, 300)
}

func boardScene() image.Image {
	return synth.Scene(synth.Checkerboard(100, 10, 1), 320, 240, 0.5, image.Pt(50, 50))
}

func TestTick_AtMatchMinimumShowsRawFrame(t *testing.T) {
	scene := boardScene()

	// count the accepted matches the scene produces
	boardPath := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, imaging.Save(synth.Checkerboard(100, 10, 1), boardPath))
	p, err := vision.NewPipeline(pipelineConfig())
	require.NoError(t, err)
	defer p.Close()
	tmpl, err := p.LoadTemplate(boardPath, 0)
	require.NoError(t, err)
	defer tmpl.Close()
	frame, err := synth.Frame(scene)
	require.NoError(t, err)
	defer frame.Close()
	det, err := p.Locate(tmpl, frame)
	require.NoError(t, err)

	cfg := pipelineConfig()
	cfg.MinMatchNumber = det.Matches
	f := newFixtureWith(t, scene, cfg)
	require.NoError(t, f.ctrl.SelectTemplate(f.saveBoard(t, "board.png", 1)))

	require.NoError(t, f.ctrl.Tick())
	require.Len(t, f.sink.frames, 1)
	samePixels(t, scene, f.sink.frames[0])
}

func TestTick_ImplausibleOutlineShowsRawFrame(t *testing.T) {
	scene := boardScene()
	cfg := pipelineConfig()
	cfg.MinOutlineArea = 320 * 240
	f := newFixtureWith(t, scene, cfg)
	require.NoError(t, f.ctrl.SelectTemplate(f.saveBoard(t, "board.png", 1)))

	require.NoError(t, f.ctrl.Tick())
	require.Len(t, f.sink.frames, 1)
	samePixels(t, scene, f.sink.frames[0])
}

func TestTick_CameraFailure(t *testing.T) {
	f := newFixture(t, synth.Blank(320, 240))
	f.ctrl.source.Close()

	err := f.ctrl.Tick()
	assert.True(t, errors.Is(err, vision.ErrCameraUnavailable))
	assert.Empty(t, f.sink.frames)
}

func TestSelectTemplate_ReplacesPrevious(t *testing.T) {
	f := newFixture(t, synth.Blank(320, 240))
	first := f.saveBoard(t, "first.png", 1)
	second := f.saveBoard(t, "second.png", 2)

	require.NoError(t, f.ctrl.SelectTemplate(first))
	firstKps := append([]gocv.KeyPoint(nil), f.ctrl.State().Template.Features.Keypoints...)

	require.NoError(t, f.ctrl.SelectTemplate(second))
	st := f.ctrl.State()
	assert.Equal(t, second, st.TemplatePath)
	assert.Equal(t, second, st.Template.Path)

	// features are exactly those of a fresh load of the second file
	fresh, err := f.ctrl.pipeline.LoadTemplate(second, 0)
	require.NoError(t, err)
	defer fresh.Close()
	assert.Equal(t, fresh.Features.Keypoints, st.Template.Features.Keypoints)
	assert.NotEqual(t, firstKps, st.Template.Features.Keypoints)
	assert.Equal(t, len(st.Template.Features.Keypoints), st.Template.Features.Descriptors.Rows())

	assert.Len(t, f.sink.templates, 2)
}

func TestSelectTemplate_FailureKeepsPrevious(t *testing.T) {
	f := newFixture(t, synth.Blank(320, 240))
	path := f.saveBoard(t, "board.png", 1)
	require.NoError(t, f.ctrl.SelectTemplate(path))

	err := f.ctrl.SelectTemplate(filepath.Join(f.dir, "missing.png"))
	assert.True(t, errors.Is(err, vision.ErrTemplateNotLoaded))
	assert.Equal(t, path, f.ctrl.State().TemplatePath)
	assert.True(t, f.ctrl.State().TemplateLoaded())
}

func TestReload(t *testing.T) {
	f := newFixture(t, synth.Blank(320, 240))
	assert.True(t, errors.Is(f.ctrl.Reload(), vision.ErrTemplateNotLoaded))

	path := f.saveBoard(t, "board.png", 1)
	require.NoError(t, f.ctrl.SelectTemplate(path))
	require.NoError(t, f.ctrl.Reload())
	assert.Equal(t, path, f.ctrl.State().TemplatePath)
}

func TestSnapshot(t *testing.T) {
	scene := synth.Blank(320, 240)
	f := newFixture(t, scene)

	_, err := f.ctrl.Snapshot()
	assert.Error(t, err)

	require.NoError(t, f.ctrl.SelectTemplate(f.saveBoard(t, "board.png", 1)))
	require.NoError(t, f.ctrl.Tick())
	path, err := f.ctrl.Snapshot()
	require.NoError(t, err)

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}
