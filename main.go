package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/jonboulle/clockwork"
	"github.com/lkarlslund/templatecam/internal/app"
	"github.com/lkarlslund/templatecam/internal/camera"
	"github.com/lkarlslund/templatecam/internal/config"
	"github.com/lkarlslund/templatecam/internal/display"
	"github.com/lkarlslund/templatecam/internal/logger"
	"github.com/lkarlslund/templatecam/internal/overlay"
	"github.com/lkarlslund/templatecam/internal/ui"
	"github.com/lkarlslund/templatecam/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const appID = "com.github.lkarlslund.templatecam"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "TOML configuration file")
	templatePath := flag.String("template", "", "template image to look for")
	source := flag.String("source", "", "camera index, video file or still image (overrides config)")
	uiKind := flag.String("ui", "", "frontend: fyne or highgui (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("templatecam %s (commit %s)\n", Version, GitCommit)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *uiKind != "" {
		cfg.UI = *uiKind
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger.Init(cfg.LogFile, cfg.Debug)
	defer logger.Close()

	src, err := camera.OpenSource(camera.SourceConfig{
		Device: cfg.Source,
		Width:  cfg.CaptureWidth,
		Height: cfg.CaptureHeight,
	})
	if err != nil {
		logger.Error("Cannot start without a camera: %v", err)
		return 1
	}
	defer src.Close()
	if d, ok := src.(*camera.Device); ok {
		r := d.Rect()
		logger.Info("Camera %s delivering %dx%d", cfg.Source, r.Dx(), r.Dy())
	}

	pipeline, err := vision.NewPipeline(vision.PipelineConfig{
		Matcher:        cfg.Matcher,
		RatioThreshold: cfg.RatioThreshold,
		MinMatchNumber: cfg.MinMatchNumber,
		Estimator: vision.Estimator{
			ReprojThreshold: cfg.RansacReprojThreshold,
			MaxIters:        cfg.RansacMaxIters,
			Confidence:      cfg.RansacConfidence,
		},
	})
	if err != nil {
		logger.Error("%v", err)
		return 1
	}
	defer pipeline.Close()

	col, _ := cfg.Color()
	opts := app.Options{
		TemplateMaxSide: cfg.TemplateMaxSide,
		Style: overlay.Style{
			Color:     col,
			Thickness: cfg.OverlayThickness,
			ShowStats: cfg.ShowStats,
		},
		SnapshotDir: cfg.SnapshotDir,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	loop := app.NewEventLoop(clockwork.NewRealClock(), cfg.PollInterval())

	switch cfg.UI {
	case "highgui":
		runHighGUI(ctx, cancel, loop, opts, src, pipeline, *templatePath)
	default:
		runFyne(ctx, cancel, loop, opts, src, pipeline, *templatePath, cfg)
	}
	return 0
}

// startLoop runs the event loop and returns a function that waits for it and
// then releases the controller.
func startLoop(ctx context.Context, loop *app.EventLoop, ctrl *app.Controller) func() {
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	return func() {
		<-done
		ctrl.Close()
	}
}

func runHighGUI(ctx context.Context, cancel context.CancelFunc, loop *app.EventLoop, opts app.Options, src camera.Source, pipeline *vision.Pipeline, templatePath string) {
	sink := display.NewWindowSink("templatecam")
	defer sink.Close()

	ctrl := app.NewController(opts, src, pipeline, sink, loop)
	handlers := app.Bind(loop, ctrl)
	wait := startLoop(ctx, loop, ctrl)
	defer wait()

	if templatePath != "" {
		handlers.Select(templatePath)
	}
	logger.Info("Keys: space toggles camera, r reloads template, s saves snapshot, esc quits")

	for ctx.Err() == nil {
		switch sink.Pump(25) {
		case 27: // esc
			cancel()
		case ' ':
			handlers.Toggle()
		case 'r':
			handlers.Reload()
		case 's':
			handlers.Snapshot()
		}
	}
}

func runFyne(ctx context.Context, cancel context.CancelFunc, loop *app.EventLoop, opts app.Options, src camera.Source, pipeline *vision.Pipeline, templatePath string, cfg *config.Config) {
	window := ui.New(ui.NewApp(appID), "templatecam", cfg.CaptureWidth, cfg.CaptureHeight)

	ctrl := app.NewController(opts, src, pipeline, window, loop)
	ctrl.OnCameraState = window.SetCameraState
	handlers := app.Bind(loop, ctrl)
	window.SetHandlers(handlers)
	window.OnClose(cancel)

	wait := startLoop(ctx, loop, ctrl)
	defer wait()

	go func() {
		<-ctx.Done()
		window.Close()
	}()

	if templatePath != "" {
		handlers.Select(templatePath)
	}
	window.Run()
	cancel()
}
