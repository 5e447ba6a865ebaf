package ui

import (
	"image"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/lkarlslund/templatecam/internal/app"
	"github.com/lkarlslund/templatecam/internal/display"
	"github.com/lkarlslund/templatecam/internal/logger"
	"gocv.io/x/gocv"
)

// TemplateExtensions are the file types offered by the browse dialog.
var TemplateExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".pgm", ".ppm"}

// Window is the fyne frontend: a template pane, a live pane and the buttons
// driving the controller. It implements display.Sink.
type Window struct {
	win fyne.Window

	templateImage *canvas.Image
	liveImage     *canvas.Image
	toggleButton  *widget.Button

	handlers app.Handlers
}

// NewApp creates the fyne application the window lives in.
func NewApp(id string) fyne.App {
	return fyneapp.NewWithID(id)
}

func New(a fyne.App, title string, width, height int) *Window {
	w := &Window{
		win: a.NewWindow(title),
	}

	w.templateImage = canvas.NewImageFromImage(nil)
	w.templateImage.FillMode = canvas.ImageFillContain
	w.templateImage.SetMinSize(fyne.NewSize(float32(width), float32(height)))

	w.liveImage = canvas.NewImageFromImage(nil)
	w.liveImage.FillMode = canvas.ImageFillContain
	w.liveImage.SetMinSize(fyne.NewSize(float32(width), float32(height)))

	browseButton := widget.NewButton("Browse…", w.browse)
	w.toggleButton = widget.NewButton(toggleLabel(app.Disabled), func() {
		if w.handlers.Toggle != nil {
			w.handlers.Toggle()
		}
	})
	snapshotButton := widget.NewButton("Snapshot", func() {
		if w.handlers.Snapshot != nil {
			w.handlers.Snapshot()
		}
	})

	toolbar := container.NewHBox(browseButton, w.toggleButton, snapshotButton)
	panes := container.NewGridWithColumns(2, w.templateImage, w.liveImage)
	w.win.SetContent(container.NewBorder(toolbar, nil, nil, nil, panes))
	return w
}

// SetHandlers connects the buttons to the controller.
func (w *Window) SetHandlers(h app.Handlers) {
	w.handlers = h
}

func (w *Window) browse() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.win)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if w.handlers.Select != nil {
			w.handlers.Select(path)
		}
	}, w.win)
	d.SetFilter(storage.NewExtensionFileFilter(TemplateExtensions))
	d.Show()
}

func (w *Window) ShowTemplate(img image.Image) {
	fyne.Do(func() {
		w.templateImage.Image = img
		w.templateImage.Refresh()
	})
}

func (w *Window) ShowFrame(frame gocv.Mat) error {
	img, err := display.ToRGBA(frame)
	if err != nil {
		return err
	}
	fyne.Do(func() {
		w.liveImage.Image = img
		w.liveImage.Refresh()
	})
	return nil
}

// SetCameraState relabels the toggle button.
func (w *Window) SetCameraState(s app.CameraState) {
	fyne.Do(func() {
		w.toggleButton.SetText(toggleLabel(s))
	})
}

// OnClose registers fn to run when the window is closed.
func (w *Window) OnClose(fn func()) {
	w.win.SetOnClosed(fn)
}

// Close closes the window from any goroutine.
func (w *Window) Close() {
	fyne.Do(w.win.Close)
}

// Run shows the window and blocks until it is closed.
func (w *Window) Run() {
	logger.Debug("Starting fyne frontend")
	w.win.ShowAndRun()
}

func toggleLabel(s app.CameraState) string {
	if s == app.Enabled {
		return "Disable camera"
	}
	return "Enable camera"
}
