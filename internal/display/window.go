package display

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// WindowSink shows frames in OpenCV highgui windows. Frames may be handed in
// from any goroutine; Pump must run on the thread that created the windows.
type WindowSink struct {
	live     *gocv.Window
	template *gocv.Window

	lock         sync.Mutex
	lastframe    gocv.Mat
	lasttemplate gocv.Mat
	framedirty   bool
	tmpldirty    bool
}

func NewWindowSink(title string) *WindowSink {
	return &WindowSink{
		live:         gocv.NewWindow(title),
		template:     gocv.NewWindow(title + " - template"),
		lastframe:    gocv.NewMat(),
		lasttemplate: gocv.NewMat(),
	}
}

func (w *WindowSink) ShowFrame(frame gocv.Mat) error {
	w.lock.Lock()
	frame.CopyTo(&w.lastframe)
	w.framedirty = true
	w.lock.Unlock()
	return nil
}

func (w *WindowSink) ShowTemplate(img image.Image) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return
	}
	w.lock.Lock()
	old := w.lasttemplate
	w.lasttemplate = mat
	w.tmpldirty = true
	w.lock.Unlock()
	old.Close()
}

// Pump draws pending frames and waits up to delay milliseconds for a key press.
// It returns the key code, or -1 when none was pressed.
func (w *WindowSink) Pump(delay int) int {
	w.lock.Lock()
	if w.framedirty && !w.lastframe.Empty() {
		w.live.IMShow(w.lastframe)
		w.framedirty = false
	}
	if w.tmpldirty && !w.lasttemplate.Empty() {
		w.template.IMShow(w.lasttemplate)
		w.tmpldirty = false
	}
	w.lock.Unlock()

	if delay < 1 {
		delay = 1
	}
	return w.live.WaitKey(delay)
}

func (w *WindowSink) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.lastframe.Close()
	w.lasttemplate.Close()
	w.template.Close()
	return w.live.Close()
}
