package camera

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/lkarlslund/templatecam/internal/vision"
	"gocv.io/x/gocv"
)

// Source produces one BGR frame per Read.
type Source interface {
	// Read fills dst with the next frame. It wraps vision.ErrCameraUnavailable on failure.
	Read(dst *gocv.Mat) error
	Close() error
}

type SourceConfig struct {
	// Device is a camera index or a video file path.
	Device string
	Width  int
	Height int
}

// Index returns the camera index when Device is numeric.
func (sc SourceConfig) Index() (int, bool) {
	id, err := strconv.Atoi(sc.Device)
	if err != nil {
		return 0, false
	}
	return id, true
}

var stillExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true, ".pgm": true, ".ppm": true,
}

// OpenSource opens a camera index, a still image or a video file, in that order of preference.
func OpenSource(sc SourceConfig) (Source, error) {
	if _, isIndex := sc.Index(); !isIndex && stillExtensions[strings.ToLower(filepath.Ext(sc.Device))] {
		img, err := vision.DecodeImage(sc.Device)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vision.ErrCameraUnavailable, err)
		}
		frame, err := gocv.ImageToMatRGB(img)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vision.ErrCameraUnavailable, err)
		}
		return NewStill(frame), nil
	}
	return Open(sc)
}

// Device wraps a gocv capture opened once at startup.
type Device struct {
	Config SourceConfig

	capture *gocv.VideoCapture
}

// Open opens the camera (numeric device) or video file and requests the capture size.
func Open(sc SourceConfig) (*Device, error) {
	var capture *gocv.VideoCapture
	var err error
	if id, ok := sc.Index(); ok {
		capture, err = gocv.VideoCaptureDevice(id)
	} else {
		capture, err = gocv.VideoCaptureFile(sc.Device)
	}
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, fmt.Errorf("%w: opening %q: %v", vision.ErrCameraUnavailable, sc.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %q did not open", vision.ErrCameraUnavailable, sc.Device)
	}

	if sc.Width > 0 && sc.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(sc.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(sc.Height))
	}

	return &Device{Config: sc, capture: capture}, nil
}

func (d *Device) Read(dst *gocv.Mat) error {
	if ok := d.capture.Read(dst); !ok || dst.Empty() {
		return fmt.Errorf("%w: cannot read from %q", vision.ErrCameraUnavailable, d.Config.Device)
	}
	return nil
}

// Rect is the size of the frames actually delivered, which may differ from the requested one.
func (d *Device) Rect() image.Rectangle {
	w := int(d.capture.Get(gocv.VideoCaptureFrameWidth))
	h := int(d.capture.Get(gocv.VideoCaptureFrameHeight))
	return image.Rect(0, 0, w, h)
}

func (d *Device) Close() error {
	return d.capture.Close()
}

// Still replays one image forever. It stands in for a camera in tests and demos.
type Still struct {
	mu     sync.Mutex
	frame  gocv.Mat
	closed bool
}

// NewStill takes ownership of frame.
func NewStill(frame gocv.Mat) *Still {
	return &Still{frame: frame}
}

func (s *Still) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.frame.Empty() {
		return fmt.Errorf("%w: still source has no frame", vision.ErrCameraUnavailable)
	}
	s.frame.CopyTo(dst)
	return nil
}

func (s *Still) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.frame.Close()
}
