package app

import "github.com/lkarlslund/templatecam/internal/vision"

type CameraState int

const (
	Disabled CameraState = iota
	Enabled
)

func (s CameraState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// State is everything the controller remembers between events. It is owned by
// the event loop goroutine.
type State struct {
	Camera       CameraState
	TemplatePath string
	Template     *vision.Template
}

// TemplateLoaded gates matching: no template, no matching.
func (s *State) TemplateLoaded() bool {
	return s.Template != nil
}
