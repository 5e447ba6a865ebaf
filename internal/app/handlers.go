package app

import (
	"errors"

	"github.com/lkarlslund/templatecam/internal/logger"
	"github.com/lkarlslund/templatecam/internal/vision"
)

// Handlers are the user actions a frontend can trigger. Each one hands its
// work to the event loop without waiting for it, so frontends may call them
// from any goroutine. Actions triggered after the loop has stopped are dropped.
type Handlers struct {
	Toggle   func()
	Select   func(path string)
	Reload   func()
	Snapshot func()
}

// Bind routes timer ticks and user actions on loop to c.
func Bind(loop *EventLoop, c *Controller) Handlers {
	loop.OnTick(func() {
		if err := c.Tick(); errors.Is(err, vision.ErrTemplateNotLoaded) {
			logger.Debug("No template selected, showing raw frame")
		}
	})

	return Handlers{
		Toggle: func() {
			post(loop, "toggle", func() { c.Toggle() })
		},
		Select: func(path string) {
			post(loop, "select", func() { c.SelectTemplate(path) })
		},
		Reload: func() {
			post(loop, "reload", func() {
				if err := c.Reload(); errors.Is(err, vision.ErrTemplateNotLoaded) && c.State().TemplatePath == "" {
					logger.Info("Nothing to reload, no template selected")
				}
			})
		},
		Snapshot: func() {
			post(loop, "snapshot", func() {
				if _, err := c.Snapshot(); err != nil {
					logger.Error("Snapshot: %v", err)
				}
			})
		},
	}
}

func post(loop *EventLoop, action string, fn func()) {
	if !loop.Post(fn) {
		logger.Debug("Ignoring %s, event loop stopped", action)
	}
}
