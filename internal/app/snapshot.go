package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lkarlslund/templatecam/internal/display"
	"github.com/lkarlslund/templatecam/internal/logger"
)

// Snapshot writes the last displayed frame to the snapshot directory and returns its path.
func (c *Controller) Snapshot() (string, error) {
	if c.lastshown.Empty() {
		return "", errors.New("nothing displayed yet")
	}

	img, err := display.ToRGBA(c.lastshown)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.opts.SnapshotDir, 0755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}

	path := filepath.Join(c.opts.SnapshotDir, "snapshot-"+uuid.NewString()+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Info("Saved snapshot %s", path)
	return path, nil
}
