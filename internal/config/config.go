package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"
	defaults "github.com/mcuadros/go-defaults"
)

// Config holds every tunable of the capture-and-match pipeline and the shell around it.
type Config struct {
	// Source is a camera index ("0") or a path to a video file.
	Source        string `toml:"source" default:"0"`
	CameraFPS     int    `toml:"camera_fps" default:"10"`
	CaptureWidth  int    `toml:"capture_width" default:"320"`
	CaptureHeight int    `toml:"capture_height" default:"240"`

	// Matcher is "flann" or "bf".
	Matcher        string  `toml:"matcher" default:"flann"`
	RatioThreshold float64 `toml:"ratio_threshold" default:"0.6"`
	MinMatchNumber int     `toml:"min_match_number" default:"10"`

	RansacReprojThreshold float64 `toml:"ransac_reproj_threshold" default:"5.0"`
	RansacMaxIters        int     `toml:"ransac_max_iters" default:"2000"`
	RansacConfidence      float64 `toml:"ransac_confidence" default:"0.995"`

	// TemplateMaxSide downscales templates whose longest side exceeds it. 0 disables.
	TemplateMaxSide int `toml:"template_max_side" default:"0"`

	OverlayColor     string `toml:"overlay_color" default:"#0000ff"`
	OverlayThickness int    `toml:"overlay_thickness" default:"3"`
	ShowStats        bool   `toml:"show_stats" default:"false"`

	// UI is "fyne" or "highgui".
	UI          string `toml:"ui" default:"fyne"`
	SnapshotDir string `toml:"snapshot_dir" default:"snapshots"`

	LogFile string `toml:"log_file" default:""`
	Debug   bool   `toml:"debug" default:"false"`
}

// Default returns a Config populated from the struct defaults.
func Default() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// Load reads a TOML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.CameraFPS <= 0 {
		errs = append(errs, fmt.Errorf("camera_fps must be positive, got %d", c.CameraFPS))
	}
	if c.CaptureWidth <= 0 || c.CaptureHeight <= 0 {
		errs = append(errs, fmt.Errorf("capture size must be positive, got %dx%d", c.CaptureWidth, c.CaptureHeight))
	}
	if c.Matcher != "flann" && c.Matcher != "bf" {
		errs = append(errs, fmt.Errorf("matcher must be flann or bf, got %q", c.Matcher))
	}
	if c.RatioThreshold <= 0 || c.RatioThreshold >= 1 {
		errs = append(errs, fmt.Errorf("ratio_threshold must be in (0,1), got %v", c.RatioThreshold))
	}
	// A homography needs four point pairs
	if c.MinMatchNumber < 4 {
		errs = append(errs, fmt.Errorf("min_match_number must be at least 4, got %d", c.MinMatchNumber))
	}
	if c.RansacReprojThreshold <= 0 {
		errs = append(errs, fmt.Errorf("ransac_reproj_threshold must be positive, got %v", c.RansacReprojThreshold))
	}
	if c.RansacConfidence <= 0 || c.RansacConfidence >= 1 {
		errs = append(errs, fmt.Errorf("ransac_confidence must be in (0,1), got %v", c.RansacConfidence))
	}
	if c.OverlayThickness <= 0 {
		errs = append(errs, fmt.Errorf("overlay_thickness must be positive, got %d", c.OverlayThickness))
	}
	if _, err := c.Color(); err != nil {
		errs = append(errs, err)
	}
	if c.UI != "fyne" && c.UI != "highgui" {
		errs = append(errs, fmt.Errorf("ui must be fyne or highgui, got %q", c.UI))
	}
	return errors.Join(errs...)
}

// PollInterval is the time between two capture ticks.
func (c *Config) PollInterval() time.Duration {
	return time.Second / time.Duration(c.CameraFPS)
}

// Color parses OverlayColor.
func (c *Config) Color() (color.RGBA, error) {
	col, err := colorful.Hex(c.OverlayColor)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("overlay_color %q: %w", c.OverlayColor, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{r, g, b, 0}, nil
}
