package vision

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/gift"
	_ "github.com/spakin/netpbm" // Register PBM/PGM/PPM/PAM format decoders
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Template is a reference image prepared for matching. It is immutable once
// loaded; selecting another file produces a new Template.
type Template struct {
	Path string

	// Source is the decoded file, kept for display.
	Source image.Image

	// Gray is the (possibly downscaled) grayscale raster features were computed on.
	Gray     *image.Gray
	Features Features
}

// Size returns the dimensions of the matched raster.
func (t *Template) Size() (int, int) {
	b := t.Gray.Bounds()
	return b.Dx(), b.Dy()
}

// Close releases the native descriptor memory. The template must not be used afterwards.
func (t *Template) Close() {
	if t == nil {
		return
	}
	t.Features.Close()
}

// DecodeImage reads any registered raster format from disk.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Grayscale converts img to 8-bit gray, shrinking it to fit maxSide when maxSide > 0.
func Grayscale(img image.Image, maxSide int) *image.Gray {
	g := gift.New(gift.Grayscale())
	b := img.Bounds()
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		g.Add(gift.ResizeToFit(maxSide, maxSide, gift.LanczosResampling))
	}
	dst := image.NewGray(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}

// LoadTemplate decodes path and computes its features.
func LoadTemplate(path string, maxSide int, extractor *Extractor) (*Template, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path selected", ErrTemplateNotLoaded)
	}

	src, err := DecodeImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotLoaded, err)
	}
	return NewTemplate(path, src, maxSide, extractor)
}

// NewTemplate prepares an already decoded image.
func NewTemplate(path string, src image.Image, maxSide int, extractor *Extractor) (*Template, error) {
	gray := Grayscale(src, maxSide)

	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotLoaded, err)
	}
	defer mat.Close()

	features := extractor.Extract(mat)
	if features.Empty() {
		features.Close()
		return nil, fmt.Errorf("%w: no keypoints found in %s", ErrTemplateNotLoaded, path)
	}

	return &Template{
		Path:     path,
		Source:   src,
		Gray:     gray,
		Features: features,
	}, nil
}
