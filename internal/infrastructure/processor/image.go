package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"video-uploader/pkg/constants"

	"github.com/disintegration/imaging"
)

type ResizeOption struct {
	Width   int
	Height  int
	Quality int // 1-100, JPEG only
}

// MaxImagePixels caps width*height of images accepted for decoding. The header
// is checked first, so a small file declaring huge dimensions is refused
// before any pixel buffer is allocated.
const MaxImagePixels = 40_000_000

var ErrImageTooLarge = errors.New("image dimensions too large")

// DefaultThumbnailSize bounds thumbnails to 720p while keeping the aspect ratio.
var DefaultThumbnailSize = ResizeOption{Width: 1280, Height: 720, Quality: 85}

// FitImage decodes r, shrinks it to fit within opt and re-encodes it in the
// format implied by mediaType. Images already inside the box keep their size.
func FitImage(r io.Reader, mediaType string, opt ResizeOption) ([]byte, image.Point, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, image.Point{}, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > opt.Width || b.Dy() > opt.Height {
		img = imaging.Fit(img, opt.Width, opt.Height, imaging.Lanczos)
	}

	var format imaging.Format
	switch mediaType {
	case constants.MediaTypePNG:
		format = imaging.PNG
	case constants.MediaTypeJPEG:
		format = imaging.JPEG
	default:
		return nil, image.Point{}, fmt.Errorf("unsupported image type %s", mediaType)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(opt.Quality)); err != nil {
		return nil, image.Point{}, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), img.Bounds().Size(), nil
}
