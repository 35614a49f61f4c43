package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// ProcessedImage contains all variants of a processed image
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
	ThumbWidth  int
	ThumbHeight int
}

// Config for image processing
type Config struct {
	MaxWidth    int // Max width for original (default 1600)
	MaxHeight   int // Max height for original (default 1600)
	ThumbWidth  int // Thumbnail width (default 400)
	ThumbHeight int // Thumbnail height (default 400)
	Quality     int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:    1600,
		MaxHeight:   1600,
		ThumbWidth:  400,
		ThumbHeight: 400,
		Quality:     85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes an upload, bounds its size and cuts a square thumbnail.
// PNG stays PNG; everything else is re-encoded as JPEG.
func (p *Processor) Process(reader io.Reader, contentType string) (*ProcessedImage, error) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	format := imaging.JPEG
	result := &ProcessedImage{ContentType: "image/jpeg"}
	if contentType == "image/png" {
		format = imaging.PNG
		result.ContentType = "image/png"
	}

	resized := img
	if b := img.Bounds(); b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}
	result.Width = resized.Bounds().Dx()
	result.Height = resized.Bounds().Dy()

	if result.Original, err = p.encode(resized, format); err != nil {
		return nil, fmt.Errorf("failed to encode original: %w", err)
	}

	// Center crop
	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)
	result.ThumbWidth = thumb.Bounds().Dx()
	result.ThumbHeight = thumb.Bounds().Dy()

	if result.Thumbnail, err = p.encode(thumb, format); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return result, nil
}

func (p *Processor) encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeneratePaths generates storage keys for a gallery photo and its thumbnail
func GeneratePaths(photoID, ext string) (original, thumb string) {
	original = fmt.Sprintf("gallery/%s%s", photoID, ext)
	thumb = fmt.Sprintf("gallery/%s_thumb%s", photoID, ext)
	return
}
