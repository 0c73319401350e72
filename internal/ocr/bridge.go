package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
)

// ErrUnsupportedImage is returned for images that are not PNG or JPEG.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Bridge hands images to an Engine.
type Bridge struct {
	engine  Engine
	tempDir string
}

// NewBridge returns a Bridge that creates its temporary files in tempDir, or
// in the system temp directory when tempDir is empty.
func NewBridge(engine Engine, tempDir string) *Bridge {
	return &Bridge{engine: engine, tempDir: tempDir}
}

func (b *Bridge) Engine() Engine { return b.engine }

// RecognizeFile OCRs a PNG or JPEG file in place.
func (b *Bridge) RecognizeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	_, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	if !isRaster(format) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}
	return b.engine.Recognize(ctx, path)
}

// RecognizeImage writes img to a temporary PNG, OCRs it and removes the file
// whether or not recognition succeeded.
func (b *Bridge) RecognizeImage(ctx context.Context, img image.Image) (string, error) {
	var text string
	err := WithTempPNG(b.tempDir, img, func(path string) error {
		var err error
		text, err = b.engine.Recognize(ctx, path)
		return err
	})
	return text, err
}

// RecognizeEmbedded decodes raw image bytes found inside a document. Images
// that are not PNG or JPEG are skipped: ok is false and err is nil.
func (b *Bridge) RecognizeEmbedded(ctx context.Context, data []byte) (text string, ok bool, err error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || !isRaster(format) {
		return "", false, nil
	}
	text, err = b.RecognizeImage(ctx, img)
	if err != nil {
		return "", true, err
	}
	return text, true, nil
}

func isRaster(format string) bool {
	return format == "png" || format == "jpeg"
}

// WithTempPNG encodes img into a uniquely named file under dir, calls fn with
// its path and removes the file on every exit path.
func WithTempPNG(dir string, img image.Image, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, "ocr-*.png")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}
	return fn(path)
}
