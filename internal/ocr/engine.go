// Package ocr drives a Tesseract engine over raster images.
//
// Two engines are available: Command runs the tesseract binary from a fixed
// install path, Library links libtesseract through gosseract (build tag
// "gosseract"). Bridge sits in front of either and owns the temporary PNG
// files used to hand decoded images to the engine.
package ocr

import (
	"context"
	"fmt"

	"github.com/oho/readcontent-daemon/internal/config"
)

// Engine recognizes text in an image file.
type Engine interface {
	Name() string
	// Available reports whether the engine can run on this host.
	Available() bool
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// New returns the engine selected by cfg.Engine.
func New(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Engine {
	case "", "command":
		return NewCommand(cfg.TesseractPath, cfg.Language, cfg.TessdataPrefix), nil
	case "library":
		return newLibrary(cfg.Language, cfg.TessdataPrefix)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}
