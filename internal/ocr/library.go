//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Library runs Tesseract in-process through gosseract.
type Library struct {
	language string
	tessdata string
}

func newLibrary(language, tessdata string) (Engine, error) {
	if language == "" {
		language = "eng"
	}
	return &Library{language: language, tessdata: tessdata}, nil
}

func (l *Library) Name() string    { return "gosseract" }
func (l *Library) Available() bool { return true }

// Recognize creates a client per call; gosseract clients are not safe for
// concurrent use.
func (l *Library) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if l.tessdata != "" {
		client.TessdataPrefix = l.tessdata
	}
	if err := client.SetLanguage(l.language); err != nil {
		return "", fmt.Errorf("gosseract language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("gosseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return strings.TrimSpace(text), nil
}
