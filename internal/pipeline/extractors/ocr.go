package extractors

import (
	"context"
	"image"
	"path/filepath"
	"strings"

	"github.com/oho/readcontent-daemon/internal/ocr"
	"github.com/oho/readcontent-daemon/internal/pdfdoc"
)

// OCRExtractor recognizes text in standalone images and in PDFs without a
// text layer. Its errors are not FormatErrors: an OCR failure here fails the
// whole request.
type OCRExtractor struct {
	bridge *ocr.Bridge
}

func (e *OCRExtractor) Name() string              { return "ocr" }
func (e *OCRExtractor) Priority() int             { return 15 }
func (e *OCRExtractor) Format(path string) string { return "image" }

func (e *OCRExtractor) CanHandle(cat Category) bool {
	return cat == CategoryImage || cat == CategoryImagePDF
}

func (e *OCRExtractor) Extract(ctx context.Context, path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		text, err := e.bridge.RecognizeFile(ctx, path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}

	var sb strings.Builder
	err := pdfdoc.RenderPages(path, func(page int, img image.Image) error {
		text, err := e.bridge.RecognizeImage(ctx, img)
		if err != nil {
			return err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
