package extractors

import (
	"context"

	"github.com/oho/readcontent-daemon/internal/pdfdoc"
)

// PDFExtractor returns the text layer of PDFs that have one.
type PDFExtractor struct{}

func (e *PDFExtractor) Name() string              { return "pdf" }
func (e *PDFExtractor) Priority() int             { return 20 }
func (e *PDFExtractor) Format(path string) string { return "PDF" }

func (e *PDFExtractor) CanHandle(cat Category) bool {
	return cat == CategoryTextPDF
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	text, err := pdfdoc.PlainText(path)
	if err != nil {
		return "", failed(e, path, err)
	}
	return text, nil
}
