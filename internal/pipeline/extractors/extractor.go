package extractors

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/ocr"
)

// Extractor produces raw text for one family of formats.
type Extractor interface {
	CanHandle(cat Category) bool
	Extract(ctx context.Context, path string) (string, error)
	Name() string
	Priority() int
	// Format is the label used in "Error reading <label> file" messages.
	Format(path string) string
}

// FormatError is a failure inside format-specific extraction. Its message is
// the text callers of the compatibility endpoint receive as content.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Error reading %s file: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func failed(e Extractor, path string, err error) error {
	return &FormatError{Format: e.Format(path), Err: err}
}

// Registry holds extractors sorted by priority (highest first).
type Registry struct {
	extractors []Extractor
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Lookup returns the highest-priority extractor for cat.
func (r *Registry) Lookup(cat Category) (Extractor, bool) {
	for _, e := range r.extractors {
		if e.CanHandle(cat) {
			return e, true
		}
	}
	return nil, false
}

// Extract runs the extractor for cat. A panic inside the extractor becomes a
// FormatError.
func (r *Registry) Extract(ctx context.Context, cat Category, path string) (string, error) {
	e, ok := r.Lookup(cat)
	if !ok {
		return "", fmt.Errorf("no extractor can handle: %s", cat)
	}
	return safeExtract(ctx, e, path)
}

func safeExtract(ctx context.Context, e Extractor, path string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Extractor panicked", "extractor", e.Name(), "path", path, "panic", p)
			text, err = "", failed(e, path, fmt.Errorf("panic: %v", p))
		}
	}()
	return e.Extract(ctx, path)
}

// CreateDefaultRegistry builds a registry with all extractors.
func CreateDefaultRegistry(bridge *ocr.Bridge, converter legacy.Converter) *Registry {
	docx := &DocxExtractor{bridge: bridge}
	xlsx := &XlsxExtractor{}
	pptx := &PptxExtractor{bridge: bridge}

	r := NewRegistry()
	r.Register(&TextExtractor{})
	r.Register(&PDFExtractor{})
	r.Register(&OCRExtractor{bridge: bridge})
	r.Register(docx)
	r.Register(xlsx)
	r.Register(pptx)
	r.Register(&LegacyExtractor{converter: converter, docx: docx, xlsx: xlsx, pptx: pptx})
	return r
}
