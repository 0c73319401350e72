package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oho/readcontent-daemon/internal/legacy"
)

// LegacyExtractor converts .doc, .xls and .ppt files to their zip-based
// formats and reads the result with the matching modern extractor.
type LegacyExtractor struct {
	converter legacy.Converter
	docx      *DocxExtractor
	xlsx      *XlsxExtractor
	pptx      *PptxExtractor
}

func (e *LegacyExtractor) Name() string  { return "legacy-office" }
func (e *LegacyExtractor) Priority() int { return 5 }

func (e *LegacyExtractor) Format(path string) string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
}

func (e *LegacyExtractor) CanHandle(cat Category) bool {
	return cat.Legacy()
}

func (e *LegacyExtractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	target, ok := legacy.ModernTarget(ext)
	if !ok {
		return "", failed(e, path, fmt.Errorf("no conversion target for %s", ext))
	}
	if !e.converter.Supports(target) {
		return "", failed(e, path, fmt.Errorf("%s cannot produce %s: %w", e.converter.Name(), target, legacy.ErrUnavailable))
	}

	converted, release, err := e.converter.Convert(ctx, path, target)
	if err != nil {
		return "", failed(e, path, err)
	}
	defer release()

	var text string
	switch target {
	case "docx":
		text, err = e.docx.extract(ctx, converted)
	case "xlsx":
		text, err = e.xlsx.extract(ctx, converted)
	case "pptx":
		text, err = e.pptx.extract(ctx, converted)
	}
	if err != nil {
		return "", failed(e, path, err)
	}
	return text, nil
}
