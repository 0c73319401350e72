package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oho/readcontent-daemon/internal/pdfdoc"
	"github.com/oho/readcontent-daemon/internal/pipeline/extractors"
)

// byExtension maps lower-case extensions to categories. PDFs are absent:
// their category depends on the document.
var byExtension = map[string]extractors.Category{
	".png":  extractors.CategoryImage,
	".jpg":  extractors.CategoryImage,
	".jpeg": extractors.CategoryImage,
	".txt":  extractors.CategoryPlainText,
	".docx": extractors.CategoryWordModern,
	".doc":  extractors.CategoryWordLegacy,
	".xlsx": extractors.CategorySpreadsheetModern,
	".xls":  extractors.CategorySpreadsheetLegacy,
	".pptx": extractors.CategoryPresentationModern,
	".ppt":  extractors.CategoryPresentationLegacy,
}

// Classify returns the handling category of path. For a PDF it opens the
// document and checks every page for a text layer; a PDF that cannot be
// opened is an error.
func Classify(path string) (extractors.Category, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		hasText, err := pdfdoc.HasTextLayer(path)
		if err != nil {
			return extractors.CategoryUnsupported, fmt.Errorf("probe pdf: %w", err)
		}
		if hasText {
			return extractors.CategoryTextPDF, nil
		}
		return extractors.CategoryImagePDF, nil
	}
	if cat, ok := byExtension[ext]; ok {
		return cat, nil
	}
	return extractors.CategoryUnsupported, nil
}

// FormatInfo describes one supported extension.
type FormatInfo struct {
	Extension  string   `json:"extension"`
	Categories []string `json:"categories"`
}

// SupportedFormats lists the accepted extensions in alphabetical order.
func SupportedFormats() []FormatInfo {
	out := []FormatInfo{{
		Extension:  ".pdf",
		Categories: []string{string(extractors.CategoryTextPDF), string(extractors.CategoryImagePDF)},
	}}
	for ext, cat := range byExtension {
		out = append(out, FormatInfo{Extension: ext, Categories: []string{string(cat)}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Extension < out[j].Extension })
	return out
}
