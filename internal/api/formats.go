package api

import (
	"net/http"

	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/ocr"
	"github.com/oho/readcontent-daemon/internal/pipeline"
	"github.com/oho/readcontent-daemon/internal/pipeline/extractors"
)

type formatItem struct {
	pipeline.FormatInfo
	Available         bool            `json:"available"`
	CategoryAvailable map[string]bool `json:"category_available"`
}

// FormatsHandler returns a handler for GET /formats listing each supported
// extension and whether this host can process it. An extension is available
// only when every category it may classify into is.
func FormatsHandler(engine ocr.Engine, converter legacy.Converter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formats := pipeline.SupportedFormats()
		items := make([]formatItem, len(formats))
		for i, f := range formats {
			item := formatItem{FormatInfo: f, Available: true, CategoryAvailable: make(map[string]bool)}
			for _, c := range f.Categories {
				ok := categoryAvailable(extractors.Category(c), f.Extension, engine, converter)
				item.CategoryAvailable[c] = ok
				item.Available = item.Available && ok
			}
			items[i] = item
		}
		writeJSON(w, http.StatusOK, map[string]any{"formats": items})
	}
}

func categoryAvailable(cat extractors.Category, ext string, engine ocr.Engine, converter legacy.Converter) bool {
	switch {
	case cat == extractors.CategoryImage, cat == extractors.CategoryImagePDF:
		return engine.Available()
	case cat.Legacy():
		target, ok := legacy.ModernTarget(ext)
		return ok && converter.Supports(target)
	}
	return true
}
