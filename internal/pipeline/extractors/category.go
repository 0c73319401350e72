package extractors

// Category is the handling class of a file, derived from its extension and,
// for PDFs, from whether the document has a text layer.
type Category string

const (
	CategoryImage              Category = "image"
	CategoryImagePDF           Category = "image_pdf"
	CategoryTextPDF            Category = "text_pdf"
	CategoryPlainText          Category = "plain_text"
	CategoryWordModern         Category = "word_doc_modern"
	CategoryWordLegacy         Category = "word_doc_legacy"
	CategorySpreadsheetModern  Category = "spreadsheet_modern"
	CategorySpreadsheetLegacy  Category = "spreadsheet_legacy"
	CategoryPresentationModern Category = "presentation_modern"
	CategoryPresentationLegacy Category = "presentation_legacy"
	CategoryUnsupported        Category = "unsupported"
)

// Legacy reports whether the category is a binary Office format.
func (c Category) Legacy() bool {
	switch c {
	case CategoryWordLegacy, CategorySpreadsheetLegacy, CategoryPresentationLegacy:
		return true
	}
	return false
}
