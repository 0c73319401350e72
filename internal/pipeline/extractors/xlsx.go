package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxExtractor streams cell values sheet by sheet, one non-empty value per
// line.
type XlsxExtractor struct{}

func (e *XlsxExtractor) Name() string              { return "xlsx" }
func (e *XlsxExtractor) Priority() int             { return 20 }
func (e *XlsxExtractor) Format(path string) string { return "XLSX" }

func (e *XlsxExtractor) CanHandle(cat Category) bool {
	return cat == CategorySpreadsheetModern
}

func (e *XlsxExtractor) Extract(ctx context.Context, path string) (string, error) {
	text, err := e.extract(ctx, path)
	if err != nil {
		return "", failed(e, path, err)
	}
	return text, nil
}

func (e *XlsxExtractor) extract(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.Rows(sheet)
		if err != nil {
			return "", fmt.Errorf("sheet %q: %w", sheet, err)
		}
		for rows.Next() {
			cols, err := rows.Columns()
			if err != nil {
				rows.Close()
				return "", fmt.Errorf("sheet %q: %w", sheet, err)
			}
			for _, v := range cols {
				if v != "" {
					lines = append(lines, v)
				}
			}
		}
		err = rows.Error()
		rows.Close()
		if err != nil {
			return "", fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}
	return strings.Join(lines, "\n"), nil
}
