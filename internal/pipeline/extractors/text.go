package extractors

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// TextExtractor reads plain text files as UTF-8.
type TextExtractor struct{}

func (e *TextExtractor) Name() string              { return "text" }
func (e *TextExtractor) Priority() int             { return 10 }
func (e *TextExtractor) Format(path string) string { return "text" }

func (e *TextExtractor) CanHandle(cat Category) bool {
	return cat == CategoryPlainText
}

func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", failed(e, path, err)
	}
	if off := invalidUTF8(data); off >= 0 {
		return "", failed(e, path, fmt.Errorf("invalid UTF-8 at byte offset %d", off))
	}
	return string(data), nil
}

// invalidUTF8 returns the offset of the first invalid sequence, or -1.
func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
