package extractors

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/oho/readcontent-daemon/internal/ocr"
)

// DocxExtractor reads body paragraphs from word/document.xml and OCRs the
// raster images stored under word/media/.
type DocxExtractor struct {
	bridge *ocr.Bridge
}

func (e *DocxExtractor) Name() string              { return "docx" }
func (e *DocxExtractor) Priority() int             { return 20 }
func (e *DocxExtractor) Format(path string) string { return "DOCX" }

func (e *DocxExtractor) CanHandle(cat Category) bool {
	return cat == CategoryWordModern
}

func (e *DocxExtractor) Extract(ctx context.Context, path string) (string, error) {
	text, err := e.extract(ctx, path)
	if err != nil {
		return "", failed(e, path, err)
	}
	return text, nil
}

func (e *DocxExtractor) extract(ctx context.Context, path string) (string, error) {
	pkg, err := openPackage(path)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	data, err := pkg.read("word/document.xml")
	if err != nil {
		return "", err
	}
	paragraphs, err := docxParagraphs(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var images strings.Builder
	for _, f := range pkg.members() {
		if !strings.HasPrefix(normalizePart(f.Name), "word/media/") {
			continue
		}
		blob, err := readMember(f)
		if err != nil {
			slog.Debug("Skipping embedded media", "path", path, "member", f.Name, "error", err)
			continue
		}
		text, ok, err := e.bridge.RecognizeEmbedded(ctx, blob)
		if err != nil {
			return "", fmt.Errorf("ocr %s: %w", f.Name, err)
		}
		if !ok {
			slog.Debug("Skipping non-raster media", "path", path, "member", f.Name)
			continue
		}
		images.WriteString(text)
		images.WriteString("\n")
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n") + "\n" + images.String()), nil
}

// docxParagraphs returns the text of each paragraph that is a direct child of
// w:body, in document order. Table cells and text boxes are not body
// paragraphs and are left out.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var paragraphs []string
	var stack []string
	var current strings.Builder
	paraDepth := -1

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" && paraDepth < 0 && len(stack) > 0 && stack[len(stack)-1] == "body" {
				paraDepth = len(stack)
				current.Reset()
			}
			if paraDepth >= 0 && inParagraphRun(stack, paraDepth) {
				switch name {
				case "tab":
					current.WriteString("\t")
				case "br", "cr":
					current.WriteString("\n")
				}
			}
			stack = append(stack, name)

		case xml.CharData:
			if paraDepth >= 0 && len(stack) > 0 && stack[len(stack)-1] == "t" &&
				inParagraphRun(stack[:len(stack)-1], paraDepth) {
				current.Write(t)
			}

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if paraDepth >= 0 && len(stack) == paraDepth {
				paragraphs = append(paragraphs, current.String())
				paraDepth = -1
			}
		}
	}
	return paragraphs, nil
}

// inParagraphRun reports whether the innermost element of stack is a run that
// belongs directly to the body paragraph at paraDepth, either as its child or
// through a hyperlink.
func inParagraphRun(stack []string, paraDepth int) bool {
	n := len(stack)
	if n == 0 || stack[n-1] != "r" {
		return false
	}
	switch n - paraDepth {
	case 2:
		return true
	case 3:
		return stack[paraDepth+1] == "hyperlink"
	}
	return false
}
