// Package pdfdoc wraps the PDF libraries used by the extraction pipeline:
// go-fitz (MuPDF) for the text-layer probe, plain text and page
// rasterization, and ledongthuc/pdf as a pure-Go fallback for plain text.
package pdfdoc

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// HasTextLayer reports whether any page of the document yields non-blank text.
// Every page is inspected before answering false.
func HasTextLayer(path string) (bool, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return false, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	found := false
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return false, fmt.Errorf("text page %d: %w", i+1, err)
		}
		if strings.TrimSpace(text) != "" {
			found = true
		}
	}
	return found, nil
}

// PlainText returns every page's text, in page order, joined by a line break.
// MuPDF reads it, as it does for HasTextLayer, so a document probed as text
// never extracts empty. The pure-Go reader is tried when MuPDF cannot read
// the file or finds no text.
func PlainText(path string) (string, error) {
	text, err := plainTextFitz(path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		slog.Warn("mupdf failed, trying pdf reader", "path", path, "error", err)
	}
	alt, altErr := plainTextPDF(path)
	switch {
	case altErr == nil && strings.TrimSpace(alt) != "":
		return alt, nil
	case err != nil:
		return "", err
	}
	return text, nil
}

func plainTextPDF(path string) (text string, err error) {
	// ledongthuc/pdf panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

func plainTextFitz(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("text page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// RenderPages rasterizes each page at the library's default resolution and
// hands it to fn in page order. Rendering stops at the first error.
func RenderPages(path string, fn func(page int, img image.Image) error) error {
	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			return fmt.Errorf("render page %d: %w", i+1, err)
		}
		if err := fn(i+1, img); err != nil {
			return err
		}
	}
	return nil
}
