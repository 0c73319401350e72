// Package fixtures builds small documents for tests: PDFs with or without a
// text layer, DOCX, PPTX and XLSX packages, and PNG/JPEG images.
package fixtures

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WritePDF writes a PDF with one page per entry in pages. An empty entry
// produces a page with no text layer.
func WritePDF(t testing.TB, path string, pages ...string) {
	t.Helper()
	if err := os.WriteFile(path, BuildPDF(pages...), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
}

// BuildPDF returns the bytes of a minimal, valid PDF with a correct xref table.
func BuildPDF(pages ...string) []byte {
	// 1 catalog, 2 pages, 3 font, then a page/content pair per page.
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", escapePDF(text))
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	return assemblePDF(objects)
}

// WriteXObjectPDF writes a one-page PDF whose page content only invokes a
// Form XObject, and the XObject draws text.
func WriteXObjectPDF(t testing.TB, path, text string) {
	t.Helper()
	page := "q /Fm1 Do Q"
	form := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", escapePDF(text))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [4 0 R] /Count 1 >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 3 0 R >> /XObject << /Fm1 6 0 R >> >> /Contents 5 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(page), page),
		fmt.Sprintf("<< /Type /XObject /Subtype /Form /BBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Length %d >>\nstream\n%s\nendstream", len(form), form),
	}
	WriteFile(t, path, assemblePDF(objects))
}

// assemblePDF numbers objects from 1 and writes the xref table and trailer.
// Object 1 must be the catalog.
func assemblePDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func escapePDF(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

// PNG returns an encoded 8x8 PNG.
func PNG() []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid())
	return buf.Bytes()
}

// JPEG returns an encoded 8x8 JPEG.
func JPEG() []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(), nil)
	return buf.Bytes()
}

func solid() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

// WriteFile writes data to path or fails the test.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteZip writes a zip archive whose entries are created in the given order.
func WriteZip(t testing.TB, path string, entries ...Entry) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	WriteFile(t, path, buf.Bytes())
}

// WriteXLSX writes a workbook whose first sheet holds cells, keyed by
// address ("A1").
func WriteXLSX(t testing.TB, path string, cells map[string]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for addr, v := range cells {
		if err := f.SetCellValue(sheet, addr, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

// Entry is a named zip member.
type Entry struct {
	Name string
	Data []byte
}

const (
	nsW = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	nsA = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsP = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	nsR = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
)

// WriteDOCX writes a word-processing package with one body paragraph per
// entry and the given media members under word/media/.
func WriteDOCX(t testing.TB, path string, paragraphs []string, media ...Entry) {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p)
	}
	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document %s><w:body>%s<w:sectPr/></w:body></w:document>`, nsW, body.String())

	entries := []Entry{
		{Name: "[Content_Types].xml", Data: []byte(`<?xml version="1.0"?><Types/>`)},
		{Name: "word/document.xml", Data: []byte(doc)},
	}
	for _, m := range media {
		entries = append(entries, Entry{Name: "word/media/" + m.Name, Data: m.Data})
	}
	WriteZip(t, path, entries...)
}

// Shape is a top-level slide shape: either text or a picture.
type Shape struct {
	Text  string
	Image []byte // picture bytes; Text is ignored when set
	Ext   string // media extension for Image, e.g. ".png"
}

// WritePPTX writes a presentation package. Slides are listed in
// presentation.xml in the given order but stored in reverse part order, so
// readers that rely on part names get the order wrong.
func WritePPTX(t testing.TB, path string, slides ...[]Shape) {
	t.Helper()
	var sldIDs, presRels strings.Builder
	var entries []Entry
	media := 0
	for i := range slides {
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		partNo := len(slides) - i
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, partNo)

		var tree, rels strings.Builder
		for j, sh := range slides[i] {
			if sh.Image != nil {
				media++
				name := fmt.Sprintf("image%d%s", media, sh.Ext)
				entries = append(entries, Entry{Name: "ppt/media/" + name, Data: sh.Image})
				fmt.Fprintf(&rels, `<Relationship Id="rIdImg%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/%s"/>`, j, name)
				fmt.Fprintf(&tree, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture"/></p:nvPicPr>`+
					`<p:blipFill><a:blip r:embed="rIdImg%d"/></p:blipFill></p:pic>`, j+2, j)
				continue
			}
			var paras strings.Builder
			for _, line := range strings.Split(sh.Text, "\n") {
				fmt.Fprintf(&paras, `<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, line)
			}
			fmt.Fprintf(&tree, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Text"/></p:nvSpPr>`+
				`<p:txBody><a:bodyPr/>%s</p:txBody></p:sp>`, j+2, paras.String())
		}
		slide := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><p:sld %s %s %s><p:cSld><p:spTree>`+
			`<p:nvGrpSpPr><p:cNvPr id="1" name=""/></p:nvGrpSpPr>%s</p:spTree></p:cSld></p:sld>`,
			nsA, nsP, nsR, tree.String())
		entries = append(entries,
			Entry{Name: fmt.Sprintf("ppt/slides/slide%d.xml", partNo), Data: []byte(slide)},
			Entry{Name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", partNo), Data: []byte(
				`<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
					rels.String() + `</Relationships>`)},
		)
	}
	pres := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><p:presentation %s %s><p:sldIdLst>%s</p:sldIdLst></p:presentation>`,
		nsP, nsR, sldIDs.String())
	entries = append([]Entry{
		{Name: "[Content_Types].xml", Data: []byte(`<?xml version="1.0"?><Types/>`)},
		{Name: "ppt/presentation.xml", Data: []byte(pres)},
		{Name: "ppt/_rels/presentation.xml.rels", Data: []byte(
			`<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
				presRels.String() + `</Relationships>`)},
	}, entries...)
	WriteZip(t, path, entries...)
}
