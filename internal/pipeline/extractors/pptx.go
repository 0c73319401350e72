package extractors

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/oho/readcontent-daemon/internal/ocr"
)

// PptxExtractor walks slides in presentation order and, for each top-level
// shape, takes its text or the OCR text of its picture.
type PptxExtractor struct {
	bridge *ocr.Bridge
}

func (e *PptxExtractor) Name() string              { return "pptx" }
func (e *PptxExtractor) Priority() int             { return 20 }
func (e *PptxExtractor) Format(path string) string { return "PPTX" }

func (e *PptxExtractor) CanHandle(cat Category) bool {
	return cat == CategoryPresentationModern
}

func (e *PptxExtractor) Extract(ctx context.Context, path string) (string, error) {
	text, err := e.extract(ctx, path)
	if err != nil {
		return "", failed(e, path, err)
	}
	return text, nil
}

type pptxPresentation struct {
	Slides []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type pptxRelationships struct {
	Items []struct {
		ID         string `xml:"Id,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

type pptxShape struct {
	Paragraphs []struct {
		Items []struct {
			XMLName xml.Name
			Text    string `xml:"t"`
		} `xml:",any"`
	} `xml:"txBody>p"`
}

type pptxPicture struct {
	Blip struct {
		Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
	} `xml:"blipFill>blip"`
}

func (e *PptxExtractor) extract(ctx context.Context, file string) (string, error) {
	pkg, err := openPackage(file)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	var pres pptxPresentation
	if err := unmarshalPart(pkg, "ppt/presentation.xml", &pres); err != nil {
		return "", err
	}
	presRels, err := partRelationships(pkg, "ppt/presentation.xml")
	if err != nil {
		return "", err
	}

	var pieces []string
	for i, s := range pres.Slides {
		slidePart, ok := presRels[s.RID]
		if !ok {
			return "", fmt.Errorf("slide %d: relationship %q not found", i+1, s.RID)
		}
		out, err := e.slide(ctx, pkg, slidePart)
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", i+1, err)
		}
		pieces = append(pieces, out...)
	}
	return strings.TrimSpace(strings.Join(pieces, "\n")), nil
}

// slide returns the text of each top-level shape in tree order.
func (e *PptxExtractor) slide(ctx context.Context, pkg *ooxmlPackage, part string) ([]string, error) {
	data, err := pkg.read(part)
	if err != nil {
		return nil, err
	}
	rels, err := partRelationships(pkg, part)
	if err != nil {
		return nil, err
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var pieces []string
	// treeDepth is -1 before spTree and -2 after it closes.
	depth, treeDepth := 0, -1
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", part, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if treeDepth == -1 && t.Name.Local == "spTree" {
				treeDepth = depth + 1
				depth++
				continue
			}
			if treeDepth >= 0 && depth == treeDepth {
				switch t.Name.Local {
				case "sp":
					var sh pptxShape
					if err := decoder.DecodeElement(&sh, &t); err != nil {
						return nil, fmt.Errorf("parse %s: %w", part, err)
					}
					if text := sh.text(); text != "" {
						pieces = append(pieces, text)
					}
					continue
				case "pic":
					var pic pptxPicture
					if err := decoder.DecodeElement(&pic, &t); err != nil {
						return nil, fmt.Errorf("parse %s: %w", part, err)
					}
					text, err := e.picture(ctx, pkg, rels, pic.Blip.Embed)
					if err != nil {
						return nil, err
					}
					if text != "" {
						pieces = append(pieces, text)
					}
					continue
				}
			}
			depth++
		case xml.EndElement:
			depth--
			if depth < treeDepth {
				treeDepth = -2
			}
		}
	}
	return pieces, nil
}

func (e *PptxExtractor) picture(ctx context.Context, pkg *ooxmlPackage, rels map[string]string, rid string) (string, error) {
	target, ok := rels[rid]
	if !ok || rid == "" {
		slog.Debug("Picture without embedded image", "rid", rid)
		return "", nil
	}
	blob, err := pkg.read(target)
	if err != nil {
		slog.Debug("Skipping embedded media", "member", target, "error", err)
		return "", nil
	}
	text, ok, err := e.bridge.RecognizeEmbedded(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", target, err)
	}
	if !ok {
		slog.Debug("Skipping non-raster media", "member", target)
		return "", nil
	}
	return text, nil
}

func (s *pptxShape) text() string {
	if len(s.Paragraphs) == 0 {
		return ""
	}
	lines := make([]string, len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		var b strings.Builder
		for _, item := range p.Items {
			switch item.XMLName.Local {
			case "r", "fld":
				b.WriteString(item.Text)
			case "br":
				b.WriteString("\n")
			}
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func unmarshalPart(pkg *ooxmlPackage, part string, v any) error {
	data, err := pkg.read(part)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", part, err)
	}
	return nil
}

// partRelationships maps relationship IDs of part to resolved part names.
// A part without a relationships file has none.
func partRelationships(pkg *ooxmlPackage, part string) (map[string]string, error) {
	relsPart := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
	out := make(map[string]string)
	if _, ok := pkg.files[relsPart]; !ok {
		return out, nil
	}
	var rels pptxRelationships
	if err := unmarshalPart(pkg, relsPart, &rels); err != nil {
		return nil, err
	}
	for _, r := range rels.Items {
		if r.TargetMode == "External" {
			continue
		}
		if strings.HasPrefix(r.Target, "/") {
			out[r.ID] = normalizePart(r.Target)
			continue
		}
		out[r.ID] = path.Join(path.Dir(part), r.Target)
	}
	return out, nil
}
