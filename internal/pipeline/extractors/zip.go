package extractors

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

const maxPartMB = 50

// ooxmlPackage indexes the members of a zip-based Office document.
type ooxmlPackage struct {
	r     *zip.ReadCloser
	files map[string]*zip.File
}

func openPackage(path string) (*ooxmlPackage, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[normalizePart(f.Name)] = f
	}
	return &ooxmlPackage{r: r, files: files}, nil
}

func (p *ooxmlPackage) Close() error { return p.r.Close() }

// members returns the archive entries in stored order.
func (p *ooxmlPackage) members() []*zip.File { return p.r.File }

// read returns the content of a part, or an error if it is missing or larger
// than maxPartMB.
func (p *ooxmlPackage) read(name string) ([]byte, error) {
	f, ok := p.files[normalizePart(name)]
	if !ok {
		return nil, fmt.Errorf("%s not found in archive", name)
	}
	return readMember(f)
}

func readMember(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxPartMB*1024*1024 {
		return nil, fmt.Errorf("%s exceeds %d MB", f.Name, maxPartMB)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxPartMB*1024*1024))
}

func normalizePart(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
}
