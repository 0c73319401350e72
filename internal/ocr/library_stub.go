//go:build !gosseract

package ocr

import "errors"

func newLibrary(string, string) (Engine, error) {
	return nil, errors.New("ocr engine \"library\" requires a build with -tags gosseract")
}
