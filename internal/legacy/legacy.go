// Package legacy converts binary Office documents (.doc, .xls, .ppt) into
// their zip-based equivalents by driving an installed office application:
// LibreOffice where present, otherwise macOS textutil for .doc only.
// Hosts without either get an Unavailable converter, so modern formats keep
// working and legacy formats fail with ErrUnavailable.
package legacy

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"github.com/oho/readcontent-daemon/internal/config"
)

// ErrUnavailable means legacy conversion cannot run on this host.
var ErrUnavailable = errors.New("legacy format conversion is not available on this host")

// Converter turns a legacy document into the modern format named by target
// ("docx", "xlsx" or "pptx"). The returned release func removes everything the
// conversion created and must be called once the caller is done with path.
type Converter interface {
	Name() string
	Available() bool
	// Supports reports whether Convert can produce target on this host.
	Supports(target string) bool
	Convert(ctx context.Context, src, target string) (path string, release func(), err error)
}

// ModernTarget maps a legacy extension to its conversion target.
func ModernTarget(ext string) (string, bool) {
	switch ext {
	case ".doc":
		return "docx", true
	case ".xls":
		return "xlsx", true
	case ".ppt":
		return "pptx", true
	}
	return "", false
}

// New picks the converter for this host.
func New(cfg config.LegacyConfig, tempDir string) Converter {
	if !cfg.Enabled {
		return Unavailable{Reason: "disabled by configuration"}
	}
	if path, err := exec.LookPath(cfg.SofficePath); err == nil {
		return NewOffice(path, tempDir, cfg.Timeout, cfg.MaxConcurrent)
	}
	if cfg.TextutilPath != "" {
		if path, err := exec.LookPath(cfg.TextutilPath); err == nil {
			slog.Warn("office application not found, converting .doc only", "soffice", cfg.SofficePath, "textutil", path)
			return NewTextutil(path, tempDir, cfg.Timeout)
		}
	}
	slog.Warn("office application not found, legacy formats unavailable", "soffice", cfg.SofficePath)
	return Unavailable{Reason: "office application not installed"}
}

// Unavailable is the converter for hosts without an office application.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Name() string    { return "unavailable" }
func (u Unavailable) Available() bool { return false }

func (u Unavailable) Supports(string) bool { return false }

func (u Unavailable) Convert(context.Context, string, string) (string, func(), error) {
	return "", func() {}, ErrUnavailable
}
