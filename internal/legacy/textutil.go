package legacy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Textutil converts word-processor documents with the macOS textutil tool.
// It reads .doc but has no spreadsheet or presentation support, so only the
// docx target is available.
type Textutil struct {
	binary  string
	tempDir string
	timeout time.Duration

	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewTextutil(binary, tempDir string, timeout time.Duration) *Textutil {
	return &Textutil{
		binary:  binary,
		tempDir: tempDir,
		timeout: timeout,
		command: exec.CommandContext,
	}
}

func (x *Textutil) Name() string                { return "textutil" }
func (x *Textutil) Available() bool             { return true }
func (x *Textutil) Supports(target string) bool { return target == "docx" }

func (x *Textutil) Convert(ctx context.Context, src, target string) (string, func(), error) {
	noop := func() {}
	if !x.Supports(target) {
		return "", noop, fmt.Errorf("textutil cannot produce %s: %w", target, ErrUnavailable)
	}
	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	outDir, err := os.MkdirTemp(x.tempDir, "legacy-*")
	if err != nil {
		return "", noop, fmt.Errorf("create conversion dir: %w", err)
	}
	release := func() { os.RemoveAll(outDir) }

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(outDir, base+"."+target)
	cmd := x.command(ctx, x.binary, "-convert", target, "-output", out, src)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		release()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", noop, fmt.Errorf("textutil: %w: %s", err, msg)
		}
		return "", noop, fmt.Errorf("textutil: %w", err)
	}
	if _, err := os.Stat(out); err != nil {
		release()
		return "", noop, fmt.Errorf("textutil produced no %s output", target)
	}
	return out, release, nil
}
