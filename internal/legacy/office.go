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

	"golang.org/x/sync/semaphore"
)

// Office converts documents with a headless LibreOffice (soffice). The
// application keeps a single instance per user profile, so conversions are
// bounded by a semaphore.
type Office struct {
	binary  string
	tempDir string
	timeout time.Duration
	sem     *semaphore.Weighted

	// command builds the conversion process; tests replace it.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewOffice(binary, tempDir string, timeout time.Duration, maxConcurrent int64) *Office {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Office{
		binary:  binary,
		tempDir: tempDir,
		timeout: timeout,
		sem:     semaphore.NewWeighted(maxConcurrent),
		command: exec.CommandContext,
	}
}

func (o *Office) Name() string    { return "libreoffice" }
func (o *Office) Available() bool { return true }

func (o *Office) Supports(target string) bool {
	switch target {
	case "docx", "xlsx", "pptx":
		return true
	}
	return false
}

func (o *Office) Convert(ctx context.Context, src, target string) (string, func(), error) {
	noop := func() {}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return "", noop, fmt.Errorf("wait for office application: %w", err)
	}
	defer o.sem.Release(1)

	outDir, err := os.MkdirTemp(o.tempDir, "legacy-*")
	if err != nil {
		return "", noop, fmt.Errorf("create conversion dir: %w", err)
	}
	release := func() { os.RemoveAll(outDir) }

	// A private profile keeps this run from attaching to a desktop session.
	profile := "-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(outDir, "profile"))
	cmd := o.command(ctx, o.binary, profile, "--headless", "--norestore",
		"--convert-to", target, "--outdir", outDir, src)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		release()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", noop, fmt.Errorf("soffice: %w: %s", err, msg)
		}
		return "", noop, fmt.Errorf("soffice: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(outDir, base+"."+target)
	if _, err := os.Stat(out); err != nil {
		release()
		return "", noop, fmt.Errorf("soffice produced no %s output", target)
	}
	return out, release, nil
}
