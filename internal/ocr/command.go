package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// lookPath is swapped in tests to simulate a missing binary.
var lookPath = exec.LookPath

// Command runs the tesseract binary once per image.
type Command struct {
	path     string
	language string
	tessdata string
}

func NewCommand(path, language, tessdata string) *Command {
	if path == "" {
		path = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Command{path: path, language: language, tessdata: tessdata}
}

func (c *Command) Name() string { return "tesseract" }

func (c *Command) Available() bool {
	_, err := lookPath(c.path)
	return err == nil
}

func (c *Command) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", c.language}
	if c.tessdata != "" {
		args = append(args, "--tessdata-dir", c.tessdata)
	}
	return args
}

func (c *Command) Recognize(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, c.args(imagePath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
