package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/pipeline/extractors"
	"github.com/oho/readcontent-daemon/internal/storage"
)

var (
	// ErrFileNotFound is returned when the request names no path or a path
	// that does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedType is returned for extensions no extractor handles.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Recorder receives one journal entry per extraction.
type Recorder interface {
	RecordExtraction(e storage.Extraction) (int64, error)
}

// Outcome is the result of an extraction that got as far as an extractor.
type Outcome struct {
	Path     string
	Category extractors.Category
	Status   storage.ExtractionStatus
	// Content is the normalized text, or the normalized error message when
	// Status is not ok.
	Content    string
	Err        error
	TokenCount int
	Duration   time.Duration
}

// Service runs validate, classify, extract and normalize for one path.
type Service struct {
	registry    *extractors.Registry
	recorder    Recorder
	countTokens func(string) int
}

type Option func(*Service)

// WithRecorder journals every extraction to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithTokenCounter sets the function used to fill Outcome.TokenCount.
func WithTokenCounter(fn func(string) int) Option {
	return func(s *Service) { s.countTokens = fn }
}

func NewService(registry *extractors.Registry, opts ...Option) *Service {
	s := &Service{registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract processes path. ErrFileNotFound and ErrUnsupportedType are
// validation failures. A format-specific failure is not an error: it comes
// back as an Outcome with Status error or unavailable. Any other error means
// the request could not be dispatched.
func (s *Service) Extract(ctx context.Context, path string) (*Outcome, error) {
	start := time.Now()
	if path == "" {
		return nil, ErrFileNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	cat, err := Classify(path)
	if err != nil {
		s.record(path, cat, storage.StatusError, "", err, time.Since(start), 0)
		return nil, err
	}
	if cat == extractors.CategoryUnsupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, path)
	}

	text, err := s.registry.Extract(ctx, cat, path)
	out := &Outcome{Path: path, Category: cat, Status: storage.StatusOK}

	var fe *extractors.FormatError
	switch {
	case err == nil:
		out.Content = Normalize(text)
		if s.countTokens != nil {
			out.TokenCount = s.countTokens(out.Content)
		}
	case errors.As(err, &fe):
		out.Err = fe
		out.Content = Normalize(fe.Error())
		out.Status = storage.StatusError
		if errors.Is(err, legacy.ErrUnavailable) {
			out.Status = storage.StatusUnavailable
		}
		slog.Info("Extraction failed", "path", path, "category", cat, "error", err)
	default:
		s.record(path, cat, storage.StatusError, "", err, time.Since(start), 0)
		return nil, err
	}

	out.Duration = time.Since(start)
	s.record(path, cat, out.Status, out.Content, out.Err, out.Duration, out.TokenCount)
	return out, nil
}

func (s *Service) record(path string, cat extractors.Category, status storage.ExtractionStatus,
	content string, failure error, d time.Duration, tokens int) {
	if s.recorder == nil {
		return
	}
	e := storage.Extraction{
		Path:       path,
		Category:   string(cat),
		Status:     status,
		TokenCount: tokens,
		DurationMs: d.Milliseconds(),
		MimeType:   GuessMimeType(path),
	}
	if failure != nil {
		msg := failure.Error()
		e.ErrorMessage = &msg
	} else {
		e.CharCount = len([]rune(content))
	}
	if hash, err := ComputeContentHash(path); err == nil {
		e.ContentHash = &hash
	}
	if _, err := s.recorder.RecordExtraction(e); err != nil {
		slog.Warn("Failed to journal extraction", "path", path, "error", err)
	}
}
