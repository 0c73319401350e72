package storage

import "time"

// ExtractionStatus is the outcome of one extraction request.
type ExtractionStatus string

const (
	StatusOK          ExtractionStatus = "ok"
	StatusError       ExtractionStatus = "error"
	StatusUnavailable ExtractionStatus = "unavailable"
)

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Extraction is one row of the extraction journal. Content is never stored,
// only its size and hash.
type Extraction struct {
	ID           int64            `json:"id"`
	Path         string           `json:"path"`
	Category     string           `json:"category"`
	Status       ExtractionStatus `json:"status"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	CharCount    int              `json:"char_count"`
	TokenCount   int              `json:"token_count"`
	DurationMs   int64            `json:"duration_ms"`
	ContentHash  *string          `json:"content_hash,omitempty"`
	MimeType     *string          `json:"mime_type,omitempty"`
	CreatedAt    string           `json:"created_at"`
}
