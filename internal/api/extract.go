package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/oho/readcontent-daemon/internal/pipeline"
	"github.com/oho/readcontent-daemon/internal/storage"
)

type ExtractResponse struct {
	Status     string `json:"status"`
	Category   string `json:"category,omitempty"`
	Content    string `json:"content"`
	Error      string `json:"error,omitempty"`
	TokenCount int    `json:"token_count"`
	DurationMs int64  `json:"duration_ms"`
}

// ExtractHandler returns a handler for POST /extract, which reports success
// and failure in the status field instead of inside the content.
func ExtractHandler(svc *pipeline.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := decodeFilePath(r)

		out, err := svc.Extract(r.Context(), path)
		switch {
		case errors.Is(err, pipeline.ErrFileNotFound):
			writeJSON(w, http.StatusBadRequest, ExtractResponse{Status: string(storage.StatusError), Error: msgFileNotFound})
			return
		case errors.Is(err, pipeline.ErrUnsupportedType):
			writeJSON(w, http.StatusBadRequest, ExtractResponse{Status: string(storage.StatusError), Error: msgUnsupportedType})
			return
		case err != nil:
			slog.Error("Error processing file", "path", path, "error", err)
			writeJSON(w, http.StatusInternalServerError, ExtractResponse{
				Status: string(storage.StatusError),
				Error:  "Error processing file: " + err.Error(),
			})
			return
		}

		resp := ExtractResponse{
			Status:     string(out.Status),
			Category:   string(out.Category),
			TokenCount: out.TokenCount,
			DurationMs: out.Duration.Milliseconds(),
		}
		if out.Err != nil {
			resp.Error = out.Err.Error()
		} else {
			resp.Content = out.Content
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
