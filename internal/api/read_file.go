package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/oho/readcontent-daemon/internal/pipeline"
)

// ReadFileHandler returns a handler for POST /read-file. Format-specific
// failures come back as 200 with the error text as file_content.
func ReadFileHandler(svc *pipeline.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := decodeFilePath(r)

		out, err := svc.Extract(r.Context(), path)
		switch {
		case errors.Is(err, pipeline.ErrFileNotFound):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgFileNotFound})
			return
		case errors.Is(err, pipeline.ErrUnsupportedType):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgUnsupportedType})
			return
		case err != nil:
			slog.Error("Error processing file", "path", path, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error processing file: " + err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"file_content": out.Content})
	}
}
