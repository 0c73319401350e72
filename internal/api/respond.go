package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	msgFileNotFound    = "File not found"
	msgUnsupportedType = "Unsupported file type"
)

type filePathRequest struct {
	FilePath string `json:"filePath"`
}

// decodeFilePath reads the request body. A missing or malformed body yields
// an empty path, which is then reported as not found.
func decodeFilePath(r *http.Request) string {
	var req filePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Malformed request body", "path", r.URL.Path, "error", err)
	}
	return req.FilePath
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
