package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oho/readcontent-daemon/internal/storage"
)

const maxHistoryLimit = 1000

func ExtractionsRouter(db *storage.Database, defaultLimit int) chi.Router {
	r := chi.NewRouter()

	limitFrom := func(r *http.Request) int {
		limit := defaultLimit
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 {
				limit = n
			}
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
		return limit
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		var (
			entries []storage.Extraction
			err     error
		)
		if path := r.URL.Query().Get("path"); path != "" {
			entries, err = db.ListExtractionsForPath(path, limitFrom(r))
		} else {
			entries, err = db.ListExtractions(limitFrom(r))
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []storage.Extraction{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"extractions": entries})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		counts, err := db.CountExtractionsByStatus()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, counts)
	})

	return r
}
