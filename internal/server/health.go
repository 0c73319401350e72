package server

import (
	"encoding/json"
	"net/http"

	"github.com/oho/readcontent-daemon/internal/config"
	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/ocr"
	"github.com/oho/readcontent-daemon/internal/storage"
)

type ComponentStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

type HealthResponse struct {
	Status      string          `json:"status"`
	OCR         ComponentStatus `json:"ocr"`
	Legacy      ComponentStatus `json:"legacy"`
	DB          string          `json:"db"`
	Extractions int             `json:"extractions"`
	DataDir     string          `json:"data_dir"`
	Port        int             `json:"port"`
}

// HealthHandler returns a handler for GET /health. db may be nil when the
// journal is disabled.
func HealthHandler(cfg config.Config, engine ocr.Engine, converter legacy.Converter, db *storage.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "connected"
		count := 0
		if db == nil {
			dbStatus = "disabled"
		} else if n, err := db.CountExtractions(); err != nil {
			dbStatus = "unavailable"
		} else {
			count = n
		}

		resp := HealthResponse{
			Status:      "ok",
			OCR:         ComponentStatus{Name: engine.Name(), Available: engine.Available()},
			Legacy:      ComponentStatus{Name: converter.Name(), Available: converter.Available()},
			DB:          dbStatus,
			Extractions: count,
			DataDir:     cfg.DataDir,
			Port:        cfg.Port,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
