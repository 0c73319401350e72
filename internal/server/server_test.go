package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/oho/readcontent-daemon/internal/config"
	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/storage"
)

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Test regular request
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS origin header missing")
	}
	if w.Header().Get("Access-Control-Allow-Methods") != "*" {
		t.Error("CORS methods header missing")
	}
	if w.Header().Get("Access-Control-Allow-Headers") != "*" {
		t.Error("CORS headers header missing")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCORSPreflightOptions(t *testing.T) {
	called := false
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if called {
		t.Error("OPTIONS request should not reach inner handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for OPTIONS, got %d", w.Code)
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter()
	if r == nil {
		t.Fatal("NewRouter returned nil")
	}

	// Add a test route and verify it works
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected 'ok', got %q", w.Body.String())
	}
}

func TestNewRouterRecoversPanic(t *testing.T) {
	r := NewRouter()
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

type staticEngine struct{ available bool }

func (e staticEngine) Name() string    { return "command" }
func (e staticEngine) Available() bool { return e.available }

func (e staticEngine) Recognize(context.Context, string) (string, error) { return "", nil }

func TestHealthHandler(t *testing.T) {
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		t.Fatal(err)
	}
	db.RecordExtraction(storage.Extraction{Path: "/a.txt", Category: "plain_text", Status: storage.StatusOK})

	cfg := config.DefaultConfig()
	cfg.Port = 5050
	handler := HealthHandler(cfg, staticEngine{available: true}, legacy.Unavailable{Reason: "test"}, db)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Port != 5050 || resp.Extractions != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if !resp.OCR.Available || resp.OCR.Name != "command" {
		t.Errorf("unexpected ocr status: %+v", resp.OCR)
	}
	if resp.Legacy.Available || resp.Legacy.Name != "unavailable" {
		t.Errorf("unexpected legacy status: %+v", resp.Legacy)
	}
}

func TestHealthHandlerWithoutJournal(t *testing.T) {
	handler := HealthHandler(config.DefaultConfig(), staticEngine{}, legacy.Unavailable{}, nil)
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/health", nil))

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.DB != "disabled" {
		t.Errorf("expected db disabled, got %q", resp.DB)
	}
}
