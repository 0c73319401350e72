package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/oho/readcontent-daemon/internal/fixtures"
	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/ocr"
	"github.com/oho/readcontent-daemon/internal/pipeline"
	"github.com/oho/readcontent-daemon/internal/pipeline/extractors"
	"github.com/oho/readcontent-daemon/internal/storage"
)

type stubEngine struct {
	text      string
	err       error
	available bool
}

func (e *stubEngine) Name() string    { return "stub" }
func (e *stubEngine) Available() bool { return e.available }

func (e *stubEngine) Recognize(context.Context, string) (string, error) {
	return e.text, e.err
}

type testEnv struct {
	router  *chi.Mux
	db      *storage.Database
	tempDir string
	dir     string
}

func setupTestDB(t *testing.T) *storage.Database {
	t.Helper()
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestEnv(t *testing.T, eng *stubEngine) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	tmp := t.TempDir()
	conv := legacy.Unavailable{Reason: "test"}
	reg := extractors.CreateDefaultRegistry(ocr.NewBridge(eng, tmp), conv)
	svc := pipeline.NewService(reg, pipeline.WithRecorder(db), pipeline.WithTokenCounter(pipeline.EstimateTokens))

	r := chi.NewRouter()
	r.Post("/read-file", ReadFileHandler(svc))
	r.Post("/extract", ExtractHandler(svc))
	r.Get("/formats", FormatsHandler(eng, conv))
	r.Mount("/extractions", ExtractionsRouter(db, 50))
	return &testEnv{router: r, db: db, tempDir: tmp, dir: t.TempDir()}
}

func (env *testEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func TestReadFileNotFound(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	for _, body := range []any{
		map[string]string{"filePath": filepath.Join(env.dir, "missing.txt")},
		map[string]string{},
	} {
		w := env.post(t, "/read-file", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if got := decodeMap(t, w)["error"]; got != "File not found" {
			t.Errorf("error = %v", got)
		}
	}
}

func TestReadFileMalformedBodyIsLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := newTestEnv(t, &stubEngine{})
	req := httptest.NewRequest("POST", "/read-file", strings.NewReader(`{"filePath": `))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if got := decodeMap(t, w)["error"]; got != "File not found" {
		t.Errorf("error = %v", got)
	}
	if !strings.Contains(logs.String(), "Malformed request body") {
		t.Errorf("decode failure not logged: %q", logs.String())
	}
}

func TestReadFileUnsupportedType(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	path := filepath.Join(env.dir, "data.xyz")
	fixtures.WriteFile(t, path, []byte("x"))

	w := env.post(t, "/read-file", map[string]string{"filePath": path})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if got := decodeMap(t, w)["error"]; got != "Unsupported file type" {
		t.Errorf("error = %v", got)
	}
}

func TestReadFilePlainText(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	path := filepath.Join(env.dir, "note.txt")
	fixtures.WriteFile(t, path, []byte("hello\nworld"))

	w := env.post(t, "/read-file", map[string]string{"filePath": path})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) != `{"file_content":"hello world"}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestReadFileSpreadsheet(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	path := filepath.Join(env.dir, "book.xlsx")
	fixtures.WriteXLSX(t, path, map[string]any{"A1": "foo", "B1": "", "A2": "bar"})

	w := env.post(t, "/read-file", map[string]string{"filePath": path})
	if got := decodeMap(t, w)["file_content"]; got != "foo bar" {
		t.Errorf("file_content = %v", got)
	}
}

func TestReadFileFormatErrorIsContent(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	path := filepath.Join(env.dir, "broken.pptx")
	fixtures.WriteFile(t, path, []byte("not a zip"))

	w := env.post(t, "/read-file", map[string]string{"filePath": path})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	content, _ := decodeMap(t, w)["file_content"].(string)
	if !strings.HasPrefix(content, "Error reading PPTX file: ") {
		t.Errorf("file_content = %q", content)
	}
}

func TestReadFileOCRFailureIs500(t *testing.T) {
	env := newTestEnv(t, &stubEngine{err: errors.New("tesseract not installed")})
	path := filepath.Join(env.dir, "scan.png")
	fixtures.WriteFile(t, path, fixtures.PNG())

	w := env.post(t, "/read-file", map[string]string{"filePath": path})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	msg, _ := decodeMap(t, w)["error"].(string)
	if !strings.HasPrefix(msg, "Error processing file: ") || !strings.Contains(msg, "tesseract not installed") {
		t.Errorf("error = %q", msg)
	}
}

func TestReadFileRemovesTempFiles(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"ocr failure", errors.New("engine crashed")},
	} {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &stubEngine{text: "words", err: tt.err})
			path := filepath.Join(env.dir, "doc.docx")
			fixtures.WriteDOCX(t, path, []string{"Body"}, fixtures.Entry{Name: "image1.png", Data: fixtures.PNG()})

			w := env.post(t, "/read-file", map[string]string{"filePath": path})
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			entries, err := os.ReadDir(env.tempDir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("temporary files left behind: %d", len(entries))
			}
		})
	}
}

func TestExtractTaggedResult(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	good := filepath.Join(env.dir, "note.txt")
	bad := filepath.Join(env.dir, "broken.docx")
	old := filepath.Join(env.dir, "old.xls")
	fixtures.WriteFile(t, good, []byte("one two\nthree"))
	fixtures.WriteFile(t, bad, []byte("not a zip"))
	fixtures.WriteFile(t, old, []byte{0xd0, 0xcf})

	tests := []struct {
		path     string
		status   string
		category string
		content  string
		errPref  string
	}{
		{good, "ok", "plain_text", "one two three", ""},
		{bad, "error", "word_doc_modern", "", "Error reading DOCX file: "},
		{old, "unavailable", "spreadsheet_legacy", "", "Error reading XLS file: "},
	}
	for _, tt := range tests {
		w := env.post(t, "/extract", map[string]string{"filePath": tt.path})
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.path, w.Code)
		}
		var resp ExtractResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Status != tt.status || resp.Category != tt.category || resp.Content != tt.content {
			t.Errorf("%s: unexpected response %+v", tt.path, resp)
		}
		if !strings.HasPrefix(resp.Error, tt.errPref) || (tt.errPref == "" && resp.Error != "") {
			t.Errorf("%s: error = %q", tt.path, resp.Error)
		}
	}
}

func TestExtractValidationErrors(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	w := env.post(t, "/extract", map[string]string{"filePath": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp ExtractResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "error" || resp.Error != "File not found" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestExtractionsJournal(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})
	path := filepath.Join(env.dir, "note.txt")
	fixtures.WriteFile(t, path, []byte("hello"))
	for i := 0; i < 3; i++ {
		env.post(t, "/extract", map[string]string{"filePath": path})
	}

	w := env.get(t, "/extractions?limit=2")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Extractions []storage.Extraction `json:"extractions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Extractions) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Extractions))
	}
	if resp.Extractions[0].Path != path || resp.Extractions[0].Status != storage.StatusOK {
		t.Errorf("unexpected entry %+v", resp.Extractions[0])
	}

	w = env.get(t, "/extractions/stats")
	if got := decodeMap(t, w)["ok"]; got != float64(3) {
		t.Errorf("ok count = %v", got)
	}

	w = env.get(t, "/extractions?path="+filepath.Join(env.dir, "other.txt"))
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Extractions) != 0 {
		t.Errorf("expected no entries for other path, got %d", len(resp.Extractions))
	}
}

func TestFormatsAvailability(t *testing.T) {
	type format struct {
		Extension         string          `json:"extension"`
		Available         bool            `json:"available"`
		CategoryAvailable map[string]bool `json:"category_available"`
	}
	fetch := func(t *testing.T, ocrAvailable bool) map[string]format {
		t.Helper()
		env := newTestEnv(t, &stubEngine{available: ocrAvailable})
		w := env.get(t, "/formats")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp struct {
			Formats []format `json:"formats"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		out := make(map[string]format)
		for _, f := range resp.Formats {
			out[f.Extension] = f
		}
		return out
	}

	t.Run("without ocr", func(t *testing.T) {
		formats := fetch(t, false)
		want := map[string]bool{".png": false, ".doc": false, ".docx": true, ".pdf": false, ".txt": true}
		for ext, avail := range want {
			f, ok := formats[ext]
			if !ok {
				t.Errorf("missing %s", ext)
				continue
			}
			if f.Available != avail {
				t.Errorf("%s available = %v, want %v", ext, f.Available, avail)
			}
		}
		pdf := formats[".pdf"]
		if !pdf.CategoryAvailable["text_pdf"] || pdf.CategoryAvailable["image_pdf"] {
			t.Errorf("unexpected pdf categories %v", pdf.CategoryAvailable)
		}
	})

	t.Run("with ocr", func(t *testing.T) {
		formats := fetch(t, true)
		if !formats[".pdf"].Available || !formats[".png"].Available {
			t.Errorf("pdf and png should be available with ocr: %+v", formats)
		}
	})
}
