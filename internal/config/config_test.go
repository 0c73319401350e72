package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Host)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("expected OCR language eng, got %s", cfg.OCR.Language)
	}
	if cfg.OCR.Engine != "command" {
		t.Errorf("expected command OCR engine, got %s", cfg.OCR.Engine)
	}
	if !cfg.Legacy.Enabled || cfg.Legacy.MaxConcurrent != 1 {
		t.Errorf("unexpected legacy defaults: %+v", cfg.Legacy)
	}
	if cfg.Legacy.Timeout != 2*time.Minute {
		t.Errorf("expected 2m legacy timeout, got %s", cfg.Legacy.Timeout)
	}
	if cfg.Addr() != "127.0.0.1:5000" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
}

func TestLoadConfigEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RC_CONFIG", "")
	t.Setenv("RC_DATA_DIR", dir)
	t.Setenv("RC_PORT", "9999")
	t.Setenv("RC_TESSERACT_PATH", "/opt/tesseract/bin/tesseract")
	t.Setenv("RC_LEGACY_ENABLED", "false")
	t.Setenv("RC_LEGACY_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DataDir != dir {
		t.Errorf("expected data dir %s, got %s", dir, cfg.DataDir)
	}
	if cfg.DBPath != filepath.Join(dir, "journal.db") {
		t.Errorf("db path should follow data dir, got %s", cfg.DBPath)
	}
	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.OCR.TesseractPath != "/opt/tesseract/bin/tesseract" {
		t.Errorf("expected tesseract path override, got %s", cfg.OCR.TesseractPath)
	}
	if cfg.Legacy.Enabled {
		t.Error("expected legacy conversion disabled")
	}
	if cfg.Legacy.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Legacy.Timeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	path := filepath.Join(dir, "config.yaml")
	content := "data_dir: " + dataDir + "\n" +
		"port: 6000\n" +
		"ocr:\n  language: deu\n" +
		"legacy:\n  enabled: false\n  timeout: 45s\n" +
		"journal:\n  history_limit: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RC_PORT", "")
	t.Setenv("RC_DATA_DIR", "")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Port != 6000 {
		t.Errorf("expected port 6000, got %d", cfg.Port)
	}
	if cfg.OCR.Language != "deu" {
		t.Errorf("expected deu, got %s", cfg.OCR.Language)
	}
	// Unset keys keep their defaults.
	if cfg.OCR.TesseractPath != "tesseract" {
		t.Errorf("expected default tesseract path, got %s", cfg.OCR.TesseractPath)
	}
	if cfg.Legacy.Enabled || cfg.Legacy.Timeout != 45*time.Second {
		t.Errorf("unexpected legacy config: %+v", cfg.Legacy)
	}
	if cfg.Journal.HistoryLimit != 10 {
		t.Errorf("expected history limit 10, got %d", cfg.Journal.HistoryLimit)
	}
	if cfg.TempDir != filepath.Join(dataDir, "tmp") {
		t.Errorf("temp dir should follow data dir, got %s", cfg.TempDir)
	}
	if _, err := os.Stat(cfg.TempDir); err != nil {
		t.Errorf("temp dir not created: %v", err)
	}
}

func TestLoadConfigFileEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("data_dir: "+dir+"\nport: 6000\n"), 0o644)
	t.Setenv("RC_PORT", "7000")
	t.Setenv("RC_DATA_DIR", "")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("env should override file, got port %d", cfg.Port)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.TempDir = dir + "/tmp"

	cfg.EnsureDirs()

	if _, err := os.Stat(cfg.TempDir); os.IsNotExist(err) {
		t.Errorf("directory not created: %s", cfg.TempDir)
	}
}
