package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type OCRConfig struct {
	Engine         string `yaml:"engine" json:"engine"` // "command" or "library"
	TesseractPath  string `yaml:"tesseract_path" json:"tesseract_path"`
	Language       string `yaml:"language" json:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix" json:"tessdata_prefix"`
}

type LegacyConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled"`
	SofficePath   string        `yaml:"soffice_path" json:"soffice_path"`
	TextutilPath  string        `yaml:"textutil_path" json:"textutil_path"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	MaxConcurrent int64         `yaml:"max_concurrent" json:"max_concurrent"`
}

type JournalConfig struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	HistoryLimit int  `yaml:"history_limit" json:"history_limit"`
}

type TokensConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Encoding string `yaml:"encoding" json:"encoding"`
}

type Config struct {
	DataDir string        `yaml:"data_dir" json:"data_dir"`
	DBPath  string        `yaml:"db_path" json:"db_path"`
	TempDir string        `yaml:"temp_dir" json:"temp_dir"`
	Host    string        `yaml:"host" json:"host"`
	Port    int           `yaml:"port" json:"port"`
	Log     LogConfig     `yaml:"log" json:"log"`
	OCR     OCRConfig     `yaml:"ocr" json:"ocr"`
	Legacy  LegacyConfig  `yaml:"legacy" json:"legacy"`
	Journal JournalConfig `yaml:"journal" json:"journal"`
	Tokens  TokensConfig  `yaml:"tokens" json:"tokens"`
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".readcontent")
	return Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "journal.db"),
		TempDir: filepath.Join(dataDir, "tmp"),
		Host:    "127.0.0.1",
		Port:    5000,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OCR: OCRConfig{
			Engine:        "command",
			TesseractPath: "tesseract",
			Language:      "eng",
		},
		Legacy: LegacyConfig{
			Enabled:       true,
			SofficePath:   "soffice",
			TextutilPath:  "textutil",
			Timeout:       2 * time.Minute,
			MaxConcurrent: 1,
		},
		Journal: JournalConfig{
			Enabled:      true,
			HistoryLimit: 50,
		},
		Tokens: TokensConfig{
			Enabled:  true,
			Encoding: "cl100k_base",
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by RC_CONFIG, and RC_* environment variables, in that order.
func LoadConfig() (Config, error) {
	return LoadConfigFile(os.Getenv("RC_CONFIG"))
}

// LoadConfigFile is LoadConfig with an explicit file path. An empty path skips
// the file layer.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		// A file that moves data_dir without naming the derived paths keeps them together.
		if cfg.DataDir != DefaultConfig().DataDir {
			cfg.setDataDir(cfg.DataDir, !fileSets(data, "db_path"), !fileSets(data, "temp_dir"))
		}
	}

	cfg.applyEnv()
	cfg.EnsureDirs()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dataDir := os.Getenv("RC_DATA_DIR"); dataDir != "" {
		c.setDataDir(dataDir, true, true)
	}
	if host := os.Getenv("RC_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("RC_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("RC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RC_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("RC_OCR_ENGINE"); v != "" {
		c.OCR.Engine = v
	}
	if v := os.Getenv("RC_TESSERACT_PATH"); v != "" {
		c.OCR.TesseractPath = v
	}
	if v := os.Getenv("RC_OCR_LANGUAGE"); v != "" {
		c.OCR.Language = v
	}
	if v := os.Getenv("TESSDATA_PREFIX"); v != "" && c.OCR.TessdataPrefix == "" {
		c.OCR.TessdataPrefix = v
	}
	if v := os.Getenv("RC_LEGACY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Legacy.Enabled = b
		}
	}
	if v := os.Getenv("RC_SOFFICE_PATH"); v != "" {
		c.Legacy.SofficePath = v
	}
	if v := os.Getenv("RC_TEXTUTIL_PATH"); v != "" {
		c.Legacy.TextutilPath = v
	}
	if v := os.Getenv("RC_LEGACY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Legacy.Timeout = d
		}
	}
	if v := os.Getenv("RC_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Journal.Enabled = b
		}
	}
	if v := os.Getenv("RC_TOKENS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Tokens.Enabled = b
		}
	}
}

func (c *Config) setDataDir(dir string, dbPath, tempDir bool) {
	c.DataDir = dir
	if dbPath {
		c.DBPath = filepath.Join(dir, "journal.db")
	}
	if tempDir {
		c.TempDir = filepath.Join(dir, "tmp")
	}
}

func fileSets(data []byte, key string) bool {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[key]
	return ok
}

func (c *Config) EnsureDirs() {
	for _, d := range []string{c.DataDir, c.TempDir} {
		os.MkdirAll(d, 0o755)
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
