package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tweet-corpus/src/embedding"
	"tweet-corpus/src/pipeline"
)

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestLoadConfigValid tests loading a valid configuration file.
//
// Rationale: This is the happy path test that ensures every field is read
// and that fields absent from the file keep their defaults.
func TestLoadConfigValid(t *testing.T) {
	path := createTempConfigFile(t, `
data_dir: /srv/tweets
category: toxic
max_records: 1000
max_files: 2
log_dir: /var/log/tweets
window_size: 3
vector_dim: 50
languages: [en, pt]
sqlite_path: /srv/tweets/dataset.db
rabbitmq:
  host: mq.internal
  port: 5673
  queue: tweets
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error loading valid config, got: %v", err)
	}

	if cfg.DataDir != "/srv/tweets" {
		t.Errorf("Expected DataDir '/srv/tweets', got '%s'", cfg.DataDir)
	}
	if cfg.Category != "toxic" {
		t.Errorf("Expected Category 'toxic', got '%s'", cfg.Category)
	}
	if cfg.MaxRecords != "1000" {
		t.Errorf("Expected MaxRecords '1000', got '%s'", cfg.MaxRecords)
	}
	if cfg.MaxFiles != 2 {
		t.Errorf("Expected MaxFiles 2, got %d", cfg.MaxFiles)
	}
	if cfg.WindowSize != 3 || cfg.VectorDim != 50 {
		t.Errorf("Expected window 3 and dim 50, got %d and %d", cfg.WindowSize, cfg.VectorDim)
	}
	if !reflect.DeepEqual(cfg.Languages, []string{"en", "pt"}) {
		t.Errorf("Expected languages [en pt], got %v", cfg.Languages)
	}
	if cfg.RabbitMQ.Host != "mq.internal" || cfg.RabbitMQ.Port != 5673 || cfg.RabbitMQ.Queue != "tweets" {
		t.Errorf("Unexpected RabbitMQ config: %+v", cfg.RabbitMQ)
	}

	// Defaults survive for keys the file does not mention.
	if cfg.Epochs != 5 {
		t.Errorf("Expected default Epochs 5, got %d", cfg.Epochs)
	}
	if cfg.RabbitMQ.Username != "guest" {
		t.Errorf("Expected default username 'guest', got '%s'", cfg.RabbitMQ.Username)
	}
	if cfg.ArchiveSuffix != pipeline.DefaultArchiveSuffix {
		t.Errorf("Expected default suffix, got '%s'", cfg.ArchiveSuffix)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("Expected defaults, got error: %v", err)
	}
	if cfg.DataDir != "data" || cfg.Category != "generic" || cfg.MaxRecords != "unlimited" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.WindowSize != 5 || cfg.VectorDim != 300 {
		t.Errorf("Expected window 5 and dim 300, got %d and %d", cfg.WindowSize, cfg.VectorDim)
	}
	if cfg.PhraseMinCount != 20 || cfg.PhraseThresh != 10 {
		t.Errorf("Expected phrase min count 20 and threshold 10, got %d and %g", cfg.PhraseMinCount, cfg.PhraseThresh)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate, got: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"invalid yaml", func(t *testing.T) string { return createTempConfigFile(t, "category: [unclosed") }},
		{"wrong type", func(t *testing.T) string { return createTempConfigFile(t, "window_size: wide") }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(tc.path(t))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParseMaxRecords(t *testing.T) {
	testCases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"unlimited", pipeline.Unlimited, false},
		{"Unlimited", pipeline.Unlimited, false},
		{"", pipeline.Unlimited, false},
		{"100", 100, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"lots", 0, true},
	}
	for _, tc := range testCases {
		got, err := parseMaxRecords(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("parseMaxRecords(%q): expected ErrInvalidConfig, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("parseMaxRecords(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

// TestValidate covers the startup checks shared by every command.
//
// Rationale: configuration errors must stop the run before any archive is read.
func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"uppercase category", func(c *Config) { c.Category = "Generic" }},
		{"path category", func(c *Config) { c.Category = "../etc" }},
		{"empty category", func(c *Config) { c.Category = "" }},
		{"zero max records", func(c *Config) { c.MaxRecords = "0" }},
		{"negative max files", func(c *Config) { c.MaxFiles = -1 }},
		{"bloom rate too high", func(c *Config) { c.BloomFPRate = 1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()

	if err := cfg.validateInput(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for missing input dir, got %v", err)
	}

	if err := os.MkdirAll(filepath.Join(cfg.DataDir, "raw_data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.InputDir(), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.validateInput(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig when input is a file, got %v", err)
	}

	if err := os.Remove(cfg.InputDir()); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.InputDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := cfg.validateInput(); err != nil {
		t.Errorf("Expected valid input dir, got %v", err)
	}
}

func TestValidateEmbedding(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.validateEmbedding(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
	for _, mutate := range []func(*Config){
		func(c *Config) { c.WindowSize = 0 },
		func(c *Config) { c.VectorDim = -1 },
		func(c *Config) { c.Epochs = 0 },
		func(c *Config) { c.PhraseThresh = 0 },
		func(c *Config) { c.Workers = -1 },
	} {
		cfg := defaultConfig()
		mutate(&cfg)
		if err := cfg.validateEmbedding(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := defaultConfig()
	cfg.DataDir = "data"
	cfg.Category = "toxic"

	if got, want := cfg.InputDir(), filepath.Join("data", "raw_data", "toxic"); got != want {
		t.Errorf("InputDir() = %s, want %s", got, want)
	}
	if got, want := cfg.DatasetPath(), filepath.Join("data", "raw_data", "dataset", "dataset_toxic.csv"); got != want {
		t.Errorf("DatasetPath() = %s, want %s", got, want)
	}
	if got, want := cfg.EmbeddingDir(), filepath.Join("data", "word_embeddings"); got != want {
		t.Errorf("EmbeddingDir() = %s, want %s", got, want)
	}
}

func TestTrainingOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.VectorDim, cfg.WindowSize, cfg.Epochs, cfg.MinWordCount, cfg.Workers = 10, 2, 3, 1, 4

	o := cfg.trainingOptions(embedding.SkipGram)
	if o.Kind != embedding.SkipGram || o.Dim != 10 || o.Window != 2 || o.Epochs != 3 || o.MinCount != 1 || o.Workers != 4 {
		t.Errorf("Unexpected training options: %+v", o)
	}
	p := cfg.phraseOptions()
	if p.MinCount != 20 || p.Threshold != 10 {
		t.Errorf("Unexpected phrase options: %+v", p)
	}
}
