package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tweet-corpus/src/embedding"
	"tweet-corpus/src/phrases"
	"tweet-corpus/src/pipeline"
	"tweet-corpus/src/publish"
)

// ErrInvalidConfig marks configuration problems detected before any
// processing starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// unlimitedRecords is the max_records spelling for "no cap".
const unlimitedRecords = "unlimited"

var categoryPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Config struct for the YAML config file. Flags override file values.
type Config struct {
	DataDir       string `yaml:"data_dir"`
	Category      string `yaml:"category"`
	MaxRecords    string `yaml:"max_records"`
	MaxFiles      int    `yaml:"max_files"`
	ArchiveSuffix string `yaml:"archive_suffix"`
	LogDir        string `yaml:"log_dir"`

	WindowSize     int     `yaml:"window_size"`
	VectorDim      int     `yaml:"vector_dim"`
	Epochs         int     `yaml:"epochs"`
	MinWordCount   int     `yaml:"min_word_count"`
	PhraseMinCount int     `yaml:"phrase_min_count"`
	PhraseThresh   float64 `yaml:"phrase_threshold"`
	StopWordsFile  string  `yaml:"stopwords_file"`
	Workers        int     `yaml:"workers"`

	Languages   []string `yaml:"languages"`
	SQLitePath  string   `yaml:"sqlite_path"`
	BloomFPRate float64  `yaml:"bloom_fp_rate"`

	RabbitMQ publish.Config `yaml:"rabbitmq"`
}

func defaultConfig() Config {
	w2v := embedding.DefaultOptions(embedding.CBOW)
	return Config{
		DataDir:        "data",
		Category:       "generic",
		MaxRecords:     unlimitedRecords,
		ArchiveSuffix:  pipeline.DefaultArchiveSuffix,
		WindowSize:     w2v.Window,
		VectorDim:      w2v.Dim,
		Epochs:         w2v.Epochs,
		MinWordCount:   w2v.MinCount,
		PhraseMinCount: phrases.DefaultMinCount,
		PhraseThresh:   phrases.DefaultThreshold,
		BloomFPRate:    pipeline.DefaultBloomFPRate,
		RabbitMQ: publish.Config{
			Host:     "localhost",
			Port:     5672,
			Username: "guest",
			Password: "guest",
			Queue:    "tweet_in",
		},
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return &cfg, nil
}

// parseMaxRecords turns "unlimited" (or empty) into pipeline.Unlimited and
// anything else into a positive cap.
func parseMaxRecords(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == unlimitedRecords {
		return pipeline.Unlimited, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: max_records must be %q or a positive integer, got %q", ErrInvalidConfig, unlimitedRecords, s)
	}
	return n, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if !categoryPattern.MatchString(c.Category) {
		return fmt.Errorf("%w: category %q must match %s", ErrInvalidConfig, c.Category, categoryPattern)
	}
	if _, err := parseMaxRecords(c.MaxRecords); err != nil {
		return err
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("%w: max_files must not be negative", ErrInvalidConfig)
	}
	if c.BloomFPRate <= 0 || c.BloomFPRate >= 1 {
		return fmt.Errorf("%w: bloom_fp_rate must be in (0, 1), got %g", ErrInvalidConfig, c.BloomFPRate)
	}
	return nil
}

// validateInput additionally requires the category's archive directory.
func (c *Config) validateInput() error {
	if err := c.Validate(); err != nil {
		return err
	}
	info, err := os.Stat(c.InputDir())
	if err != nil {
		return fmt.Errorf("%w: input directory: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: input %s is not a directory", ErrInvalidConfig, c.InputDir())
	}
	return nil
}

// validateEmbedding checks the training settings.
func (c *Config) validateEmbedding() error {
	switch {
	case c.WindowSize <= 0:
		return fmt.Errorf("%w: window_size must be positive", ErrInvalidConfig)
	case c.VectorDim <= 0:
		return fmt.Errorf("%w: vector_dim must be positive", ErrInvalidConfig)
	case c.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive", ErrInvalidConfig)
	case c.PhraseThresh <= 0:
		return fmt.Errorf("%w: phrase_threshold must be positive", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

// InputDir is where the category's archives live.
func (c *Config) InputDir() string {
	return filepath.Join(c.DataDir, "raw_data", c.Category)
}

// DatasetPath is the CSV written by the dataset command.
func (c *Config) DatasetPath() string {
	return filepath.Join(c.DataDir, "raw_data", "dataset", fmt.Sprintf("dataset_%s.csv", c.Category))
}

// EmbeddingDir holds trained models.
func (c *Config) EmbeddingDir() string {
	return filepath.Join(c.DataDir, "word_embeddings")
}

// trainingOptions maps the config onto word2vec options for kind.
func (c *Config) trainingOptions(kind embedding.Kind) embedding.Options {
	o := embedding.DefaultOptions(kind)
	o.Dim = c.VectorDim
	o.Window = c.WindowSize
	o.Epochs = c.Epochs
	o.MinCount = c.MinWordCount
	o.Workers = c.Workers
	return o
}

func (c *Config) phraseOptions() phrases.Options {
	return phrases.Options{
		MinCount:  c.PhraseMinCount,
		Threshold: c.PhraseThresh,
	}
}
