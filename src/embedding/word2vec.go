// Package embedding trains word2vec models (continuous bag of words and
// skip-gram, both with negative sampling) over tokenised tweets.
package embedding

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ynqa/wego/pkg/model/modelutil/vector"
	"github.com/ynqa/wego/pkg/model/word2vec"
)

// Kind selects the training architecture.
type Kind string

const (
	CBOW     Kind = "cbow"
	SkipGram Kind = "skipgram"
)

var (
	ErrEmptyVocabulary = errors.New("no word reaches the minimum count")
	ErrUnknownWord     = errors.New("word not in vocabulary")
)

// Options configures one training run.
type Options struct {
	Kind     Kind
	Dim      int
	Window   int
	MinCount int
	Negative int
	Epochs   int
	Alpha    float64
	// Sample is the frequent-word subsampling threshold.
	Sample float64
	// Workers is the number of training goroutines; 0 means one per CPU.
	Workers int
}

// DefaultOptions mirrors gensim's Word2Vec defaults.
func DefaultOptions(kind Kind) Options {
	return Options{
		Kind:     kind,
		Dim:      300,
		Window:   5,
		MinCount: 5,
		Negative: 5,
		Epochs:   5,
		Alpha:    0.025,
		Sample:   1e-3,
	}
}

func (o Options) validate() error {
	switch {
	case o.Kind != CBOW && o.Kind != SkipGram:
		return fmt.Errorf("unknown model kind %q", o.Kind)
	case o.Dim <= 0:
		return fmt.Errorf("dimension must be positive, got %d", o.Dim)
	case o.Window <= 0:
		return fmt.Errorf("window must be positive, got %d", o.Window)
	case o.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", o.Epochs)
	case o.Negative <= 0:
		return fmt.Errorf("negative samples must be positive, got %d", o.Negative)
	case o.Alpha <= 0:
		return fmt.Errorf("learning rate must be positive, got %g", o.Alpha)
	case o.Sample <= 0:
		return fmt.Errorf("subsampling threshold must be positive, got %g", o.Sample)
	case o.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	return nil
}

func (o Options) modelOptions() []word2vec.ModelOption {
	typ := word2vec.Cbow
	if o.Kind == SkipGram {
		typ = word2vec.SkipGram
	}
	opts := []word2vec.ModelOption{
		word2vec.Model(typ),
		word2vec.Optimizer(word2vec.NegativeSampling),
		word2vec.NegativeSampleSize(o.Negative),
		word2vec.Dim(o.Dim),
		word2vec.Window(o.Window),
		word2vec.Iter(o.Epochs),
		word2vec.MinCount(o.MinCount),
		word2vec.Initlr(o.Alpha),
		word2vec.SubsampleThreshold(o.Sample),
	}
	if o.Workers > 0 {
		opts = append(opts, word2vec.Goroutines(o.Workers))
	}
	return opts
}

// Model is a trained embedding: one vector of Dim floats per word.
type Model struct {
	Kind    Kind
	Dim     int
	Words   []string
	Counts  []int
	vectors []float32
	index   map[string]int
}

// Len returns the vocabulary size.
func (m *Model) Len() int {
	return len(m.Words)
}

// Vector returns the embedding of word.
func (m *Model) Vector(word string) ([]float32, bool) {
	i, ok := m.index[word]
	if !ok {
		return nil, false
	}
	return m.row(i), true
}

func (m *Model) row(i int) []float32 {
	return m.vectors[i*m.Dim : (i+1)*m.Dim]
}

// Train builds a model from sentences. Words seen fewer than MinCount
// times are dropped. The vocabulary is ordered by descending count, ties
// by word.
func Train(ctx context.Context, sentences [][]string, opts Options) (*Model, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.MinCount <= 0 {
		opts.MinCount = 1
	}

	words, counts := vocabulary(sentences, opts.MinCount)
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training %s interrupted: %w", opts.Kind, err)
	}

	w2v, err := word2vec.New(opts.modelOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure %s model: %w", opts.Kind, err)
	}
	if err := w2v.Train(strings.NewReader(corpusText(sentences))); err != nil {
		return nil, fmt.Errorf("failed to train %s model: %w", opts.Kind, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training %s interrupted: %w", opts.Kind, err)
	}

	var buf bytes.Buffer
	if err := w2v.Save(&buf, vector.Single); err != nil {
		return nil, fmt.Errorf("failed to export %s vectors: %w", opts.Kind, err)
	}
	trained, err := parseVectors(&buf, opts.Dim)
	if err != nil {
		return nil, fmt.Errorf("%s vectors: %w", opts.Kind, err)
	}

	m := &Model{
		Kind:    opts.Kind,
		Dim:     opts.Dim,
		Words:   make([]string, 0, len(words)),
		Counts:  make([]int, 0, len(words)),
		vectors: make([]float32, 0, len(words)*opts.Dim),
		index:   make(map[string]int, len(words)),
	}
	for i, w := range words {
		v, ok := trained[w]
		if !ok {
			continue
		}
		m.index[w] = len(m.Words)
		m.Words = append(m.Words, w)
		m.Counts = append(m.Counts, counts[i])
		m.vectors = append(m.vectors, v...)
	}
	if m.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}
	return m, nil
}

// vocabulary returns the words seen at least minCount times with their
// counts, ordered by descending count, ties by word.
func vocabulary(sentences [][]string, minCount int) ([]string, []int) {
	seen := make(map[string]int)
	for _, s := range sentences {
		for _, w := range s {
			seen[w]++
		}
	}

	words := make([]string, 0, len(seen))
	for w, c := range seen {
		if c >= minCount {
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if seen[words[i]] != seen[words[j]] {
			return seen[words[i]] > seen[words[j]]
		}
		return words[i] < words[j]
	})

	counts := make([]int, len(words))
	for i, w := range words {
		counts[i] = seen[w]
	}
	return words, counts
}

// corpusText lays sentences out one per line, tokens separated by spaces.
func corpusText(sentences [][]string) string {
	var sb strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		sb.WriteString(strings.Join(s, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// parseVectors reads "<word> <v1> ... <vdim>" lines. An optional
// "<words> <dim>" header line is skipped.
func parseVectors(r io.Reader, dim int) (map[string][]float32, error) {
	out := make(map[string][]float32)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 && isHeader(fields) && dim != 1 {
			continue
		}
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("line %d: expected %d values, got %d", line, dim, len(fields)-1)
		}
		v := make([]float32, dim)
		for i, s := range fields[1:] {
			x, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			v[i] = float32(x)
		}
		out[fields[0]] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
