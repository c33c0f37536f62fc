// Package phrases detects frequently co-occurring token pairs and joins
// them into single tokens ("new", "york" -> "new_york") before embedding
// training.
package phrases

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	DefaultMinCount  = 20
	DefaultThreshold = 10.0
	DefaultDelimiter = "_"
)

// Options controls phrase scoring.
type Options struct {
	// MinCount is subtracted from every bigram count before scoring.
	MinCount int
	// Threshold is the score a bigram must exceed to become a phrase.
	Threshold float64
	Delimiter string
}

func (o Options) withDefaults() Options {
	if o.MinCount <= 0 {
		o.MinCount = DefaultMinCount
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	return o
}

// Phrases accumulates unigram and adjacent-bigram counts.
type Phrases struct {
	opts     Options
	unigrams map[string]int
	bigrams  map[string]int
}

// pairKey joins a bigram for map lookups. Tokens never contain whitespace.
func pairKey(a, b string) string {
	return a + " " + b
}

// New creates an empty counter.
func New(opts Options) *Phrases {
	return &Phrases{
		opts:     opts.withDefaults(),
		unigrams: make(map[string]int),
		bigrams:  make(map[string]int),
	}
}

// Learn counts every sentence.
func Learn(sentences [][]string, opts Options) *Phrases {
	p := New(opts)
	for _, s := range sentences {
		p.Add(s)
	}
	return p
}

// Add counts the tokens and adjacent pairs of one sentence.
func (p *Phrases) Add(sentence []string) {
	for i, tok := range sentence {
		p.unigrams[tok]++
		if i > 0 {
			p.bigrams[pairKey(sentence[i-1], tok)]++
		}
	}
}

// VocabSize is the number of distinct unigrams and bigrams seen.
func (p *Phrases) VocabSize() int {
	return len(p.unigrams) + len(p.bigrams)
}

// Count returns how often tok was seen.
func (p *Phrases) Count(tok string) int {
	return p.unigrams[tok]
}

// Score rates the pair (a, b):
//
//	(count(a b) - minCount) / (count(a) * count(b)) * vocabSize
//
// It reports false when the pair was never seen.
func (p *Phrases) Score(a, b string) (float64, bool) {
	ab, ok := p.bigrams[pairKey(a, b)]
	if !ok {
		return 0, false
	}
	ca, cb := p.unigrams[a], p.unigrams[b]
	if ca == 0 || cb == 0 {
		return 0, false
	}
	return float64(ab-p.opts.MinCount) / float64(ca) / float64(cb) * float64(p.VocabSize()), true
}

// Freeze keeps only the pairs scoring above the threshold.
func (p *Phrases) Freeze() *Phraser {
	ph := &Phraser{Delimiter: p.opts.Delimiter, Scores: make(map[string]float64)}
	for key := range p.bigrams {
		a, b := splitKey(key)
		if score, ok := p.Score(a, b); ok && score > p.opts.Threshold {
			ph.Scores[key] = score
		}
	}
	return ph
}

func splitKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ' ' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

// Phraser is a frozen phrase model.
type Phraser struct {
	Delimiter string
	Scores    map[string]float64
}

// Len returns the number of known phrases.
func (ph *Phraser) Len() int {
	return len(ph.Scores)
}

// Apply merges known pairs, greedily from left to right.
func (ph *Phraser) Apply(sentence []string) []string {
	out := make([]string, 0, len(sentence))
	for i := 0; i < len(sentence); i++ {
		if i+1 < len(sentence) {
			if _, ok := ph.Scores[pairKey(sentence[i], sentence[i+1])]; ok {
				out = append(out, sentence[i]+ph.Delimiter+sentence[i+1])
				i++
				continue
			}
		}
		out = append(out, sentence[i])
	}
	return out
}

// ApplyAll transforms every sentence.
func (ph *Phraser) ApplyAll(sentences [][]string) [][]string {
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = ph.Apply(s)
	}
	return out
}

// Top returns up to n phrases ordered by descending score.
func (ph *Phraser) Top(n int) []string {
	keys := make([]string, 0, len(ph.Scores))
	for k := range ph.Scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if ph.Scores[keys[i]] != ph.Scores[keys[j]] {
			return ph.Scores[keys[i]] > ph.Scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		a, b := splitKey(k)
		out[i] = a + ph.Delimiter + b
	}
	return out
}

// Save writes the phraser to filename using gob encoding.
func (ph *Phraser) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(ph); err != nil {
		return fmt.Errorf("failed to encode phrases to %s: %w", filename, err)
	}
	return f.Close()
}

// Load reads a phraser written by Save.
func Load(filename string) (*Phraser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	var ph Phraser
	if err := gob.NewDecoder(f).Decode(&ph); err != nil {
		return nil, fmt.Errorf("failed to decode phrases from %s: %w", filename, err)
	}
	if ph.Scores == nil {
		ph.Scores = make(map[string]float64)
	}
	return &ph, nil
}
