package pipeline

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
)

// TokenCount is one entry of a ranked vocabulary.
type TokenCount struct {
	Token string
	Count int
}

// TokenCounter tallies token occurrences across a corpus.
// It is safe for concurrent use.
type TokenCounter struct {
	counts     map[string]int
	totalCount int64 // Running total of all token counts (atomic)
	mu         sync.RWMutex
}

// NewTokenCounter creates a new TokenCounter with an empty map.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{counts: make(map[string]int)}
}

// IncrementTokens increases the count for each token in the list.
func (tc *TokenCounter) IncrementTokens(tokens []string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, token := range tokens {
		tc.counts[token]++
	}
	atomic.AddInt64(&tc.totalCount, int64(len(tokens)))
}

// GetCount returns the count for a specific token.
func (tc *TokenCounter) GetCount(token string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.counts[token]
}

// Len returns the number of distinct tokens.
func (tc *TokenCounter) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.counts)
}

// Counts returns a copy of all token counts.
func (tc *TokenCounter) Counts() map[string]int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	snapshot := make(map[string]int, len(tc.counts))
	for token, count := range tc.counts {
		snapshot[token] = count
	}
	return snapshot
}

// GetTotalTokens returns the total number of token occurrences.
func (tc *TokenCounter) GetTotalTokens() int {
	return int(atomic.LoadInt64(&tc.totalCount))
}

// Top returns the n most frequent tokens, ties broken alphabetically.
// n <= 0 returns every token.
func (tc *TokenCounter) Top(n int) []TokenCount {
	tc.mu.RLock()
	ranked := make([]TokenCount, 0, len(tc.counts))
	for token, count := range tc.counts {
		ranked = append(ranked, TokenCount{Token: token, Count: count})
	}
	tc.mu.RUnlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Token < ranked[j].Token
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// SaveToFile saves the current token counts to a file using gob encoding.
func (tc *TokenCounter) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(tc.Counts()); err != nil {
		return fmt.Errorf("failed to encode counts to %s: %w", filename, err)
	}
	return file.Close()
}

// LoadFromFile replaces the counts with those saved in filename.
func (tc *TokenCounter) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var counts map[string]int
	if err := gob.NewDecoder(file).Decode(&counts); err != nil {
		return fmt.Errorf("failed to decode counts from %s: %w", filename, err)
	}
	if counts == nil {
		counts = make(map[string]int)
	}

	var total int64
	for _, count := range counts {
		total += int64(count)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.counts = counts
	atomic.StoreInt64(&tc.totalCount, total)
	return nil
}
