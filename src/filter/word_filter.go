package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// StopWords is a case-insensitive set of tokens removed before the phrase pass.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords creates a set holding words.
func NewStopWords(words ...string) *StopWords {
	sw := &StopWords{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		sw.Add(w)
	}
	return sw
}

// LoadStopWords reads one word per line; blank lines and lines starting
// with # are ignored.
func LoadStopWords(filename string) (*StopWords, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open stop-word file %s: %w", filename, err)
	}
	defer f.Close()

	sw := NewStopWords()
	if err := sw.Load(f); err != nil {
		return nil, fmt.Errorf("stop-word file %s: %w", filename, err)
	}
	return sw, nil
}

// Load adds every word listed in r.
func (sw *StopWords) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sw.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read error at line %d: %w", lineNum, err)
	}
	return nil
}

// Add inserts a word.
func (sw *StopWords) Add(word string) {
	sw.words[strings.ToLower(word)] = struct{}{}
}

// Contains reports whether token is a stop word.
func (sw *StopWords) Contains(token string) bool {
	if sw == nil {
		return false
	}
	_, ok := sw.words[strings.ToLower(token)]
	return ok
}

// Len returns the number of stop words.
func (sw *StopWords) Len() int {
	if sw == nil {
		return 0
	}
	return len(sw.words)
}
