package pipeline

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// Default sizing for the bloom prefilter when no cap is configured.
const (
	DefaultExpectedTexts = 1_000_000
	DefaultBloomFPRate   = 0.01
)

// SeenSet records every accepted tweet text.
//
// Membership is exact: a map holds the texts. A bloom filter sits in front
// of it so the common "never seen" case is answered without probing the map.
// The filter only ever produces false positives, which fall through to the map.
type SeenSet struct {
	texts  map[string]struct{}
	filter *bloom.BloomFilter

	falsePositives int
}

// NewSeenSet sizes the prefilter for expected texts at the given rate.
func NewSeenSet(expected uint, fpRate float64) *SeenSet {
	if expected == 0 {
		expected = DefaultExpectedTexts
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultBloomFPRate
	}
	return &SeenSet{
		texts:  make(map[string]struct{}),
		filter: bloom.NewWithEstimates(expected, fpRate),
	}
}

// Contains reports whether text has been added.
func (s *SeenSet) Contains(text string) bool {
	if !s.filter.TestString(text) {
		return false
	}
	if _, ok := s.texts[text]; ok {
		return true
	}
	s.falsePositives++
	return false
}

// Add inserts text. It reports false if text was already present.
func (s *SeenSet) Add(text string) bool {
	if s.Contains(text) {
		return false
	}
	s.insert(text)
	return true
}

// insert adds text without checking membership first.
func (s *SeenSet) insert(text string) {
	s.texts[text] = struct{}{}
	s.filter.AddString(text)
}

// Len returns the number of distinct texts.
func (s *SeenSet) Len() int {
	return len(s.texts)
}

// FalsePositives counts lookups the prefilter could not rule out
// but the exact set rejected.
func (s *SeenSet) FalsePositives() int {
	return s.falsePositives
}
