package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSetAddContains(t *testing.T) {
	s := NewSeenSet(10, 0.01)

	assert.False(t, s.Contains("hello"))
	assert.True(t, s.Add("hello"))
	assert.True(t, s.Contains("hello"))
	assert.False(t, s.Add("hello"), "second add of the same text")
	assert.Equal(t, 1, s.Len())
}

// TestSeenSetExactUnderSaturatedFilter overfills a tiny prefilter.
//
// Rationale: the bloom filter is only a shortcut. Even when it answers
// "maybe" for everything, membership must stay exact.
func TestSeenSetExactUnderSaturatedFilter(t *testing.T) {
	s := NewSeenSet(1, 0.5)
	for i := 0; i < 500; i++ {
		s.Add(fmt.Sprintf("seen-%d", i))
	}
	for i := 0; i < 500; i++ {
		assert.True(t, s.Contains(fmt.Sprintf("seen-%d", i)))
		assert.False(t, s.Contains(fmt.Sprintf("unseen-%d", i)))
	}
	assert.Equal(t, 500, s.Len())
	assert.Greater(t, s.FalsePositives(), 0, "a saturated filter should report false positives")
}

func TestSeenSetDefaults(t *testing.T) {
	s := NewSeenSet(0, 0)
	assert.True(t, s.Add(""))
	assert.True(t, s.Contains(""))
}
