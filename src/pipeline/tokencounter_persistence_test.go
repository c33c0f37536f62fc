package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestTokenCounterSaveLoad(t *testing.T) {
	tc := NewTokenCounter()
	for _, token := range []string{"hello", "world", "test", "token", "example"} {
		tc.IncrementTokens([]string{token})
	}
	tc.IncrementTokens([]string{"hello", "world"}) // hello=2, world=2
	tc.IncrementTokens([]string{"test"})           // test=2

	filename := filepath.Join(t.TempDir(), "counts", "test_counts.gob")
	if err := tc.SaveToFile(filename); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		t.Fatalf("Save file was not created: %s", filename)
	}

	tc2 := NewTokenCounter()
	if err := tc2.LoadFromFile(filename); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	expectedCounts := map[string]int{
		"hello":   2,
		"world":   2,
		"test":    2,
		"token":   1,
		"example": 1,
	}
	if !reflect.DeepEqual(expectedCounts, tc2.Counts()) {
		t.Errorf("Loaded counts don't match:\nExpected: %v\nLoaded: %v", expectedCounts, tc2.Counts())
	}
	if tc2.GetTotalTokens() != 8 {
		t.Errorf("Expected total 8 after load, got %d", tc2.GetTotalTokens())
	}
}

func TestTokenCounterLoadMissingFile(t *testing.T) {
	tc := NewTokenCounter()
	if err := tc.LoadFromFile(filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestTokenCounterTop(t *testing.T) {
	tc := NewTokenCounter()
	tc.IncrementTokens([]string{"b", "a", "c", "a", "b", "a", "d"})

	got := tc.Top(3)
	want := []TokenCount{{"a", 3}, {"b", 2}, {"c", 1}}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("Top(3) = %v, want %v", got, want)
	}
	if all := tc.Top(0); len(all) != 4 {
		t.Errorf("Top(0) returned %d entries, want 4", len(all))
	}
	if tc.Len() != 4 || tc.GetCount("a") != 3 || tc.GetTotalTokens() != 7 {
		t.Errorf("unexpected counter state: len=%d a=%d total=%d", tc.Len(), tc.GetCount("a"), tc.GetTotalTokens())
	}
}

// TestTokenCounterConcurrent increments from several goroutines.
//
// Rationale: the vocab command counts chunks of the dataset in parallel.
func TestTokenCounterConcurrent(t *testing.T) {
	tc := NewTokenCounter()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tc.IncrementTokens([]string{"x", "y"})
			}
		}()
	}
	wg.Wait()

	if tc.GetCount("x") != 800 || tc.GetTotalTokens() != 1600 {
		t.Errorf("x=%d total=%d, want 800 and 1600", tc.GetCount("x"), tc.GetTotalTokens())
	}
}
