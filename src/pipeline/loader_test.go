package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestListArchives(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "a.json.gz", plainLine(1, "a"))
	writeArchive(t, dir, "b.json.gz", plainLine(2, "b"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.gz"), 0755))

	files, err := ListArchives(dir, ".gz", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.json.gz"),
		filepath.Join(dir, "b.json.gz"),
	}, files)

	files, err = ListArchives(dir, "", 1)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = ListArchives(filepath.Join(dir, "missing"), ".gz", 0)
	assert.Error(t, err)
}

// TestLoaderStopsAtCap fills the cap from the first archive.
//
// Rationale: a single archive can satisfy the whole cap, so the early exit
// has to break out of the line loop and the file loop together.
func TestLoaderStopsAtCap(t *testing.T) {
	dir := t.TempDir()
	var first []string
	for i := 0; i < 5; i++ {
		first = append(first, plainLine(i, fmt.Sprintf("first %d", i)))
	}
	f1 := writeArchive(t, dir, "1.gz", first...)
	f2 := writeArchive(t, dir, "2.gz", plainLine(10, "second"))

	c := NewCollector(3)
	p := &recordingProgress{}
	summary, err := NewLoader(c, p, zaptest.NewLogger(t)).Load(context.Background(), []string{f1, f2})
	require.NoError(t, err)

	assert.True(t, summary.CapReached)
	assert.Equal(t, 1, summary.FilesRead)
	assert.Equal(t, []string{"first 0", "first 1", "first 2"}, c.Texts())
	assert.Equal(t, 3, c.Stats().Offered, "no line past the cap is offered")

	assert.Equal(t, 3, p.total)
	assert.Equal(t, "tweets", p.unit)
	assert.Equal(t, 3, p.added)
	assert.True(t, p.finished)
}

// TestLoaderSkipsCorruptArchive places a truncated archive between two valid ones.
func TestLoaderSkipsCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	var many []string
	for i := 0; i < 200; i++ {
		many = append(many, plainLine(100+i, fmt.Sprintf("lost %d", i)))
	}
	files := []string{
		writeArchive(t, dir, "a.gz", plainLine(1, "from a")),
		writeTruncatedArchive(t, dir, "b.gz", many...),
		writeArchive(t, dir, "c.gz", plainLine(3, "from c")),
	}

	c := NewCollector(Unlimited)
	p := &recordingProgress{}
	summary, err := NewLoader(c, p, zaptest.NewLogger(t)).Load(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, []string{"from a", "from c"}, c.Texts())
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 2, summary.FilesRead)
	assert.False(t, summary.CapReached)

	assert.Equal(t, 3, p.total)
	assert.Equal(t, "files", p.unit)
	assert.Equal(t, 2, p.added, "only fully consumed archives advance progress")
}

func TestLoaderSkipsNonGzipFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.gz")
	require.NoError(t, os.WriteFile(bad, []byte("plain text, not gzip"), 0644))
	good := writeArchive(t, dir, "good.gz", plainLine(1, "ok"))

	c := NewCollector(Unlimited)
	summary, err := NewLoader(c, nil, nil).Load(context.Background(), []string{bad, good})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 1, c.Len())
}

func TestLoaderDedupesAcrossArchives(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeArchive(t, dir, "a.gz", plainLine(1, "shared"), plainLine(2, "only a")),
		writeArchive(t, dir, "b.gz", plainLine(3, "shared"), "", "garbage", plainLine(4, "only b")),
	}

	c := NewCollector(Unlimited)
	_, err := NewLoader(c, nil, nil).Load(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, []string{"shared", "only a", "only b"}, c.Texts())
	assert.EqualValues(t, 1, c.Records()[0].ID)
	st := c.Stats()
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, 1, st.Malformed)
}

func TestLoaderHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	f := writeArchive(t, dir, "a.gz", plainLine(1, "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(Unlimited)
	_, err := NewLoader(c, nil, nil).Load(ctx, []string{f})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Len())
}

func TestReadArchiveCorruption(t *testing.T) {
	dir := t.TempDir()
	path := writeTruncatedArchive(t, dir, "t.gz", plainLine(1, "x"), plainLine(2, "y"))

	_, err := readArchive(path)
	assert.ErrorIs(t, err, ErrCorruptArchive)
}
