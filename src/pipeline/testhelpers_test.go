package pipeline

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tweet-corpus/src/tweets"
)

// plainLine builds a plain-shape record line with the given id and text.
func plainLine(id int, text string) string {
	return fmt.Sprintf(`{"id":%d,"text":%q,"entities":{"urls":[],"user_mentions":[],"hashtags":[]},"reply_count":0,"favorite_count":%d,`+
		`"user":{"id":%d,"screen_name":"u%d","location":null,"friends_count":0,"description":null,"verified":false,`+
		`"followers_count":0,"statuses_count":1,"favourites_count":0,"created_at":"Mon Jan 01 00:00:00 +0000 2020"}}`,
		id, text, id, id, id)
}

func rawRecord(t *testing.T, line string) tweets.RawRecord {
	t.Helper()
	raw, err := tweets.ParseLine([]byte(line))
	require.NoError(t, err)
	return raw
}

func gzipBytes(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// writeArchive writes a gzip archive of lines into dir and returns its path.
func writeArchive(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, gzipBytes(t, lines...), 0644))
	return path
}

// writeTruncatedArchive writes an archive cut off mid-stream.
func writeTruncatedArchive(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	data := gzipBytes(t, lines...)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0644))
	return path
}

// recordingProgress remembers every update.
type recordingProgress struct {
	total    int
	unit     string
	added    int
	finished bool
}

func (p *recordingProgress) Start(total int, unit string) { p.total, p.unit = total, unit }
func (p *recordingProgress) Add(n int)                    { p.added += n }
func (p *recordingProgress) Finish()                      { p.finished = true }
