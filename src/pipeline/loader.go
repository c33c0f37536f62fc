package pipeline

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultArchiveSuffix matches the compressed record archives.
const DefaultArchiveSuffix = ".gz"

// ErrCorruptArchive marks an archive whose compressed stream could not be
// read to the end. The Loader skips such files.
var ErrCorruptArchive = errors.New("corrupt archive")

// ListArchives returns the files in dir ending in suffix, in directory
// listing order. maxFiles > 0 truncates the list.
func ListArchives(dir, suffix string, maxFiles int) ([]string, error) {
	if suffix == "" {
		suffix = DefaultArchiveSuffix
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives in %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files, nil
}

// LoadSummary reports how the archives were consumed.
type LoadSummary struct {
	FilesTotal   int
	FilesRead    int
	FilesSkipped int
	// CapReached is set when iteration stopped early on the record cap.
	CapReached bool
}

// Loader feeds archive lines into a Collector, one archive at a time.
type Loader struct {
	collector *Collector
	progress  Progress
	logger    *zap.Logger
}

// NewLoader creates a Loader for c. A nil progress or logger disables it.
func NewLoader(c *Collector, p Progress, logger *zap.Logger) *Loader {
	if p == nil {
		p = NopProgress{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{collector: c, progress: p, logger: logger}
}

// Load reads every archive in files until they are exhausted or the
// collector is full. Corrupt archives are skipped. The only error returned
// is ctx's; whatever was collected before cancellation stays in the collector.
func (l *Loader) Load(ctx context.Context, files []string) (LoadSummary, error) {
	summary := LoadSummary{FilesTotal: len(files)}
	capped := l.collector.Max() > 0

	if capped {
		l.progress.Start(l.collector.Max(), "tweets")
	} else {
		l.progress.Start(len(files), "files")
	}
	defer l.progress.Finish()

	for _, path := range files {
		if l.collector.IsFull() {
			summary.CapReached = true
			break
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		lines, err := readArchive(path)
		if err != nil {
			summary.FilesSkipped++
			l.logger.Warn("skipping archive", zap.String("file", path), zap.Error(err))
			continue
		}

		full := false
		for _, line := range lines {
			if len(line) == 0 {
				continue
			}
			if l.collector.OfferLine(line) && capped {
				l.progress.Add(1)
			}
			if l.collector.IsFull() {
				full = true
				break
			}
		}
		summary.FilesRead++
		if full {
			summary.CapReached = true
			break
		}
		if !capped {
			l.progress.Add(1)
		}
		l.logger.Debug("archive consumed",
			zap.String("file", path),
			zap.Int("lines", len(lines)),
			zap.Int("corpus", l.collector.Len()))
	}
	return summary, nil
}

// readArchive decompresses a whole archive and splits it into trimmed lines.
func readArchive(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		if isCorruption(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
		}
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}

	lines := bytes.Split(data, []byte{'\n'})
	for i := range lines {
		lines[i] = bytes.TrimSpace(lines[i])
	}
	return lines, nil
}

func isCorruption(err error) bool {
	var flateErr flate.CorruptInputError
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, gzip.ErrChecksum) ||
		errors.Is(err, gzip.ErrHeader) ||
		errors.As(err, &flateErr)
}
