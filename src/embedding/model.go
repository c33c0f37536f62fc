package embedding

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ArtifactName is the file name a model is saved under:
// twitter_<category>_<kind>_<dim>_<window>_<records>.
func ArtifactName(category string, kind Kind, dim, window, records int) string {
	return fmt.Sprintf("twitter_%s_%s_%d_%d_%d", category, kind, dim, window, records)
}

// TrainKinds trains one model per kind concurrently over the same
// sentences. Models are returned in the order of kinds.
func TrainKinds(ctx context.Context, sentences [][]string, opts Options, kinds ...Kind) ([]*Model, error) {
	models := make([]*Model, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			o := opts
			o.Kind = kind
			m, err := Train(ctx, sentences, o)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// Save writes the model in the word2vec text format: a "<words> <dim>"
// header followed by one "<word> <v1> ... <vdim>" line per word.
func (m *Model) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create model file %s: %w", filename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d %d\n", m.Len(), m.Dim)
	buf := make([]byte, 0, 16)
	for i, word := range m.Words {
		w.WriteString(word)
		for _, x := range m.row(i) {
			w.WriteByte(' ')
			buf = strconv.AppendFloat(buf[:0], float64(x), 'f', 6, 32)
			w.Write(buf)
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write model file %s: %w", filename, err)
	}
	return f.Close()
}

// Load reads a model written by Save (or any word2vec text file).
func Load(filename string) (*Model, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("model file %s is empty", filename)
	}
	var words, dim int
	if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &words, &dim); err != nil {
		return nil, fmt.Errorf("bad header in %s: %w", filename, err)
	}
	if words < 0 || dim <= 0 {
		return nil, fmt.Errorf("bad header in %s: %d words, dimension %d", filename, words, dim)
	}

	m := &Model{
		Dim:     dim,
		Words:   make([]string, 0, words),
		vectors: make([]float32, 0, words*dim),
		index:   make(map[string]int, words),
	}
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("%s:%d: expected %d values, got %d", filename, line, dim, len(fields)-1)
		}
		for _, s := range fields[1:] {
			x, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", filename, line, err)
			}
			m.vectors = append(m.vectors, float32(x))
		}
		m.index[fields[0]] = len(m.Words)
		m.Words = append(m.Words, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", filename, err)
	}
	if len(m.Words) != words {
		return nil, fmt.Errorf("%s: header declares %d words, found %d", filename, words, len(m.Words))
	}
	return m, nil
}

// Neighbor is a word and its cosine similarity to a query.
type Neighbor struct {
	Word       string
	Similarity float64
}

// MostSimilar returns the n words closest to word by cosine similarity,
// excluding word itself.
func (m *Model) MostSimilar(word string, n int) ([]Neighbor, error) {
	q, ok := m.Vector(word)
	if !ok {
		return nil, fmt.Errorf("%q: %w", word, ErrUnknownWord)
	}
	qn := norm(q)

	out := make([]Neighbor, 0, m.Len())
	for i, w := range m.Words {
		if w == word {
			continue
		}
		v := m.row(i)
		d := qn * norm(v)
		if d == 0 {
			continue
		}
		out = append(out, Neighbor{Word: w, Similarity: float64(dot(q, v)) / d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Word < out[j].Word
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func norm(v []float32) float64 {
	return math.Sqrt(float64(dot(v, v)))
}
