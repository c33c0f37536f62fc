// Package export writes collected tweets as a tabular dataset (CSV, with an
// optional SQLite mirror) and reads it back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"tweet-corpus/src/tweets"
)

// Columns is the dataset header, in file order.
var Columns = []string{
	"user_id",
	"user_name",
	"user_location",
	"user_description",
	"user_friends_count",
	"user_is_verified",
	"user_followers_count",
	"user_tweets_count",
	"user_favorites_count",
	"user_created_at",
	"tweet_text",
	"tweet_urls",
	"tweet_mentions",
	"tweet_hashtags",
	"tweet_replies",
	"tweet_favorites",
}

var ErrBadHeader = errors.New("dataset header does not match the expected columns")

// Row renders one record in Columns order. Booleans are written as
// True/False and null strings as empty cells.
func Row(t *tweets.Tweet) []string {
	u := t.User
	return []string{
		strconv.FormatInt(u.ID, 10),
		u.ScreenName,
		optional(u.Location),
		optional(u.Description),
		strconv.FormatInt(u.FriendsCount, 10),
		pyBool(u.Verified),
		strconv.FormatInt(u.FollowersCount, 10),
		strconv.FormatInt(u.StatusesCount, 10),
		strconv.FormatInt(u.FavouritesCount, 10),
		u.CreatedYear,
		t.Text,
		FormatList(t.URLs),
		FormatList(t.Mentions),
		FormatList(t.Hashtags),
		strconv.FormatInt(t.ReplyCount, 10),
		strconv.FormatInt(t.FavoriteCount, 10),
	}
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteDataset writes the header and one row per record, in order.
func WriteDataset(w io.Writer, records []*tweets.Tweet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, t := range records {
		if err := cw.Write(Row(t)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDatasetFile writes the dataset to filename, creating parent
// directories as needed.
func WriteDatasetFile(filename string, records []*tweets.Tweet) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create dataset %s: %w", filename, err)
	}
	defer f.Close()

	if err := WriteDataset(f, records); err != nil {
		return fmt.Errorf("dataset %s: %w", filename, err)
	}
	return f.Close()
}

// ReadDataset parses a dataset written by WriteDataset. Empty location and
// description cells read back as nil. Tweet ids are not part of the
// dataset and stay zero.
func ReadDataset(r io.Reader) ([]*tweets.Tweet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrBadHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("column %d is %q, want %q: %w", i+1, header[i], col, ErrBadHeader)
		}
	}

	var records []*tweets.Tweet
	for n := 1; ; n++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		t, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		records = append(records, t)
	}
	return records, nil
}

// ReadDatasetFile opens filename and parses it with ReadDataset.
func ReadDatasetFile(filename string) ([]*tweets.Tweet, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", filename, err)
	}
	defer f.Close()

	records, err := ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", filename, err)
	}
	return records, nil
}

// rowParser accumulates the first conversion error so parseRow stays flat.
type rowParser struct {
	row []string
	err error
}

func (p *rowParser) integer(col int) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(p.row[col], 10, 64)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", Columns[col], err)
	}
	return v
}

func (p *rowParser) boolean(col int) bool {
	if p.err != nil {
		return false
	}
	v, err := strconv.ParseBool(p.row[col])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", Columns[col], err)
	}
	return v
}

func (p *rowParser) list(col int) []string {
	if p.err != nil {
		return nil
	}
	v, err := ParseList(p.row[col])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", Columns[col], err)
	}
	return v
}

func (p *rowParser) optional(col int) *string {
	if p.row[col] == "" {
		return nil
	}
	s := p.row[col]
	return &s
}

func parseRow(row []string) (*tweets.Tweet, error) {
	p := &rowParser{row: row}
	t := &tweets.Tweet{
		User: tweets.User{
			ID:              p.integer(0),
			ScreenName:      row[1],
			Location:        p.optional(2),
			Description:     p.optional(3),
			FriendsCount:    p.integer(4),
			Verified:        p.boolean(5),
			FollowersCount:  p.integer(6),
			StatusesCount:   p.integer(7),
			FavouritesCount: p.integer(8),
			CreatedYear:     row[9],
		},
		Text:          row[10],
		URLs:          p.list(11),
		Mentions:      p.list(12),
		Hashtags:      p.list(13),
		ReplyCount:    p.integer(14),
		FavoriteCount: p.integer(15),
	}
	if p.err != nil {
		return nil, p.err
	}
	return t, nil
}
