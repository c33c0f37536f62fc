package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tweet-corpus/src/tweets"
)

const schema = `
CREATE TABLE IF NOT EXISTS tweets (
	category             TEXT    NOT NULL,
	position             INTEGER NOT NULL,
	tweet_id             INTEGER NOT NULL,
	user_id              INTEGER NOT NULL,
	user_name            TEXT    NOT NULL,
	user_location        TEXT,
	user_description     TEXT,
	user_friends_count   INTEGER NOT NULL,
	user_is_verified     INTEGER NOT NULL,
	user_followers_count INTEGER NOT NULL,
	user_tweets_count    INTEGER NOT NULL,
	user_favorites_count INTEGER NOT NULL,
	user_created_at      TEXT    NOT NULL,
	tweet_text           TEXT    NOT NULL,
	tweet_urls           TEXT    NOT NULL,
	tweet_mentions       TEXT    NOT NULL,
	tweet_hashtags       TEXT    NOT NULL,
	tweet_replies        INTEGER NOT NULL,
	tweet_favorites      INTEGER NOT NULL,
	tweet_lang           TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (category, position),
	UNIQUE (category, tweet_text)
);
`

// Store mirrors datasets into a SQLite database, one row set per category.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates the database at path and ensures the schema.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the rows stored for category with records, in order,
// inside one transaction.
func (s *Store) Save(ctx context.Context, category string, records []*tweets.Tweet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tweets WHERE category = ?`, category); err != nil {
		return fmt.Errorf("failed to clear category %s: %w", category, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tweets (
		category, position, tweet_id, user_id, user_name, user_location, user_description,
		user_friends_count, user_is_verified, user_followers_count, user_tweets_count,
		user_favorites_count, user_created_at, tweet_text, tweet_urls, tweet_mentions,
		tweet_hashtags, tweet_replies, tweet_favorites, tweet_lang
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range records {
		u := t.User
		_, err := stmt.ExecContext(ctx,
			category, i, t.ID, u.ID, u.ScreenName, nullString(u.Location), nullString(u.Description),
			u.FriendsCount, u.Verified, u.FollowersCount, u.StatusesCount,
			u.FavouritesCount, u.CreatedYear, t.Text, FormatList(t.URLs), FormatList(t.Mentions),
			FormatList(t.Hashtags), t.ReplyCount, t.FavoriteCount, t.Lang,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Load returns the records stored for category, in their saved order.
func (s *Store) Load(ctx context.Context, category string) ([]*tweets.Tweet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		tweet_id, user_id, user_name, user_location, user_description,
		user_friends_count, user_is_verified, user_followers_count, user_tweets_count,
		user_favorites_count, user_created_at, tweet_text, tweet_urls, tweet_mentions,
		tweet_hashtags, tweet_replies, tweet_favorites, tweet_lang
	FROM tweets WHERE category = ? ORDER BY position`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query category %s: %w", category, err)
	}
	defer rows.Close()

	var records []*tweets.Tweet
	for rows.Next() {
		var (
			t                       tweets.Tweet
			location, description   sql.NullString
			urls, mentions, hashtag string
		)
		err := rows.Scan(
			&t.ID, &t.User.ID, &t.User.ScreenName, &location, &description,
			&t.User.FriendsCount, &t.User.Verified, &t.User.FollowersCount, &t.User.StatusesCount,
			&t.User.FavouritesCount, &t.User.CreatedYear, &t.Text, &urls, &mentions,
			&hashtag, &t.ReplyCount, &t.FavoriteCount, &t.Lang,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if location.Valid {
			t.User.Location = &location.String
		}
		if description.Valid {
			t.User.Description = &description.String
		}
		if t.URLs, err = ParseList(urls); err != nil {
			return nil, fmt.Errorf("tweet %d urls: %w", t.ID, err)
		}
		if t.Mentions, err = ParseList(mentions); err != nil {
			return nil, fmt.Errorf("tweet %d mentions: %w", t.ID, err)
		}
		if t.Hashtags, err = ParseList(hashtag); err != nil {
			return nil, fmt.Errorf("tweet %d hashtags: %w", t.ID, err)
		}
		records = append(records, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return records, nil
}

// Categories lists the categories present in the store.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM tweets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
