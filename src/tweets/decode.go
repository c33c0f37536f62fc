package tweets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is returned when a record matches none of the known shapes
// or lacks the author attributes. Callers skip such records.
var ErrMalformed = errors.New("malformed record")

// content is the part of a Tweet that depends on the record shape.
type content struct {
	text          string
	urls          []string
	mentions      []string
	hashtags      []string
	replyCount    int64
	favoriteCount int64
}

// shape extracts content from one layout of a record.
type shape struct {
	name  string
	match func(RawRecord) (content, bool)
}

// shapes are tried strictly in order; the first complete match wins.
var shapes = []shape{
	{name: "retweet", match: retweetShape},
	{name: "extended", match: extendedShape},
	{name: "plain", match: plainShape},
}

// lineEndings folds CRLF and lone CR into LF.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ParseLine decodes one archive line into a RawRecord. The line must hold
// exactly one JSON object.
func ParseLine(line []byte) (RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var raw RawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}
	return raw, nil
}

// Decode extracts a Tweet from raw. The text fields come from the first
// matching shape; author attributes are always read from the top level.
// Line endings in the text are normalised to LF.
func Decode(raw RawRecord) (*Tweet, error) {
	var (
		c       content
		matched string
	)
	for _, s := range shapes {
		if got, ok := s.match(raw); ok {
			c, matched = got, s.name
			break
		}
	}

	// Author extraction runs whether or not a shape matched.
	id, user, authorOK := author(raw)

	if matched == "" {
		return nil, fmt.Errorf("%w: no shape matched", ErrMalformed)
	}
	if !authorOK {
		return nil, fmt.Errorf("%w: incomplete author attributes (%s shape)", ErrMalformed, matched)
	}

	t := &Tweet{
		ID:            id,
		Text:          lineEndings.Replace(c.text),
		URLs:          c.urls,
		Mentions:      c.mentions,
		Hashtags:      c.hashtags,
		ReplyCount:    c.replyCount,
		FavoriteCount: c.favoriteCount,
		User:          user,
	}
	if lang, ok := str(raw, "lang"); ok {
		t.Lang = lang
	}
	return t, nil
}

// entities reads the url, mention and hashtag lists under base.
func entities(r map[string]any, base ...string) (urls, mentions, hashtags []string, ok bool) {
	at := func(list string) []string { return append(append([]string{}, base...), "entities", list) }
	if urls, ok = entityValues(r, "url", at("urls")...); !ok {
		return
	}
	if mentions, ok = entityValues(r, "screen_name", at("user_mentions")...); !ok {
		return
	}
	hashtags, ok = entityValues(r, "text", at("hashtags")...)
	return
}

func retweetShape(r RawRecord) (content, bool) {
	var c content
	rt, ok := object(r, "retweeted_status")
	if !ok {
		return c, false
	}
	if c.text, ok = str(rt, "extended_tweet", "full_text"); !ok {
		return c, false
	}
	if c.urls, c.mentions, c.hashtags, ok = entities(rt, "extended_tweet"); !ok {
		return c, false
	}
	if c.replyCount, ok = integer(rt, "reply_count"); !ok {
		return c, false
	}
	c.favoriteCount, ok = integer(rt, "favorite_count")
	return c, ok
}

func extendedShape(r RawRecord) (content, bool) {
	var c content
	var ok bool
	if c.text, ok = str(r, "extended_tweet", "full_text"); !ok {
		return c, false
	}
	if c.urls, c.mentions, c.hashtags, ok = entities(r, "extended_tweet"); !ok {
		return c, false
	}
	if c.replyCount, ok = integer(r, "reply_count"); !ok {
		return c, false
	}
	c.favoriteCount, ok = integer(r, "favorite_count")
	return c, ok
}

// plainShape is the last resort; the short text is lowercased.
func plainShape(r RawRecord) (content, bool) {
	var c content
	text, ok := str(r, "text")
	if !ok {
		return c, false
	}
	c.text = strings.ToLower(text)
	if c.urls, c.mentions, c.hashtags, ok = entities(r); !ok {
		return c, false
	}
	if c.replyCount, ok = integer(r, "reply_count"); !ok {
		return c, false
	}
	c.favoriteCount, ok = integer(r, "favorite_count")
	return c, ok
}

func author(r RawRecord) (int64, User, bool) {
	var u User
	id, ok := integer(r, "id")
	if !ok {
		return 0, u, false
	}
	if u.ID, ok = integer(r, "user", "id"); !ok {
		return 0, u, false
	}
	if u.ScreenName, ok = str(r, "user", "screen_name"); !ok {
		return 0, u, false
	}
	if u.Location, ok = nullableStr(r, "user", "location"); !ok {
		return 0, u, false
	}
	if u.FriendsCount, ok = integer(r, "user", "friends_count"); !ok {
		return 0, u, false
	}
	if u.Description, ok = nullableStr(r, "user", "description"); !ok {
		return 0, u, false
	}
	if u.Verified, ok = boolean(r, "user", "verified"); !ok {
		return 0, u, false
	}
	if u.FollowersCount, ok = integer(r, "user", "followers_count"); !ok {
		return 0, u, false
	}
	if u.StatusesCount, ok = integer(r, "user", "statuses_count"); !ok {
		return 0, u, false
	}
	if u.FavouritesCount, ok = integer(r, "user", "favourites_count"); !ok {
		return 0, u, false
	}
	created, ok := str(r, "user", "created_at")
	if !ok {
		return 0, u, false
	}
	u.CreatedYear = lastN(created, 4)
	return id, u, true
}

func lastN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
