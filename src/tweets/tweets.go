package tweets

// RawRecord is one line of an archive decoded into untyped JSON values.
// Numbers are kept as json.Number so 64-bit ids survive decoding.
type RawRecord map[string]any

// User holds the author attributes of a tweet.
type User struct {
	ID              int64   `json:"id"`
	ScreenName      string  `json:"screen_name"`
	Location        *string `json:"location"`
	Description     *string `json:"description"`
	FriendsCount    int64   `json:"friends_count"`
	Verified        bool    `json:"verified"`
	FollowersCount  int64   `json:"followers_count"`
	StatusesCount   int64   `json:"statuses_count"`
	FavouritesCount int64   `json:"favourites_count"`
	// CreatedYear is the last four characters of the account creation timestamp.
	CreatedYear string `json:"created_year"`
}

// Tweet is the normalized record extracted from a RawRecord.
// Text is the deduplication key.
type Tweet struct {
	ID            int64    `json:"id"`
	Text          string   `json:"text"`
	URLs          []string `json:"urls"`
	Mentions      []string `json:"mentions"`
	Hashtags      []string `json:"hashtags"`
	ReplyCount    int64    `json:"reply_count"`
	FavoriteCount int64    `json:"favorite_count"`
	Lang          string   `json:"lang,omitempty"`
	User          User     `json:"user"`
}
