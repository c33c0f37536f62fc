package pipeline

import (
	"go.uber.org/zap"

	"tweet-corpus/src/tweets"
)

// Unlimited disables the record cap.
const Unlimited = 0

// Accept decides whether a decoded tweet may enter the corpus.
// It runs before the duplicate check.
type Accept func(*tweets.Tweet) bool

// Stats summarises what a Collector has seen.
type Stats struct {
	Offered    int
	Malformed  int
	Filtered   int
	Duplicates int
	Accepted   int
}

// Collector keeps the first occurrence of every distinct tweet text,
// in first-seen order, up to an optional cap.
//
// The corpus and the seen set grow together; len(Records()) always equals
// the number of distinct texts.
type Collector struct {
	max     int
	seen    *SeenSet
	records []*tweets.Tweet
	accept  Accept
	logger  *zap.Logger
	stats   Stats
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithAccept installs a filter run on every decoded tweet.
func WithAccept(a Accept) CollectorOption {
	return func(c *Collector) { c.accept = a }
}

// WithLogger sets the logger used for per-record diagnostics.
func WithLogger(l *zap.Logger) CollectorOption {
	return func(c *Collector) { c.logger = l }
}

// WithBloomFPRate overrides the prefilter false-positive rate.
func WithBloomFPRate(rate float64) CollectorOption {
	return func(c *Collector) {
		c.seen = NewSeenSet(c.expected(), rate)
	}
}

// NewCollector creates an empty corpus. maxRecords <= 0 means Unlimited.
func NewCollector(maxRecords int, opts ...CollectorOption) *Collector {
	if maxRecords < 0 {
		maxRecords = Unlimited
	}
	c := &Collector{max: maxRecords, logger: zap.NewNop()}
	c.seen = NewSeenSet(c.expected(), DefaultBloomFPRate)
	for _, opt := range opts {
		opt(c)
	}
	if c.max > 0 {
		c.records = make([]*tweets.Tweet, 0, min(c.max, 1<<16))
	}
	return c
}

func (c *Collector) expected() uint {
	if c.max > 0 {
		return uint(c.max)
	}
	return DefaultExpectedTexts
}

// Offer decodes raw and appends it if its text is new.
// It reports whether the record was accepted. Malformed records are skipped.
func (c *Collector) Offer(raw tweets.RawRecord) bool {
	c.stats.Offered++
	t, err := tweets.Decode(raw)
	if err != nil {
		c.stats.Malformed++
		c.logger.Debug("skipping record", zap.Error(err))
		return false
	}
	return c.admit(t)
}

// OfferLine parses one archive line and offers it. Unparseable lines
// count as malformed records.
func (c *Collector) OfferLine(line []byte) bool {
	raw, err := tweets.ParseLine(line)
	if err != nil {
		c.stats.Offered++
		c.stats.Malformed++
		c.logger.Debug("skipping line", zap.Error(err))
		return false
	}
	return c.Offer(raw)
}

// OfferTweet applies the filter and duplicate check to an already decoded tweet.
func (c *Collector) OfferTweet(t *tweets.Tweet) bool {
	c.stats.Offered++
	return c.admit(t)
}

// admit appends t if it passes the filter, is new and fits under the cap.
func (c *Collector) admit(t *tweets.Tweet) bool {
	if c.accept != nil && !c.accept(t) {
		c.stats.Filtered++
		return false
	}
	if c.seen.Contains(t.Text) {
		c.stats.Duplicates++
		return false
	}
	// The cap is enforced before the corpus grows.
	if c.IsFull() {
		return false
	}
	c.seen.insert(t.Text)
	c.records = append(c.records, t)
	c.stats.Accepted++
	return true
}

// IsFull reports whether the cap has been reached. Always false when unlimited.
func (c *Collector) IsFull() bool {
	return c.max > 0 && len(c.records) >= c.max
}

// Max returns the configured cap, or Unlimited.
func (c *Collector) Max() int {
	return c.max
}

// Len returns the corpus size.
func (c *Collector) Len() int {
	return len(c.records)
}

// Records returns the corpus in first-seen order.
func (c *Collector) Records() []*tweets.Tweet {
	return c.records
}

// Texts returns the corpus texts in first-seen order.
func (c *Collector) Texts() []string {
	out := make([]string, len(c.records))
	for i := range c.records {
		out[i] = c.records[i].Text
	}
	return out
}

// Stats returns the counters collected so far.
func (c *Collector) Stats() Stats {
	return c.stats
}

// BloomFalsePositives exposes the prefilter miss count for run summaries.
func (c *Collector) BloomFalsePositives() int {
	return c.seen.FalsePositives()
}

