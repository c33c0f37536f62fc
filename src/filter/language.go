package filter

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"tweet-corpus/src/tweets"
)

// undetermined is the lang value Twitter assigns when it could not classify a tweet.
const undetermined = "und"

// minRelativeDistance makes the detector answer "unknown" when the two most
// likely languages are too close to call.
const minRelativeDistance = 0.1

// LanguageFilter keeps tweets written in one of an allow-list of languages.
// The tweet's own lang field is trusted when present; otherwise the text
// is classified with lingua against every language it knows, and text it
// cannot classify is rejected.
type LanguageFilter struct {
	allowed  map[string]struct{}
	detector lingua.LanguageDetector
}

// NewLanguageFilter builds a filter for ISO 639-1 codes such as "en" or "pt".
func NewLanguageFilter(codes []string) (*LanguageFilter, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("language filter needs at least one language")
	}
	known := make(map[string]struct{})
	for _, l := range lingua.AllLanguages() {
		known[strings.ToLower(l.IsoCode639_1().String())] = struct{}{}
	}

	allowed := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if _, ok := known[code]; !ok {
			return nil, fmt.Errorf("unknown language code %q", code)
		}
		allowed[code] = struct{}{}
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithLowAccuracyMode().
		WithMinimumRelativeDistance(minRelativeDistance).
		Build()
	return &LanguageFilter{allowed: allowed, detector: detector}, nil
}

// Accept reports whether t is in an allowed language.
func (f *LanguageFilter) Accept(t *tweets.Tweet) bool {
	lang := strings.ToLower(t.Lang)
	if lang != "" && lang != undetermined {
		_, ok := f.allowed[lang]
		return ok
	}
	return f.acceptText(t.Text)
}

func (f *LanguageFilter) acceptText(text string) bool {
	detected, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return false
	}
	_, allowed := f.allowed[strings.ToLower(detected.IsoCode639_1().String())]
	return allowed
}
