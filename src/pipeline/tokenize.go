package pipeline

import (
	"regexp"
	"strings"
)

var (
	urlRe        = regexp.MustCompile(`(?i)\bhttps?://\S+`)
	apostropheRe = regexp.MustCompile(`['’]\p{L}*`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}#@_\s]+`)
)

// Tokenize splits tweet text into tokens for the phrase and embedding passes.
//   - lowercases
//   - drops URLs
//   - drops apostrophes and what follows ("don't" -> "don")
//   - removes punctuation except # @ _
//   - splits on whitespace
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = urlRe.ReplaceAllString(text, " ")
	text = apostropheRe.ReplaceAllString(text, "")
	text = punctRe.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

// Sentences tokenizes every text. Tokens for which skip returns true are
// dropped, and texts left without tokens are omitted.
func Sentences(texts []string, skip func(string) bool) [][]string {
	out := make([][]string, 0, len(texts))
	for _, text := range texts {
		tokens := Tokenize(text)
		if skip != nil {
			kept := tokens[:0]
			for _, tok := range tokens {
				if !skip(tok) {
					kept = append(kept, tok)
				}
			}
			tokens = kept
		}
		if len(tokens) == 0 {
			continue
		}
		out = append(out, tokens)
	}
	return out
}
