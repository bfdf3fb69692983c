// Package chunk tiles long text into word windows that fit a QA model's context.
package chunk

import (
	"iter"
	"strings"
)

// DefaultMaxWords is the window size used when callers pass a non-positive maxWords.
const DefaultMaxWords = 400

// Chunk is one window of consecutive words. WordEnd is exclusive.
type Chunk struct {
	Text      string
	WordStart int
	WordEnd   int
}

// Split yields consecutive, non-overlapping windows of at most maxWords whitespace-delimited
// words, each rejoined with single spaces. Blank text yields nothing. The sequence can be
// ranged over more than once.
func Split(text string, maxWords int) iter.Seq[Chunk] {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return func(yield func(Chunk) bool) {
		words := strings.Fields(text)
		for start := 0; start < len(words); start += maxWords {
			end := min(start+maxWords, len(words))
			c := Chunk{
				Text:      strings.Join(words[start:end], " "),
				WordStart: start,
				WordEnd:   end,
			}
			if !yield(c) {
				return
			}
		}
	}
}

// All collects Split into a slice.
func All(text string, maxWords int) []Chunk {
	var out []Chunk
	for c := range Split(text, maxWords) {
		out = append(out, c)
	}
	return out
}
