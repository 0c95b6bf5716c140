package pipeline

import (
	"strings"

	"github.com/localrivet/polysum/internal/summarizer"
)

// Size categories accepted by SentencesForSize.
const (
	SizeShort  = "short"
	SizeMedium = "medium"
	SizeLong   = "long"
)

var sizeSentences = map[string]int{
	SizeShort:  4,
	SizeMedium: 7,
	SizeLong:   9,
}

// SentencesForSize maps a size category to a summary length. Unrecognized
// categories, including the empty string, get summarizer.DefaultSentenceCount.
func SentencesForSize(category string) int {
	if n, ok := sizeSentences[strings.ToLower(strings.TrimSpace(category))]; ok {
		return n
	}
	return summarizer.DefaultSentenceCount
}
