package summarizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PunktTokenizer splits sentences with the pretrained English Punkt model
// and words on any rune that is neither a letter nor a number.
type PunktTokenizer struct {
	punkt     *sentences.DefaultSentenceTokenizer
	stopWords map[string]struct{}
}

// NewPunktTokenizer loads the English Punkt model. A nil stop-word list
// selects EnglishStopWords.
func NewPunktTokenizer(stopWords []string) (*PunktTokenizer, error) {
	punkt, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load punkt model: %w", err)
	}
	if stopWords == nil {
		stopWords = EnglishStopWords
	}
	return &PunktTokenizer{
		punkt:     punkt,
		stopWords: StopWordSet(stopWords),
	}, nil
}

// Sentences returns the trimmed, non-empty sentences of text.
func (t *PunktTokenizer) Sentences(text string) []string {
	var out []string
	for _, s := range t.punkt.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Words returns the lower-cased alphanumeric tokens of text.
func (t *PunktTokenizer) Words(text string) []string {
	return foldWords(text)
}

// IsStopWord reports whether word is in the stop-word set.
func (t *PunktTokenizer) IsStopWord(word string) bool {
	_, ok := t.stopWords[word]
	return ok
}

// foldWords lower-cases text and splits it into letter/number runs.
// A Caser keeps state, so one is built per call.
func foldWords(text string) []string {
	lower := cases.Lower(language.English).String(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
