// Package summarizer provides the extractive frequency summarizer used by
// the polysum pipeline and the tokenizer capability it depends on.
package summarizer

const (
	// DefaultSentenceCount is the summary length used for unrecognized size categories.
	DefaultSentenceCount = 5
)

// Summarizer defines the interface for summarizing text content.
type Summarizer interface {
	// Summarize selects at most k sentences of text, in document order.
	Summarize(text string, k int) ([]string, error)

	// Initialize sets up the summarizer with any required configuration.
	Initialize() error
}

// Tokenizer splits working-language text into sentences and words and
// knows which words carry no relevance signal.
type Tokenizer interface {
	// Sentences returns the sentences of text in document order.
	Sentences(text string) []string

	// Words returns the case-folded alphanumeric tokens of text.
	Words(text string) []string

	// IsStopWord reports whether a case-folded token is excluded from scoring.
	IsStopWord(word string) bool
}
