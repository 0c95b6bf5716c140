package summarizer

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/textnorm"
)

// ErrInvalidLength is returned for a non-positive summary length.
var ErrInvalidLength = errors.New("summary length must be positive")

// FrequencySummarizer scores each sentence by the summed corpus frequency
// of its terms and keeps the k best, in the order they were written.
type FrequencySummarizer struct {
	tokenizer Tokenizer
	logger    *slog.Logger
	mu        sync.Mutex
}

// NewFrequencySummarizer creates a summarizer. A nil tokenizer is replaced
// by the English Punkt tokenizer on Initialize.
func NewFrequencySummarizer(tokenizer Tokenizer, logger *slog.Logger) *FrequencySummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrequencySummarizer{
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Initialize loads the default tokenizer when none was injected.
func (s *FrequencySummarizer) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokenizer != nil {
		return nil
	}
	tokenizer, err := NewPunktTokenizer(nil)
	if err != nil {
		return errortypes.InternalError(err, "failed to initialize tokenizer")
	}
	s.tokenizer = tokenizer
	return nil
}

// Summarize returns at most k sentences of text in ascending document order.
// Texts with no more than k sentences are returned whole.
func (s *FrequencySummarizer) Summarize(text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, errortypes.InvalidRequestError(ErrInvalidLength, fmt.Sprintf("invalid summary length %d", k))
	}
	if err := s.Initialize(); err != nil {
		return nil, err
	}

	text = textnorm.Normalize(text)
	if text == "" {
		return []string{}, nil
	}

	sentences := s.tokenizer.Sentences(text)
	if len(sentences) <= k {
		return sentences, nil
	}

	freq := termFrequencies(s.tokenizer, text)
	scores := scoreSentences(s.tokenizer, sentences, freq)
	selected := topIndices(scores, k)

	summary := make([]string, 0, len(selected))
	for _, idx := range selected {
		summary = append(summary, sentences[idx])
	}

	s.logger.Debug("Summarized text",
		"sentences", len(sentences),
		"scored", len(scores),
		"terms", len(freq),
		"selected", len(summary))

	return summary, nil
}

// sentenceScore pairs a sentence index with its summed term frequency.
type sentenceScore struct {
	index int
	score int
}

// termFrequencies counts every non stop-word token of text.
func termFrequencies(tokenizer Tokenizer, text string) map[string]int {
	freq := make(map[string]int)
	for _, word := range tokenizer.Words(text) {
		if tokenizer.IsStopWord(word) {
			continue
		}
		freq[word]++
	}
	return freq
}

// scoreSentences sums the frequency of each sentence's tokens. Sentences
// without a single scorable token are left out rather than scored zero.
func scoreSentences(tokenizer Tokenizer, sentences []string, freq map[string]int) []sentenceScore {
	scores := make([]sentenceScore, 0, len(sentences))
	for i, sentence := range sentences {
		total, scored := 0, false
		for _, word := range tokenizer.Words(sentence) {
			if n, ok := freq[word]; ok {
				total += n
				scored = true
			}
		}
		if scored {
			scores = append(scores, sentenceScore{index: i, score: total})
		}
	}
	return scores
}

// topIndices picks the k highest scores, lower index first on ties, and
// returns their indices in ascending order.
func topIndices(scores []sentenceScore, k int) []int {
	ranked := make([]sentenceScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	indices := make([]int, len(ranked))
	for i, s := range ranked {
		indices[i] = s.index
	}
	sort.Ints(indices)
	return indices
}
