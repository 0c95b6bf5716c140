package summarizer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/localrivet/polysum/internal/errortypes"
)

// periodTokenizer splits sentences after ". " so the scoring tests do not
// depend on the Punkt model.
type periodTokenizer struct {
	stopWords map[string]struct{}
}

func newPeriodTokenizer(stopWords ...string) *periodTokenizer {
	return &periodTokenizer{stopWords: StopWordSet(stopWords)}
}

func (t *periodTokenizer) Sentences(text string) []string {
	var out []string
	for _, s := range strings.SplitAfter(text, ". ") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (t *periodTokenizer) Words(text string) []string { return foldWords(text) }

func (t *periodTokenizer) IsStopWord(word string) bool {
	_, ok := t.stopWords[word]
	return ok
}

const animals = "Cats are mammals. Cats sleep a lot. Dogs are mammals too. Dogs bark loudly. Birds can fly."

func TestFrequencySummarizer_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		k    int
		want []string
	}{
		{
			name: "ties resolved by lower index",
			text: animals,
			k:    2,
			want: []string{"Cats are mammals.", "Cats sleep a lot."},
		},
		{
			name: "count not above k returns everything",
			text: animals,
			k:    5,
			want: []string{"Cats are mammals.", "Cats sleep a lot.", "Dogs are mammals too.", "Dogs bark loudly.", "Birds can fly."},
		},
		{
			name: "single sentence",
			text: "Only one sentence here.",
			k:    3,
			want: []string{"Only one sentence here."},
		},
		{
			name: "empty text",
			text: "",
			k:    3,
			want: []string{},
		},
		{
			name: "whitespace only",
			text: " \n\t ",
			k:    1,
			want: []string{},
		},
		{
			name: "highest score wins regardless of position",
			text: "Birds can fly. Dogs bark. Dogs dig. Dogs run. Dogs bark at dogs.",
			k:    1,
			want: []string{"Dogs bark at dogs."},
		},
		{
			name: "output keeps document order",
			text: "Rain falls. Snow melts. Rain and rain again. Sun shines. Rain floods rivers.",
			k:    2,
			want: []string{"Rain and rain again.", "Rain floods rivers."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFrequencySummarizer(newPeriodTokenizer("are", "a", "too", "can", "and", "at"), nil)
			got, err := s.Summarize(tt.text, tt.k)
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFrequencySummarizer_FewerScoredThanK(t *testing.T) {
	// Sentences made only of stop-words are never scored, so k cannot be filled.
	text := "The cat purrs. It is. Is it. A dog barks."
	s := NewFrequencySummarizer(newPeriodTokenizer("the", "it", "is", "a"), nil)

	got, err := s.Summarize(text, 3)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := []string{"The cat purrs.", "A dog barks."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize() = %q, want %q", got, want)
	}
}

func TestFrequencySummarizer_InvalidLength(t *testing.T) {
	s := NewFrequencySummarizer(newPeriodTokenizer(), nil)
	for _, k := range []int{0, -1, -100} {
		for _, text := range []string{"", animals} {
			_, err := s.Summarize(text, k)
			if !errortypes.IsInvalidRequest(err) {
				t.Errorf("Summarize(%q, %d) error = %v, want invalid request", text, k, err)
			}
		}
	}
}

func TestFrequencySummarizer_Properties(t *testing.T) {
	texts := []string{
		animals,
		"Alpha beta. Beta gamma. Gamma delta. Delta alpha. Alpha alpha beta. Epsilon.",
		"One. Two two. Three three three. Four four four four.",
	}
	tok := newPeriodTokenizer("are", "a", "too", "can")

	for _, text := range texts {
		sentences := tok.Sentences(text)
		position := make(map[string]int, len(sentences))
		for i, s := range sentences {
			position[s] = i
		}

		for k := 1; k <= len(sentences)+1; k++ {
			s := NewFrequencySummarizer(tok, nil)
			first, err := s.Summarize(text, k)
			if err != nil {
				t.Fatalf("Summarize(k=%d) error = %v", k, err)
			}
			second, _ := s.Summarize(text, k)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("non-deterministic output for k=%d: %q vs %q", k, first, second)
			}
			if len(first) > k || len(first) > len(sentences) {
				t.Errorf("len = %d exceeds k=%d or sentence count %d", len(first), k, len(sentences))
			}
			last := -1
			for _, sentence := range first {
				idx, ok := position[sentence]
				if !ok {
					t.Fatalf("summary sentence %q not in source", sentence)
				}
				if idx <= last {
					t.Errorf("order violated for k=%d: %q", k, first)
				}
				last = idx
			}
		}
	}
}

func TestFrequencySummarizer_ImageAnnotationIsOrdinary(t *testing.T) {
	annotation := "[Image Detected: Diagram/Flowchart detected in the document.]"
	text := "Pumps pump water. Pumps need pumps and pumps. Water cools pumps. See the chart [IMAGE]. " + annotation
	tok := newPeriodTokenizer("the", "in", "see", "and")
	s := NewFrequencySummarizer(tok, nil)

	small, err := s.Summarize(text, 1)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	for _, sentence := range small {
		if sentence == annotation {
			t.Errorf("annotation forced into a k=1 summary: %q", small)
		}
	}

	all, err := s.Summarize(text, 5)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if all[len(all)-1] != annotation {
		t.Errorf("annotation missing from full summary: %q", all)
	}
}

func TestTermFrequencies(t *testing.T) {
	tok := newPeriodTokenizer("are", "a", "too", "can")
	got := termFrequencies(tok, animals)
	want := map[string]int{
		"cats": 2, "mammals": 2, "dogs": 2, "sleep": 1, "lot": 1,
		"bark": 1, "loudly": 1, "birds": 1, "fly": 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("termFrequencies() = %v, want %v", got, want)
	}

	scores := scoreSentences(tok, tok.Sentences(animals), got)
	wantScores := []sentenceScore{{0, 4}, {1, 4}, {2, 4}, {3, 4}, {4, 2}}
	if !reflect.DeepEqual(scores, wantScores) {
		t.Errorf("scoreSentences() = %v, want %v", scores, wantScores)
	}
}

func TestTopIndices(t *testing.T) {
	scores := []sentenceScore{{0, 1}, {2, 5}, {3, 5}, {5, 2}, {7, 9}}
	if got, want := topIndices(scores, 3), []int{2, 3, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("topIndices() = %v, want %v", got, want)
	}
	if got, want := topIndices(scores, 10), []int{0, 2, 3, 5, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("topIndices() = %v, want %v", got, want)
	}
}
