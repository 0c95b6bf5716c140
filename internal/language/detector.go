package language

import (
	"errors"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

const (
	// DefaultMinConfidence accepts unreliable detections above this score.
	DefaultMinConfidence = 0.5

	// MinLetters is the shortest text worth detecting.
	MinLetters = 3
)

var (
	ErrTooShort     = errors.New("text too short to detect language")
	ErrUndetermined = errors.New("language could not be determined")
	ErrUnreliable   = errors.New("language detection unreliable")
)

// WhatlangDetector detects languages offline with whatlanggo.
type WhatlangDetector struct {
	minConfidence float64
}

// NewWhatlangDetector creates a detector. A non-positive minConfidence
// selects DefaultMinConfidence.
func NewWhatlangDetector(minConfidence float64) *WhatlangDetector {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &WhatlangDetector{minConfidence: minConfidence}
}

// Detect returns the ISO 639-1 code of the dominant language.
func (d *WhatlangDetector) Detect(text string) (string, error) {
	if countLetters(text) < MinLetters {
		return "", ErrTooShort
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetermined
	}
	if !info.IsReliable() && info.Confidence < d.minConfidence {
		return "", ErrUnreliable
	}
	return code, nil
}

func countLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
			if n >= MinLetters {
				return n
			}
		}
	}
	return n
}
