package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Canonical returns the BCP 47 form of tag, e.g. "PT-br" becomes "pt-BR".
func Canonical(tag string) (string, error) {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// SameLanguage reports whether two tags share a base language.
func SameLanguage(a, b string) bool {
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}
