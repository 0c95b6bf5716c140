// Package textnorm puts extracted text into the canonical form consumed by
// the detection, translation and summarization stages.
package textnorm

import "strings"

// Normalize replaces every run of Unicode whitespace, newlines, tabs,
// no-break and ideographic spaces included, with a single space and trims
// the result. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
