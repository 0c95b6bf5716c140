// Package language detects the dominant language of a text and bridges
// texts to and from the working language.
package language

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/localrivet/polysum/internal/errortypes"
)

// WorkingLanguage is the language summaries are scored in.
const WorkingLanguage = "en"

var (
	// ErrNoTranslator is reported when the bridge has no translation capability.
	ErrNoTranslator = errors.New("no translator configured")

	// ErrEmptyTranslation is reported when a provider returns nothing for non-empty input.
	ErrEmptyTranslation = errors.New("translator returned empty text")
)

// Detector guesses the language tag of a text.
type Detector interface {
	Detect(text string) (string, error)
}

// Translator translates text into target. An empty source asks the
// provider to detect it.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Detection is the outcome of a detection attempt. Lang is always usable:
// it holds the working language when Err is set.
type Detection struct {
	Lang string
	Err  error
}

// Defaulted reports whether Lang is a fallback.
func (d Detection) Defaulted() bool { return d.Err != nil }

// Translation is the outcome of a translation attempt. Text is always
// usable: it holds the input unchanged when Err is set.
type Translation struct {
	Text string
	Err  error
	// Skipped is set when no provider call was needed.
	Skipped bool
}

// Failed reports whether Text is the untranslated input.
func (t Translation) Failed() bool { return t.Err != nil }

// Bridge applies the best-effort detection and translation policy.
type Bridge struct {
	detector   Detector
	translator Translator
	working    string
	logger     *slog.Logger
}

// NewBridge creates a bridge. An empty working language selects WorkingLanguage.
func NewBridge(detector Detector, translator Translator, working string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if working == "" {
		working = WorkingLanguage
	}
	if canonical, err := Canonical(working); err == nil {
		working = canonical
	}
	return &Bridge{
		detector:   detector,
		translator: translator,
		working:    working,
		logger:     logger,
	}
}

// WorkingLanguage returns the working language tag.
func (b *Bridge) WorkingLanguage() string {
	return b.working
}

// Detect never fails outright; on any problem the working language is used.
func (b *Bridge) Detect(text string) Detection {
	if b.detector == nil {
		return Detection{Lang: b.working, Err: errortypes.DetectionError(errors.New("no detector configured"), "language detection unavailable")}
	}

	tag, err := b.detector.Detect(text)
	if err != nil {
		b.logger.Debug("Language detection failed, using working language", "error", err, "working_language", b.working)
		return Detection{Lang: b.working, Err: errortypes.DetectionError(err, "language detection inconclusive")}
	}

	canonical, err := Canonical(tag)
	if err != nil {
		return Detection{Lang: b.working, Err: errortypes.DetectionError(err, "detector returned an invalid tag").WithField("tag", tag)}
	}
	return Detection{Lang: canonical}
}

// Translate translates text into target, letting the provider detect the source.
func (b *Bridge) Translate(ctx context.Context, text, target string) Translation {
	return b.TranslateFrom(ctx, text, "", target)
}

// TranslateFrom translates text from source into target. It is a no-op
// when both tags name the same language or there is nothing to translate.
// On failure the input is returned unchanged with the cause.
func (b *Bridge) TranslateFrom(ctx context.Context, text, source, target string) Translation {
	if strings.TrimSpace(text) == "" || (source != "" && SameLanguage(source, target)) {
		return Translation{Text: text, Skipped: true}
	}
	if b.translator == nil {
		return Translation{Text: text, Err: errortypes.TranslationError(ErrNoTranslator, "translation unavailable")}
	}

	translated, err := b.translator.Translate(ctx, text, source, target)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = ErrEmptyTranslation
	}
	if err != nil {
		b.logger.Warn("Translation failed, passing text through",
			"source", source,
			"target", target,
			"error", err)
		return Translation{
			Text: text,
			Err: errortypes.TranslationError(err, "translation failed").
				WithField("source", source).
				WithField("target", target),
		}
	}
	return Translation{Text: translated}
}
