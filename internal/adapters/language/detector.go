// Package language implements the language-detection collaborator: an
// n-gram model with a keyword-list heuristic behind it. It never
// fails; with no usable signal it answers English at 0.7 confidence.
package language

import (
	"context"
	"strings"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/mikey/mail-triage/internal/core"
)

const fallbackConfidence = 0.7

// heuristicWords are per-language stopword lists for the fallback path
// when the model's confidence is too low.
var heuristicWords = map[string][]string{
	"de": {" und ", " der ", " die ", " das ", " nicht ", " ich ", " mit ", " für "},
	"fr": {" et ", " le ", " la ", " les ", " vous ", " pour ", " avec ", " dans "},
	"es": {" y ", " el ", " los ", " las ", " usted ", " para ", " con ", " gracias "},
	"tr": {" ve ", " bir ", " için ", " ile ", " bu ", " merhaba ", " teşekkür "},
	"it": {" e ", " il ", " per ", " con ", " grazie ", " questo "},
	"en": {" the ", " and ", " you ", " for ", " with ", " this ", " please "},
}

// Detector implements core.LanguageDetector.
type Detector struct {
	detector      lingua.LanguageDetector
	minConfidence float64
	logger        *zap.Logger
}

// NewDetector builds the detector over the language set the heuristics
// also cover.
func NewDetector(minConfidence float64, logger *zap.Logger) *Detector {
	languages := []lingua.Language{
		lingua.English, lingua.German, lingua.French, lingua.Spanish,
		lingua.Turkish, lingua.Italian, lingua.Portuguese, lingua.Dutch,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// DetectLanguage identifies the email's language. The error return is
// always nil; it exists to satisfy the collaborator contract.
func (d *Detector) DetectLanguage(ctx context.Context, email *core.Email) (*core.LanguageResult, error) {
	text := strings.TrimSpace(email.Subject + "\n" + email.Body)
	if text == "" {
		return defaultResult(), nil
	}

	if lang, ok := d.detector.DetectLanguageOf(text); ok {
		confidence := d.detector.ComputeLanguageConfidence(text, lang)
		if confidence >= d.minConfidence {
			return &core.LanguageResult{
				Code:       strings.ToLower(lang.IsoCode639_1().String()),
				Name:       lang.String(),
				Confidence: confidence,
			}, nil
		}
		d.logger.Debug("Model confidence below floor, falling back to heuristic",
			zap.String("language", lang.String()),
			zap.Float64("confidence", confidence))
	}

	return d.heuristic(text), nil
}

// heuristic counts per-language stopwords; the best non-zero count
// wins at fixed confidence.
func (d *Detector) heuristic(text string) *core.LanguageResult {
	padded := " " + strings.ToLower(text) + " "

	bestCode := ""
	bestCount := 0
	for code, words := range heuristicWords {
		count := 0
		for _, w := range words {
			count += strings.Count(padded, w)
		}
		if count > bestCount || (count == bestCount && count > 0 && code < bestCode) {
			bestCode = code
			bestCount = count
		}
	}
	if bestCount == 0 {
		return defaultResult()
	}
	return &core.LanguageResult{
		Code:       bestCode,
		Name:       displayName(bestCode),
		Confidence: fallbackConfidence,
	}
}

func displayName(code string) string {
	return display.English.Languages().Name(language.Make(code))
}

func defaultResult() *core.LanguageResult {
	return &core.LanguageResult{Code: "en", Name: "English", Confidence: fallbackConfidence}
}
