// Package heuristics holds the keyword-driven tone and priority
// signals shared by the orchestrator and the reply generator.
package heuristics

import (
	"strings"
)

// Tone classifies the register of an email.
type Tone string

const (
	ToneFormal  Tone = "formal"
	ToneCasual  Tone = "casual"
	ToneNeutral Tone = "neutral"
)

// Indicator lists cover English plus the German, French, Spanish and
// Turkish equivalents seen in production traffic.
var formalIndicators = []string{
	"dear", "sincerely", "regards", "respectfully", "to whom it may concern",
	"sehr geehrte", "mit freundlichen grüßen", "hochachtungsvoll",
	"madame", "monsieur", "cordialement", "veuillez",
	"estimado", "estimada", "atentamente", "cordialmente",
	"sayın", "saygılarımla",
}

var casualIndicators = []string{
	"hey", "hi there", "thanks!", "thx", "cheers", "btw", "lol",
	":)", ":-)", ":d", ";)", "🙂", "😊", "👍",
	"hallo zusammen", "grüße", "salut", "coucou", "hola", "selam", "merhaba",
}

var urgentKeywords = []string{
	"urgent", "asap", "as soon as possible", "immediately", "right away",
	"deadline", "critical", "emergency", "time sensitive", "eod",
}

var newsletterKeywords = []string{
	"unsubscribe", "newsletter", "view in browser", "view this email in",
	"manage your preferences", "email preferences", "you are receiving this",
	"weekly digest", "special offer", "promotional",
}

func countOccurrences(text string, indicators []string) int {
	n := 0
	for _, ind := range indicators {
		n += strings.Count(text, ind)
	}
	return n
}

// DetectTone picks formal, casual or neutral by counting indicator
// words in the subject and body. A strict majority wins; a tie is
// neutral.
func DetectTone(subject, body string) Tone {
	text := strings.ToLower(subject + "\n" + body)
	formal := countOccurrences(text, formalIndicators)
	casual := countOccurrences(text, casualIndicators)

	switch {
	case formal > casual:
		return ToneFormal
	case casual > formal:
		return ToneCasual
	default:
		return ToneNeutral
	}
}

// HasUrgentKeywords reports whether the text signals urgency.
func HasUrgentKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// HasNewsletterKeywords reports whether the text looks like bulk mail.
func HasNewsletterKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range newsletterKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
