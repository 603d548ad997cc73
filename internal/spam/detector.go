// Package spam implements the weighted phishing/spam scorer. The
// detector is a pure function of the email: regex tables in, score and
// reasons out, no I/O.
package spam

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
)

const maxReasonMatches = 3

// Detector scores emails against the weighted feature tables.
type Detector struct {
	weights        FeatureWeights
	trustedDomains []string
	logger         *zap.Logger
}

// NewDetector creates a detector. Trusted domains bypass scoring the
// way the upstream filter's whitelist did.
func NewDetector(weights FeatureWeights, trustedDomains []string, logger *zap.Logger) *Detector {
	normalized := make([]string, 0, len(trustedDomains))
	for _, d := range trustedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &Detector{
		weights:        weights,
		trustedDomains: normalized,
		logger:         logger,
	}
}

// Detect computes the weighted spam verdict for one email.
func (d *Detector) Detect(email *core.Email) *core.SpamResult {
	if domain := senderDomain(email.From); domain != "" && d.isTrusted(domain) {
		d.logger.Debug("Skipping spam scoring for trusted domain",
			zap.String("sender", email.From),
			zap.String("domain", domain))
		return &core.SpamResult{
			Score:   0,
			IsSpam:  false,
			Reasons: []string{fmt.Sprintf("Sender domain %s is trusted", domain)},
		}
	}

	text := email.Text()
	result := &core.SpamResult{Reasons: []string{}}

	if reason, ok := checkSenderDomainMismatch(email.From); ok {
		result.Features.SenderDomainMismatch = true
		result.Score += d.weights.DomainMismatch
		result.Reasons = append(result.Reasons, reason)
	}
	if matches := findSuspiciousLinks(text); len(matches) > 0 {
		result.Features.SuspiciousLinks = true
		result.Score += d.weights.SuspiciousLinks
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Suspicious links: %s", joinTruncated(matches, maxReasonMatches)))
	}
	if matches := findUrgencyPhrases(text); len(matches) > 0 {
		result.Features.UrgencyWords = true
		result.Score += d.weights.UrgencyWords
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Urgency wording: %s", joinTruncated(matches, maxReasonMatches)))
	}
	if matches := findGrammarIssues(text); len(matches) > 0 {
		result.Features.GrammarIssues = true
		result.Score += d.weights.GrammarIssues
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Spam idioms: %s", joinTruncated(matches, maxReasonMatches)))
	}
	if matches := findKnownPatterns(text); len(matches) > 0 {
		result.Features.KnownSpamPatterns = true
		result.Score += d.weights.KnownPatterns
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Known scam patterns: %s", joinTruncated(matches, maxReasonMatches)))
	}

	if result.Score > 1.0 {
		result.Score = 1.0
	}
	result.IsSpam = result.Score >= Threshold

	return result
}

func (d *Detector) isTrusted(domain string) bool {
	for _, t := range d.trustedDomains {
		if t == domain {
			return true
		}
	}
	return false
}

func senderDomain(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return ""
	}
	parts := strings.Split(addr.Address, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}

// checkSenderDomainMismatch flags display names that embed a different
// domain than the real address, or that carry a brand token the address
// domain does not.
func checkSenderDomainMismatch(from string) (string, bool) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", false
	}
	addrDomain := senderDomain(from)
	if addrDomain == "" {
		return "", false
	}
	display := strings.ToLower(addr.Name)
	if display == "" {
		return "", false
	}

	if m := displayDomainPattern.FindString(display); m != "" {
		embedded := strings.ToLower(m)
		if embedded != addrDomain && !strings.HasSuffix(addrDomain, "."+embedded) {
			return fmt.Sprintf("Display name embeds %s but address is @%s", embedded, addrDomain), true
		}
	}
	for _, brand := range brandTokens {
		if strings.Contains(display, brand) && !strings.Contains(addrDomain, brand) {
			return fmt.Sprintf("Display name mentions %q but address is @%s", brand, addrDomain), true
		}
	}
	return "", false
}

// findSuspiciousLinks collects URLs pointing at link shorteners, bare
// IPv4 hosts or homoglyph-impersonated brand domains.
func findSuspiciousLinks(text string) []string {
	var matches []string
	seen := map[string]bool{}
	add := func(m string) {
		if !seen[m] {
			seen[m] = true
			matches = append(matches, m)
		}
	}

	for _, raw := range urlPattern.FindAllString(text, -1) {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if isShortenerHost(host) || homoglyphPattern.MatchString(host) {
			add(raw)
		}
	}
	for _, m := range ipURLPattern.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range bareShortenerPattern.FindAllString(text, -1) {
		add(m)
	}
	return matches
}

func isShortenerHost(host string) bool {
	for _, s := range shortenerDomains {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

func findUrgencyPhrases(text string) []string {
	lower := strings.ToLower(text)
	var matches []string
	for _, phrase := range urgencyPhrases {
		if strings.Contains(lower, phrase) {
			matches = append(matches, phrase)
		}
	}
	return matches
}

func findGrammarIssues(text string) []string {
	var matches []string
	for _, rule := range grammarRules {
		if rule.pattern.MatchString(text) {
			matches = append(matches, rule.label)
		}
	}
	return matches
}

func findKnownPatterns(text string) []string {
	var matches []string
	seen := map[string]bool{}
	for _, rule := range templateRules {
		if rule.pattern.MatchString(text) && !seen[rule.label] {
			seen[rule.label] = true
			matches = append(matches, rule.label)
		}
	}
	return matches
}

func joinTruncated(matches []string, max int) string {
	if len(matches) <= max {
		return strings.Join(matches, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(matches[:max], ", "), len(matches)-max)
}
