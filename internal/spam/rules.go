package spam

import (
	"regexp"
)

// FeatureWeights holds the contribution of each boolean feature to the
// final score. The classification threshold itself is fixed; only the
// weights are tunable.
type FeatureWeights struct {
	DomainMismatch  float64
	SuspiciousLinks float64
	UrgencyWords    float64
	GrammarIssues   float64
	KnownPatterns   float64
}

// DefaultWeights returns the production weight set.
func DefaultWeights() FeatureWeights {
	return FeatureWeights{
		DomainMismatch:  0.30,
		SuspiciousLinks: 0.25,
		UrgencyWords:    0.20,
		GrammarIssues:   0.10,
		KnownPatterns:   0.35,
	}
}

// Threshold is the score at and above which an email is classified as
// spam. Reweighting must preserve it.
const Threshold = 0.5

// brandTokens are brand names commonly impersonated in phishing
// display names.
var brandTokens = []string{
	"paypal", "amazon", "google", "microsoft", "apple", "netflix", "bank",
}

// shortenerDomains are known link shorteners, matched against URL hosts.
var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
	"buff.ly", "rebrand.ly", "cutt.ly", "rb.gy",
}

var (
	urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"')]+`)

	// Schemeless shortener mentions such as "bit.ly/claim".
	bareShortenerPattern = regexp.MustCompile(`(?i)\b(?:bit\.ly|tinyurl\.com|goo\.gl|t\.co|ow\.ly|is\.gd|cutt\.ly|rb\.gy)/[\w-]+`)

	ipURLPattern = regexp.MustCompile(`(?i)https?://\d{1,3}(?:\.\d{1,3}){3}(?:[:/][^\s]*)?`)

	// Digit-for-letter brand impersonations.
	homoglyphPattern = regexp.MustCompile(`(?i)(paypa1|pay-pal|amaz0n|g00gle|go0gle|micr0soft|rnicrosoft|app1e|netf1ix|faceb00k|1nstagram|tw1tter|bank0f)`)

	// A bare domain embedded in a display name.
	displayDomainPattern = regexp.MustCompile(`(?i)\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,}\b`)
)

// urgencyPhrases is the fixed urgency/lottery-scam phrase list, matched
// case-insensitively against subject and body.
var urgencyPhrases = []string{
	"urgent",
	"act now",
	"act immediately",
	"immediate action",
	"verify your account",
	"confirm your identity",
	"within 24 hours",
	"within 48 hours",
	"your account will be",
	"expires today",
	"final notice",
	"last chance",
	"you have won",
	"you have been selected",
	"claim your",
	"limited time",
	"don't miss out",
}

type grammarRule struct {
	pattern *regexp.Regexp
	label   string
}

// grammarRules flag spam idioms characteristic of non-native template
// text.
var grammarRules = []grammarRule{
	{regexp.MustCompile(`(?i)\bkindly\b`), "kindly"},
	{regexp.MustCompile(`(?i)\brevert back\b`), "revert back"},
	{regexp.MustCompile(`(?i)\bdo the needful\b`), "do the needful"},
	{regexp.MustCompile(`(?i)\byour good self\b`), "your good self"},
	{regexp.MustCompile(`(?i)\bthe sum of\b`), "the sum of"},
	{regexp.MustCompile(`(?i)(?:usd\s*\$?\s*[\d,]+|\$\s*[\d,]+(?:\.\d{2})?\s*usd)`), "dollar amount with USD"},
}

type templateRule struct {
	pattern *regexp.Regexp
	label   string
}

// templateRules is the curated scam-template list. Order matters only
// for the reasons output.
var templateRules = []templateRule{
	{regexp.MustCompile(`(?i)\b(?:lottery|jackpot|lucky winner|prize money|lump sum)\b`), "lottery scam"},
	{regexp.MustCompile(`(?i)\b(?:nigerian? prince|next of kin|beneficiary|inheritance fund|unclaimed funds)\b`), "advance-fee scam"},
	{regexp.MustCompile(`(?i)\b(?:wire transfer|western union|moneygram|bank transfer of)\b`), "wire-transfer request"},
	{regexp.MustCompile(`(?i)account (?:has been|will be|is) (?:suspended|locked|closed|deactivated)`), "account suspension"},
	{regexp.MustCompile(`(?i)suspend(?:ed)? your account`), "account suspension"},
	{regexp.MustCompile(`(?i)dear (?:valued )?(?:customer|user|member|client|friend)`), "generic salutation"},
	{regexp.MustCompile(`(?i)\b(?:100% free|risk[- ]free|no strings attached|no obligation)\b`), "too-good-to-be-true offer"},
	{regexp.MustCompile(`(?i)click (?:here|below|the link) (?:now|immediately|to verify|to claim)`), "pressure link"},
	{regexp.MustCompile(`(?is)congratulations.{0,80}(?:won|selected|winner)`), "congratulations template"},
	{regexp.MustCompile(`(?i)update your (?:billing|payment) (?:information|details)`), "billing-update lure"},
	{regexp.MustCompile(`(?i)\bunusual (?:sign.?in|login) activity\b`), "fake security alert"},
}
