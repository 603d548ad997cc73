package spam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
)

func newTestDetector(trusted ...string) *Detector {
	return NewDetector(DefaultWeights(), trusted, zap.NewNop())
}

func TestDetectCleanEmail(t *testing.T) {
	d := newTestDetector()

	result := d.Detect(&core.Email{
		From:    "John Smith <john@acme.com>",
		Subject: "Project status update",
		Body:    "The migration finished last night. All services are healthy and the dashboards look normal.",
	})

	assert.False(t, result.IsSpam)
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, core.SpamFeatures{}, result.Features)
}

func TestDetectPhishingTemplate(t *testing.T) {
	d := newTestDetector()

	result := d.Detect(&core.Email{
		From:    "PayPal Security <alert@secure-pay-helper.com>",
		Subject: "Verify your account within 24 hours",
		Body:    "Dear customer, we noticed a problem. Click here to verify your details or your account will be suspended.",
	})

	assert.True(t, result.IsSpam)
	assert.GreaterOrEqual(t, result.Score, Threshold)
	assert.True(t, result.Features.SenderDomainMismatch)
	assert.True(t, result.Features.UrgencyWords)
	assert.True(t, result.Features.KnownSpamPatterns)
	assert.NotEmpty(t, result.Reasons)
}

func TestDetectScoreNeverExceedsOne(t *testing.T) {
	d := newTestDetector()

	// Every feature fires at once.
	result := d.Detect(&core.Email{
		From:    "Amazon Support <winner@lucky-draw.ru>",
		Subject: "URGENT: you have won the lottery",
		Body: "Dear valued customer, kindly claim your prize of the sum of USD $5,000,000 " +
			"at http://bit.ly/claim-now within 24 hours. Click here now before your account will be closed.",
	})

	assert.True(t, result.IsSpam)
	assert.LessOrEqual(t, result.Score, 1.0)
	assert.Equal(t, core.SpamFeatures{
		SenderDomainMismatch: true,
		SuspiciousLinks:      true,
		UrgencyWords:         true,
		GrammarIssues:        true,
		KnownSpamPatterns:    true,
	}, result.Features)
}

func TestDetectThresholdBoundary(t *testing.T) {
	// mismatch (0.30) + urgency (0.20) lands exactly on the threshold,
	// which classifies as spam.
	d := newTestDetector()

	result := d.Detect(&core.Email{
		From:    "Netflix Billing <billing@stream-updates.io>",
		Subject: "Action required",
		Body:    "Please verify your account today.",
	})

	require.True(t, result.Features.SenderDomainMismatch)
	require.True(t, result.Features.UrgencyWords)
	assert.InDelta(t, 0.50, result.Score, 1e-9)
	assert.True(t, result.IsSpam)
}

func TestDetectSuspiciousLinks(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"link shortener", "Track your package at https://bit.ly/3xYzQ"},
		{"bare shortener", "Just open bit.ly/free-stuff on your phone"},
		{"ip address host", "Log in at http://203.0.113.7/secure to continue"},
		{"homoglyph domain", "Go to https://amaz0n-account.ru/signin to fix this"},
	}
	d := newTestDetector()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Detect(&core.Email{
				From:    "someone@example.org",
				Subject: "hello",
				Body:    tt.body,
			})
			assert.True(t, result.Features.SuspiciousLinks, "body: %s", tt.body)
		})
	}
}

func TestDetectLegitimateLinksNotFlagged(t *testing.T) {
	d := newTestDetector()

	result := d.Detect(&core.Email{
		From:    "ci@builds.acme.com",
		Subject: "Build passed",
		Body:    "Details: https://ci.acme.com/builds/4812 and docs at https://docs.acme.com/deploy",
	})

	assert.False(t, result.Features.SuspiciousLinks)
	assert.False(t, result.IsSpam)
}

func TestDetectTrustedDomainBypassesScoring(t *testing.T) {
	d := newTestDetector("acme.com")

	// Content that would otherwise score as spam.
	result := d.Detect(&core.Email{
		From:    "IT Security <it@acme.com>",
		Subject: "Urgent: verify your account",
		Body:    "Dear user, click here to verify your credentials within 24 hours.",
	})

	assert.False(t, result.IsSpam)
	assert.Equal(t, 0.0, result.Score)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "acme.com is trusted")
}

func TestDetectTrustedDomainIsExactMatch(t *testing.T) {
	d := newTestDetector("acme.com")

	result := d.Detect(&core.Email{
		From:    "alert@acme.com.evil.net",
		Subject: "Urgent: verify your account now",
		Body:    "Dear customer, click here to verify immediately.",
	})

	assert.True(t, result.IsSpam)
}

func TestDetectReasonTruncation(t *testing.T) {
	d := newTestDetector()

	result := d.Detect(&core.Email{
		From:    "promo@deals.example",
		Subject: "urgent final notice",
		Body:    "Act now! Last chance, limited time, don't miss out, claim your reward within 24 hours.",
	})

	require.True(t, result.Features.UrgencyWords)
	found := false
	for _, r := range result.Reasons {
		if strings.Contains(r, "more)") {
			found = true
		}
	}
	assert.True(t, found, "expected a truncated reason with a (+N more) suffix, got %v", result.Reasons)
}

// labeledEmail is one entry of the regression corpus.
type labeledEmail struct {
	name string
	spam bool
	mail core.Email
}

var corpus = []labeledEmail{
	{
		name: "lottery win",
		spam: true,
		mail: core.Email{
			From:    "claims@intl-lotto.biz",
			Subject: "Congratulations! You have won",
			Body:    "You have won the international lottery. Claim your prize money today.",
		},
	},
	{
		name: "paypal credential phish",
		spam: true,
		mail: core.Email{
			From:    "PayPal Security <alert@secure-pay-helper.com>",
			Subject: "Verify your account within 24 hours",
			Body:    "Dear customer, click here to verify your account or it will be closed.",
		},
	},
	{
		name: "advance fee proposal",
		spam: true,
		mail: core.Email{
			From:    "barrister@consulate-mail.net",
			Subject: "Urgent business proposal",
			Body:    "I am the next of kin of a late client. Kindly assist me in transferring the sum of USD $4,500,000.",
		},
	},
	{
		name: "account suspension lure",
		spam: true,
		mail: core.Email{
			From:    "no-reply@account-services.info",
			Subject: "Immediate action required",
			Body:    "Your account has been suspended. Click here now to restore access.",
		},
	},
	{
		name: "package scam with shortener",
		spam: true,
		mail: core.Email{
			From:    "delivery@parcel-alerts.top",
			Subject: "Final notice about your package",
			Body:    "Dear customer, act now and confirm the delivery fee at http://bit.ly/track5521.",
		},
	},
	{
		name: "fake security alert with ip link",
		spam: true,
		mail: core.Email{
			From:    "security@mailbox-check.org",
			Subject: "Unusual sign-in activity detected",
			Body:    "Verify your identity at http://192.0.2.44/login within 48 hours.",
		},
	},
	{
		name: "homoglyph brand domain",
		spam: true,
		mail: core.Email{
			From:    "help@customer-care.ru",
			Subject: "Confirm your identity",
			Body:    "Dear valued customer, sign in at https://amaz0n-help.ru/verify to keep your account.",
		},
	},
	{
		name: "billing update lure",
		spam: true,
		mail: core.Email{
			From:    "billing@renewal-center.net",
			Subject: "Update your billing information",
			Body:    "Your account will be deactivated unless you update your payment details today.",
		},
	},
	{
		name: "too good to be true offer",
		spam: true,
		mail: core.Email{
			From:    "offers@winbig.example",
			Subject: "100% free trial, limited time",
			Body:    "Risk-free, no obligation. Don't miss out on this exclusive deal.",
		},
	},
	{
		name: "display name domain mismatch",
		spam: true,
		mail: core.Email{
			From:    "microsoft.com support <helpdesk@mail-fix.net>",
			Subject: "Your account will be locked",
			Body:    "Act immediately to keep access to your files.",
		},
	},
	{
		name: "wire transfer request",
		spam: true,
		mail: core.Email{
			From:    "treasury@offshore-holdings.biz",
			Subject: "Urgent payment instruction",
			Body:    "Kindly do the needful and send the funds via Western Union or MoneyGram to the beneficiary.",
		},
	},
	{
		name: "prize selection with shortener",
		spam: true,
		mail: core.Email{
			From:    "rewards@prize-dept.info",
			Subject: "You have been selected",
			Body:    "You are our lucky winner! Claim your reward at bit.ly/prize-2024 today.",
		},
	},
	{
		name: "status update",
		spam: false,
		mail: core.Email{
			From:    "John Smith <john@acme.com>",
			Subject: "Project status update",
			Body:    "The migration finished last night and all services are healthy.",
		},
	},
	{
		name: "meeting invitation",
		spam: false,
		mail: core.Email{
			From:    "sarah@acme.com",
			Subject: "Roadmap discussion",
			Body:    "Let's meet Tuesday at 3pm in Room 204 to discuss the roadmap.",
		},
	},
	{
		name: "casual lunch",
		spam: false,
		mail: core.Email{
			From:    "mike@gmail.com",
			Subject: "Lunch?",
			Body:    "Hey, want to grab lunch tomorrow? :)",
		},
	},
	{
		name: "invoice from accountant",
		spam: false,
		mail: core.Email{
			From:    "invoices@taxpartner.de",
			Subject: "Invoice 2024-117",
			Body:    "Please find attached invoice 2024-117. The total is 1,250 EUR, payable within 30 days.",
		},
	},
	{
		name: "newsletter",
		spam: false,
		mail: core.Email{
			From:    "news@devweekly.io",
			Subject: "This week in engineering",
			Body:    "Top stories of the week. View in browser. You can unsubscribe at any time.",
		},
	},
	{
		name: "code review request",
		spam: false,
		mail: core.Email{
			From:    "ci@builds.acme.com",
			Subject: "Review requested",
			Body:    "Can you review the pull request before the deadline on Friday? https://git.acme.com/pr/4812",
		},
	},
	{
		name: "german business mail",
		spam: false,
		mail: core.Email{
			From:    "anna.mueller@firma.de",
			Subject: "Terminbestätigung",
			Body:    "Sehr geehrter Herr Schmidt, hiermit bestätige ich unseren Termin. Mit freundlichen Grüßen, Anna Müller",
		},
	},
	{
		name: "flight confirmation",
		spam: false,
		mail: core.Email{
			From:    "booking@airline.example",
			Subject: "Booking confirmed",
			Body:    "Your booking is confirmed. Flight AF123 departs at 10:30 from gate B12.",
		},
	},
	{
		name: "internal urgent hotfix",
		spam: false,
		mail: core.Email{
			From:    "ops@acme.com",
			Subject: "Hotfix deploy at 5pm",
			Body:    "Quick reminder: the urgent hotfix deploy is scheduled for 5pm today.",
		},
	},
	{
		name: "conference registration",
		spam: false,
		mail: core.Email{
			From:    "events@gophercon.example",
			Subject: "Early-bird registration",
			Body:    "Early-bird registration closes at the end of the month. See the schedule on our website.",
		},
	},
}

func TestDetectCorpusAccuracy(t *testing.T) {
	d := newTestDetector()

	correct := 0
	falseNegatives := 0
	for _, sample := range corpus {
		result := d.Detect(&sample.mail)
		if result.IsSpam == sample.spam {
			correct++
			continue
		}
		if sample.spam {
			falseNegatives++
		}
		t.Logf("misclassified %q: want spam=%t, score=%.2f reasons=%v",
			sample.name, sample.spam, result.Score, result.Reasons)
	}

	accuracy := float64(correct) / float64(len(corpus))
	assert.GreaterOrEqual(t, accuracy, 0.95, "corpus accuracy")
	assert.LessOrEqual(t, falseNegatives, 1, "clear scams must not slip through")
}

func TestJoinTruncated(t *testing.T) {
	assert.Equal(t, "a, b", joinTruncated([]string{"a", "b"}, 3))
	assert.Equal(t, "a, b, c", joinTruncated([]string{"a", "b", "c"}, 3))
	assert.Equal(t, "a, b, c (+2 more)", joinTruncated([]string{"a", "b", "c", "d", "e"}, 3))
}
