package language

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
)

func newTestDetector() *Detector {
	return NewDetector(0.65, zap.NewNop())
}

func detect(t *testing.T, d *Detector, subject, body string) *core.LanguageResult {
	t.Helper()
	result, err := d.DetectLanguage(context.Background(), &core.Email{
		From:    "someone@example.com",
		Subject: subject,
		Body:    body,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestDetectLanguage(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{
			name:    "english",
			subject: "Quarterly report",
			body:    "Please find attached the quarterly report. Let me know if you have any questions about the numbers.",
			want:    "en",
		},
		{
			name:    "german",
			subject: "Terminbestätigung",
			body:    "Sehr geehrte Frau Müller, hiermit bestätige ich unseren Termin am Dienstag. Mit freundlichen Grüßen",
			want:    "de",
		},
		{
			name:    "french",
			subject: "Demande de rendez-vous",
			body:    "Bonjour, je souhaiterais convenir d'un rendez-vous avec vous la semaine prochaine. Cordialement",
			want:    "fr",
		},
		{
			name:    "spanish",
			subject: "Confirmación de la reunión",
			body:    "Estimado señor García, le escribo para confirmar nuestra reunión del martes. Atentamente",
			want:    "es",
		},
		{
			name:    "turkish",
			subject: "Toplantı hakkında",
			body:    "Merhaba, yarınki toplantı için teşekkür ederim. Saat üçte görüşmek üzere.",
			want:    "tr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detect(t, d, tt.subject, tt.body)
			assert.Equal(t, tt.want, result.Code)
			assert.NotEmpty(t, result.Name)
			assert.Greater(t, result.Confidence, 0.0)
		})
	}
}

func TestDetectLanguageEmptyInput(t *testing.T) {
	d := newTestDetector()

	result := detect(t, d, "", "")
	assert.Equal(t, "en", result.Code)
	assert.Equal(t, "English", result.Name)
	assert.Equal(t, 0.7, result.Confidence)
}

func TestDetectLanguageNeverFails(t *testing.T) {
	d := newTestDetector()

	// Pure noise still yields a verdict.
	result, err := d.DetectLanguage(context.Background(), &core.Email{
		From:    "x@y.z",
		Subject: "!!!",
		Body:    "12345 ??? ---",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Code)
}

func TestHeuristicFallback(t *testing.T) {
	d := newTestDetector()

	result := d.heuristic(" merhaba bu bir deneme ve bir mesaj için ")
	assert.Equal(t, "tr", result.Code)
	assert.Equal(t, 0.7, result.Confidence)

	result = d.heuristic("no stopwords whatsoever xyz")
	assert.Equal(t, "en", result.Code)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "German", displayName("de"))
	assert.Equal(t, "Turkish", displayName("tr"))
	assert.Equal(t, "English", displayName("en"))
}
