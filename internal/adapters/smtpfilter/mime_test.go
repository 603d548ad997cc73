package smtpfilter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestExtractPlainTextSimpleBody(t *testing.T) {
	msg := parseMessage(t, "From: a@b.com\r\nSubject: hi\r\n\r\nplain body text\r\n")

	text, err := extractPlainText(msg)
	require.NoError(t, err)
	assert.Equal(t, "plain body text\r\n", text)
}

func TestExtractPlainTextMultipart(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.com",
		"Subject: hi",
		`Content-Type: multipart/alternative; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: text/plain",
		"",
		"the plain part",
		"--frontier",
		"Content-Type: text/html",
		"",
		"<p>the html part</p>",
		"--frontier--",
		"",
	}, "\r\n")
	msg := parseMessage(t, raw)

	text, err := extractPlainText(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "the plain part")
	assert.NotContains(t, text, "html part")
}

func TestExtractPlainTextMultipartWithoutTextPart(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.com",
		"Subject: hi",
		`Content-Type: multipart/mixed; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: application/pdf",
		"",
		"%PDF-1.4 binary",
		"--frontier--",
		"",
	}, "\r\n")
	msg := parseMessage(t, raw)

	text, err := extractPlainText(msg)
	require.NoError(t, err)
	assert.Equal(t, "[No text content found in multipart message]", text)
}

func TestRawBodyLocatesOriginalBytes(t *testing.T) {
	raw := []byte("From: a@b.com\r\nSubject: hi\r\n\r\nbody line one\r\nbody line two\r\n")
	msg := parseMessage(t, string(raw))

	body := rawBody(raw, msg)
	assert.Equal(t, "body line one\r\nbody line two\r\n", string(body))
}
