package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "abc", tp.TruncateText("abcdef", 3))
	assert.Equal(t, "unbounded", tp.TruncateText("unbounded", 0))
}

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Cutting inside the multi-byte rune must back off to the rune
	// boundary.
	text := "héllo"
	truncated := tp.TruncateText(text, 2)
	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, "h", truncated)
}

func TestTruncateForPrompt(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	long := strings.Repeat("a", 50)
	result := tp.TruncateForPrompt(long, 10)
	assert.True(t, strings.HasPrefix(result, strings.Repeat("a", 10)))
	assert.Contains(t, result, "Content truncated")

	assert.Equal(t, "short", tp.TruncateForPrompt("short", 10))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean", tp.SanitizeUTF8("clean"))

	dirty := "bad" + string([]byte{0xff, 0xfe}) + "bytes"
	sanitized := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(sanitized))
	assert.Equal(t, "badbytes", sanitized)
}
