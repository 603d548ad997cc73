package smtpfilter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractPlainText pulls the text content out of a message for
// analysis. Multipart messages contribute their text/plain parts;
// everything else falls back to the raw body.
func extractPlainText(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readBody(msg)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readBody(msg)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return readBody(msg)
	}

	mr := multipart.NewReader(msg.Body, boundary)
	var text bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever text was collected before the bad part.
			break
		}
		partType := strings.ToLower(part.Header.Get("Content-Type"))
		if !strings.Contains(partType, "text/plain") {
			// Nested multiparts and attachments are skipped.
			continue
		}
		partBytes, err := io.ReadAll(part)
		if err != nil {
			continue
		}
		text.Write(partBytes)
		text.WriteString("\n")
	}

	if text.Len() == 0 {
		return "[No text content found in multipart message]", nil
	}
	return text.String(), nil
}

func readBody(msg *mail.Message) (string, error) {
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
