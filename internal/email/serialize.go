package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// RawPayload is the envelope expected by the remote send operation: the full
// RFC 5322 serialization of the message, base64-encoded with the URL-safe
// alphabet ('+' -> '-', '/' -> '_', padding retained).
type RawPayload struct {
	Raw string `json:"raw"`
}

// MarshalMIME serializes the message as an RFC 5322 message with a
// multipart/mixed MIME body carrying the text body and attachments.
func (e *Email) MarshalMIME() ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", e.From)
	if len(e.To) > 0 {
		fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(e.To, ", "))
	}
	if len(e.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(e.Cc, ", "))
	}
	if len(e.Bcc) > 0 {
		fmt.Fprintf(&buf, "Bcc: %s\r\n", strings.Join(e.Bcc, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", e.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	bodyHeader := make(textproto.MIMEHeader)
	bodyHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	part, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	part.Write([]byte(e.Body))

	for _, att := range e.Attachments {
		attHeader := make(textproto.MIMEHeader)
		attHeader.Set("Content-Type", att.ContentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%s", mime.QEncoding.Encode("UTF-8", att.Filename)))

		part, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		part.Write([]byte(encodeBase64WithLineBreaks(att.Content)))
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeRaw serializes the message and wraps it in the base64url envelope
// consumed by the send operation.
func (e *Email) EncodeRaw() (RawPayload, error) {
	raw, err := e.MarshalMIME()
	if err != nil {
		return RawPayload{}, err
	}
	return RawPayload{Raw: base64.URLEncoding.EncodeToString(raw)}, nil
}

// encodeBase64WithLineBreaks encodes bytes to base64 with 76-character line
// breaks per RFC 2045.
func encodeBase64WithLineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}
