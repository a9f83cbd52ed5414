// Package parser parses RFC 5322 messages with MIME multipart support back
// into the email model. It is the inverse of the serializer and is used to
// inspect raw payloads before or instead of sending them.
package parser

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/bdrennan/mailkit/internal/email"
)

// Parse parses a raw RFC 5322 message into an Email. It handles plain text
// messages, multipart messages, and attachment parts with base64 or
// quoted-printable transfer encoding. Unrecognized MIME parts are logged and
// skipped.
func Parse(raw []byte) (*email.Email, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	result := &email.Email{
		From:    msg.Header.Get("From"),
		Subject: msg.Header.Get("Subject"),
		To:      parseAddressList(msg.Header.Get("To")),
		Cc:      parseAddressList(msg.Header.Get("Cc")),
		Bcc:     parseAddressList(msg.Header.Get("Bcc")),
	}

	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		slog.Warn("failed to parse content type, treating as plain text",
			"content_type", contentType,
			"error", err,
		)
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read message body: %w", readErr)
		}
		result.Body = string(body)
		return result, nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("multipart message missing boundary")
		}
		if err := parseMultipart(msg.Body, boundary, result); err != nil {
			return nil, fmt.Errorf("failed to parse multipart message: %w", err)
		}
		return result, nil
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	result.Body = string(body)
	return result, nil
}

// DecodeRaw unwraps a base64url raw payload and parses the serialized
// message it carries.
func DecodeRaw(p email.RawPayload) (*email.Email, error) {
	raw, err := base64.URLEncoding.DecodeString(p.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raw payload: %w", err)
	}
	return Parse(raw)
}

// parseAddressList splits a comma-separated address header into individual
// addresses, falling back to a naive split when the header does not parse.
func parseAddressList(header string) []string {
	if header == "" {
		return nil
	}

	addrs, err := mail.ParseAddressList(header)
	if err != nil {
		parts := strings.Split(header, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}

	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Address)
	}
	return out
}

// parseMultipart processes a multipart MIME body, extracting the text body
// and attachment parts.
func parseMultipart(body io.Reader, boundary string, result *email.Email) error {
	reader := multipart.NewReader(body, boundary)

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read next part: %w", err)
		}

		partContentType := part.Header.Get("Content-Type")
		if partContentType == "" {
			partContentType = "text/plain"
		}

		mediaType, params, err := mime.ParseMediaType(partContentType)
		if err != nil {
			slog.Warn("failed to parse part content type, skipping",
				"content_type", partContentType,
				"error", err,
			)
			continue
		}

		contentDisposition := part.Header.Get("Content-Disposition")
		isAttachment := strings.HasPrefix(contentDisposition, "attachment")

		// Nested multipart (e.g. multipart/alternative inside mixed)
		if strings.HasPrefix(mediaType, "multipart/") {
			nestedBoundary := params["boundary"]
			if nestedBoundary == "" {
				slog.Warn("nested multipart missing boundary, skipping")
				continue
			}
			if err := parseMultipart(part, nestedBoundary, result); err != nil {
				slog.Warn("failed to parse nested multipart", "error", err)
			}
			continue
		}

		content, err := readPartContent(part)
		if err != nil {
			slog.Warn("failed to read part content",
				"content_type", mediaType,
				"error", err,
			)
			continue
		}

		if isAttachment {
			result.Attachments = append(result.Attachments, email.Attachment{
				Filename:    extractFilename(part, params),
				ContentType: mediaType,
				Content:     content,
			})
			continue
		}

		switch mediaType {
		case "text/plain":
			if result.Body == "" {
				result.Body = string(content)
			}
		case "text/html":
			// No separate HTML body in this model; keep it only when no
			// plain text part was seen.
			if result.Body == "" {
				result.Body = string(content)
			}
		default:
			filename := extractFilename(part, params)
			if filename != "" {
				result.Attachments = append(result.Attachments, email.Attachment{
					Filename:    filename,
					ContentType: mediaType,
					Content:     content,
				})
			} else {
				slog.Warn("unrecognized MIME part, skipping",
					"content_type", mediaType,
					"disposition", contentDisposition,
				)
			}
		}
	}

	return nil
}

// readPartContent reads the full content of a MIME part, handling
// Content-Transfer-Encoding.
func readPartContent(part *multipart.Part) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(part.Header.Get("Content-Transfer-Encoding")))

	raw, err := io.ReadAll(part)
	if err != nil {
		return nil, err
	}

	switch encoding {
	case "base64":
		cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(raw))
		decoded, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(cleaned)
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64 content: %w", err)
			}
		}
		return decoded, nil
	default:
		// "7bit", "8bit", "binary", "quoted-printable", or empty: the
		// multipart reader already decoded QP, everything else is literal.
		return raw, nil
	}
}

// extractFilename extracts the filename of a MIME part from its
// Content-Disposition, falling back to the Content-Type name parameter.
func extractFilename(part *multipart.Part, params map[string]string) string {
	if name := part.FileName(); name != "" {
		return name
	}
	return params["name"]
}
