package email

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestMarshalMIME_Headers(t *testing.T) {
	t.Parallel()

	msg := &Email{
		From:    "sender@example.com",
		To:      []string{"alice@example.com", "bob@example.com"},
		Cc:      []string{"carol@example.com"},
		Subject: "Quarterly numbers",
		Body:    "See attached.",
	}

	raw, err := msg.MarshalMIME()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(raw)
	for _, want := range []string{
		"From: sender@example.com\r\n",
		"To: alice@example.com, bob@example.com\r\n",
		"Cc: carol@example.com\r\n",
		"Subject: Quarterly numbers\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/mixed; boundary=",
		"See attached.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized message missing %q", want)
		}
	}
	if strings.Contains(out, "Bcc:") {
		t.Error("Bcc header should be absent when no Bcc recipients are set")
	}
}

func TestMarshalMIME_AttachmentEncoding(t *testing.T) {
	t.Parallel()

	content := []byte{0x00, 0x01, 0xFE, 0xFF, 0x10, 0x20}
	msg := &Email{
		From:    "sender@example.com",
		To:      []string{"to@example.com"},
		Subject: "With file",
		Body:    "body",
		Attachments: []Attachment{
			{Filename: "data.bin", ContentType: "application/octet-stream", Content: content},
		},
	}

	raw, err := msg.MarshalMIME()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(raw)
	if !strings.Contains(out, "Content-Transfer-Encoding: base64") {
		t.Error("attachment part missing base64 transfer encoding")
	}
	if !strings.Contains(out, "Content-Disposition: attachment; filename=data.bin") {
		t.Error("attachment part missing disposition with filename")
	}
	if !strings.Contains(out, base64.StdEncoding.EncodeToString(content)) {
		t.Error("attachment part missing base64 content")
	}
}

func TestEncodeRaw_URLSafeAlphabet(t *testing.T) {
	t.Parallel()

	// Binary attachment content dense enough to hit '+' and '/' in the
	// standard alphabet, which must not appear in the url-safe envelope.
	content := make([]byte, 512)
	for i := range content {
		content[i] = byte(i * 7)
	}
	msg := &Email{
		From:    "sender@example.com",
		To:      []string{"to@example.com"},
		Subject: "alphabet",
		Body:    "body",
		Attachments: []Attachment{
			{Filename: "blob.bin", ContentType: "application/octet-stream", Content: content},
		},
	}

	payload, err := msg.EncodeRaw()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.ContainsAny(payload.Raw, "+/") {
		t.Error("raw payload contains standard-alphabet characters")
	}

	decoded, err := base64.URLEncoding.DecodeString(payload.Raw)
	if err != nil {
		t.Fatalf("raw payload is not valid padded base64url: %v", err)
	}

	raw, err := msg.MarshalMIME()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Error("decoded payload does not match the serialized message bytes")
	}
}

func TestEncodeRaw_EmptyMessage(t *testing.T) {
	t.Parallel()

	msg := &Email{From: "a@b.c", To: []string{"d@e.f"}}
	payload, err := msg.EncodeRaw()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Raw == "" {
		t.Error("payload should not be empty")
	}
}
