// Package email defines the outgoing message model and its wire encodings.
package email

// Email is an outgoing message assembled by the composer and handed to a
// delivery provider. It is built fresh per send and never mutated after
// serialization.
type Email struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}
