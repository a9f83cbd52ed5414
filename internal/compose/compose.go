// Package compose assembles outgoing messages with attachments drawn from a
// local folder.
package compose

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/bdrennan/mailkit/internal/email"
	"github.com/bdrennan/mailkit/internal/fileset"
	"github.com/bdrennan/mailkit/internal/imaging"
)

// AttachmentError reports a failure to prepare a single attachment.
type AttachmentError struct {
	Filename string
	Err      error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("failed to prepare attachment %s: %v", e.Filename, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// Params are the inputs for assembling a message. AttachmentDir and Suffixes
// select the files to attach; both may be empty for a message without
// attachments. MaxImageEdge bounds the longer edge of image attachments and
// falls back to imaging.DefaultMaxEdge when zero or negative.
type Params struct {
	From          string
	To            []string
	Cc            []string
	Bcc           []string
	Subject       string
	Body          string
	AttachmentDir string
	Suffixes      []string
	MaxImageEdge  int
}

// Message builds an outgoing message from params. Files in AttachmentDir
// matching Suffixes are attached in directory-listing order; images above
// the edge bound are downsampled first, everything else is attached as raw
// bytes. An empty match set is not an error. A missing attachment folder
// yields a *fileset.NotFoundError, and a broken image a *AttachmentError.
func Message(params Params) (*email.Email, error) {
	msg := &email.Email{
		From:    params.From,
		To:      params.To,
		Cc:      params.Cc,
		Bcc:     params.Bcc,
		Subject: params.Subject,
		Body:    params.Body,
	}

	if params.AttachmentDir == "" {
		return msg, nil
	}

	files, err := fileset.Find(params.AttachmentDir, params.Suffixes)
	if err != nil {
		return nil, err
	}
	slog.Info("discovered attachment candidates",
		"folder", params.AttachmentDir,
		"suffixes", params.Suffixes,
		"count", len(files),
		"files", files,
	)

	maxEdge := params.MaxImageEdge
	if maxEdge < 1 {
		maxEdge = imaging.DefaultMaxEdge
	}

	for _, name := range files {
		path := filepath.Join(params.AttachmentDir, name)

		isImage, err := imaging.IsImage(path)
		if err != nil {
			return nil, err
		}

		var data []byte
		if isImage {
			data, err = imaging.EncodeBounded(path, maxEdge)
			if err != nil {
				return nil, &AttachmentError{Filename: name, Err: err}
			}
		} else {
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, &AttachmentError{Filename: name, Err: err}
			}
		}

		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename:    name,
			ContentType: contentTypeFor(name),
			Content:     data,
		})
	}

	return msg, nil
}

// contentTypeFor derives the declared content type from the filename
// extension, defaulting to application/octet-stream for unknown types.
func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
