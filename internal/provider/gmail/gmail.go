// Package gmail implements a Provider that sends messages via the Gmail API,
// along with the installed-app OAuth flow that authorizes it.
package gmail

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/bdrennan/mailkit/internal/email"
)

// Provider sends messages through the Gmail API users.messages.send
// endpoint. The message travels as the base64url raw payload, so the wire
// artifact is byte-for-byte the serialized RFC 5322 message.
type Provider struct {
	service *gmailapi.Service
	userID  string
}

// New creates a Provider around an authorized Gmail service.
func New(service *gmailapi.Service) *Provider {
	return &Provider{service: service, userID: "me"}
}

// NewService builds a Gmail API service. The caller supplies the
// authenticated HTTP client option (or test overrides).
func NewService(ctx context.Context, opts ...option.ClientOption) (*gmailapi.Service, error) {
	service, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return service, nil
}

// Send encodes the message into its raw payload and submits it in a single
// attempt.
func (p *Provider) Send(ctx context.Context, msg *email.Email) error {
	payload, err := msg.EncodeRaw()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	_, err = p.service.Users.Messages.Send(p.userID, &gmailapi.Message{Raw: payload.Raw}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Gmail send failed: %w", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gmail"
}
