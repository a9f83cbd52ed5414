// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"

	"github.com/bdrennan/mailkit/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// Each provider hands a composed message to the target service (Gmail API,
// AWS SES, Microsoft Graph, or stdout for dry runs). Sends are single
// attempts; errors are returned to the caller undecorated by retries.
type Provider interface {
	// Send delivers an email message through this provider.
	Send(ctx context.Context, msg *email.Email) error

	// Name returns the human-readable name of this provider.
	Name() string
}
