// Package mail composes inquiry notifications and hands them to a
// transactional email provider.
package mail

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured means no provider credential was supplied.
	ErrNotConfigured = errors.New("email provider not configured")
	// ErrProviderRejected means the provider answered and refused the message.
	ErrProviderRejected = errors.New("email provider rejected the message")
	// ErrProviderUnreachable means the provider could not be reached.
	ErrProviderUnreachable = errors.New("email provider unreachable")
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
