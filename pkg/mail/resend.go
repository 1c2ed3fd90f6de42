package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a sender for the given API key.
func NewResendSender(apiKey string) (*ResendSender, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &ResendSender{client: resend.NewClient(apiKey)}, nil
}

// NewResendSenderWithClient wraps an already configured client.
func NewResendSenderWithClient(client *resend.Client) *ResendSender {
	return &ResendSender{client: client}
}

// Send performs exactly one API call. Transport failures wrap
// ErrProviderUnreachable, every other failure wraps ErrProviderRejected.
func (r *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return "", fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
		}
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	if sent == nil {
		return "", fmt.Errorf("%w: empty response", ErrProviderRejected)
	}
	return sent.Id, nil
}
