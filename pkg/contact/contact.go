// Package contact holds the wire shape of POST /api/contact and a client
// the terminal wizard uses to call it.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/mail"
)

const Path = "/api/contact"

// Messages returned to the submitter.
const (
	MsgSuccess        = "Thanks! We'll review this and reply within 24 hours."
	MsgBadInput       = "Please check your form inputs and try again."
	MsgNotConfigured  = "Email service not configured. Please email sean@skm.digital directly."
	MsgSendFailed     = "Failed to send email. Please try again or email sean@skm.digital directly."
	MsgInternal       = "Something went wrong. Please email sean@skm.digital directly."
	MsgRejected       = "Something went wrong"
	MsgNetworkFailure = "Something went wrong. Please try again."
)

// Response is the JSON body of every contact reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Field   string `json:"field,omitempty"`
}

// SubmitError is a failed submission with the message to show the user.
type SubmitError struct {
	Status  int
	Message string
	Field   string
}

func (e *SubmitError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// SendFailure maps an email delivery error to the HTTP status and message
// reported to the submitter.
func SendFailure(err error) (int, string) {
	switch {
	case errors.Is(err, mail.ErrNotConfigured):
		return http.StatusInternalServerError, MsgNotConfigured
	case errors.Is(err, mail.ErrProviderUnreachable):
		return http.StatusInternalServerError, MsgInternal
	default:
		return http.StatusBadRequest, MsgSendFailed
	}
}

type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Submit posts the inquiry once. Any failure, including a 2xx reply without
// "success": true, is a *SubmitError whose Message is safe to display.
func (c *Client) Submit(ctx context.Context, inq inquiry.Inquiry) (Response, error) {
	body, err := json.Marshal(inq)
	if err != nil {
		return Response{}, &SubmitError{Message: MsgNetworkFailure}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, &SubmitError{Message: MsgNetworkFailure}
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, &SubmitError{Message: MsgNetworkFailure}
	}
	defer resp.Body.Close()

	var out Response
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = MsgRejected
		}
		return out, &SubmitError{Status: resp.StatusCode, Message: msg, Field: out.Field}
	}
	if decodeErr != nil {
		return Response{}, &SubmitError{Status: resp.StatusCode, Message: MsgRejected}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = MsgRejected
		}
		return out, &SubmitError{Status: resp.StatusCode, Message: msg, Field: out.Field}
	}
	return out, nil
}
