package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/contact"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/mail"
)

// Submitter delivers a finished inquiry. Errors should be
// *contact.SubmitError so the wizard can show their message.
type Submitter interface {
	Submit(ctx context.Context, inq inquiry.Inquiry) error
}

// EndpointSubmitter posts to a running server's contact endpoint.
type EndpointSubmitter struct {
	Client *contact.Client
}

func (e EndpointSubmitter) Submit(ctx context.Context, inq inquiry.Inquiry) error {
	_, err := e.Client.Submit(ctx, inq)
	return err
}

// DirectSubmitter validates and emails the inquiry from this process, for
// when the email credential is available locally.
type DirectSubmitter struct {
	Schema   *inquiry.Schema
	Composer *mail.Composer
	Sender   mail.Sender
	Logger   *zap.Logger
}

func (d DirectSubmitter) Submit(ctx context.Context, inq inquiry.Inquiry) error {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	inq = inq.Normalized()
	if err := d.Schema.ValidateInquiry(inq); err != nil {
		var verr *inquiry.ValidationError
		if errors.As(err, &verr) {
			return &contact.SubmitError{Message: verr.Message, Field: verr.Field}
		}
		return &contact.SubmitError{Message: contact.MsgBadInput}
	}
	if d.Sender == nil {
		return &contact.SubmitError{Message: contact.MsgNotConfigured}
	}

	msg, err := d.Composer.Compose(inq)
	if err != nil {
		log.Error("Failed to compose inquiry email", zap.Error(err))
		return &contact.SubmitError{Message: contact.MsgInternal}
	}
	id, err := d.Sender.Send(ctx, msg)
	if err != nil {
		log.Error("Failed to send inquiry email", zap.Error(err))
		_, message := contact.SendFailure(err)
		return &contact.SubmitError{Message: message}
	}
	log.Info("Inquiry sent",
		zap.String("projectType", string(inq.ProjectType)),
		zap.String("messageId", id))
	return nil
}

// submitMessage is the text shown on the review screen for a failed submit.
func submitMessage(err error) string {
	var se *contact.SubmitError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return contact.MsgNetworkFailure
}
