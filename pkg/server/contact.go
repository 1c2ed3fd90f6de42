package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/contact"
	"github.com/skm16/skmdigital/pkg/inquiry"
)

const maxBodyBytes = 64 << 10

// handleContact validates a submitted inquiry and emails it to the studio.
// Each request sends at most one email; nothing is queued or retried.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, contact.Response{Error: "Method not allowed"})
		return
	}
	log := s.requestLogger(r)

	var inq inquiry.Inquiry
	if err := decodeInquiry(http.MaxBytesReader(w, r.Body, maxBodyBytes), &inq); err != nil {
		log.Info("Rejected malformed inquiry", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, contact.Response{Error: contact.MsgBadInput})
		return
	}
	inq = inq.Normalized()

	if err := s.schema.ValidateInquiry(inq); err != nil {
		resp := contact.Response{Error: contact.MsgBadInput}
		var verr *inquiry.ValidationError
		if errors.As(err, &verr) {
			resp.Error = verr.Message
			resp.Field = verr.Field
		}
		log.Info("Rejected invalid inquiry", zap.String("field", resp.Field))
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if s.sender == nil {
		log.Error("Email provider not configured; inquiry dropped",
			zap.String("projectType", string(inq.ProjectType)))
		writeJSON(w, http.StatusInternalServerError, contact.Response{Error: contact.MsgNotConfigured})
		return
	}

	msg, err := s.composer.Compose(inq)
	if err != nil {
		log.Error("Failed to compose inquiry email", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, contact.Response{Error: contact.MsgInternal})
		return
	}

	id, err := s.sender.Send(r.Context(), msg)
	if err != nil {
		log.Error("Failed to send inquiry email",
			zap.String("projectType", string(inq.ProjectType)),
			zap.Error(err))
		status, message := contact.SendFailure(err)
		writeJSON(w, status, contact.Response{Error: message})
		return
	}

	log.Info("Inquiry sent",
		zap.String("projectType", string(inq.ProjectType)),
		zap.String("budget", string(inq.Budget)),
		zap.String("messageId", id))
	writeJSON(w, http.StatusOK, contact.Response{Success: true, Message: contact.MsgSuccess})
}

// decodeInquiry reads exactly one JSON object; trailing data is an error.
func decodeInquiry(body io.Reader, inq *inquiry.Inquiry) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(inq); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after inquiry object")
	}
	return nil
}
