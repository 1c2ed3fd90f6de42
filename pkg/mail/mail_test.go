package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skm16/skmdigital/pkg/inquiry"
)

func sampleInquiry() inquiry.Inquiry {
	return inquiry.Inquiry{
		Name:        "Jordan",
		Email:       "jordan@agency.com",
		ProjectType: inquiry.ProjectMultiSystemIntegration,
		Challenge:   "Sync inventory between WordPress and Salesforce",
		Timeline:    inquiry.TimelineASAP,
		Budget:      inquiry.Budget50kPlus,
		SubmittedAt: "2026-10-19T14:30:00.000Z",
	}
}

func TestSubject(t *testing.T) {
	c := NewComposer(inquiry.Default(), "", nil, nil)

	assert.Equal(t, "New Project Inquiry - Multi-System Integration - Jordan", c.Subject(sampleInquiry()))

	other := sampleInquiry()
	other.ProjectType = inquiry.ProjectAPIDevelopment
	subject := c.Subject(other)
	assert.Equal(t, "New Project Inquiry - API Development & Integration - Jordan", subject)
	assert.NotContains(t, subject, "Multi-System Integration")
}

func TestBodyUsesLabels(t *testing.T) {
	c := NewComposer(inquiry.Default(), "", nil, time.UTC)

	body, err := c.Body(sampleInquiry())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(body, "New inquiry from SKM.digital contact form"))
	assert.Contains(t, body, "Submitted: Monday, October 19, 2026 at 2:30 PM")
	assert.Contains(t, body, "CONTACT INFO\nName: Jordan\nEmail: jordan@agency.com")
	assert.Contains(t, body, "Type: Multi-System Integration")
	assert.Contains(t, body, "Timeline: ASAP (4-6 weeks)")
	assert.Contains(t, body, "Budget: $50k+")
	assert.NotContains(t, body, "50k-plus")
	assert.Contains(t, body, "CHALLENGE\nSync inventory between WordPress and Salesforce")
	assert.Contains(t, body, "ADDITIONAL INFO\nN/A")
	assert.True(t, strings.HasSuffix(body, "ACTION REQUIRED: Reply within 24 hours (promised on site)"))
}

func TestBodyTimezoneAndRawTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	c := NewComposer(inquiry.Default(), "", nil, ny)

	body, err := c.Body(sampleInquiry())
	require.NoError(t, err)
	assert.Contains(t, body, "Submitted: Monday, October 19, 2026 at 10:30 AM")

	odd := sampleInquiry()
	odd.SubmittedAt = "yesterday-ish"
	odd.AdditionalInfo = "Three developers in-house"
	body, err = c.Body(odd)
	require.NoError(t, err)
	assert.Contains(t, body, "Submitted: yesterday-ish")
	assert.Contains(t, body, "ADDITIONAL INFO\nThree developers in-house")
}

func TestCompose(t *testing.T) {
	c := NewComposer(inquiry.Default(), "Studio <hi@studio.test>", []string{"owner@studio.test"}, nil)

	msg, err := c.Compose(sampleInquiry())
	require.NoError(t, err)
	assert.Equal(t, "Studio <hi@studio.test>", msg.From)
	assert.Equal(t, []string{"owner@studio.test"}, msg.To)
	assert.Equal(t, "jordan@agency.com", msg.ReplyTo)
	assert.Contains(t, msg.Subject, "Jordan")
	assert.NotEmpty(t, msg.Text)

	defaults := NewComposer(inquiry.Default(), "", nil, nil)
	msg, err = defaults.Compose(sampleInquiry())
	require.NoError(t, err)
	assert.Equal(t, DefaultFrom, msg.From)
	assert.Equal(t, []string{DefaultTo}, msg.To)
}

func TestNewResendSenderRequiresKey(t *testing.T) {
	_, err := NewResendSender("  ")
	assert.ErrorIs(t, err, ErrNotConfigured)

	s, err := NewResendSender("re_123")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func newTestSender(t *testing.T, baseURL string) *ResendSender {
	t.Helper()
	client := resend.NewClient("re_test")
	u, err := url.Parse(baseURL + "/")
	require.NoError(t, err)
	client.BaseURL = u
	return NewResendSenderWithClient(client)
}

func TestResendSenderSend(t *testing.T) {
	var calls atomic.Int32
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_42"}`))
	}))
	defer srv.Close()

	s := newTestSender(t, srv.URL)
	id, err := s.Send(context.Background(), Message{
		From:    DefaultFrom,
		To:      []string{DefaultTo},
		Subject: "New Project Inquiry - Multi-System Integration - Jordan",
		Text:    "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_42", id)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "New Project Inquiry - Multi-System Integration - Jordan", got["subject"])
	assert.Equal(t, "body", got["text"])
}

func TestResendSenderRejected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	_, err := newTestSender(t, srv.URL).Send(context.Background(), Message{From: "x", To: []string{"y"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResendSenderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := newTestSender(t, base).Send(context.Background(), Message{From: "x", To: []string{"y"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnreachable)
}
