package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skm16/skmdigital/pkg/contact"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/mail"
	"github.com/skm16/skmdigital/pkg/site"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []mail.Message
	err   error
	panic bool
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic {
		panic("provider exploded")
	}
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("msg_%d", len(f.sent)), nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, sender mail.Sender) *Server {
	t.Helper()
	deps := Deps{
		Content: site.Default().WithLinks("https://skm.digital", "https://calendly.com/sean-skm/20min"),
		Now:     func() time.Time { return fixedNow },
	}
	if sender != nil {
		deps.Sender = sender
	}
	s, err := New(Config{}, deps)
	require.NoError(t, err)
	return s
}

func validBody() map[string]string {
	return map[string]string{
		"name":        "Jordan",
		"email":       "jordan@agency.com",
		"projectType": "multi-system-integration",
		"challenge":   "Sync inventory between WordPress and Salesforce",
		"timeline":    "asap",
		"budget":      "50k-plus",
		"submittedAt": "2026-10-19T14:30:00.000Z",
	}
}

func postContact(t *testing.T, h http.Handler, body any) (*httptest.ResponseRecorder, contact.Response) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, contact.Path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp contact.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestContactSuccessSendsOnce(t *testing.T) {
	sender := &fakeSender{}
	h := newTestServer(t, sender).Handler()

	rec, resp := postContact(t, h, validBody())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Thanks! We'll review this and reply within 24 hours.", resp.Message)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	require.Equal(t, 1, sender.count())
	msg := sender.sent[0]
	assert.Equal(t, "New Project Inquiry - Multi-System Integration - Jordan", msg.Subject)
	assert.Equal(t, []string{mail.DefaultTo}, msg.To)
	assert.Equal(t, "jordan@agency.com", msg.ReplyTo)
	assert.Contains(t, msg.Text, "Budget: $50k+")
	assert.Contains(t, msg.Text, "ADDITIONAL INFO\nN/A")
}

func TestContactValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		field   string
		message string
	}{
		{"short name", func(b map[string]string) { b["name"] = "J" }, "name", "Name must be at least 2 characters"},
		{"bad email", func(b map[string]string) { b["email"] = "jo@x" }, "email", "Please enter a valid email address"},
		{"unknown project type", func(b map[string]string) { b["projectType"] = "blockchain" }, "projectType", "Please choose one of the listed options"},
		{"short challenge", func(b map[string]string) { b["challenge"] = strings.Repeat("c", 19) }, "challenge", "Please provide at least 20 characters - helps us understand your needs"},
		{"long extra info", func(b map[string]string) { b["additionalInfo"] = strings.Repeat("x", 501) }, "additionalInfo", "Please keep this under 500 characters"},
		{"missing budget", func(b map[string]string) { delete(b, "budget") }, "budget", "This field is required"},
		{"missing timestamp", func(b map[string]string) { delete(b, "submittedAt") }, "submittedAt", "Submission timestamp is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			body := validBody()
			tt.mutate(body)

			rec, resp := postContact(t, newTestServer(t, sender).Handler(), body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, tt.field, resp.Field)
			assert.Zero(t, sender.count())
		})
	}
}

func TestContactFirstErrorWins(t *testing.T) {
	body := validBody()
	body["name"] = "Jo"
	body["email"] = "jo@x"
	body["challenge"] = strings.Repeat("c", 19)

	_, resp := postContact(t, newTestServer(t, &fakeSender{}).Handler(), body)
	assert.Equal(t, "email", resp.Field)
	assert.Equal(t, "Please enter a valid email address", resp.Error)
}

func TestContactMalformedBody(t *testing.T) {
	sender := &fakeSender{}
	h := newTestServer(t, sender).Handler()

	raw, err := json.Marshal(validBody())
	require.NoError(t, err)
	trailing := string(raw)
	for _, body := range []string{"{not json", `"just a string"`, `{"name": 42}`, trailing + "garbage", trailing + "}", trailing + trailing} {
		rec, resp := postContact(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, contact.MsgBadInput, resp.Error)
	}

	huge := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec, resp := postContact(t, h, huge)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, contact.MsgBadInput, resp.Error)
	assert.Zero(t, sender.count())
}

func TestContactAllowsTrailingWhitespace(t *testing.T) {
	sender := &fakeSender{}
	raw, err := json.Marshal(validBody())
	require.NoError(t, err)

	rec, resp := postContact(t, newTestServer(t, sender).Handler(), string(raw)+"\n\t ")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, sender.count())
}

func TestContactWithoutSender(t *testing.T) {
	rec, resp := postContact(t, newTestServer(t, nil).Handler(), validBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Email service not configured. Please email sean@skm.digital directly.", resp.Error)
}

func TestContactProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"rejected", fmt.Errorf("%w: 422 invalid from", mail.ErrProviderRejected), http.StatusBadRequest, "Failed to send email. Please try again or email sean@skm.digital directly."},
		{"unclassified", errors.New("boom"), http.StatusBadRequest, contact.MsgSendFailed},
		{"unreachable", fmt.Errorf("%w: dial tcp", mail.ErrProviderUnreachable), http.StatusInternalServerError, "Something went wrong. Please email sean@skm.digital directly."},
		{"not configured", mail.ErrNotConfigured, http.StatusInternalServerError, contact.MsgNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.err}
			rec, resp := postContact(t, newTestServer(t, sender).Handler(), validBody())
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, 1, sender.count(), "exactly one attempt, no retry")
		})
	}
}

func TestContactPanicRecovered(t *testing.T) {
	rec, resp := postContact(t, newTestServer(t, &fakeSender{panic: true}).Handler(), validBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, contact.MsgInternal, resp.Error)
}

func TestContactMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &fakeSender{}).Handler()
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, contact.Path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	const id = "6f1c2a4e-8d3b-4b7a-9c2e-1f0a5d7e9b31"

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get("X-Request-ID"))
}

func TestQuestionsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Questions []struct {
			ID          string `json:"id"`
			Kind        string `json:"kind"`
			AutoAdvance bool   `json:"autoAdvance"`
			Rules       struct {
				Required bool   `json:"required"`
				Pattern  string `json:"pattern"`
			} `json:"rules"`
			Messages struct {
				Required string `json:"required"`
				Pattern  string `json:"pattern"`
				Choice   string `json:"choice"`
			} `json:"messages"`
		} `json:"questions"`
		AutoAdvanceDelayMs int `json:"autoAdvanceDelayMs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Questions, 7)
	assert.Equal(t, inquiry.FieldName, got.Questions[0].ID)
	assert.Equal(t, "choice", got.Questions[2].Kind)
	assert.False(t, got.Questions[6].Rules.Required)
	assert.Equal(t, 100, got.AutoAdvanceDelayMs)

	email := got.Questions[1]
	assert.NotEmpty(t, email.Rules.Pattern)
	assert.Equal(t, "Please enter a valid email address", email.Messages.Pattern)
	assert.Equal(t, "This field is required", email.Messages.Required)
	assert.Equal(t, "Please choose one of the listed options", got.Questions[2].Messages.Choice)

	rec = httptest.NewRecorder()
	newTestServer(t, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/questions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSiteEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/site", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got site.Content
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "https://calendly.com/sean-skm/20min", got.SchedulingURL)
	assert.Len(t, got.Services, 6)
}

func TestSitemapEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rec.Body.String(), "<loc>https://skm.digital</loc>")
	assert.Contains(t, rec.Body.String(), "<lastmod>2026-10-19T12:00:00Z</lastmod>")
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeSender{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, true, got["mailConfigured"])
}

func TestFrontend(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	for _, path := range []string{"/", "/index.html", "/some/client/route"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
		assert.Contains(t, rec.Body.String(), "Multi-System Integration", path)
		assert.Contains(t, rec.Body.String(), `href="https://calendly.com/sean-skm/20min"`, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/questions")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, err := New(Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, Deps{Content: site.Default()})
	require.NoError(t, err)
	ln, err := s.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
