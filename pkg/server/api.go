package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/contact"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/site"
	"github.com/skm16/skmdigital/pkg/wizard"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// allowGet answers 405 for anything but GET and HEAD.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeJSON(w, http.StatusMethodNotAllowed, contact.Response{Error: "Method not allowed"})
	return false
}

// handleQuestions exposes the question schema so a browser form renders
// and pre-validates the same questions the handler enforces.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	type questionsResponse struct {
		Questions        []inquiry.Question `json:"questions"`
		AutoAdvanceDelay int64              `json:"autoAdvanceDelayMs"`
	}
	writeJSON(w, http.StatusOK, questionsResponse{
		Questions:        s.schema.Questions(),
		AutoAdvanceDelay: wizard.AutoAdvanceDelay.Milliseconds(),
	})
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.content)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	body, err := site.Sitemap(s.content.BaseURL, s.now())
	if err != nil {
		s.requestLogger(r).Error("render sitemap", zap.Error(err))
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"mailConfigured": s.sender != nil,
		"uptime":         s.now().Sub(s.started).Round(time.Second).String(),
	})
}
