// Package wizard is the state machine behind the conversational contact form.
//
// A Session walks the respondent through the inquiry questions one at a time
// and ends on a review step (Step == Len()). Every transition is an Action
// applied by Reduce, which never mutates the session it is given.
package wizard

import (
	"time"

	"github.com/skm16/skmdigital/pkg/inquiry"
)

// AutoAdvanceDelay is how long a chosen option stays on screen before an
// auto-advance question moves on.
const AutoAdvanceDelay = 100 * time.Millisecond

// SubmitKey holds the submission-level error in Session.Errors.
const SubmitKey = "submit"

// Direction is the direction of the last step change. Only used to pick a
// transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Session is the state of one respondent's pass through the form.
type Session struct {
	schema *inquiry.Schema

	// Step is in [0, Len()]; Len() is the review step.
	Step       int
	Answers    inquiry.Answers
	Errors     map[string]string
	Submitting bool
	Succeeded  bool
	Direction  Direction
}

// New starts a session on the first question.
func New(schema *inquiry.Schema) Session {
	return Session{
		schema:  schema,
		Answers: inquiry.Answers{},
		Errors:  map[string]string{},
	}
}

func (s Session) Schema() *inquiry.Schema { return s.schema }

// Len is the number of questions.
func (s Session) Len() int { return s.schema.Len() }

// OnReview reports whether the session is on the review step.
func (s Session) OnReview() bool { return s.Step == s.schema.Len() }

// Current returns the question being asked; false on the review step.
func (s Session) Current() (inquiry.Question, bool) {
	if s.Step < 0 || s.Step >= s.schema.Len() {
		return inquiry.Question{}, false
	}
	return s.schema.At(s.Step), true
}

// Value is the stored answer of the current question.
func (s Session) Value() string {
	q, ok := s.Current()
	if !ok {
		return ""
	}
	return s.Answers[q.ID]
}

// Prompt is the current question text, personalised.
func (s Session) Prompt() string {
	q, ok := s.Current()
	if !ok {
		return ""
	}
	return s.schema.Prompt(q, s.Answers)
}

// Error returns the validation message of a question, or "".
func (s Session) Error(questionID string) string { return s.Errors[questionID] }

// SubmitError returns the error of the last failed submission, or "".
func (s Session) SubmitError() string { return s.Errors[SubmitKey] }

// Progress is the share of the form completed, counting the review step.
func (s Session) Progress() float64 {
	return float64(s.Step+1) / float64(s.schema.Len()+1)
}

// ReviewItems lists the answers shown on the review step.
func (s Session) ReviewItems() []inquiry.ReviewItem {
	return s.schema.ReviewItems(s.Answers)
}

// Inquiry returns the payload to submit, stamped with now.
func (s Session) Inquiry(now time.Time) inquiry.Inquiry {
	return inquiry.FromAnswers(s.Answers, now)
}

func (s Session) clone() Session {
	out := s
	out.Answers = s.Answers.Clone()
	out.Errors = make(map[string]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return out
}

func (s *Session) setError(id, msg string) {
	if msg == "" {
		delete(s.Errors, id)
		return
	}
	s.Errors[id] = msg
}
