package inquiry

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	msgRequired = "This field is required"
	msgMin      = "Please provide at least %d characters"
	msgMax      = "Please keep this under %d characters"
	msgPattern  = "Please enter a valid value"
	msgChoice   = "Please choose one of the listed options"

	msgSubmittedAt = "Submission timestamp is required"
)

// FieldError is a failed rule on one question.
type FieldError struct {
	QuestionID string
	Index      int
	Message    string
}

// FieldErrors are field errors in question order.
type FieldErrors []FieldError

// First returns the earliest failing question.
func (fe FieldErrors) First() (FieldError, bool) {
	if len(fe) == 0 {
		return FieldError{}, false
	}
	return fe[0], true
}

// Map returns the messages keyed by question id.
func (fe FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		m[e.QuestionID] = e.Message
	}
	return m
}

// ValidationError is the first violated rule of a submitted inquiry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Check runs the rules of q against value and returns the message of the
// first failed rule, or "" when the value is acceptable. Rules apply to the
// trimmed value; an empty optional value passes without further checks.
func (s *Schema) Check(q Question, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if q.Rules.Required {
			return pick(q.Messages.Required, msgRequired)
		}
		return ""
	}

	n := utf8.RuneCountInString(trimmed)
	if q.Rules.MinLength > 0 && n < q.Rules.MinLength {
		return pick(q.Messages.MinLength, fmt.Sprintf(msgMin, q.Rules.MinLength))
	}
	if q.Rules.MaxLength > 0 && n > q.Rules.MaxLength {
		return pick(q.Messages.MaxLength, fmt.Sprintf(msgMax, q.Rules.MaxLength))
	}
	if q.pattern != nil && !q.pattern.MatchString(trimmed) {
		return pick(q.Messages.Pattern, msgPattern)
	}
	if q.Kind == KindChoice && q.OptionIndex(trimmed) < 0 {
		return pick(q.Messages.Choice, msgChoice)
	}
	return ""
}

// Validate checks every question in order.
func (s *Schema) Validate(answers Answers) FieldErrors {
	var errs FieldErrors
	for i, q := range s.questions {
		if msg := s.Check(q, answers[q.ID]); msg != "" {
			errs = append(errs, FieldError{QuestionID: q.ID, Index: i, Message: msg})
		}
	}
	return errs
}

// ValidateInquiry checks a submitted inquiry and returns the first violated
// rule as a *ValidationError.
func (s *Schema) ValidateInquiry(inq Inquiry) error {
	if first, ok := s.Validate(inq.Answers()).First(); ok {
		return &ValidationError{Field: first.QuestionID, Message: first.Message}
	}
	if strings.TrimSpace(inq.SubmittedAt) == "" {
		return &ValidationError{Field: FieldSubmittedAt, Message: msgSubmittedAt}
	}
	return nil
}

// resolvedMessages fills unset messages with the defaults of the rules the
// question has, so every client shows the same text.
func (q Question) resolvedMessages() Messages {
	m := q.Messages
	if q.Rules.Required {
		m.Required = pick(m.Required, msgRequired)
	}
	if q.Rules.MinLength > 0 {
		m.MinLength = pick(m.MinLength, fmt.Sprintf(msgMin, q.Rules.MinLength))
	}
	if q.Rules.MaxLength > 0 {
		m.MaxLength = pick(m.MaxLength, fmt.Sprintf(msgMax, q.Rules.MaxLength))
	}
	if q.Rules.Pattern != "" {
		m.Pattern = pick(m.Pattern, msgPattern)
	}
	if q.Kind == KindChoice {
		m.Choice = pick(m.Choice, msgChoice)
	}
	return m
}

func pick(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}
