package wizard

// Action is a transition of the wizard. The set is closed: only the types in
// this file implement it.
type Action interface {
	apply(s Session) Session
}

// Reduce applies a to s and returns the next session. s is left untouched.
func Reduce(s Session, a Action) Session {
	if a == nil {
		return s
	}
	return a.apply(s.clone())
}

// SubmitStarted reports whether the transition from prev to next put a
// submission in flight, i.e. whether the caller must now send the inquiry.
func SubmitStarted(prev, next Session) bool {
	return !prev.Submitting && next.Submitting
}

// locked reports whether navigation is frozen: while a submission is in
// flight and after it succeeded.
func (s Session) locked() bool {
	return s.Submitting || s.Succeeded
}

// Update records the in-progress value of the current question and clears
// its error. It never validates.
type Update struct {
	Value string
}

func (a Update) apply(s Session) Session {
	q, ok := s.Current()
	if !ok || s.locked() {
		return s
	}
	s.Answers[q.ID] = a.Value
	s.setError(q.ID, "")
	return s
}

// Advance stores Value as the answer to the current question and moves to
// the next question, or to review after the last one.
type Advance struct {
	Value string
}

func (a Advance) apply(s Session) Session {
	q, ok := s.Current()
	if !ok || s.locked() {
		return s
	}
	s.Answers[q.ID] = a.Value
	s.setError(q.ID, "")
	s.Step++
	s.Direction = Forward
	return s
}

// Retreat moves one step back without validating or touching answers.
type Retreat struct{}

func (Retreat) apply(s Session) Session {
	if s.Step == 0 || s.locked() {
		return s
	}
	s.Step--
	s.Direction = Backward
	return s
}

// JumpTo moves to question Step, e.g. to edit an answer from review.
// Steps outside the question range are ignored.
type JumpTo struct {
	Step int
}

func (a JumpTo) apply(s Session) Session {
	if a.Step < 0 || a.Step >= s.Len() || s.locked() {
		return s
	}
	s.Direction = Forward
	if a.Step < s.Step {
		s.Direction = Backward
	}
	s.Step = a.Step
	return s
}

// Submit validates every answer from the review step. When something fails
// the session jumps to the earliest failing question; otherwise the
// submission goes in flight and the caller sends the inquiry.
type Submit struct{}

func (Submit) apply(s Session) Session {
	if !s.OnReview() || s.locked() {
		return s
	}

	errs := s.schema.Validate(s.Answers)
	failed := errs.Map()
	for _, q := range s.schema.Questions() {
		s.setError(q.ID, failed[q.ID])
	}
	if first, ok := errs.First(); ok {
		return JumpTo{Step: first.Index}.apply(s)
	}

	s.setError(SubmitKey, "")
	s.Submitting = true
	return s
}

// SubmitSucceeded resolves the in-flight submission successfully.
type SubmitSucceeded struct{}

func (SubmitSucceeded) apply(s Session) Session {
	if !s.Submitting {
		return s
	}
	s.Submitting = false
	s.Succeeded = true
	return s
}

// SubmitFailed resolves the in-flight submission with an error and leaves
// the session on review.
type SubmitFailed struct {
	Message string
}

func (a SubmitFailed) apply(s Session) Session {
	if !s.Submitting {
		return s
	}
	msg := a.Message
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}
	s.Submitting = false
	s.setError(SubmitKey, msg)
	return s
}

// Restart discards every answer and returns to the first question. A
// submission still in flight resolves into nothing.
type Restart struct{}

func (Restart) apply(s Session) Session {
	return New(s.schema)
}
