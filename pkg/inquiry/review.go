package inquiry

import "strings"

const (
	namePlaceholder = "{name}"
	nameFallback    = "there"
	noAnswer        = "N/A"
)

// ReviewItem is one row of the review screen.
type ReviewItem struct {
	QuestionID string
	Index      int
	Prompt     string
	Answer     string
}

// Prompt returns the question text personalised with the respondent's name.
func (s *Schema) Prompt(q Question, answers Answers) string {
	name := answers[FieldName]
	if name == "" {
		name = nameFallback
	}
	return strings.Replace(q.Prompt, namePlaceholder, name, 1)
}

// FormatAnswer renders an answer for display.
func (s *Schema) FormatAnswer(q Question, value string) string {
	if value == "" {
		return noAnswer
	}
	if q.Kind == KindChoice {
		return s.Label(q.ID, value)
	}
	return value
}

// ReviewItems lists every required question plus the optional questions
// that have a value. Optional questions left empty are not shown.
func (s *Schema) ReviewItems(answers Answers) []ReviewItem {
	items := make([]ReviewItem, 0, len(s.questions))
	for i, q := range s.questions {
		value := answers[q.ID]
		if !q.Rules.Required && value == "" {
			continue
		}
		items = append(items, ReviewItem{
			QuestionID: q.ID,
			Index:      i,
			Prompt:     s.Prompt(q, answers),
			Answer:     s.FormatAnswer(q, value),
		})
	}
	return items
}
