package inquiry

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Kind is the input kind of a question.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindTextarea Kind = "textarea"
	KindChoice   Kind = "choice"
)

func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	if node == nil || node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid question kind")
	}
	switch v := Kind(strings.TrimSpace(node.Value)); v {
	case KindText, KindEmail, KindTextarea, KindChoice:
		*k = v
		return nil
	default:
		return fmt.Errorf("line %d: unknown question kind %q", node.Line, node.Value)
	}
}

// Option is one selectable answer of a choice question.
type Option struct {
	Value string `yaml:"value" json:"value"`
	// Label is what the wizard shows while choosing.
	Label string `yaml:"label" json:"label"`
	// Summary is the short label used on the review screen and in email.
	Summary string `yaml:"summary" json:"summary"`
}

// Rules is the validation rule set of a question. Zero values disable a rule.
type Rules struct {
	Required  bool   `yaml:"required" json:"required"`
	MinLength int    `yaml:"min_length" json:"minLength,omitempty"`
	MaxLength int    `yaml:"max_length" json:"maxLength,omitempty"`
	Pattern   string `yaml:"pattern" json:"pattern,omitempty"`
}

// Messages is the text shown for each failed rule. Load fills unset entries
// with defaults.
type Messages struct {
	Required  string `yaml:"required" json:"required"`
	MinLength string `yaml:"min_length" json:"minLength"`
	MaxLength string `yaml:"max_length" json:"maxLength"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	Choice    string `yaml:"choice" json:"choice"`
}

// Question is an immutable question definition.
type Question struct {
	ID          string   `yaml:"id" json:"id"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Prompt      string   `yaml:"prompt" json:"prompt"`
	Placeholder string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Options     []Option `yaml:"options" json:"options,omitempty"`
	Rules       Rules    `yaml:"rules" json:"rules"`
	Messages    Messages `yaml:"messages" json:"messages"`
	AutoAdvance bool     `yaml:"auto_advance" json:"autoAdvance"`

	pattern *regexp.Regexp
}

// Option returns the option with the given value.
func (q Question) Option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// OptionIndex returns the position of value in Options, or -1.
func (q Question) OptionIndex(value string) int {
	for i, o := range q.Options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// SingleLine reports whether the confirm key submits the answer directly.
func (q Question) SingleLine() bool {
	return q.Kind == KindText || q.Kind == KindEmail
}

type questionsFile struct {
	Questions []Question `yaml:"questions"`
}

// Schema is the ordered, read-only list of inquiry questions.
type Schema struct {
	questions []Question
	index     map[string]int
}

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// Default returns the schema built from the embedded questions.yaml.
// A broken embedded definition is a programming error and panics.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := Load(defaultQuestions)
		if err != nil {
			panic(fmt.Errorf("inquiry: embedded questions: %w", err))
		}
		defaultSchema = s
	})
	return defaultSchema
}

// Load parses and checks a questions document.
func Load(data []byte) (*Schema, error) {
	var file questionsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("questions: no entries")
	}

	s := &Schema{
		questions: make([]Question, 0, len(file.Questions)),
		index:     make(map[string]int, len(file.Questions)),
	}
	for i, q := range file.Questions {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: missing id", i)
		}
		if _, dup := s.index[q.ID]; dup {
			return nil, fmt.Errorf("question %q: duplicate id", q.ID)
		}
		if q.Kind == "" {
			return nil, fmt.Errorf("question %q: missing kind", q.ID)
		}
		if q.Rules.MinLength < 0 || q.Rules.MaxLength < 0 {
			return nil, fmt.Errorf("question %q: negative length rule", q.ID)
		}
		if q.Rules.MinLength > 0 && q.Rules.MaxLength > 0 && q.Rules.MinLength > q.Rules.MaxLength {
			return nil, fmt.Errorf("question %q: min_length %d exceeds max_length %d", q.ID, q.Rules.MinLength, q.Rules.MaxLength)
		}
		if q.Kind == KindChoice {
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("question %q: choice without options", q.ID)
			}
			seen := make(map[string]bool, len(q.Options))
			for _, o := range q.Options {
				if o.Value == "" || seen[o.Value] {
					return nil, fmt.Errorf("question %q: empty or duplicate option %q", q.ID, o.Value)
				}
				seen[o.Value] = true
			}
		} else if len(q.Options) > 0 {
			return nil, fmt.Errorf("question %q: options are only allowed on choice questions", q.ID)
		}
		if q.Rules.Pattern != "" {
			re, err := regexp.Compile(widenWhitespace(q.Rules.Pattern))
			if err != nil {
				return nil, fmt.Errorf("question %q: pattern: %w", q.ID, err)
			}
			q.pattern = re
		}

		q.Messages = q.resolvedMessages()

		s.index[q.ID] = len(s.questions)
		s.questions = append(s.questions, q)
	}
	return s, nil
}

// browserSpace is the whitespace set browsers match with \s: RE2's ASCII
// set plus vertical tab, Unicode separators and the byte order mark.
const browserSpace = `\s\x0B\p{Z}\x{FEFF}`

// widenWhitespace rewrites \s (and \S outside classes) so a pattern served to
// the browser accepts and rejects the same values here.
func widenWhitespace(pattern string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			i++
			switch next := pattern[i]; {
			case next == 's' && inClass:
				b.WriteString(browserSpace)
			case next == 's':
				b.WriteString("[" + browserSpace + "]")
			case next == 'S' && !inClass:
				b.WriteString("[^" + browserSpace + "]")
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
			continue
		case c == '[' && !inClass:
			inClass = true
		case c == ']' && inClass:
			inClass = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Len returns the number of questions.
func (s *Schema) Len() int { return len(s.questions) }

// At returns the question at position i.
func (s *Schema) At(i int) Question { return s.questions[i] }

// Questions returns a copy of the ordered question list.
func (s *Schema) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Index returns the position of the question with the given id.
func (s *Schema) Index(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Question returns the question with the given id.
func (s *Schema) Question(id string) (Question, bool) {
	i, ok := s.index[id]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Label returns the short human-readable label of a choice answer. Values
// that are not options of a choice question come back unchanged.
func (s *Schema) Label(id, value string) string {
	q, ok := s.Question(id)
	if !ok {
		return value
	}
	if o, ok := q.Option(value); ok && o.Summary != "" {
		return o.Summary
	}
	return value
}
