package mail

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/skm16/skmdigital/pkg/inquiry"
)

const (
	DefaultFrom = "SKM.digital Contact Form <leads@skm.digital>"
	DefaultTo   = "sean@skm.digital"

	submittedLayout = "Monday, January 2, 2006 at 3:04 PM"
)

var bodyTemplate = template.Must(template.New("inquiry").Parse(`
New inquiry from SKM.digital contact form
Submitted: {{.Submitted}}

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

CONTACT INFO
Name: {{.Name}}
Email: {{.Email}}

PROJECT DETAILS
Type: {{.ProjectType}}
Timeline: {{.Timeline}}
Budget: {{.Budget}}

CHALLENGE
{{.Challenge}}

ADDITIONAL INFO
{{.AdditionalInfo}}

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

ACTION REQUIRED: Reply within 24 hours (promised on site)
`))

type bodyData struct {
	Submitted      string
	Name           string
	Email          string
	ProjectType    string
	Timeline       string
	Budget         string
	Challenge      string
	AdditionalInfo string
}

// Composer turns an inquiry into the notification sent to the studio.
type Composer struct {
	schema   *inquiry.Schema
	from     string
	to       []string
	location *time.Location
}

// NewComposer returns a composer sending from from to the given recipients.
// Submission times are rendered in loc (UTC when nil).
func NewComposer(schema *inquiry.Schema, from string, to []string, loc *time.Location) *Composer {
	if from == "" {
		from = DefaultFrom
	}
	if len(to) == 0 {
		to = []string{DefaultTo}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{schema: schema, from: from, to: to, location: loc}
}

// Subject is "New Project Inquiry - <project type> - <name>".
func (c *Composer) Subject(inq inquiry.Inquiry) string {
	return fmt.Sprintf("New Project Inquiry - %s - %s",
		c.schema.Label(inquiry.FieldProjectType, string(inq.ProjectType)), inq.Name)
}

// Body renders the plain-text notification.
func (c *Composer) Body(inq inquiry.Inquiry) (string, error) {
	info := inq.AdditionalInfo
	if info == "" {
		info = "N/A"
	}
	data := bodyData{
		Submitted:      c.submitted(inq.SubmittedAt),
		Name:           inq.Name,
		Email:          inq.Email,
		ProjectType:    c.schema.Label(inquiry.FieldProjectType, string(inq.ProjectType)),
		Timeline:       c.schema.Label(inquiry.FieldTimeline, string(inq.Timeline)),
		Budget:         c.schema.Label(inquiry.FieldBudget, string(inq.Budget)),
		Challenge:      inq.Challenge,
		AdditionalInfo: info,
	}

	var sb strings.Builder
	if err := bodyTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render inquiry body: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Compose builds the full message. Replies go to the respondent.
func (c *Composer) Compose(inq inquiry.Inquiry) (Message, error) {
	body, err := c.Body(inq)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    c.from,
		To:      append([]string(nil), c.to...),
		ReplyTo: inq.Email,
		Subject: c.Subject(inq),
		Text:    body,
	}, nil
}

func (c *Composer) submitted(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.In(c.location).Format(submittedLayout)
}
