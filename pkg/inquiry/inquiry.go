// Package inquiry defines the project inquiry collected by the contact
// wizard: the question schema, the submitted payload and the rules both the
// wizard and the HTTP handler validate against.
package inquiry

import (
	"strings"
	"time"
)

// Question ids, in wizard order.
const (
	FieldName           = "name"
	FieldEmail          = "email"
	FieldProjectType    = "projectType"
	FieldChallenge      = "challenge"
	FieldTimeline       = "timeline"
	FieldBudget         = "budget"
	FieldAdditionalInfo = "additionalInfo"
	FieldSubmittedAt    = "submittedAt"
)

// SubmittedAtLayout matches the ISO-8601 timestamps browsers produce.
const SubmittedAtLayout = "2006-01-02T15:04:05.000Z07:00"

type ProjectType string

const (
	ProjectMultiSystemIntegration ProjectType = "multi-system-integration"
	ProjectAIPowered              ProjectType = "ai-powered"
	ProjectCustomWebApp           ProjectType = "custom-web-app"
	ProjectEnterpriseWordPress    ProjectType = "enterprise-wordpress"
	ProjectHeadlessArchitecture   ProjectType = "headless-architecture"
	ProjectAPIDevelopment         ProjectType = "api-development"
	ProjectNotSure                ProjectType = "not-sure"
)

type Timeline string

const (
	TimelineASAP      Timeline = "asap"
	TimelineNormal    Timeline = "normal"
	TimelineFlexible  Timeline = "flexible"
	TimelineExploring Timeline = "exploring"
)

type Budget string

const (
	BudgetUnder15k  Budget = "under-15k"
	Budget15kTo30k  Budget = "15k-30k"
	Budget30kTo50k  Budget = "30k-50k"
	Budget50kPlus   Budget = "50k-plus"
	BudgetNeedsHelp Budget = "need-help"
)

// Answers maps question ids to answer values.
type Answers map[string]string

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Inquiry is the JSON payload of POST /api/contact.
type Inquiry struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	ProjectType    ProjectType `json:"projectType"`
	Challenge      string      `json:"challenge"`
	Timeline       Timeline    `json:"timeline"`
	Budget         Budget      `json:"budget"`
	AdditionalInfo string      `json:"additionalInfo,omitempty"`
	SubmittedAt    string      `json:"submittedAt"`
}

// FromAnswers builds the payload from wizard answers and stamps it with now.
func FromAnswers(a Answers, now time.Time) Inquiry {
	inq := Inquiry{
		Name:           a[FieldName],
		Email:          a[FieldEmail],
		ProjectType:    ProjectType(a[FieldProjectType]),
		Challenge:      a[FieldChallenge],
		Timeline:       Timeline(a[FieldTimeline]),
		Budget:         Budget(a[FieldBudget]),
		AdditionalInfo: a[FieldAdditionalInfo],
		SubmittedAt:    now.UTC().Format(SubmittedAtLayout),
	}
	return inq.Normalized()
}

// Answers returns the inquiry keyed by question id.
func (inq Inquiry) Answers() Answers {
	return Answers{
		FieldName:           inq.Name,
		FieldEmail:          inq.Email,
		FieldProjectType:    string(inq.ProjectType),
		FieldChallenge:      inq.Challenge,
		FieldTimeline:       string(inq.Timeline),
		FieldBudget:         string(inq.Budget),
		FieldAdditionalInfo: inq.AdditionalInfo,
	}
}

// Normalized returns a copy with surrounding whitespace removed.
func (inq Inquiry) Normalized() Inquiry {
	return Inquiry{
		Name:           strings.TrimSpace(inq.Name),
		Email:          strings.TrimSpace(inq.Email),
		ProjectType:    ProjectType(strings.TrimSpace(string(inq.ProjectType))),
		Challenge:      strings.TrimSpace(inq.Challenge),
		Timeline:       Timeline(strings.TrimSpace(string(inq.Timeline))),
		Budget:         Budget(strings.TrimSpace(string(inq.Budget))),
		AdditionalInfo: strings.TrimSpace(inq.AdditionalInfo),
		SubmittedAt:    strings.TrimSpace(inq.SubmittedAt),
	}
}
