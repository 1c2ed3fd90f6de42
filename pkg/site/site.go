// Package site holds the landing page copy and renders the sitemap.
package site

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

type Hero struct {
	Headline    string   `yaml:"headline" json:"headline"`
	Subheadline string   `yaml:"subheadline" json:"subheadline"`
	Rotating    []string `yaml:"rotating" json:"rotating"`
}

type Card struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type PainPoints struct {
	Heading string `yaml:"heading" json:"heading"`
	Closing string `yaml:"closing" json:"closing"`
	Items   []Card `yaml:"items" json:"items"`
}

type Solution struct {
	Heading  string   `yaml:"heading" json:"heading"`
	Body     string   `yaml:"body" json:"body"`
	Benefits []string `yaml:"benefits" json:"benefits"`
}

type Service struct {
	Title       string `yaml:"title" json:"title"`
	Badge       string `yaml:"badge" json:"badge,omitempty"`
	Featured    bool   `yaml:"featured" json:"featured,omitempty"`
	Description string `yaml:"description" json:"description"`
	Pricing     string `yaml:"pricing" json:"pricing"`
	Timeline    string `yaml:"timeline" json:"timeline"`
}

type CaseStudy struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Badge     string   `yaml:"badge" json:"badge"`
	Challenge string   `yaml:"challenge" json:"challenge"`
	Solution  string   `yaml:"solution" json:"solution"`
	Result    string   `yaml:"result" json:"result"`
	Metrics   []string `yaml:"metrics" json:"metrics"`
}

type ProcessStep struct {
	Number      int    `yaml:"number" json:"number"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type CTA struct {
	Heading string   `yaml:"heading" json:"heading"`
	Body    string   `yaml:"body" json:"body"`
	Badges  []string `yaml:"badges" json:"badges"`
}

// Content is everything the landing page shows.
type Content struct {
	Title        string        `yaml:"title" json:"title"`
	Description  string        `yaml:"description" json:"description"`
	ContactEmail string        `yaml:"contact_email" json:"contactEmail"`
	Hero         Hero          `yaml:"hero" json:"hero"`
	PainPoints   PainPoints    `yaml:"pain_points" json:"painPoints"`
	Solution     Solution      `yaml:"solution" json:"solution"`
	Services     []Service     `yaml:"services" json:"services"`
	TechStack    []string      `yaml:"tech_stack" json:"techStack"`
	CaseStudies  []CaseStudy   `yaml:"case_studies" json:"caseStudies"`
	Process      []ProcessStep `yaml:"process" json:"process"`
	CTA          CTA           `yaml:"cta" json:"cta"`

	// Filled from configuration, not the content file.
	BaseURL       string `yaml:"-" json:"baseUrl"`
	SchedulingURL string `yaml:"-" json:"schedulingUrl"`
}

var (
	defaultOnce    sync.Once
	defaultContent Content
)

// Default returns the embedded content. It panics if the embedded file is
// broken, which a test catches.
func Default() Content {
	defaultOnce.Do(func() {
		c, err := Parse(contentYAML)
		if err != nil {
			panic(fmt.Sprintf("site: embedded content.yaml: %v", err))
		}
		defaultContent = c
	})
	return defaultContent
}

// Parse decodes a content file, rejecting unknown keys.
func Parse(data []byte) (Content, error) {
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Content{}, fmt.Errorf("failed to parse site content: %w", err)
	}
	if c.Hero.Headline == "" {
		return Content{}, fmt.Errorf("site content: hero.headline is required")
	}
	if len(c.Services) == 0 {
		return Content{}, fmt.Errorf("site content: at least one service is required")
	}
	for i, step := range c.Process {
		if step.Number != i+1 {
			return Content{}, fmt.Errorf("site content: process step %q is numbered %d, want %d", step.Title, step.Number, i+1)
		}
	}
	return c, nil
}

// WithLinks returns a copy carrying the deployment's URLs.
func (c Content) WithLinks(baseURL, schedulingURL string) Content {
	c.BaseURL = baseURL
	c.SchedulingURL = schedulingURL
	return c
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// Sitemap renders sitemap.xml. The site is a single page.
func Sitemap(baseURL string, lastMod time.Time) ([]byte, error) {
	set := urlset{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{{
			Loc:        baseURL,
			LastMod:    lastMod.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   1,
		}},
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
