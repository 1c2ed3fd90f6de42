package site

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContent(t *testing.T) {
	c := Default()

	assert.Equal(t, "sean@skm.digital", c.ContactEmail)
	assert.NotEmpty(t, c.Hero.Headline)
	assert.Len(t, c.Hero.Rotating, 5)
	assert.Len(t, c.PainPoints.Items, 3)
	assert.Len(t, c.Services, 6)
	assert.Len(t, c.CaseStudies, 3)
	require.Len(t, c.Process, 4)
	assert.Equal(t, "We Deploy", c.Process[3].Title)

	featured := 0
	for _, s := range c.Services {
		if s.Featured {
			featured++
		}
	}
	assert.Equal(t, 1, featured)
	assert.Empty(t, c.SchedulingURL)
}

func TestWithLinks(t *testing.T) {
	c := Default().WithLinks("https://example.test", "https://cal.test/20min")
	assert.Equal(t, "https://example.test", c.BaseURL)
	assert.Equal(t, "https://cal.test/20min", c.SchedulingURL)
	assert.Empty(t, Default().BaseURL)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "hero: {headline: x}\nservices: [{title: a}]\nbogus: 1\n"},
		{"no headline", "services: [{title: a}]\n"},
		{"no services", "hero: {headline: x}\n"},
		{"bad step numbering", "hero: {headline: x}\nservices: [{title: a}]\nprocess: [{number: 2, title: b}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSitemap(t *testing.T) {
	lastMod := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	out, err := Sitemap("https://skm.digital", lastMod)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<?xml"))
	assert.Contains(t, string(out), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	var got urlset
	require.NoError(t, xml.Unmarshal(out, &got))
	require.Len(t, got.URLs, 1)
	assert.Equal(t, "https://skm.digital", got.URLs[0].Loc)
	assert.Equal(t, "2026-10-19T12:00:00Z", got.URLs[0].LastMod)
	assert.Equal(t, "weekly", got.URLs[0].ChangeFreq)
	assert.Equal(t, 1.0, got.URLs[0].Priority)
}
