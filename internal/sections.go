package internal

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SectionRule maps a section label to the header pattern that introduces it.
// Pattern is a regular expression matched case-insensitively against the
// document; it should match the colon-terminated header token.
type SectionRule struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// SectionTable attributes document positions to named sections using a
// nearest-preceding-header rule. The vocabulary is data, not code:
// institution-specific tables load from YAML without touching the
// classifier.
type SectionTable struct {
	entries []sectionEntry
}

type sectionEntry struct {
	label string
	re    *regexp.Regexp
}

// NewSectionTable compiles an ordered list of rules into a table.
func NewSectionTable(rules []SectionRule) (*SectionTable, error) {
	t := &SectionTable{}
	for _, rule := range rules {
		pattern := rule.Pattern
		if !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("section rule %q: %w", rule.Label, err)
		}
		t.entries = append(t.entries, sectionEntry{label: rule.Label, re: re})
	}
	return t, nil
}

// DefaultSectionRules is the built-in clinical vocabulary. Each pattern
// matches the section's colon-terminated header.
func DefaultSectionRules() []SectionRule {
	return []SectionRule{
		{Label: "Chief Complaint", Pattern: `\bchief complaint\s*:`},
		{Label: "HPI", Pattern: `\b(hpi|history of present illness)\s*:`},
		{Label: "Review of Systems", Pattern: `\b(ros|review of systems)\s*:`},
		{Label: "Physical Exam", Pattern: `\b(physical exam(ination)?|pe)\s*:`},
		{Label: "Social History", Pattern: `\bsocial history\s*:`},
		{Label: "Medications", Pattern: `\bmedications?\s*:`},
		{Label: "Assessment", Pattern: `\bassessment\s*:`},
		{Label: "Plan", Pattern: `\bplan\s*:`},
	}
}

// LoadSectionRules reads a section table from a YAML file of the form:
//
//	sections:
//	  - label: HPI
//	    pattern: 'hpi\s*:'
func LoadSectionRules(path string) ([]SectionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read section config: %w", err)
	}
	var doc struct {
		Sections []SectionRule `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse section config: %w", err)
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("section config %s defines no sections", path)
	}
	return doc.Sections, nil
}

// SectionAt returns the label of the section owning the given position in
// content: the section whose header occurs latest at or before pos. Returns
// "" when no configured header precedes the position.
func (t *SectionTable) SectionAt(content string, pos int) string {
	if pos > len(content) {
		pos = len(content)
	}
	if pos < 0 {
		pos = 0
	}
	best := -1
	label := ""
	for _, e := range t.entries {
		for _, loc := range e.re.FindAllStringIndex(content[:pos], -1) {
			if loc[0] > best {
				best = loc[0]
				label = e.label
			}
		}
	}
	return label
}
