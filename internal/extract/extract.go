// Package extract pulls structured entities out of free-text questions.
//
// The Extractor interface keeps the strategy pluggable; the Keyword
// implementation uses pattern and keyword matching only and never fails.
// Extraction has no side effects; it reads the question and nothing else.
package extract

import (
	"regexp"
	"strings"
)

// Entities holds the entities recognized in a question.
// Empty string means the entity was not found.
type Entities struct {
	FloatID   string // 7-digit WMO platform number
	Region    string // one of the region keywords
	Parameter string // one of the parameter keywords
}

// IsEmpty reports whether no entity was recognized.
func (e Entities) IsEmpty() bool {
	return e.FloatID == "" && e.Region == "" && e.Parameter == ""
}

// Extractor recognizes entities in free text.
type Extractor interface {
	Extract(text string) Entities
}

// floatIDPattern matches a standalone 7-digit WMO platform number.
var floatIDPattern = regexp.MustCompile(`\b(\d{7})\b`)

// Keyword lists checked in order; the first match wins.
var (
	regionKeywords = []string{
		"arctic", "pacific", "atlantic", "indian",
		"southern", "mediterranean", "arabian",
	}
	parameterKeywords = []string{
		"temperature", "salinity", "pressure", "depth",
		"oxygen", "chlorophyll", "ph",
	}
)

// Keyword is the pattern/keyword-matching Extractor.
// The zero value is ready to use.
type Keyword struct{}

// NewKeyword creates a keyword extractor.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Extract recognizes a float ID (first 7-digit token), a region and a
// parameter (case-insensitive substring, first keyword in list order).
func (*Keyword) Extract(text string) Entities {
	var ents Entities

	if m := floatIDPattern.FindStringSubmatch(text); m != nil {
		ents.FloatID = m[1]
	}

	lower := strings.ToLower(text)
	for _, r := range regionKeywords {
		if strings.Contains(lower, r) {
			ents.Region = r
			break
		}
	}
	for _, p := range parameterKeywords {
		if strings.Contains(lower, p) {
			ents.Parameter = p
			break
		}
	}

	return ents
}
