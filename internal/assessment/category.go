package assessment

import (
	"fmt"
	"strings"
)

// Category selects one of the two independent scenario collections.
type Category string

const (
	Psychometric Category = "psy"
	CaseStudy    Category = "cs"
)

// Categories lists every category in tab order.
var Categories = []Category{Psychometric, CaseStudy}

// ParseCategory accepts the wire tags ("psy", "cs") and a few spelled-out aliases.
func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "psy", "psycho", "psychometric":
		return Psychometric, nil
	case "cs", "case-study", "case_study", "casestudy":
		return CaseStudy, nil
	}
	return "", fmt.Errorf("assessment: unknown category %q", value)
}

// Valid reports whether c names a known category.
func (c Category) Valid() bool {
	return c == Psychometric || c == CaseStudy
}

// Title is the heading shown above a category's scenario editor.
func (c Category) Title() string {
	switch c {
	case Psychometric:
		return "Psychometric Assessment"
	case CaseStudy:
		return "Case Study"
	}
	return string(c)
}

// Noun is the lower-case name used inside notification text.
func (c Category) Noun() string {
	switch c {
	case Psychometric:
		return "psychometric"
	case CaseStudy:
		return "case study"
	}
	return string(c)
}
