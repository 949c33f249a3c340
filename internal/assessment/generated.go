package assessment

// GeneratedSet stages remotely generated scenarios for review. It is never
// merged into the editable collections.
type GeneratedSet struct {
	Psy       []Scenario `json:"psy_questions"`
	CaseStudy []Scenario `json:"case_study_questions"`
}

// Merge replaces only cat's slice; the other category is left untouched.
func (g *GeneratedSet) Merge(cat Category, scenarios []Scenario) {
	copied := make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		copied[i] = s.clone()
	}
	switch cat {
	case Psychometric:
		g.Psy = copied
	case CaseStudy:
		g.CaseStudy = copied
	}
}

// For returns the staged scenarios of one category.
func (g GeneratedSet) For(cat Category) []Scenario {
	switch cat {
	case Psychometric:
		return g.Psy
	case CaseStudy:
		return g.CaseStudy
	}
	return nil
}
