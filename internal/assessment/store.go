package assessment

// Store holds the psychometric and case-study collections. Every operation
// names its category explicitly; the collections never share state.
type Store struct {
	psy *Collection
	cs  *Collection
}

// NewStore returns a store whose collections each hold one empty scenario.
func NewStore() *Store {
	return &Store{psy: NewCollection(), cs: NewCollection()}
}

// Freeze refuses every later edit in both collections.
func (s *Store) Freeze() {
	s.psy.Freeze()
	s.cs.Freeze()
}

// Collection returns the collection for cat, or nil for an unknown category.
func (s *Store) Collection(cat Category) *Collection {
	switch cat {
	case Psychometric:
		return s.psy
	case CaseStudy:
		return s.cs
	}
	return nil
}

func (s *Store) AddScenario(cat Category) int {
	c := s.Collection(cat)
	if c == nil {
		return 0
	}
	return c.Add()
}

func (s *Store) RemoveScenario(cat Category, id int) bool {
	c := s.Collection(cat)
	return c != nil && c.Remove(id)
}

func (s *Store) UpdateScenarioText(cat Category, id int, text string) bool {
	c := s.Collection(cat)
	return c != nil && c.SetText(id, text)
}

func (s *Store) AddQuestion(cat Category, scenarioID int) bool {
	c := s.Collection(cat)
	return c != nil && c.AddQuestion(scenarioID)
}

func (s *Store) RemoveQuestion(cat Category, scenarioID, index int) bool {
	c := s.Collection(cat)
	return c != nil && c.RemoveQuestion(scenarioID, index)
}

func (s *Store) UpdateQuestion(cat Category, scenarioID, index int, text string, points int) bool {
	c := s.Collection(cat)
	return c != nil && c.UpdateQuestion(scenarioID, index, text, points)
}

func (s *Store) SetActive(cat Category, id int) bool {
	c := s.Collection(cat)
	return c != nil && c.SetActive(id)
}

// Step moves cat's active pointer by delta, clamped to its bounds.
func (s *Store) Step(cat Category, delta int) int {
	if c := s.Collection(cat); c != nil {
		return c.Step(delta)
	}
	return 0
}

func (s *Store) Active(cat Category) int {
	if c := s.Collection(cat); c != nil {
		return c.Active()
	}
	return 0
}

// ActiveScenario returns a copy of the scenario under the active pointer.
func (s *Store) ActiveScenario(cat Category) (Scenario, bool) {
	c := s.Collection(cat)
	if c == nil {
		return Scenario{}, false
	}
	return c.Scenario(c.Active())
}

// Scenarios returns a deep copy of cat's scenarios.
func (s *Store) Scenarios(cat Category) []Scenario {
	if c := s.Collection(cat); c != nil {
		return c.Scenarios()
	}
	return nil
}

func (s *Store) Len(cat Category) int {
	if c := s.Collection(cat); c != nil {
		return c.Len()
	}
	return 0
}
