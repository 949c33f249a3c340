// internal/assessment/scenario.go
//
// Scenario collections are the editable core of the builder. Scenario IDs are
// positional: after every membership change they are rewritten to index+1 so
// the editor can show "Scenario 1, 2, 3" without gaps. Nothing refers to a
// scenario by ID across a deletion, so the churn is harmless.

package assessment

// Question is one scored prompt attached to a scenario.
type Question struct {
	Text   string `json:"question" yaml:"question"`
	Points int    `json:"points" yaml:"points"`
}

// Scenario is a narrative prompt with an ordered list of questions.
type Scenario struct {
	ID          int        `json:"scenario_id" yaml:"scenario_id"`
	Description string     `json:"scenario" yaml:"scenario"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

func newScenario(id int) Scenario {
	return Scenario{ID: id, Questions: []Question{{}}}
}

func (s Scenario) clone() Scenario {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	copy(out.Questions, s.Questions)
	return out
}

// TotalPoints sums the points of every question.
func (s Scenario) TotalPoints() int {
	total := 0
	for _, q := range s.Questions {
		total += q.Points
	}
	return total
}

// Collection is one category's ordered scenarios plus its active pointer.
// Once frozen, edits are refused; the active pointer still moves.
type Collection struct {
	scenarios []Scenario
	active    int
	frozen    bool
}

// NewCollection returns a collection seeded with a single empty scenario.
func NewCollection() *Collection {
	return &Collection{scenarios: []Scenario{newScenario(1)}, active: 1}
}

// Freeze makes every later edit a refused no-op.
func (c *Collection) Freeze() {
	c.frozen = true
}

// Frozen reports whether edits are refused.
func (c *Collection) Frozen() bool {
	return c.frozen
}

// Len returns the number of scenarios.
func (c *Collection) Len() int {
	return len(c.scenarios)
}

// Active returns the active scenario ID, or 0 when the collection is empty.
func (c *Collection) Active() int {
	return c.active
}

// Scenarios returns a deep copy of the scenarios in order.
func (c *Collection) Scenarios() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.clone()
	}
	return out
}

// Scenario returns a copy of the scenario with the given ID.
func (c *Collection) Scenario(id int) (Scenario, bool) {
	idx := c.index(id)
	if idx < 0 {
		return Scenario{}, false
	}
	return c.scenarios[idx].clone(), true
}

// Add appends an empty scenario with one zero-point question and makes it active.
// It returns 0 when the collection is frozen.
func (c *Collection) Add() int {
	if c.frozen {
		return 0
	}
	id := len(c.scenarios) + 1
	c.scenarios = append(c.scenarios, newScenario(id))
	c.active = id
	return id
}

// Remove deletes the scenario with the given ID and renumbers the rest.
// When the active scenario is removed the pointer moves to the scenario now
// at the same position, or to the new last one. A pointer past the removed
// ID shifts down so it keeps naming the same scenario.
func (c *Collection) Remove(id int) bool {
	idx := c.index(id)
	if idx < 0 || c.frozen {
		return false
	}
	c.scenarios = append(c.scenarios[:idx], c.scenarios[idx+1:]...)
	c.renumber()
	n := len(c.scenarios)
	switch {
	case c.active == id:
		c.active = min(id, n)
	case c.active > id:
		c.active--
	}
	return true
}

// SetActive moves the active pointer to an existing scenario.
func (c *Collection) SetActive(id int) bool {
	if c.index(id) < 0 {
		return false
	}
	c.active = id
	return true
}

// Step moves the active pointer by delta, clamped to the collection bounds.
func (c *Collection) Step(delta int) int {
	n := len(c.scenarios)
	if n == 0 {
		c.active = 0
		return 0
	}
	next := c.active + delta
	if next < 1 {
		next = 1
	}
	if next > n {
		next = n
	}
	c.active = next
	return next
}

// SetText replaces a scenario's description.
func (c *Collection) SetText(id int, text string) bool {
	idx := c.index(id)
	if idx < 0 || c.frozen {
		return false
	}
	c.scenarios[idx].Description = text
	return true
}

// AddQuestion appends an empty zero-point question.
func (c *Collection) AddQuestion(id int) bool {
	idx := c.index(id)
	if idx < 0 || c.frozen {
		return false
	}
	c.scenarios[idx].Questions = append(c.scenarios[idx].Questions, Question{})
	return true
}

// RemoveQuestion drops the question at position index.
func (c *Collection) RemoveQuestion(id, index int) bool {
	idx := c.index(id)
	if idx < 0 || c.frozen {
		return false
	}
	qs := c.scenarios[idx].Questions
	if index < 0 || index >= len(qs) {
		return false
	}
	c.scenarios[idx].Questions = append(qs[:index:index], qs[index+1:]...)
	return true
}

// UpdateQuestion replaces text and points of one question in a single step.
// Negative points are stored as zero.
func (c *Collection) UpdateQuestion(id, index int, text string, points int) bool {
	idx := c.index(id)
	if idx < 0 || c.frozen {
		return false
	}
	qs := c.scenarios[idx].Questions
	if index < 0 || index >= len(qs) {
		return false
	}
	if points < 0 {
		points = 0
	}
	qs[index] = Question{Text: text, Points: points}
	return true
}

// Replace swaps in a new scenario list, renumbering it and resetting the
// active pointer to the first scenario.
func (c *Collection) Replace(scenarios []Scenario) {
	if c.frozen {
		return
	}
	c.scenarios = make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		c.scenarios[i] = s.clone()
		for j := range c.scenarios[i].Questions {
			if c.scenarios[i].Questions[j].Points < 0 {
				c.scenarios[i].Questions[j].Points = 0
			}
		}
	}
	c.renumber()
	c.active = min(1, len(c.scenarios))
}

func (c *Collection) renumber() {
	for i := range c.scenarios {
		c.scenarios[i].ID = i + 1
	}
}

func (c *Collection) index(id int) int {
	for i := range c.scenarios {
		if c.scenarios[i].ID == id {
			return i
		}
	}
	return -1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
