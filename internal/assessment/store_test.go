package assessment

import (
	"math/rand"
	"testing"
)

func assertContiguous(t *testing.T, scenarios []Scenario) {
	t.Helper()
	for i, s := range scenarios {
		if s.ID != i+1 {
			t.Fatalf("scenario at index %d has id %d, want %d", i, s.ID, i+1)
		}
	}
}

func TestNewStoreSeedsBothCategories(t *testing.T) {
	store := NewStore()
	for _, cat := range Categories {
		scenarios := store.Scenarios(cat)
		if len(scenarios) != 1 {
			t.Fatalf("%s: expected one seeded scenario, got %d", cat, len(scenarios))
		}
		if len(scenarios[0].Questions) != 1 || scenarios[0].Questions[0] != (Question{}) {
			t.Fatalf("%s: expected one empty question, got %+v", cat, scenarios[0].Questions)
		}
		if store.Active(cat) != 1 {
			t.Fatalf("%s: active = %d, want 1", cat, store.Active(cat))
		}
	}
}

func TestAddThenRemoveRenumbers(t *testing.T) {
	store := &Store{psy: &Collection{}, cs: &Collection{}}
	if id := store.AddScenario(Psychometric); id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}
	if id := store.AddScenario(Psychometric); id != 2 {
		t.Fatalf("second id = %d, want 2", id)
	}
	store.UpdateScenarioText(Psychometric, 2, "second")
	if !store.RemoveScenario(Psychometric, 1) {
		t.Fatalf("expected removal of scenario 1")
	}
	scenarios := store.Scenarios(Psychometric)
	if len(scenarios) != 1 {
		t.Fatalf("expected one scenario left, got %d", len(scenarios))
	}
	if scenarios[0].ID != 1 || scenarios[0].Description != "second" {
		t.Fatalf("expected renumbered scenario 1 holding 'second', got %+v", scenarios[0])
	}
	if store.Active(Psychometric) != 1 {
		t.Fatalf("active = %d, want 1", store.Active(Psychometric))
	}
}

func TestRemoveScenarioActivePointer(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		active     int
		remove     int
		wantActive int
	}{
		{name: "removing active middle keeps position", size: 4, active: 2, remove: 2, wantActive: 2},
		{name: "removing active last clamps", size: 3, active: 3, remove: 3, wantActive: 2},
		{name: "removing before active shifts down", size: 4, active: 3, remove: 1, wantActive: 2},
		{name: "removing after active leaves it", size: 4, active: 2, remove: 4, wantActive: 2},
		{name: "removing only scenario empties", size: 1, active: 1, remove: 1, wantActive: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collection{}
			for i := 0; i < tt.size; i++ {
				c.Add()
			}
			c.SetText(tt.active, "active")
			if !c.SetActive(tt.active) {
				t.Fatalf("set active %d failed", tt.active)
			}
			c.Remove(tt.remove)
			if c.Active() != tt.wantActive {
				t.Fatalf("active = %d, want %d", c.Active(), tt.wantActive)
			}
			assertContiguous(t, c.Scenarios())
			if tt.remove != tt.active {
				s, ok := c.Scenario(c.Active())
				if !ok || s.Description != "active" {
					t.Fatalf("pointer no longer names the same scenario: %+v", s)
				}
			}
		})
	}
}

func TestRemoveUnknownScenarioIsNoOp(t *testing.T) {
	store := NewStore()
	store.AddScenario(CaseStudy)
	store.SetActive(CaseStudy, 1)
	before := store.Scenarios(CaseStudy)
	if store.RemoveScenario(CaseStudy, 7) {
		t.Fatalf("expected no-op for unknown id")
	}
	after := store.Scenarios(CaseStudy)
	if len(after) != len(before) {
		t.Fatalf("collection changed: %d -> %d", len(before), len(after))
	}
	if store.Active(CaseStudy) != 1 {
		t.Fatalf("active pointer changed to %d", store.Active(CaseStudy))
	}
}

func TestRandomAddRemoveKeepsIDsContiguous(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := NewCollection()
	for step := 0; step < 500; step++ {
		if c.Len() == 0 || rng.Intn(3) > 0 {
			c.Add()
		} else {
			c.Remove(rng.Intn(c.Len() + 2))
		}
		scenarios := c.Scenarios()
		assertContiguous(t, scenarios)
		if c.Len() > 0 && (c.Active() < 1 || c.Active() > c.Len()) {
			t.Fatalf("step %d: active %d outside 1..%d", step, c.Active(), c.Len())
		}
	}
}

func TestCategoriesAreIndependent(t *testing.T) {
	store := NewStore()
	store.AddScenario(Psychometric)
	store.UpdateScenarioText(Psychometric, 1, "psy only")
	if store.Len(CaseStudy) != 1 {
		t.Fatalf("case-study collection changed length: %d", store.Len(CaseStudy))
	}
	cs, _ := store.ActiveScenario(CaseStudy)
	if cs.Description != "" {
		t.Fatalf("case-study scenario picked up psychometric text: %q", cs.Description)
	}
	if store.Active(Psychometric) != 2 || store.Active(CaseStudy) != 1 {
		t.Fatalf("unexpected active pointers psy=%d cs=%d", store.Active(Psychometric), store.Active(CaseStudy))
	}
}

func TestQuestionOperations(t *testing.T) {
	store := NewStore()
	store.AddQuestion(Psychometric, 1)
	store.AddQuestion(Psychometric, 1)
	store.UpdateQuestion(Psychometric, 1, 0, "first", 5)
	store.UpdateQuestion(Psychometric, 1, 2, "third", 2)
	if !store.RemoveQuestion(Psychometric, 1, 1) {
		t.Fatalf("expected question removal")
	}
	s, _ := store.ActiveScenario(Psychometric)
	if len(s.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(s.Questions))
	}
	if s.Questions[1].Text != "third" {
		t.Fatalf("later question did not shift down: %+v", s.Questions)
	}
	if s.TotalPoints() != 7 {
		t.Fatalf("total points = %d, want 7", s.TotalPoints())
	}
	if store.RemoveQuestion(Psychometric, 1, 9) {
		t.Fatalf("out-of-range removal should be a no-op")
	}
	if store.AddQuestion(Psychometric, 99) {
		t.Fatalf("add question on unknown scenario should be a no-op")
	}
}

func TestUpdateQuestionIsIdempotent(t *testing.T) {
	store := NewStore()
	store.UpdateQuestion(CaseStudy, 1, 0, "Explain", 3)
	first, _ := store.ActiveScenario(CaseStudy)
	store.UpdateQuestion(CaseStudy, 1, 0, "Explain", 3)
	second, _ := store.ActiveScenario(CaseStudy)
	if len(second.Questions) != 1 || second.Questions[0] != first.Questions[0] {
		t.Fatalf("second update changed state: %+v vs %+v", first.Questions, second.Questions)
	}
}

func TestUpdateQuestionClampsNegativePoints(t *testing.T) {
	store := NewStore()
	store.UpdateQuestion(Psychometric, 1, 0, "q", -4)
	s, _ := store.ActiveScenario(Psychometric)
	if s.Questions[0].Points != 0 {
		t.Fatalf("points = %d, want 0", s.Questions[0].Points)
	}
}

func TestScenariosReturnsCopies(t *testing.T) {
	store := NewStore()
	scenarios := store.Scenarios(Psychometric)
	scenarios[0].Description = "mutated"
	scenarios[0].Questions[0].Text = "mutated"
	s, _ := store.ActiveScenario(Psychometric)
	if s.Description != "" || s.Questions[0].Text != "" {
		t.Fatalf("store leaked internal state: %+v", s)
	}
}

func TestReplaceRenumbers(t *testing.T) {
	c := NewCollection()
	c.Replace([]Scenario{{ID: 9, Description: "a"}, {ID: 4, Description: "b"}})
	assertContiguous(t, c.Scenarios())
	if c.Active() != 1 {
		t.Fatalf("active = %d, want 1", c.Active())
	}
}

func TestStep(t *testing.T) {
	c := NewCollection()
	c.Add()
	c.Add()
	if got := c.Step(-5); got != 1 {
		t.Fatalf("step clamp low = %d", got)
	}
	if got := c.Step(10); got != 3 {
		t.Fatalf("step clamp high = %d", got)
	}
}

func TestGeneratedMergeKeepsOtherCategory(t *testing.T) {
	var set GeneratedSet
	set.Merge(Psychometric, []Scenario{{ID: 1, Description: "psy"}})
	set.Merge(CaseStudy, []Scenario{{ID: 1, Description: "cs-1"}, {ID: 2, Description: "cs-2"}})
	if len(set.Psy) != 1 || set.Psy[0].Description != "psy" {
		t.Fatalf("psy slice changed: %+v", set.Psy)
	}
	if len(set.For(CaseStudy)) != 2 {
		t.Fatalf("case-study slice = %+v", set.CaseStudy)
	}
	set.Merge(CaseStudy, []Scenario{{ID: 1, Description: "fresh"}})
	if len(set.CaseStudy) != 1 || set.CaseStudy[0].Description != "fresh" {
		t.Fatalf("expected replacement, got %+v", set.CaseStudy)
	}
}

func TestParseCategory(t *testing.T) {
	for input, want := range map[string]Category{"psy": Psychometric, "CS": CaseStudy, "case-study": CaseStudy} {
		got, err := ParseCategory(input)
		if err != nil || got != want {
			t.Fatalf("ParseCategory(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseCategory("group"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
