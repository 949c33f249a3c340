package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kingrea/promote/internal/assessment"
)

const sampleFile = `
department: Sales
psy_questions:
  - scenario_id: 9
    scenario: Conflict in the team
    questions:
      - question: What do you do first?
        points: 5
  - scenario: Deadline slip
    questions: []
case_study_questions:
  - scenario: Pricing case
    questions:
      - question: Size the market
        points: 10
candidates:
  - x@y.com
  - ""
  - bad
meeting:
  title: Group round
  date: "2026-10-20"
  time: "09:30"
  duration: "60"
  invitees: [lead@company.com]
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assessment.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileApply(t *testing.T) {
	f, err := LoadFile(writeFile(t, sampleFile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, _, _ := newSession(&fakeRemote{})
	if err := f.Apply(s); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Department() != "Sales" {
		t.Fatalf("department = %q", s.Department())
	}
	psy := s.Store().Scenarios(assessment.Psychometric)
	if len(psy) != 2 || psy[0].ID != 1 || psy[1].ID != 2 {
		t.Fatalf("psy scenarios not renumbered: %+v", psy)
	}
	if psy[0].Questions[0].Points != 5 {
		t.Fatalf("points lost: %+v", psy[0])
	}
	if s.Store().Len(assessment.CaseStudy) != 1 {
		t.Fatalf("case study len = %d", s.Store().Len(assessment.CaseStudy))
	}
	if got := s.Roster().Submittable(); !reflect.DeepEqual(got, []string{"x@y.com", "bad"}) {
		t.Fatalf("candidates = %v", got)
	}
	if !f.HasMeeting() {
		t.Fatalf("expected a staged meeting")
	}
	draft := s.Scheduler().Draft()
	if draft.Title != "Group round" || draft.Duration != "60" || len(draft.Invitees) != 1 {
		t.Fatalf("draft = %+v", draft)
	}
}

func TestApplyRequiresDepartment(t *testing.T) {
	f, err := LoadFile(writeFile(t, "psy_questions: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, _, _ := newSession(&fakeRemote{})
	if err := f.Apply(s); !errors.Is(err, ErrNoDepartment) {
		t.Fatalf("err = %v, want ErrNoDepartment", err)
	}
}

func TestApplyReportsBadInvitees(t *testing.T) {
	body := "department: Ops\nmeeting:\n  title: t\n  invitees: [ok@company.com, nope]\n"
	f, err := LoadFile(writeFile(t, body))
	if err != nil {
		t.Fatal(err)
	}
	s, _, _ := newSession(&fakeRemote{})
	if err := f.Apply(s); err == nil {
		t.Fatalf("expected invitee error")
	}
	if got := s.Scheduler().Draft().Invitees; !reflect.DeepEqual(got, []string{"ok@company.com"}) {
		t.Fatalf("invitees = %v", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := LoadFile(writeFile(t, "department: [\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}
