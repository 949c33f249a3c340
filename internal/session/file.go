package session

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/meeting"
)

// File is a whole assessment described in YAML, used for headless runs.
//
//	department: Sales
//	psy_questions:
//	  - scenario: A customer escalates…
//	    questions:
//	      - question: What do you do first?
//	        points: 5
//	case_study_questions: []
//	candidates: [a@example.com]
//	meeting:
//	  title: Group round
//	  date: "2026-10-20"
//	  time: "09:30"
//	  duration: "60"
//	  invitees: [lead@example.com]
type File struct {
	Department         string                `yaml:"department"`
	PsyQuestions       []assessment.Scenario `yaml:"psy_questions"`
	CaseStudyQuestions []assessment.Scenario `yaml:"case_study_questions"`
	Candidates         []string              `yaml:"candidates"`
	Meeting            *meeting.Draft        `yaml:"meeting,omitempty"`
}

// LoadFile parses an assessment file.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("session: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("session: parse %s: %w", path, err)
	}
	f.Department = strings.TrimSpace(f.Department)
	return f, nil
}

// Apply loads the file into s. Scenario ids in the file are ignored and
// renumbered by position. The meeting draft, when present, is staged on the
// scheduler but not booked.
func (f File) Apply(s *Session) error {
	if !s.Editable() {
		return ErrSubmitted
	}
	if f.Department == "" {
		return ErrNoDepartment
	}
	if err := s.SetDepartment(f.Department); err != nil {
		return err
	}
	s.store.Collection(assessment.Psychometric).Replace(f.PsyQuestions)
	s.store.Collection(assessment.CaseStudy).Replace(f.CaseStudyQuestions)

	for i, email := range f.Candidates {
		if i >= s.roster.Len() {
			s.roster.Add()
		}
		s.roster.Update(i, strings.TrimSpace(email))
	}

	if f.Meeting == nil {
		return nil
	}
	m := f.Meeting
	for field, value := range map[meeting.Field]string{
		meeting.FieldTitle:       m.Title,
		meeting.FieldDate:        m.Date,
		meeting.FieldTime:        m.Time,
		meeting.FieldDuration:    m.Duration,
		meeting.FieldDescription: m.Description,
	} {
		if err := s.scheduler.SetField(field, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	var errs []error
	for _, email := range m.Invitees {
		if err := s.scheduler.AddInviteeEmail(strings.TrimSpace(email)); err != nil {
			errs = append(errs, fmt.Errorf("invitee %q: %w", email, err))
		}
	}
	return errors.Join(errs...)
}

// HasMeeting reports whether the file stages a meeting to book.
func (f File) HasMeeting() bool {
	return f.Meeting != nil
}

// FileKey is the assessment-file key that holds cat's scenarios.
func FileKey(cat assessment.Category) string {
	switch cat {
	case assessment.Psychometric:
		return "psy_questions"
	case assessment.CaseStudy:
		return "case_study_questions"
	}
	return string(cat)
}
