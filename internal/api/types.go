package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kingrea/promote/internal/assessment"
)

// DepartmentsResponse is the body of GET /get_departments.
type DepartmentsResponse struct {
	Departments []string `json:"departments"`
}

// GenerateRequest asks the generation service for one category of scenarios.
type GenerateRequest struct {
	Department string              `json:"department"`
	Type       assessment.Category `json:"type"`
}

// GenerateResponse carries whichever category the service produced.
type GenerateResponse struct {
	PsyQuestions       []assessment.Scenario `json:"psy_questions,omitempty"`
	CaseStudyQuestions []assessment.Scenario `json:"case_study_questions,omitempty"`
}

// For returns the scenarios for cat.
func (r GenerateResponse) For(cat assessment.Category) []assessment.Scenario {
	switch cat {
	case assessment.Psychometric:
		return r.PsyQuestions
	case assessment.CaseStudy:
		return r.CaseStudyQuestions
	}
	return nil
}

// MeetingRequest is the scheduling service request body.
type MeetingRequest struct {
	Topic        string   `json:"topic"`
	StartTime    string   `json:"start_time"`
	Duration     string   `json:"duration"`
	Participants []string `json:"participants"`
	Agenda       string   `json:"agenda"`
}

// MeetingData is the subset of meeting_data the builder reads. Raw keeps
// the whole document so it can be forwarded with the assessment.
type MeetingData struct {
	ID       string
	JoinURL  string
	Password string
	Raw      json.RawMessage
}

type meetingEnvelope struct {
	MeetingData json.RawMessage `json:"meeting_data"`
}

type meetingFields struct {
	ID       flexString `json:"id"`
	JoinURL  string     `json:"join_url"`
	Password string     `json:"password"`
}

// SubmitRequest is the assembled assessment.
type SubmitRequest struct {
	CompID             int                   `json:"comp_id"`
	Department         string                `json:"department"`
	PsyQuestions       []assessment.Scenario `json:"psy_questions"`
	CaseStudyQuestions []assessment.Scenario `json:"case_study_questions"`
	CandidateEmails    []string              `json:"candidate_emails"`
	GroupDiscussions   json.RawMessage       `json:"group_discussions"`
}

// SubmitResponse reports the queued job, if any.
type SubmitResponse struct {
	JobID string
}

type submitEnvelope struct {
	JobID flexString `json:"job_id"`
}

// EmptyGroupDiscussions is sent when no meeting has been scheduled.
var EmptyGroupDiscussions = json.RawMessage(`[]`)

// flexString accepts a JSON string or number. Remote IDs arrive as either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", strings.TrimSpace(string(trimmed)))
	}
	*f = flexString(n.String())
	return nil
}
