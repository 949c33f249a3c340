package session

import (
	"context"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/notify"
)

// Submitting reports whether a submission is outstanding.
func (s *Session) Submitting() bool {
	return s.state == StateSubmitting
}

// Payload assembles the submission body from the current state. Scenarios
// go out as-is; candidates are filtered to non-blank values only.
func (s *Session) Payload() api.SubmitRequest {
	group := api.EmptyGroupDiscussions
	if latest, ok := s.scheduler.Latest(); ok && len(latest.Raw) > 0 {
		group = latest.Raw
	}
	return api.SubmitRequest{
		CompID:             s.compID,
		Department:         s.department,
		PsyQuestions:       s.store.Scenarios(assessment.Psychometric),
		CaseStudyQuestions: s.store.Scenarios(assessment.CaseStudy),
		CandidateEmails:    s.roster.Submittable(),
		GroupDiscussions:   group,
	}
}

// BeginSubmit moves Editing to Submitting and returns the payload.
func (s *Session) BeginSubmit() (api.SubmitRequest, error) {
	switch s.state {
	case StateSubmitted:
		return api.SubmitRequest{}, ErrSubmitted
	case StateSubmitting:
		return api.SubmitRequest{}, ErrSubmitting
	}
	s.state = StateSubmitting
	return s.Payload(), nil
}

// FinishSubmit applies the submission result. A response with a job id is
// terminal; anything else returns the session to Editing.
func (s *Session) FinishSubmit(resp api.SubmitResponse, callErr error) error {
	if s.state != StateSubmitting {
		return nil
	}
	err := callErr
	if err == nil && resp.JobID == "" {
		err = ErrNoJobID
	}
	if err != nil {
		s.state = StateEditing
		s.logger.Error("Error submitting assessment: %v", err)
		s.sink.Notify("Error", "Failed to submit assessment. Please try again.", notify.SeverityDestructive)
		return err
	}
	s.state = StateSubmitted
	s.jobID = resp.JobID
	s.store.Freeze()
	s.roster.Freeze()
	s.scheduler.Freeze()
	s.logger.Info("Assessment submitted · job %s", resp.JobID)
	s.sink.Notify("Success", "Assessment submitted successfully", notify.SeverityDefault)
	return nil
}

// Submit runs BeginSubmit, the remote call and FinishSubmit inline.
func (s *Session) Submit(ctx context.Context) error {
	req, err := s.BeginSubmit()
	if err != nil {
		return err
	}
	resp, err := s.remote.Submit(ctx, req)
	return s.FinishSubmit(resp, err)
}

// ScheduleMeeting schedules the current draft through the session's remote.
func (s *Session) ScheduleMeeting(ctx context.Context) error {
	if !s.Editable() {
		return ErrSubmitted
	}
	return s.scheduler.Schedule(ctx, s.remote)
}
