// internal/meeting/scheduler.go
//
// Scheduler owns the single meeting draft and the append-only list of
// scheduled meetings. Scheduling is split into Prepare and Complete so the
// TUI can run the remote call in a command and apply the result later;
// Schedule runs both halves inline for headless use.

package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/notify"
	"github.com/kingrea/promote/internal/validation"
)

var (
	// ErrMissingFields means title, date, time or duration is empty.
	ErrMissingFields = errors.New("meeting: missing required fields")
	// ErrInFlight means a scheduling call has not returned yet.
	ErrInFlight = errors.New("meeting: scheduling already in progress")
	// ErrFrozen means the scheduler no longer accepts edits.
	ErrFrozen = errors.New("meeting: scheduler is frozen")
)

const (
	inviteeField        = "invitee"
	msgInvalidInvitee   = "Please enter a valid email address"
	msgDuplicateInvitee = "This invitee has already been added"
	msgEmptyInvitee     = "Enter an email address to invite"
)

// Booker is the remote scheduling collaborator.
type Booker interface {
	ScheduleMeeting(ctx context.Context, req api.MeetingRequest) (api.MeetingData, error)
}

// Logger receives diagnostics for failed calls.
type Logger interface {
	Error(format string, args ...any)
}

// Pending is a scheduling call that has passed validation.
type Pending struct {
	Draft   Draft
	Request api.MeetingRequest
}

// Scheduler holds the draft and the scheduled meetings.
type Scheduler struct {
	draft        Draft
	inviteeInput string
	inviteeErr   string
	scheduled    []Scheduled
	inFlight     bool
	frozen       bool
	sink         notify.Sink
	logger       Logger
}

// NewScheduler creates a scheduler that reports outcomes to sink.
func NewScheduler(sink notify.Sink, logger Logger) *Scheduler {
	if sink == nil {
		sink = &notify.Recorder{}
	}
	return &Scheduler{sink: sink, logger: logger}
}

// Draft returns a copy of the current draft.
func (s *Scheduler) Draft() Draft {
	return s.draft.clone()
}

// Freeze refuses every later draft edit and scheduling call. A call already
// in flight may still Complete.
func (s *Scheduler) Freeze() {
	s.frozen = true
}

// SetField replaces one draft field. No validation happens here.
func (s *Scheduler) SetField(field Field, value string) error {
	if s.frozen {
		return ErrFrozen
	}
	return s.draft.set(field, value)
}

// InviteeInput is the pending invitee text.
func (s *Scheduler) InviteeInput() string {
	return s.inviteeInput
}

// InviteeError is the field-level error from the last rejected invitee.
func (s *Scheduler) InviteeError() string {
	return s.inviteeErr
}

// SetInviteeInput stores the text typed into the invitee field.
func (s *Scheduler) SetInviteeInput(value string) {
	if s.frozen {
		return
	}
	s.inviteeInput = value
}

// AddInvitee moves the pending input into the invitee list if it is a new,
// well-formed address. Rejections set InviteeError and leave the list alone.
func (s *Scheduler) AddInvitee() error {
	if s.frozen {
		return ErrFrozen
	}
	email := s.inviteeInput
	var msg string
	switch {
	case email == "":
		msg = msgEmptyInvitee
	case s.hasInvitee(email):
		msg = msgDuplicateInvitee
	case !validation.IsEmail(email):
		msg = msgInvalidInvitee
	}
	if msg != "" {
		s.inviteeErr = msg
		return validation.Error{Field: inviteeField, Message: msg}
	}
	s.draft.Invitees = append(s.draft.Invitees, email)
	s.inviteeInput = ""
	s.inviteeErr = ""
	return nil
}

// AddInviteeEmail sets the input to email and adds it.
func (s *Scheduler) AddInviteeEmail(email string) error {
	if s.frozen {
		return ErrFrozen
	}
	s.inviteeInput = email
	return s.AddInvitee()
}

// RemoveInvitee removes the matching invitee.
func (s *Scheduler) RemoveInvitee(email string) bool {
	if s.frozen {
		return false
	}
	for i, existing := range s.draft.Invitees {
		if existing == email {
			s.draft.Invitees = append(s.draft.Invitees[:i:i], s.draft.Invitees[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scheduler) hasInvitee(email string) bool {
	for _, existing := range s.draft.Invitees {
		if existing == email {
			return true
		}
	}
	return false
}

// InFlight reports whether a scheduling call is outstanding.
func (s *Scheduler) InFlight() bool {
	return s.inFlight
}

// Prepare validates the draft and marks scheduling as in flight.
func (s *Scheduler) Prepare() (Pending, error) {
	if s.frozen {
		return Pending{}, ErrFrozen
	}
	if s.inFlight {
		return Pending{}, ErrInFlight
	}
	if missing := s.draft.Missing(); len(missing) > 0 {
		s.sink.Notify("Error", "Please fill in all required fields", notify.SeverityDestructive)
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return Pending{}, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(names, ", "))
	}
	s.inFlight = true
	draft := s.draft.clone()
	return Pending{Draft: draft, Request: draft.Request()}, nil
}

// Complete applies the scheduling result. On success the meeting is
// appended and the draft reset; on failure the draft is kept for a retry.
func (s *Scheduler) Complete(p Pending, data api.MeetingData, callErr error) error {
	s.inFlight = false
	if callErr != nil {
		if s.logger != nil {
			s.logger.Error("Error scheduling meeting %q: %v", p.Draft.Title, callErr)
		}
		s.sink.Notify("Error", "Failed to schedule meeting. Please try again.", notify.SeverityDestructive)
		return callErr
	}
	s.scheduled = append(s.scheduled, Scheduled{
		Draft:     p.Draft,
		ID:        data.ID,
		JoinURL:   data.JoinURL,
		MeetingID: data.ID,
		Password:  data.Password,
		Raw:       data.Raw,
	})
	s.draft = Draft{}
	s.inviteeInput = ""
	s.inviteeErr = ""
	s.sink.Notify("Success", "Meeting scheduled successfully", notify.SeverityDefault)
	return nil
}

// Schedule validates, calls the booker and applies the result.
func (s *Scheduler) Schedule(ctx context.Context, booker Booker) error {
	p, err := s.Prepare()
	if err != nil {
		return err
	}
	data, err := booker.ScheduleMeeting(ctx, p.Request)
	return s.Complete(p, data, err)
}

// Scheduled returns the confirmed meetings in scheduling order.
func (s *Scheduler) Scheduled() []Scheduled {
	out := make([]Scheduled, len(s.scheduled))
	copy(out, s.scheduled)
	return out
}

// Latest returns the most recently scheduled meeting.
func (s *Scheduler) Latest() (Scheduled, bool) {
	if len(s.scheduled) == 0 {
		return Scheduled{}, false
	}
	return s.scheduled[len(s.scheduled)-1], true
}
