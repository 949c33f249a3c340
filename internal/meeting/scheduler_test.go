package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/notify"
)

type fakeBooker struct {
	calls []api.MeetingRequest
	data  api.MeetingData
	err   error
}

func (f *fakeBooker) ScheduleMeeting(_ context.Context, req api.MeetingRequest) (api.MeetingData, error) {
	f.calls = append(f.calls, req)
	return f.data, f.err
}

type recordingLogger struct {
	lines int
}

func (l *recordingLogger) Error(string, ...any) { l.lines++ }

func fillDraft(t *testing.T, s *Scheduler) {
	t.Helper()
	for field, value := range map[Field]string{
		FieldTitle:       "Group discussion",
		FieldDate:        "2026-10-20",
		FieldTime:        "09:30",
		FieldDuration:    "60",
		FieldDescription: "Case debrief",
	} {
		if err := s.SetField(field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}
}

func TestAddInviteeRejectsDuplicates(t *testing.T) {
	s := NewScheduler(nil, nil)
	if err := s.AddInviteeEmail("a@b.com"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.AddInviteeEmail("a@b.com"); err == nil {
		t.Fatalf("expected duplicate rejection")
	}
	if got := s.Draft().Invitees; len(got) != 1 {
		t.Fatalf("invitees = %v, want one entry", got)
	}
	if s.InviteeError() == "" {
		t.Fatalf("expected field-level error after duplicate")
	}
	if err := s.AddInviteeEmail("A@b.com"); err != nil {
		t.Fatalf("case-different address should be accepted: %v", err)
	}
}

func TestAddInviteeRejectsMalformed(t *testing.T) {
	s := NewScheduler(nil, nil)
	if err := s.AddInviteeEmail("not-an-email"); err == nil {
		t.Fatalf("expected rejection")
	}
	if s.InviteeError() == "" {
		t.Fatalf("expected non-empty error")
	}
	if len(s.Draft().Invitees) != 0 {
		t.Fatalf("invitee list changed: %v", s.Draft().Invitees)
	}
	if s.InviteeInput() != "not-an-email" {
		t.Fatalf("rejected input should be kept for correction, got %q", s.InviteeInput())
	}
	if err := s.AddInviteeEmail(""); err == nil {
		t.Fatalf("expected empty rejection")
	}
}

func TestAddInviteeClearsInputAndError(t *testing.T) {
	s := NewScheduler(nil, nil)
	_ = s.AddInviteeEmail("bad")
	s.SetInviteeInput("good@example.com")
	if err := s.AddInvitee(); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.InviteeInput() != "" || s.InviteeError() != "" {
		t.Fatalf("expected cleared input/error, got %q / %q", s.InviteeInput(), s.InviteeError())
	}
}

func TestRemoveInvitee(t *testing.T) {
	s := NewScheduler(nil, nil)
	_ = s.AddInviteeEmail("a@b.com")
	_ = s.AddInviteeEmail("c@d.com")
	if !s.RemoveInvitee("a@b.com") {
		t.Fatalf("expected removal")
	}
	if got := s.Draft().Invitees; len(got) != 1 || got[0] != "c@d.com" {
		t.Fatalf("invitees = %v", got)
	}
	if s.RemoveInvitee("zzz@b.com") {
		t.Fatalf("unknown invitee removal should report false")
	}
}

func TestScheduleRequiresFields(t *testing.T) {
	required := []Field{FieldTitle, FieldDate, FieldTime, FieldDuration}
	for _, blank := range required {
		t.Run(string(blank), func(t *testing.T) {
			rec := &notify.Recorder{}
			s := NewScheduler(rec, nil)
			fillDraft(t, s)
			_ = s.SetField(blank, "")
			booker := &fakeBooker{}
			err := s.Schedule(context.Background(), booker)
			if !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
			if len(booker.calls) != 0 {
				t.Fatalf("expected no network call, got %d", len(booker.calls))
			}
			if len(s.Scheduled()) != 0 {
				t.Fatalf("scheduled list changed")
			}
			if last, ok := rec.Last(); !ok || last.Severity != notify.SeverityDestructive {
				t.Fatalf("expected destructive notice, got %+v", last)
			}
			if s.InFlight() {
				t.Fatalf("validation failure must not leave scheduling in flight")
			}
		})
	}
}

func TestScheduleSuccessAppendsAndResets(t *testing.T) {
	rec := &notify.Recorder{}
	s := NewScheduler(rec, nil)
	fillDraft(t, s)
	_ = s.AddInviteeEmail("a@b.com")
	booker := &fakeBooker{data: api.MeetingData{ID: "991", JoinURL: "https://zoom.example/j/991", Password: "pw", Raw: json.RawMessage(`{"id":991}`)}}
	if err := s.Schedule(context.Background(), booker); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(booker.calls) != 1 {
		t.Fatalf("expected one call")
	}
	req := booker.calls[0]
	if req.StartTime != "2026-10-20T09:30:00Z" || req.Topic != "Group discussion" || req.Agenda != "Case debrief" || req.Duration != "60" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Participants) != 1 || req.Participants[0] != "a@b.com" {
		t.Fatalf("participants = %v", req.Participants)
	}
	latest, ok := s.Latest()
	if !ok || latest.MeetingID != "991" || latest.JoinURL == "" || latest.Title != "Group discussion" {
		t.Fatalf("unexpected scheduled meeting %+v", latest)
	}
	if draft := s.Draft(); draft.Title != "" || len(draft.Invitees) != 0 {
		t.Fatalf("draft not reset: %+v", draft)
	}
	if last, _ := rec.Last(); last.Severity != notify.SeverityDefault {
		t.Fatalf("expected success notice, got %+v", last)
	}
}

func TestScheduleFailureKeepsDraft(t *testing.T) {
	rec := &notify.Recorder{}
	logger := &recordingLogger{}
	s := NewScheduler(rec, logger)
	fillDraft(t, s)
	booker := &fakeBooker{err: api.ErrMissingMeetingData}
	if err := s.Schedule(context.Background(), booker); !errors.Is(err, api.ErrMissingMeetingData) {
		t.Fatalf("expected call error, got %v", err)
	}
	if s.Draft().Title != "Group discussion" {
		t.Fatalf("draft should be kept for retry")
	}
	if len(s.Scheduled()) != 0 {
		t.Fatalf("failed call appended a meeting")
	}
	if s.InFlight() {
		t.Fatalf("in-flight flag not cleared")
	}
	if logger.lines != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestPrepareRefusesWhileInFlight(t *testing.T) {
	s := NewScheduler(nil, nil)
	fillDraft(t, s)
	p, err := s.Prepare()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if _, err := s.Prepare(); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	_ = s.SetField(FieldTitle, "edited while waiting")
	if err := s.Complete(p, api.MeetingData{ID: "1"}, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	latest, _ := s.Latest()
	if latest.Title != "Group discussion" {
		t.Fatalf("scheduled meeting should use the snapshot, got %q", latest.Title)
	}
}

func TestNextDuration(t *testing.T) {
	if got := NextDuration("", 1); got != "30" {
		t.Fatalf("from empty = %q", got)
	}
	if got := NextDuration("120", 1); got != "30" {
		t.Fatalf("wrap = %q", got)
	}
	if got := NextDuration("30", -1); got != "120" {
		t.Fatalf("wrap back = %q", got)
	}
	if DurationLabel("90") != "1.5 hours" {
		t.Fatalf("label = %q", DurationLabel("90"))
	}
}

func TestSetFieldUnknown(t *testing.T) {
	s := NewScheduler(nil, nil)
	if err := s.SetField(Field("room"), "A"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
