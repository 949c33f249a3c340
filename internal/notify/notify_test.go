package notify

import (
	"testing"
	"time"
)

func TestNoticesExpireAfterTTL(t *testing.T) {
	now := time.Unix(1730000000, 0)
	ch := New(WithTTL(3*time.Second), WithClock(func() time.Time { return now }))
	ch.Notify("Success", "Meeting scheduled successfully", SeverityDefault)
	now = now.Add(time.Second)
	ch.Notify("Error", "Failed to submit assessment. Please try again.", SeverityDestructive)

	active := ch.Active(now)
	if len(active) != 2 {
		t.Fatalf("expected 2 active notices, got %d", len(active))
	}
	if active[0].Severity != SeverityDefault || active[1].Severity != SeverityDestructive {
		t.Fatalf("unexpected severities: %+v", active)
	}
	if active[0].ID == "" || active[0].ID == active[1].ID {
		t.Fatalf("expected distinct ids, got %q and %q", active[0].ID, active[1].ID)
	}

	later := now.Add(2500 * time.Millisecond)
	if got := ch.Active(later); len(got) != 1 {
		t.Fatalf("expected first notice expired, got %d active", len(got))
	}
	if dropped := ch.Expire(later); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if ch.Len() != 1 {
		t.Fatalf("len = %d, want 1", ch.Len())
	}
}

func TestRemoveDismissesNotice(t *testing.T) {
	ch := New()
	ch.Notify("Error", "x", "")
	notices := ch.Active(time.Now())
	if len(notices) != 1 || notices[0].Severity != SeverityDefault {
		t.Fatalf("unexpected notices: %+v", notices)
	}
	if !ch.Remove(notices[0].ID) {
		t.Fatalf("expected removal")
	}
	if ch.Remove(notices[0].ID) {
		t.Fatalf("second removal should fail")
	}
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	if _, ok := rec.Last(); ok {
		t.Fatalf("empty recorder returned a notice")
	}
	var sink Sink = &rec
	sink.Notify("Error", "boom", SeverityDestructive)
	last, ok := rec.Last()
	if !ok || last.Description != "boom" {
		t.Fatalf("unexpected last notice: %+v", last)
	}
}
