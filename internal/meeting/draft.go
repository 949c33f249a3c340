package meeting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kingrea/promote/internal/api"
)

// Field names a draft attribute that can be edited directly.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldDuration    Field = "duration"
	FieldDescription Field = "description"
)

// DurationChoices are the meeting lengths offered by the editor, in minutes.
var DurationChoices = []string{"30", "60", "90", "120"}

// DurationLabel renders a duration choice for display.
func DurationLabel(minutes string) string {
	switch minutes {
	case "30":
		return "30 minutes"
	case "60":
		return "1 hour"
	case "90":
		return "1.5 hours"
	case "120":
		return "2 hours"
	case "":
		return ""
	}
	return minutes + " minutes"
}

// NextDuration cycles through DurationChoices from current.
func NextDuration(current string, step int) string {
	n := len(DurationChoices)
	idx := -1
	for i, choice := range DurationChoices {
		if choice == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return DurationChoices[n-1]
		}
		return DurationChoices[0]
	}
	return DurationChoices[((idx+step)%n+n)%n]
}

// Draft is the meeting being configured.
type Draft struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Time        string   `yaml:"time"`
	Duration    string   `yaml:"duration"`
	Description string   `yaml:"description"`
	Invitees    []string `yaml:"invitees"`
}

// Get returns the value of one field.
func (d Draft) Get(field Field) (string, error) {
	switch field {
	case FieldTitle:
		return d.Title, nil
	case FieldDate:
		return d.Date, nil
	case FieldTime:
		return d.Time, nil
	case FieldDuration:
		return d.Duration, nil
	case FieldDescription:
		return d.Description, nil
	}
	return "", fmt.Errorf("meeting: unknown field %q", field)
}

func (d *Draft) set(field Field, value string) error {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldDate:
		d.Date = value
	case FieldTime:
		d.Time = value
	case FieldDuration:
		d.Duration = value
	case FieldDescription:
		d.Description = value
	default:
		return fmt.Errorf("meeting: unknown field %q", field)
	}
	return nil
}

// Missing lists the required fields that are still empty.
func (d Draft) Missing() []Field {
	var missing []Field
	for _, f := range []struct {
		field Field
		value string
	}{
		{FieldTitle, d.Title},
		{FieldDate, d.Date},
		{FieldTime, d.Time},
		{FieldDuration, d.Duration},
	} {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	return missing
}

// StartTime joins date and time into the scheduler's ISO-8601 form.
func (d Draft) StartTime() string {
	return d.Date + "T" + d.Time + ":00Z"
}

// Request builds the scheduling call for this draft.
func (d Draft) Request() api.MeetingRequest {
	participants := make([]string, len(d.Invitees))
	copy(participants, d.Invitees)
	return api.MeetingRequest{
		Topic:        d.Title,
		StartTime:    d.StartTime(),
		Duration:     d.Duration,
		Participants: participants,
		Agenda:       d.Description,
	}
}

func (d Draft) clone() Draft {
	out := d
	out.Invitees = append([]string(nil), d.Invitees...)
	return out
}

// Scheduled is a draft confirmed by the scheduling service.
type Scheduled struct {
	Draft
	ID        string
	JoinURL   string
	MeetingID string
	Password  string
	Raw       json.RawMessage
}

// When formats the meeting's date and time for the table view.
func (s Scheduled) When() string {
	parsed, err := time.Parse("2006-01-02 15:04", s.Date+" "+s.Time)
	if err != nil {
		return s.Date + " " + s.Time
	}
	return parsed.Format("Jan 2, 2006 3:04 PM")
}
