// internal/session/session.go
//
// Session is the single editing session behind the builder. It owns the
// scenario store, the meeting scheduler, the candidate roster and the
// generated-scenario staging area, and it drives the submission state
// machine:
//
//	Editing -> Submitting -> Submitted (terminal)
//	Editing -> Submitting -> Editing   (submit failed)
//
// Remote calls come in Begin/Finish pairs. Begin validates and flips the
// in-flight flag; the caller performs the call (inline or in a tea.Cmd) and
// hands the result to Finish.

package session

import (
	"context"
	"errors"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/meeting"
	"github.com/kingrea/promote/internal/notify"
	"github.com/kingrea/promote/internal/roster"
)

// DefaultCompID is used when no company is configured.
const DefaultCompID = 2806

// State is the submission state of the session.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	}
	return "unknown"
}

var (
	ErrSubmitted    = errors.New("session: assessment already submitted")
	ErrSubmitting   = errors.New("session: submission in progress")
	ErrGenerating   = errors.New("session: generation in progress")
	ErrNoDepartment = errors.New("session: no department selected")
	ErrNoJobID      = errors.New("session: response missing job_id")
)

// Remote is every collaborator the session calls. *api.Client satisfies it.
type Remote interface {
	meeting.Booker
	Departments(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, req api.GenerateRequest) (api.GenerateResponse, error)
	Submit(ctx context.Context, req api.SubmitRequest) (api.SubmitResponse, error)
}

// Logger matches *logbook.Logbook.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option customizes a Session.
type Option func(*Session)

// WithCompID sets the company identifier placed in the payload.
func WithCompID(id int) Option {
	return func(s *Session) {
		if id > 0 {
			s.compID = id
		}
	}
}

// WithLogger routes diagnostics to l.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is not safe for concurrent use; all calls must come from one
// goroutine (the bubbletea update loop or a headless runner).
type Session struct {
	compID int
	remote Remote
	sink   notify.Sink
	logger Logger

	state State
	jobID string

	department  string
	departments []string

	store     *assessment.Store
	scheduler *meeting.Scheduler
	roster    *roster.Roster

	generated  assessment.GeneratedSet
	generating bool
	panelOpen  bool
	panelCat   assessment.Category
}

// New creates a session in the Editing state.
func New(remote Remote, sink notify.Sink, opts ...Option) *Session {
	if sink == nil {
		sink = &notify.Recorder{}
	}
	s := &Session{
		compID: DefaultCompID,
		remote: remote,
		sink:   sink,
		logger: nopLogger{},
		store:  assessment.NewStore(),
		roster: roster.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.scheduler = meeting.NewScheduler(sink, s.logger)
	return s
}

func (s *Session) State() State                  { return s.state }
func (s *Session) JobID() string                 { return s.jobID }
func (s *Session) CompID() int                   { return s.compID }
func (s *Session) Store() *assessment.Store      { return s.store }
func (s *Session) Scheduler() *meeting.Scheduler { return s.scheduler }
func (s *Session) Roster() *roster.Roster        { return s.roster }

// Editable reports whether user edits are still accepted.
func (s *Session) Editable() bool {
	return s.state != StateSubmitted
}

// Department is the selected department, or "".
func (s *Session) Department() string {
	return s.department
}

// Departments is the picker list loaded from the remote service.
func (s *Session) Departments() []string {
	return append([]string(nil), s.departments...)
}

// SetDepartment selects a department.
func (s *Session) SetDepartment(name string) error {
	if !s.Editable() {
		return ErrSubmitted
	}
	s.department = name
	return nil
}

// LoadDepartments fetches the department list; any failure yields an empty list.
func (s *Session) LoadDepartments(ctx context.Context) []string {
	deps, err := s.remote.Departments(ctx)
	s.ApplyDepartments(deps, err)
	return s.Departments()
}

// ApplyDepartments stores the result of a department lookup.
func (s *Session) ApplyDepartments(deps []string, err error) {
	if err != nil {
		s.logger.Error("Error fetching departments: %v", err)
		s.departments = []string{}
		return
	}
	s.departments = append([]string{}, deps...)
	s.logger.Info("Loaded %d department(s)", len(s.departments))
}
