package tui

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/meeting"
	"github.com/kingrea/promote/internal/roster"
)

const defaultFieldWidth = 60

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Width = width
	return ti
}

func newArea(placeholder string, width int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(width)
	ta.SetHeight(4)
	return ta
}

// digitsOnly drops key presses that would put a non-digit into a points field.
func digitsOnly(msg tea.Msg) bool {
	key, ok := msg.(tea.KeyMsg)
	if !ok || key.Type != tea.KeyRunes {
		return true
	}
	for _, r := range key.Runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

type questionInputs struct {
	text   textinput.Model
	points textinput.Model
}

// scenarioEditor edits the active scenario of one category. Field 0 is the
// description; each question contributes a text field then a points field.
type scenarioEditor struct {
	cat         assessment.Category
	scenarioID  int
	description textarea.Model
	questions   []questionInputs
	focus       int
	focused     bool
	width       int
}

func newScenarioEditor(cat assessment.Category) *scenarioEditor {
	return &scenarioEditor{cat: cat, width: defaultFieldWidth}
}

// load rebuilds the widgets from the stored scenario, keeping focus in range.
func (e *scenarioEditor) load(store *assessment.Store) tea.Cmd {
	sc, ok := store.ActiveScenario(e.cat)
	if !ok {
		e.scenarioID = 0
		e.questions = nil
		e.focus = 0
		return nil
	}
	e.scenarioID = sc.ID
	e.description = newArea("Describe the scenario…", e.width)
	e.description.SetValue(sc.Description)
	e.questions = make([]questionInputs, len(sc.Questions))
	for i, q := range sc.Questions {
		text := newInput("Question", e.width-14)
		text.SetValue(q.Text)
		points := newInput("0", 6)
		points.Prompt = "pts "
		points.SetValue(strconv.Itoa(q.Points))
		e.questions[i] = questionInputs{text: text, points: points}
	}
	if e.focus >= e.fieldCount() {
		e.focus = e.fieldCount() - 1
	}
	if e.focus < 0 {
		e.focus = 0
	}
	if e.focused {
		return e.applyFocus()
	}
	return nil
}

func (e *scenarioEditor) empty() bool {
	return e.scenarioID == 0
}

func (e *scenarioEditor) fieldCount() int {
	if e.empty() {
		return 0
	}
	return 1 + 2*len(e.questions)
}

// focusedQuestion is the question index under focus, or -1 on the description.
func (e *scenarioEditor) focusedQuestion() int {
	if e.focus == 0 || e.empty() {
		return -1
	}
	return (e.focus - 1) / 2
}

func (e *scenarioEditor) focusQuestion(index int) tea.Cmd {
	e.focus = 1 + 2*index
	return e.applyFocus()
}

func (e *scenarioEditor) move(step int) tea.Cmd {
	n := e.fieldCount()
	if n == 0 {
		return nil
	}
	e.focus = ((e.focus+step)%n + n) % n
	return e.applyFocus()
}

func (e *scenarioEditor) setFocused(on bool) tea.Cmd {
	e.focused = on
	return e.applyFocus()
}

func (e *scenarioEditor) applyFocus() tea.Cmd {
	e.description.Blur()
	for i := range e.questions {
		e.questions[i].text.Blur()
		e.questions[i].points.Blur()
	}
	if !e.focused || e.empty() {
		return nil
	}
	if e.focus == 0 {
		return e.description.Focus()
	}
	q := e.focusedQuestion()
	if (e.focus-1)%2 == 0 {
		return e.questions[q].text.Focus()
	}
	return e.questions[q].points.Focus()
}

// update routes msg to the focused widget and writes the result back.
func (e *scenarioEditor) update(msg tea.Msg, store *assessment.Store) tea.Cmd {
	if e.empty() {
		return nil
	}
	var cmd tea.Cmd
	if e.focus == 0 {
		e.description, cmd = e.description.Update(msg)
		store.UpdateScenarioText(e.cat, e.scenarioID, e.description.Value())
		return cmd
	}
	q := e.focusedQuestion()
	in := &e.questions[q]
	if (e.focus-1)%2 == 0 {
		in.text, cmd = in.text.Update(msg)
	} else {
		if !digitsOnly(msg) {
			return nil
		}
		in.points, cmd = in.points.Update(msg)
	}
	points, _ := strconv.Atoi(strings.TrimSpace(in.points.Value()))
	store.UpdateQuestion(e.cat, e.scenarioID, q, in.text.Value(), points)
	return cmd
}

func (e *scenarioEditor) resize(width int) {
	e.width = width
	if e.empty() {
		return
	}
	e.description.SetWidth(width)
	for i := range e.questions {
		e.questions[i].text.Width = width - 14
	}
}

// meetingForm edits the scheduler's draft. Duration is a choice cycled with
// left/right rather than free text.
type meetingForm struct {
	title       textinput.Model
	date        textinput.Model
	clock       textinput.Model
	description textarea.Model
	invitee     textinput.Model
	focus       int
	focused     bool
	width       int
}

const (
	meetingFieldTitle = iota
	meetingFieldDate
	meetingFieldTime
	meetingFieldDuration
	meetingFieldDescription
	meetingFieldInvitee
	meetingFieldCount
)

func newMeetingForm() *meetingForm {
	return &meetingForm{width: defaultFieldWidth}
}

func (f *meetingForm) load(s *meeting.Scheduler) tea.Cmd {
	d := s.Draft()
	f.title = newInput("Meeting title", f.width)
	f.title.SetValue(d.Title)
	f.date = newInput("YYYY-MM-DD", 12)
	f.date.CharLimit = 10
	f.date.SetValue(d.Date)
	f.clock = newInput("HH:MM", 7)
	f.clock.CharLimit = 5
	f.clock.SetValue(d.Time)
	f.description = newArea("Agenda", f.width)
	f.description.SetHeight(3)
	f.description.SetValue(d.Description)
	f.invitee = newInput("name@company.com", f.width)
	f.invitee.SetValue(s.InviteeInput())
	if f.focused {
		return f.applyFocus()
	}
	return nil
}

func (f *meetingForm) move(step int) tea.Cmd {
	f.focus = ((f.focus+step)%meetingFieldCount + meetingFieldCount) % meetingFieldCount
	return f.applyFocus()
}

func (f *meetingForm) setFocused(on bool) tea.Cmd {
	f.focused = on
	return f.applyFocus()
}

func (f *meetingForm) applyFocus() tea.Cmd {
	f.title.Blur()
	f.date.Blur()
	f.clock.Blur()
	f.description.Blur()
	f.invitee.Blur()
	if !f.focused {
		return nil
	}
	switch f.focus {
	case meetingFieldTitle:
		return f.title.Focus()
	case meetingFieldDate:
		return f.date.Focus()
	case meetingFieldTime:
		return f.clock.Focus()
	case meetingFieldDescription:
		return f.description.Focus()
	case meetingFieldInvitee:
		return f.invitee.Focus()
	}
	return nil
}

// update routes msg to the focused widget and mirrors it into the draft.
func (f *meetingForm) update(msg tea.Msg, s *meeting.Scheduler) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case meetingFieldTitle:
		f.title, cmd = f.title.Update(msg)
		_ = s.SetField(meeting.FieldTitle, f.title.Value())
	case meetingFieldDate:
		f.date, cmd = f.date.Update(msg)
		_ = s.SetField(meeting.FieldDate, f.date.Value())
	case meetingFieldTime:
		f.clock, cmd = f.clock.Update(msg)
		_ = s.SetField(meeting.FieldTime, f.clock.Value())
	case meetingFieldDescription:
		f.description, cmd = f.description.Update(msg)
		_ = s.SetField(meeting.FieldDescription, f.description.Value())
	case meetingFieldInvitee:
		f.invitee, cmd = f.invitee.Update(msg)
		s.SetInviteeInput(f.invitee.Value())
	}
	return cmd
}

func (f *meetingForm) resize(width int) {
	f.width = width
	f.title.Width = width
	f.description.SetWidth(width)
	f.invitee.Width = width
}

// rosterForm holds one input per candidate entry.
type rosterForm struct {
	inputs  []textinput.Model
	focus   int
	focused bool
	width   int
}

func newRosterForm() *rosterForm {
	return &rosterForm{width: defaultFieldWidth}
}

func (f *rosterForm) load(r *roster.Roster) tea.Cmd {
	entries := r.Entries()
	f.inputs = make([]textinput.Model, len(entries))
	for i, entry := range entries {
		in := newInput("candidate@company.com", f.width)
		in.SetValue(entry.Value)
		f.inputs[i] = in
	}
	if f.focus >= len(f.inputs) {
		f.focus = len(f.inputs) - 1
	}
	if f.focus < 0 {
		f.focus = 0
	}
	if f.focused {
		return f.applyFocus()
	}
	return nil
}

func (f *rosterForm) move(step int) tea.Cmd {
	n := len(f.inputs)
	if n == 0 {
		return nil
	}
	f.focus = ((f.focus+step)%n + n) % n
	return f.applyFocus()
}

func (f *rosterForm) focusEntry(index int) tea.Cmd {
	f.focus = index
	return f.applyFocus()
}

func (f *rosterForm) setFocused(on bool) tea.Cmd {
	f.focused = on
	return f.applyFocus()
}

func (f *rosterForm) applyFocus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if !f.focused || len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[f.focus].Focus()
}

func (f *rosterForm) update(msg tea.Msg, r *roster.Roster) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	r.Update(f.focus, f.inputs[f.focus].Value())
	return cmd
}

func (f *rosterForm) resize(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = width
	}
}
