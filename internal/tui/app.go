// internal/tui/app.go
//
// This is the main TUI for the assessment builder. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: the App below, wrapping a session.Session
// 2. Update: key presses mutate the session; remote calls run as tea.Cmds
//    and come back as messages
// 3. View: renders the current tab, panels, notices and the log tail
//
// All session mutation happens inside Update, so the session never sees
// concurrent access.

package tui

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/bridge"
	"github.com/kingrea/promote/internal/config"
	"github.com/kingrea/promote/internal/logbook"
	"github.com/kingrea/promote/internal/meeting"
	"github.com/kingrea/promote/internal/notify"
	"github.com/kingrea/promote/internal/session"
)

// appState represents which "screen" we're on
type appState int

const (
	stateEditing        appState = iota // Tabs with the assessment being built
	statePickDepartment                 // Department picker over the editor
	stateSubmitted                      // Confirmation screen, terminal
)

type tab int

const (
	tabPsychometric tab = iota
	tabCaseStudy
	tabGroupDiscussion
	tabCandidates
	tabCount
)

var tabTitles = [tabCount]string{"Psychometric", "Case Study", "Group Discussion", "Candidates"}

func (t tab) category() (assessment.Category, bool) {
	switch t {
	case tabPsychometric:
		return assessment.Psychometric, true
	case tabCaseStudy:
		return assessment.CaseStudy, true
	}
	return "", false
}

type departmentsLoadedMsg struct {
	departments []string
	err         error
}

type generatedMsg struct {
	cat  assessment.Category
	resp api.GenerateResponse
	err  error
}

type meetingScheduledMsg struct {
	pending meeting.Pending
	data    api.MeetingData
	err     error
}

type submittedMsg struct {
	resp api.SubmitResponse
	err  error
}

type expireNoticesMsg struct {
	at time.Time
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRemote replaces the HTTP client built from config.
func WithRemote(remote session.Remote) AppOption {
	return func(a *App) {
		if remote != nil {
			a.remote = remote
		}
	}
}

// WithRegistry records successful submissions into a bridge registry.
func WithRegistry(r *bridge.Registry) AppOption {
	return func(a *App) {
		a.registry = r
	}
}

// WithBridgeURL sets the base URL shown on the confirmation screen.
func WithBridgeURL(url string) AppOption {
	return func(a *App) {
		a.bridgeURL = strings.TrimSpace(url)
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state appState
	tab   tab

	config    *config.Config
	session   *session.Session
	remote    session.Remote
	notices   *notify.Channel
	logbook   *logbook.Logbook
	registry  *bridge.Registry
	bridgeURL string

	editors     map[assessment.Category]*scenarioEditor
	meetingForm *meetingForm
	rosterForm  *rosterForm

	departmentMenu     list.Model
	loadingDepartments bool
	spinner            spinner.Model
	noticeCount        int

	statusMsg string
	width     int
	height    int
}

type departmentItem string

func (d departmentItem) Title() string       { return string(d) }
func (d departmentItem) Description() string { return "" }
func (d departmentItem) FilterValue() string { return string(d) }

// NewApp creates a new App for the project rooted at projectDir.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, _ := logbook.New(cfg.JournalPath())

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	departmentMenu := list.New(nil, delegate, 0, 0)
	departmentMenu.Title = "Select Department"
	departmentMenu.SetShowStatusBar(false)
	departmentMenu.SetFilteringEnabled(true)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	app := &App{
		state:          stateEditing,
		config:         cfg,
		notices:        notify.New(notify.WithTTL(cfg.NotificationTTL())),
		logbook:        lb,
		departmentMenu: departmentMenu,
		spinner:        sp,
		editors: map[assessment.Category]*scenarioEditor{
			assessment.Psychometric: newScenarioEditor(assessment.Psychometric),
			assessment.CaseStudy:    newScenarioEditor(assessment.CaseStudy),
		},
		meetingForm: newMeetingForm(),
		rosterForm:  newRosterForm(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.remote == nil {
		app.remote = api.New(cfg.AssessmentBaseURL(), cfg.SchedulerURL(),
			api.WithCompID(cfg.CompID()),
			api.WithSigningKey(cfg.SigningKey()),
			api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		)
	}
	var logger session.Logger
	if lb != nil {
		logger = lb
	}
	app.session = session.New(app.remote, app.notices,
		session.WithCompID(cfg.CompID()),
		session.WithLogger(logger),
	)
	for _, ed := range app.editors {
		ed.load(app.session.Store())
	}
	app.meetingForm.load(app.session.Scheduler())
	app.rosterForm.load(app.session.Roster())
	app.logInfo("Session opened · comp %d · %s", cfg.CompID(), cfg.AssessmentBaseURL())
	return app, nil
}

// Session exposes the underlying session, mainly for tests and the runner.
func (a *App) Session() *session.Session {
	return a.session
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	a.loadingDepartments = true
	return tea.Batch(a.loadDepartmentsCmd(), a.focusTab(), a.spinner.Tick)
}

// Update is called when a message is received. Any notice raised while
// handling msg gets an expiry tick scheduled.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if n := a.notices.Len(); n > a.noticeCount {
		cmd = tea.Batch(cmd, a.expireNoticesCmd())
	}
	a.noticeCount = a.notices.Len()
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.departmentMenu.SetSize(max(20, msg.Width-6), max(5, msg.Height-12))
		fieldWidth := max(20, a.bodyWidth()-8)
		for _, ed := range a.editors {
			ed.resize(fieldWidth)
		}
		a.meetingForm.resize(fieldWidth)
		a.rosterForm.resize(fieldWidth)
		return nil

	case departmentsLoadedMsg:
		a.loadingDepartments = false
		a.session.ApplyDepartments(msg.departments, msg.err)
		a.refreshDepartmentMenu()
		if msg.err != nil {
			a.statusMsg = "Departments unavailable"
		}
		return nil

	case generatedMsg:
		if err := a.session.FinishGenerate(msg.cat, msg.resp, msg.err); err != nil {
			a.statusMsg = "Generation failed"
			return nil
		}
		a.statusMsg = "Generated " + msg.cat.Noun() + " scenarios"
		return nil

	case meetingScheduledMsg:
		sched := a.session.Scheduler()
		if err := sched.Complete(msg.pending, msg.data, msg.err); err != nil {
			a.statusMsg = "Scheduling failed"
			return nil
		}
		a.logInfo("Meeting %q scheduled · id %s", msg.pending.Draft.Title, msg.data.ID)
		a.statusMsg = "Meeting scheduled"
		return a.meetingForm.load(sched)

	case submittedMsg:
		if err := a.session.FinishSubmit(msg.resp, msg.err); err != nil {
			a.statusMsg = "Submission failed"
			return nil
		}
		a.recordConfirmation()
		a.blurAll()
		a.state = stateSubmitted
		a.statusMsg = ""
		return nil

	case expireNoticesMsg:
		a.notices.Expire(msg.at)
		return nil

	case spinner.TickMsg:
		if !a.busy() {
			return nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Cursor blinks and other widget-internal messages.
	return a.routeToFocused(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch a.state {
	case stateSubmitted:
		switch key {
		case "q", "esc", "enter":
			return tea.Quit
		}
		return nil
	case statePickDepartment:
		return a.handlePickerKey(msg)
	}

	switch key {
	case "f1":
		return a.switchTab(tabPsychometric)
	case "f2":
		return a.switchTab(tabCaseStudy)
	case "f3":
		return a.switchTab(tabGroupDiscussion)
	case "f4":
		return a.switchTab(tabCandidates)
	case "ctrl+right":
		return a.switchTab((a.tab + 1) % tabCount)
	case "ctrl+left":
		return a.switchTab((a.tab + tabCount - 1) % tabCount)
	case "tab":
		return a.moveFocus(1)
	case "shift+tab":
		return a.moveFocus(-1)
	case "ctrl+e":
		return a.openDepartmentPicker()
	case "ctrl+s":
		return a.submit()
	case "esc":
		if a.session.PanelOpen() {
			a.session.ClosePanel()
		}
		return nil
	case "ctrl+x":
		a.dismissNotice()
		return nil
	}

	switch a.tab {
	case tabPsychometric, tabCaseStudy:
		cat, _ := a.tab.category()
		return a.handleScenarioKey(cat, msg)
	case tabGroupDiscussion:
		return a.handleMeetingKey(msg)
	case tabCandidates:
		return a.handleRosterKey(msg)
	}
	return nil
}

func (a *App) handleScenarioKey(cat assessment.Category, msg tea.KeyMsg) tea.Cmd {
	store := a.session.Store()
	ed := a.editors[cat]
	switch msg.String() {
	case "ctrl+n":
		id := store.AddScenario(cat)
		if id == 0 {
			return nil
		}
		a.logInfo("Added %s scenario %d", cat.Noun(), id)
		ed.focus = 0
		return ed.load(store)
	case "ctrl+d":
		id := store.Active(cat)
		if id == 0 || !store.RemoveScenario(cat, id) {
			return nil
		}
		a.logInfo("Removed %s scenario %d", cat.Noun(), id)
		ed.focus = 0
		return ed.load(store)
	case "pgup":
		store.Step(cat, -1)
		ed.focus = 0
		return ed.load(store)
	case "pgdown":
		store.Step(cat, 1)
		ed.focus = 0
		return ed.load(store)
	case "ctrl+o":
		id := store.Active(cat)
		if !store.AddQuestion(cat, id) {
			return nil
		}
		cmd := ed.load(store)
		return tea.Batch(cmd, ed.focusQuestion(len(ed.questions)-1))
	case "ctrl+r":
		q := ed.focusedQuestion()
		if q < 0 || !store.RemoveQuestion(cat, store.Active(cat), q) {
			return nil
		}
		return ed.load(store)
	case "ctrl+g":
		return a.generate(cat)
	}
	return ed.update(msg, store)
}

func (a *App) handleMeetingKey(msg tea.KeyMsg) tea.Cmd {
	sched := a.session.Scheduler()
	form := a.meetingForm
	switch msg.String() {
	case "ctrl+b":
		return a.schedule()
	case "ctrl+r":
		invitees := sched.Draft().Invitees
		if len(invitees) > 0 {
			sched.RemoveInvitee(invitees[len(invitees)-1])
		}
		return nil
	case "enter":
		if form.focus == meetingFieldInvitee {
			sched.SetInviteeInput(form.invitee.Value())
			if err := sched.AddInvitee(); err == nil {
				form.invitee.SetValue("")
			}
			return nil
		}
	case "left", "right", " ":
		if form.focus == meetingFieldDuration {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			_ = sched.SetField(meeting.FieldDuration, meeting.NextDuration(sched.Draft().Duration, step))
			return nil
		}
	}
	return form.update(msg, sched)
}

func (a *App) handleRosterKey(msg tea.KeyMsg) tea.Cmd {
	r := a.session.Roster()
	form := a.rosterForm
	switch msg.String() {
	case "ctrl+n", "enter":
		idx := r.Add()
		if idx < 0 {
			return nil
		}
		cmd := form.load(r)
		return tea.Batch(cmd, form.focusEntry(idx))
	case "ctrl+r":
		if !r.Remove(form.focus) {
			return nil
		}
		return form.load(r)
	}
	return form.update(msg, r)
}

func (a *App) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if a.departmentMenu.FilterState() == list.Filtering {
			break
		}
		a.state = stateEditing
		return a.focusTab()
	case "enter":
		if a.departmentMenu.FilterState() == list.Filtering {
			break
		}
		if item, ok := a.departmentMenu.SelectedItem().(departmentItem); ok {
			if err := a.session.SetDepartment(string(item)); err == nil {
				a.logInfo("Department selected · %s", item)
				a.statusMsg = "Department: " + string(item)
			}
		}
		a.state = stateEditing
		return a.focusTab()
	}
	var cmd tea.Cmd
	a.departmentMenu, cmd = a.departmentMenu.Update(msg)
	return cmd
}

func (a *App) openDepartmentPicker() tea.Cmd {
	if len(a.session.Departments()) == 0 {
		if a.loadingDepartments {
			a.statusMsg = "Departments are still loading"
			return nil
		}
		a.statusMsg = "No departments available · retrying"
		a.loadingDepartments = true
		return tea.Batch(a.loadDepartmentsCmd(), a.spinner.Tick)
	}
	a.blurAll()
	a.state = statePickDepartment
	return nil
}

// dismissNotice drops the newest visible notice before its TTL runs out.
func (a *App) dismissNotice() {
	active := a.notices.Active(time.Now())
	if len(active) == 0 {
		return
	}
	a.notices.Remove(active[len(active)-1].ID)
}

func (a *App) refreshDepartmentMenu() {
	deps := a.session.Departments()
	items := make([]list.Item, len(deps))
	selected := 0
	for i, d := range deps {
		items[i] = departmentItem(d)
		if d == a.session.Department() {
			selected = i
		}
	}
	a.departmentMenu.SetItems(items)
	if len(items) > 0 {
		a.departmentMenu.Select(selected)
	}
}

// switchTab moves to t. Scenario tabs rescope the generated panel; any
// other tab closes it.
func (a *App) switchTab(t tab) tea.Cmd {
	if t == a.tab {
		return nil
	}
	a.blurAll()
	a.tab = t
	if cat, ok := t.category(); ok {
		a.session.ScopePanel(cat)
	} else {
		a.session.ClosePanel()
	}
	return a.focusTab()
}

func (a *App) focusTab() tea.Cmd {
	switch a.tab {
	case tabPsychometric, tabCaseStudy:
		cat, _ := a.tab.category()
		return a.editors[cat].setFocused(true)
	case tabGroupDiscussion:
		return a.meetingForm.setFocused(true)
	case tabCandidates:
		return a.rosterForm.setFocused(true)
	}
	return nil
}

func (a *App) blurAll() {
	for _, ed := range a.editors {
		ed.setFocused(false)
	}
	a.meetingForm.setFocused(false)
	a.rosterForm.setFocused(false)
}

func (a *App) moveFocus(step int) tea.Cmd {
	switch a.tab {
	case tabPsychometric, tabCaseStudy:
		cat, _ := a.tab.category()
		return a.editors[cat].move(step)
	case tabGroupDiscussion:
		return a.meetingForm.move(step)
	case tabCandidates:
		return a.rosterForm.move(step)
	}
	return nil
}

func (a *App) routeToFocused(msg tea.Msg) tea.Cmd {
	if a.state != stateEditing {
		return nil
	}
	switch a.tab {
	case tabPsychometric, tabCaseStudy:
		cat, _ := a.tab.category()
		return a.editors[cat].update(msg, a.session.Store())
	case tabGroupDiscussion:
		return a.meetingForm.update(msg, a.session.Scheduler())
	case tabCandidates:
		return a.rosterForm.update(msg, a.session.Roster())
	}
	return nil
}

func (a *App) busy() bool {
	return a.loadingDepartments ||
		a.session.Generating() ||
		a.session.Submitting() ||
		a.session.Scheduler().InFlight()
}

func (a *App) generate(cat assessment.Category) tea.Cmd {
	req, err := a.session.BeginGenerate(cat)
	if err != nil {
		a.statusMsg = err.Error()
		return nil
	}
	a.statusMsg = "Generating " + cat.Noun() + " scenarios for " + req.Department + "…"
	return tea.Batch(a.generateCmd(cat, req), a.spinner.Tick)
}

func (a *App) schedule() tea.Cmd {
	pending, err := a.session.Scheduler().Prepare()
	if err != nil {
		a.statusMsg = err.Error()
		return nil
	}
	a.statusMsg = "Scheduling meeting…"
	return tea.Batch(a.scheduleCmd(pending), a.spinner.Tick)
}

func (a *App) submit() tea.Cmd {
	req, err := a.session.BeginSubmit()
	if err != nil {
		a.statusMsg = err.Error()
		return nil
	}
	if invalid := a.session.Roster().Invalid(); invalid > 0 {
		a.logWarn("Submitting with %d malformed candidate address(es)", invalid)
	}
	a.statusMsg = "Submitting assessment…"
	return tea.Batch(a.submitCmd(req), a.spinner.Tick)
}

func (a *App) recordConfirmation() {
	if a.registry == nil {
		return
	}
	a.registry.Record(bridge.Confirmation{
		JobID:       a.session.JobID(),
		CompID:      a.session.CompID(),
		Department:  a.session.Department(),
		Candidates:  len(a.session.Roster().Submittable()),
		Source:      "tui",
		SubmittedAt: time.Now().UTC(),
	})
}

func (a *App) loadDepartmentsCmd() tea.Cmd {
	remote := a.remote
	return func() tea.Msg {
		deps, err := remote.Departments(context.Background())
		return departmentsLoadedMsg{departments: deps, err: err}
	}
}

func (a *App) generateCmd(cat assessment.Category, req api.GenerateRequest) tea.Cmd {
	remote := a.remote
	return func() tea.Msg {
		resp, err := remote.Generate(context.Background(), req)
		return generatedMsg{cat: cat, resp: resp, err: err}
	}
}

func (a *App) scheduleCmd(p meeting.Pending) tea.Cmd {
	remote := a.remote
	return func() tea.Msg {
		data, err := remote.ScheduleMeeting(context.Background(), p.Request)
		return meetingScheduledMsg{pending: p, data: data, err: err}
	}
}

func (a *App) submitCmd(req api.SubmitRequest) tea.Cmd {
	remote := a.remote
	return func() tea.Msg {
		resp, err := remote.Submit(context.Background(), req)
		return submittedMsg{resp: resp, err: err}
	}
}

func (a *App) expireNoticesCmd() tea.Cmd {
	return tea.Tick(a.notices.TTL(), func(t time.Time) tea.Msg {
		return expireNoticesMsg{at: t}
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
