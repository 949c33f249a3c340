package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/bridge"
	"github.com/kingrea/promote/internal/logbook"
	"github.com/kingrea/promote/internal/meeting"
	"github.com/kingrea/promote/internal/notify"
)

const (
	colorAccent = lipgloss.Color("#FF6B6B")
	colorInfo   = lipgloss.Color("#5B8DEF")
	colorBorder = lipgloss.Color("#444444")
	colorMuted  = lipgloss.Color("#888888")
	colorText   = lipgloss.Color("#AAAAAA")
	colorOK     = lipgloss.Color("#5FD787")
	colorWarn   = lipgloss.Color("#FFB86C")
)

func (a *App) viewWidth() int {
	if a.width <= 0 {
		return 100
	}
	return a.width
}

func (a *App) bodyWidth() int {
	return max(40, a.viewWidth()-4)
}

// View renders the current screen.
func (a *App) View() string {
	switch a.state {
	case stateSubmitted:
		return a.renderSubmitted()
	case statePickDepartment:
		return a.renderFrame(a.departmentMenu.View())
	}
	var content string
	switch a.tab {
	case tabPsychometric, tabCaseStudy:
		cat, _ := a.tab.category()
		content = a.renderScenarioTab(cat)
	case tabGroupDiscussion:
		content = a.renderMeetingTab()
	case tabCandidates:
		content = a.renderRosterTab()
	}
	return a.renderFrame(content)
}

func (a *App) renderFrame(content string) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Render("⬡ PROMOTE · Assessment Builder")
	department := a.session.Department()
	if department == "" {
		department = "none selected (ctrl+e)"
	}
	meta := lipgloss.NewStyle().
		Foreground(colorText).
		Render(fmt.Sprintf("Department: %s · Company %d", department, a.session.CompID()))

	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(a.bodyWidth()).
		Render(content)

	sections := []string{header, meta, a.renderTabs(), body}
	if notices := a.renderNotices(); notices != "" {
		sections = append(sections, notices)
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderTabs() string {
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorInfo).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)
	parts := make([]string, 0, tabCount)
	for i := tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("F%d %s", i+1, tabTitles[i])
		if i == a.tab {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderScenarioTab(cat assessment.Category) string {
	store := a.session.Store()
	ed := a.editors[cat]
	title := lipgloss.NewStyle().Bold(true).Foreground(colorInfo).Render(cat.Title())

	var lines []string
	lines = append(lines, title)
	if a.session.Generating() {
		lines = append(lines, a.spinner.View()+" generating…")
	}
	if ed.empty() {
		note := lipgloss.NewStyle().Foreground(colorMuted).Render("No scenarios yet · ctrl+n to add one")
		lines = append(lines, note)
		return a.withGeneratedPanel(cat, strings.Join(lines, "\n"))
	}

	active := store.Active(cat)
	var nav []string
	for _, sc := range store.Scenarios(cat) {
		label := fmt.Sprintf(" %d ", sc.ID)
		if sc.ID == active {
			label = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(fmt.Sprintf("[%d]", sc.ID))
		}
		nav = append(nav, label)
	}
	lines = append(lines, "Scenarios: "+strings.Join(nav, ""))

	sc, _ := store.ActiveScenario(cat)
	lines = append(lines, "", fmt.Sprintf("Scenario %d · %d point(s)", sc.ID, sc.TotalPoints()))
	lines = append(lines, ed.description.View(), "")
	for i, q := range ed.questions {
		lines = append(lines, fmt.Sprintf("Q%d %s  %s", i+1, q.text.View(), q.points.View()))
	}
	return a.withGeneratedPanel(cat, strings.Join(lines, "\n"))
}

func (a *App) withGeneratedPanel(cat assessment.Category, content string) string {
	if !a.session.PanelOpen() || a.session.PanelCategory() != cat {
		return content
	}
	panelWidth := max(28, a.bodyWidth()/3)
	left := lipgloss.NewStyle().Width(max(20, a.bodyWidth()-panelWidth-6)).Render(content)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, a.renderGeneratedPanel(cat, panelWidth))
}

func (a *App) renderGeneratedPanel(cat assessment.Category, width int) string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorInfo).
		Render("GENERATED · " + cat.Title())
	scenarios := a.session.Generated().For(cat)
	var lines []string
	if len(scenarios) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorMuted).Render("Nothing generated yet."))
	}
	for _, sc := range scenarios {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Scenario %d", sc.ID)))
		if sc.Description != "" {
			lines = append(lines, sc.Description)
		}
		for i, q := range sc.Questions {
			lines = append(lines, fmt.Sprintf("  %d. %s (%d pts)", i+1, q.Text, q.Points))
		}
		lines = append(lines, "")
	}
	hint := lipgloss.NewStyle().Foreground(colorMuted).Render("esc to close")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, head, strings.Join(lines, "\n"), hint))
}

func (a *App) renderMeetingTab() string {
	sched := a.session.Scheduler()
	form := a.meetingForm
	draft := sched.Draft()
	label := func(field int, text string) string {
		style := lipgloss.NewStyle().Foreground(colorText).Width(14)
		if form.focused && form.focus == field {
			style = style.Bold(true).Foreground(colorAccent)
		}
		return style.Render(text)
	}

	duration := "◂ " + meeting.DurationLabel(draft.Duration) + " ▸"
	if draft.Duration == "" {
		duration = "◂ choose ▸"
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(colorInfo).Render("Schedule Group Discussion"),
		label(meetingFieldTitle, "Title*") + form.title.View(),
		label(meetingFieldDate, "Date*") + form.date.View(),
		label(meetingFieldTime, "Time*") + form.clock.View(),
		label(meetingFieldDuration, "Duration*") + duration,
		label(meetingFieldDescription, "Description"),
		form.description.View(),
		label(meetingFieldInvitee, "Invite") + form.invitee.View(),
	}
	if msg := sched.InviteeError(); msg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorAccent).Render("  "+msg))
	}
	if len(draft.Invitees) > 0 {
		lines = append(lines, "Invitees: "+strings.Join(draft.Invitees, ", "))
	}
	if sched.InFlight() {
		lines = append(lines, a.spinner.View()+" scheduling…")
	}
	lines = append(lines, "", a.renderMeetingsTable(sched.Scheduled()))
	return strings.Join(lines, "\n")
}

func (a *App) renderMeetingsTable(scheduled []meeting.Scheduled) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorInfo).Render("Scheduled Meetings")
	if len(scheduled) == 0 {
		return head + "\n" + lipgloss.NewStyle().Foreground(colorMuted).Render("No meetings scheduled yet.")
	}
	row := func(cols ...string) string {
		widths := []int{24, 22, 12, 10}
		cells := make([]string, len(cols))
		for i, c := range cols {
			if i < len(widths) {
				cells[i] = lipgloss.NewStyle().Width(widths[i]).Render(c)
			} else {
				cells[i] = c
			}
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	lines := []string{head, lipgloss.NewStyle().Foreground(colorMuted).Render(row("Title", "Date & Time", "Duration", "Invitees", "Link"))}
	for _, m := range scheduled {
		lines = append(lines, row(m.Title, m.When(), m.Duration+" min", fmt.Sprintf("%d", len(m.Invitees)), m.JoinURL))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRosterTab() string {
	r := a.session.Roster()
	form := a.rosterForm
	entries := r.Entries()
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(colorInfo).Render("Candidate Emails"),
	}
	if len(entries) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorMuted).Render("No candidates · ctrl+n to add one"))
	}
	for i, entry := range entries {
		if i >= len(form.inputs) {
			break
		}
		lines = append(lines, fmt.Sprintf("%2d %s", i+1, form.inputs[i].View()))
		if entry.Err != "" {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorAccent).Render("   "+entry.Err))
		}
	}
	summary := fmt.Sprintf("%d to submit", len(r.Submittable()))
	if invalid := r.Invalid(); invalid > 0 {
		summary += lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf(" · %d malformed", invalid))
	}
	lines = append(lines, "", summary)
	if a.session.Submitting() {
		lines = append(lines, a.spinner.View()+" submitting…")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderNotices() string {
	active := a.notices.Active(time.Now())
	if len(active) == 0 {
		return ""
	}
	var boxes []string
	for _, n := range active {
		border := colorOK
		if n.Severity == notify.SeverityDestructive {
			border = colorAccent
		}
		title := lipgloss.NewStyle().Bold(true).Foreground(border).Render(n.Title)
		boxes = append(boxes, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Render(title+"\n"+n.Description))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, boxes...)
	return lipgloss.PlaceHorizontal(a.viewWidth(), lipgloss.Right, stack)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	entries := a.logbook.Recent(6)
	if len(entries) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorInfo).
		Render(fmt.Sprintf("LOG · %s", fileName))
	lines := make([]string, len(entries))
	for i, e := range entries {
		color := colorText
		switch e.Level {
		case logbook.LevelWarn:
			color = colorWarn
		case logbook.LevelError:
			color = colorAccent
		}
		stamp := ""
		if !e.Time.IsZero() {
			stamp = e.Time.Local().Format("15:04:05") + " "
		}
		lines[i] = lipgloss.NewStyle().Foreground(color).Render(stamp + e.Message)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(a.bodyWidth()).
		Render(fmt.Sprintf("%s\n%s", head, strings.Join(lines, "\n")))
}

func (a *App) renderFooter() string {
	var help string
	switch {
	case a.state == statePickDepartment:
		help = "enter select · / filter · esc back"
	case a.tab == tabPsychometric || a.tab == tabCaseStudy:
		help = "ctrl+n scenario · ctrl+d delete · pgup/pgdn switch · ctrl+o question · ctrl+r remove · ctrl+g generate"
	case a.tab == tabGroupDiscussion:
		help = "←/→ duration · enter invite · ctrl+r drop invitee · ctrl+b schedule"
	case a.tab == tabCandidates:
		help = "enter/ctrl+n add · ctrl+r remove"
	}
	help += " · tab fields · F1-F4 tabs · ctrl+e department · ctrl+s submit · ctrl+x dismiss · ctrl+c quit"
	status := a.statusMsg
	if a.busy() {
		status = strings.TrimSpace(a.spinner.View() + " " + status)
	}
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		MarginTop(1).
		Render(strings.TrimSpace(status + "\n" + help))
}

func (a *App) renderSubmitted() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorOK).
		Render("✔ Assessment created")
	lines := []string{
		title,
		"",
		"Job ID: " + lipgloss.NewStyle().Bold(true).Render(a.session.JobID()),
	}
	if a.bridgeURL != "" {
		lines = append(lines, "Confirmation: "+bridge.ConfirmationURL(a.bridgeURL, a.session.JobID()))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(colorMuted).Render("Press q to exit."))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorOK).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))
}
