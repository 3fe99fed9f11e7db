package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lonhq/lonboard/internal/api"
)

type calendarLoadedMsg struct {
	year  int
	month time.Month
	tasks []api.Task
	err   error
}

// calendarView renders one month of tasks from the calendar feed. Statuses
// can be toggled in and out of view; done tasks start hidden.
type calendarView struct {
	app *App

	year  int
	month time.Month
	tasks []api.Task

	// hidden holds task statuses currently filtered out of the grid.
	hidden map[string]bool

	loading bool
	errMsg  string

	width  int
	height int
}

func newCalendarView(app *App) *calendarView {
	now := time.Now()
	return &calendarView{
		app:    app,
		year:   now.Year(),
		month:  now.Month(),
		hidden: map[string]bool{api.TaskStatusDone: true},
	}
}

// monthWindow is the fetch range for a month view.
func monthWindow(year int, month time.Month) api.CalendarRange {
	first := api.NewDate(year, month, 1)
	last := api.NewDate(year, month+1, 1)
	last.Time = last.AddDate(0, 0, -1)
	return api.CalendarRange{Start: first, End: last}
}

// taskOnDay reports whether a task's date range covers the given day. Tasks
// with only one date pin to that date.
func taskOnDay(task api.Task, day time.Time) bool {
	start, end := task.StartDate, task.EndDate
	switch {
	case start.IsZero() && end.IsZero():
		return false
	case start.IsZero():
		return sameDay(end.Time, day)
	case end.IsZero():
		return sameDay(start.Time, day)
	default:
		return !day.Before(start.Time) && !day.After(end.Time)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (v *calendarView) setSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *calendarView) Init() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	return v.load()
}

func (v *calendarView) Refresh() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *calendarView) CapturesText() bool { return false }

func (v *calendarView) load() tea.Cmd {
	year, month := v.year, v.month
	return func() tea.Msg {
		tasks, err := v.app.store.Tasks.Calendar(context.Background(), monthWindow(year, month))
		return calendarLoadedMsg{year: year, month: month, tasks: tasks, err: err}
	}
}

func (v *calendarView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case calendarLoadedMsg:
		// A stale month's response can arrive after the user navigated on.
		if msg.year != v.year || msg.month != v.month {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.errMsg = ""
		v.tasks = msg.tasks
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "p":
			return v.shiftMonth(-1)
		case "right", "l", "n":
			return v.shiftMonth(1)
		case "t":
			return v.toggleStatus(api.TaskStatusTodo)
		case "i":
			return v.toggleStatus(api.TaskStatusInProgress)
		case "e":
			return v.toggleStatus(api.TaskStatusReview)
		case "d":
			return v.toggleStatus(api.TaskStatusDone)
		case "r":
			v.app.store.Tasks.Invalidate()
			return v.Refresh()
		}
	}
	return nil
}

func (v *calendarView) shiftMonth(delta int) tea.Cmd {
	shifted := time.Date(v.year, v.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	v.year, v.month = shifted.Year(), shifted.Month()
	return v.Refresh()
}

func (v *calendarView) toggleStatus(status string) tea.Cmd {
	v.hidden[status] = !v.hidden[status]
	return nil
}

// visibleOn filters the month's tasks down to one day's visible entries.
func (v *calendarView) visibleOn(day time.Time) []api.Task {
	var out []api.Task
	for _, task := range v.tasks {
		if v.hidden[task.Status] {
			continue
		}
		if taskOnDay(task, day) {
			out = append(out, task)
		}
	}
	return out
}

func (v *calendarView) View() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tasks · calendar · %s %d\n", v.month, v.year))
	b.WriteString(v.legend() + "\n\n")

	if v.loading && len(v.tasks) == 0 {
		b.WriteString(dimStyle.Render("Loading calendar..."))
	} else {
		b.WriteString(v.renderGrid())
	}

	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg))
	}
	b.WriteString("\n\n" + hintStyle.Render("h/l: month · t/i/e/d: toggle status · r: reload · 1/2/3: view · q: quit"))
	return b.String()
}

func (v *calendarView) legend() string {
	parts := make([]string, 0, 4)
	for _, status := range api.TaskStatuses() {
		label := taskStatusLabel(status)
		if v.hidden[status] {
			parts = append(parts, dimStyle.Render(label+" ✗"))
		} else {
			parts = append(parts, taskStatusStyle(status).Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (v *calendarView) renderGrid() string {
	cellWidth := 16
	if v.width > 0 {
		cellWidth = max(12, (v.width-16)/7)
	}

	first := time.Date(v.year, v.month, 1, 0, 0, 0, 0, time.UTC)
	// Monday-first grid.
	offset := (int(first.Weekday()) + 6) % 7
	cursor := first.AddDate(0, 0, -offset)
	today := time.Now()

	var weeks []string
	for cursor.Month() == v.month || cursor.Before(first) {
		cells := make([]string, 0, 7)
		for i := 0; i < 7; i++ {
			cells = append(cells, v.renderDay(cursor, today, cellWidth))
			cursor = cursor.AddDate(0, 0, 1)
		}
		weeks = append(weeks, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(weeks, "\n")
}

func (v *calendarView) renderDay(day, today time.Time, width int) string {
	head := day.Format("Mon 02")
	switch {
	case day.Month() != v.month:
		head = dimStyle.Render(head)
	case sameDay(day, today):
		head = successStyle.Render(head)
	}

	lines := []string{head}
	tasks := v.visibleOn(day)
	const maxShown = 3
	for i, task := range tasks {
		if i == maxShown {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("+%d more", len(tasks)-maxShown)))
			break
		}
		lines = append(lines, taskStatusStyle(task.Status).Render(truncate(task.Title, width-2)))
	}

	return lipgloss.NewStyle().Width(width).Height(maxShown + 2).Render(strings.Join(lines, "\n"))
}
