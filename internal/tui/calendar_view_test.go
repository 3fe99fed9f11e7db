package tui

import (
	"testing"
	"time"

	"github.com/lonhq/lonboard/internal/api"
)

func TestMonthWindowCoversWholeMonth(t *testing.T) {
	window := monthWindow(2026, time.February)
	if got := window.Start.String(); got != "2026-02-01" {
		t.Fatalf("expected window start 2026-02-01, got %s", got)
	}
	if got := window.End.String(); got != "2026-02-28" {
		t.Fatalf("expected window end 2026-02-28, got %s", got)
	}

	leap := monthWindow(2028, time.February)
	if got := leap.End.String(); got != "2028-02-29" {
		t.Fatalf("expected leap-year end 2028-02-29, got %s", got)
	}
}

func TestTaskOnDayRangeRules(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	spanning := api.Task{
		StartDate: api.NewDate(2026, time.March, 3),
		EndDate:   api.NewDate(2026, time.March, 6),
	}
	if !taskOnDay(spanning, day(3)) || !taskOnDay(spanning, day(5)) || !taskOnDay(spanning, day(6)) {
		t.Fatalf("expected spanning task on every day in range")
	}
	if taskOnDay(spanning, day(2)) || taskOnDay(spanning, day(7)) {
		t.Fatalf("expected spanning task outside its range to be excluded")
	}

	deadlineOnly := api.Task{EndDate: api.NewDate(2026, time.March, 10)}
	if !taskOnDay(deadlineOnly, day(10)) || taskOnDay(deadlineOnly, day(9)) {
		t.Fatalf("expected deadline-only task pinned to its end date")
	}

	startOnly := api.Task{StartDate: api.NewDate(2026, time.March, 12)}
	if !taskOnDay(startOnly, day(12)) || taskOnDay(startOnly, day(13)) {
		t.Fatalf("expected start-only task pinned to its start date")
	}

	if taskOnDay(api.Task{}, day(1)) {
		t.Fatalf("expected undated task off the calendar")
	}
}

func TestCalendarHidesDoneByDefault(t *testing.T) {
	view := newCalendarView(nil)
	view.year, view.month = 2026, time.April
	view.tasks = []api.Task{
		{ID: 1, Title: "Pour foundation", Status: api.TaskStatusTodo, StartDate: api.NewDate(2026, time.April, 2)},
		{ID: 2, Title: "Sign-off", Status: api.TaskStatusDone, StartDate: api.NewDate(2026, time.April, 2)},
	}
	day := time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)

	visible := view.visibleOn(day)
	if len(visible) != 1 || visible[0].ID != 1 {
		t.Fatalf("expected only the todo task visible, got %+v", visible)
	}

	view.toggleStatus(api.TaskStatusDone)
	if got := len(view.visibleOn(day)); got != 2 {
		t.Fatalf("expected both tasks after toggling done on, got %d", got)
	}

	view.toggleStatus(api.TaskStatusTodo)
	visible = view.visibleOn(day)
	if len(visible) != 1 || visible[0].ID != 2 {
		t.Fatalf("expected only the done task after hiding todo, got %+v", visible)
	}
}

func TestNextTaskStatusWraps(t *testing.T) {
	cases := map[string]string{
		api.TaskStatusTodo:       api.TaskStatusInProgress,
		api.TaskStatusInProgress: api.TaskStatusReview,
		api.TaskStatusReview:     api.TaskStatusDone,
		api.TaskStatusDone:       api.TaskStatusTodo,
		"bogus":                  api.TaskStatusTodo,
	}
	for from, want := range cases {
		if got := nextTaskStatus(from); got != want {
			t.Fatalf("nextTaskStatus(%s) = %s, want %s", from, got, want)
		}
	}
}
