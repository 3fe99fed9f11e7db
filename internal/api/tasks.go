package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TaskService wraps the /api/tasks/ endpoints.
type TaskService struct {
	client *Client
}

// TaskFilter narrows List results. Zero value means no filtering.
type TaskFilter struct {
	Search        string
	ProjectID     int
	StartDateFrom Date
	EndDateTo     Date
}

func (f TaskFilter) query() url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		values.Set("q", s)
	}
	if f.ProjectID > 0 {
		values.Set("project", strconv.Itoa(f.ProjectID))
	}
	if !f.StartDateFrom.IsZero() {
		values.Set("start_date_after", f.StartDateFrom.String())
	}
	if !f.EndDateTo.IsZero() {
		values.Set("end_date_before", f.EndDateTo.String())
	}
	return values
}

// CalendarRange selects tasks overlapping a date window for the calendar view.
type CalendarRange struct {
	Start     Date
	End       Date
	ProjectID int
}

func (r CalendarRange) query() url.Values {
	values := url.Values{}
	if !r.Start.IsZero() {
		values.Set("start_date", r.Start.String())
	}
	if !r.End.IsZero() {
		values.Set("end_date", r.End.String())
	}
	if r.ProjectID > 0 {
		values.Set("project_id", strconv.Itoa(r.ProjectID))
	}
	return values
}

// List fetches the task collection.
func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]Task, error) {
	var tasks []Task
	if err := s.client.Get(ctx, "/api/tasks/", filter.query(), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Calendar fetches tasks whose date range overlaps the requested window.
func (s *TaskService) Calendar(ctx context.Context, window CalendarRange) ([]Task, error) {
	var tasks []Task
	if err := s.client.Get(ctx, "/api/tasks/calendar/", window.query(), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get fetches one task by id.
func (s *TaskService) Get(ctx context.Context, id int) (Task, error) {
	var task Task
	if err := s.client.Get(ctx, fmt.Sprintf("/api/tasks/%d/", id), nil, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Create adds a task.
func (s *TaskService) Create(ctx context.Context, payload TaskPayload) (Task, error) {
	if err := payload.Validate(); err != nil {
		return Task{}, err
	}
	var task Task
	if err := s.client.Post(ctx, "/api/tasks/", payload, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Update replaces a task's writable fields.
func (s *TaskService) Update(ctx context.Context, id int, payload TaskPayload) (Task, error) {
	if err := payload.Validate(); err != nil {
		return Task{}, err
	}
	var task Task
	if err := s.client.Put(ctx, fmt.Sprintf("/api/tasks/%d/", id), payload, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// ChangeStatus moves a task through its workflow via the dedicated action
// endpoint.
func (s *TaskService) ChangeStatus(ctx context.Context, id int, status string) (Task, error) {
	if !ValidTaskStatus(status) {
		return Task{}, fmt.Errorf("api: unknown task status %q", status)
	}
	body := map[string]string{"status": status}
	var task Task
	if err := s.client.Post(ctx, fmt.Sprintf("/api/tasks/%d/change_status/", id), body, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/tasks/%d/", id))
}
