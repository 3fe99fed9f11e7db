package resource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lonhq/lonboard/internal/api"
)

const (
	taskListPrefix     = "tasks:list:"
	taskCalendarPrefix = "tasks:calendar:"
	taskGetPrefix      = "tasks:get:"
)

// TaskStore caches task reads and invalidates them after mutations.
type TaskStore struct {
	service *api.TaskService
	cache   *cache
}

func taskListKey(filter api.TaskFilter) string {
	return fmt.Sprintf("%sq=%s&project=%d&after=%s&before=%s",
		taskListPrefix, filter.Search, filter.ProjectID, filter.StartDateFrom, filter.EndDateTo)
}

func taskCalendarKey(window api.CalendarRange) string {
	return fmt.Sprintf("%s%s..%s@%d", taskCalendarPrefix, window.Start, window.End, window.ProjectID)
}

func taskGetKey(id int) string {
	return fmt.Sprintf("%s%d", taskGetPrefix, id)
}

// List returns the cached collection for the filter, fetching on a miss.
func (s *TaskStore) List(ctx context.Context, filter api.TaskFilter) ([]api.Task, error) {
	key := taskListKey(filter)
	if cached, ok := s.cache.get(key); ok {
		return cached.([]api.Task), nil
	}
	tasks, err := s.service.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, tasks)
	return tasks, nil
}

// Calendar returns the cached window feed, fetching on a miss.
func (s *TaskStore) Calendar(ctx context.Context, window api.CalendarRange) ([]api.Task, error) {
	key := taskCalendarKey(window)
	if cached, ok := s.cache.get(key); ok {
		return cached.([]api.Task), nil
	}
	tasks, err := s.service.Calendar(ctx, window)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, tasks)
	return tasks, nil
}

// Get returns one task. An absent id never fetches.
func (s *TaskStore) Get(ctx context.Context, id int) (api.Task, error) {
	if id <= 0 {
		return api.Task{}, &api.Error{Kind: api.KindNotFound, Status: http.StatusNotFound, Detail: "no task selected"}
	}
	key := taskGetKey(id)
	if cached, ok := s.cache.get(key); ok {
		return cached.(api.Task), nil
	}
	task, err := s.service.Get(ctx, id)
	if err != nil {
		return api.Task{}, err
	}
	s.cache.put(key, task)
	return task, nil
}

// Create adds a task and invalidates all list and calendar variants.
func (s *TaskStore) Create(ctx context.Context, payload api.TaskPayload) (api.Task, error) {
	task, err := s.service.Create(ctx, payload)
	if err != nil {
		return api.Task{}, err
	}
	s.invalidateCollections()
	return task, nil
}

// Update rewrites a task and invalidates its entry plus the collections.
func (s *TaskStore) Update(ctx context.Context, id int, payload api.TaskPayload) (api.Task, error) {
	task, err := s.service.Update(ctx, id, payload)
	if err != nil {
		return api.Task{}, err
	}
	s.invalidateCollections()
	s.cache.drop(taskGetKey(id))
	return task, nil
}

// ChangeStatus moves a task through its workflow.
func (s *TaskStore) ChangeStatus(ctx context.Context, id int, status string) (api.Task, error) {
	task, err := s.service.ChangeStatus(ctx, id, status)
	if err != nil {
		return api.Task{}, err
	}
	s.invalidateCollections()
	s.cache.drop(taskGetKey(id))
	return task, nil
}

// Remove deletes a task and invalidates its entry plus the collections.
func (s *TaskStore) Remove(ctx context.Context, id int) error {
	if err := s.service.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCollections()
	s.cache.drop(taskGetKey(id))
	return nil
}

// Invalidate forces the next read to refetch.
func (s *TaskStore) Invalidate() {
	s.invalidateCollections()
	s.cache.dropPrefix(taskGetPrefix)
}

func (s *TaskStore) invalidateCollections() {
	s.cache.dropPrefix(taskListPrefix)
	s.cache.dropPrefix(taskCalendarPrefix)
}
