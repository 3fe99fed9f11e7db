package resource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lonhq/lonboard/internal/api"
)

const (
	projectListPrefix = "projects:list:"
	projectGetPrefix  = "projects:get:"
)

// ProjectStore caches project reads and invalidates them after mutations.
type ProjectStore struct {
	service *api.ProjectService
	cache   *cache
}

func projectListKey(filter api.ProjectFilter) string {
	return fmt.Sprintf("%sq=%s&status=%s", projectListPrefix, filter.Search, filter.Status)
}

func projectManagedKey() string {
	return projectListPrefix + "managed"
}

func projectGetKey(id int) string {
	return fmt.Sprintf("%s%d", projectGetPrefix, id)
}

// List returns the cached collection for the filter, fetching on a miss.
func (s *ProjectStore) List(ctx context.Context, filter api.ProjectFilter) ([]api.Project, error) {
	key := projectListKey(filter)
	if cached, ok := s.cache.get(key); ok {
		return cached.([]api.Project), nil
	}
	projects, err := s.service.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, projects)
	return projects, nil
}

// Managed returns the projects managed by the session user.
func (s *ProjectStore) Managed(ctx context.Context) ([]api.Project, error) {
	key := projectManagedKey()
	if cached, ok := s.cache.get(key); ok {
		return cached.([]api.Project), nil
	}
	projects, err := s.service.Managed(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, projects)
	return projects, nil
}

// Get returns one project. An absent id never fetches.
func (s *ProjectStore) Get(ctx context.Context, id int) (api.Project, error) {
	if id <= 0 {
		return api.Project{}, &api.Error{Kind: api.KindNotFound, Status: http.StatusNotFound, Detail: "no project selected"}
	}
	key := projectGetKey(id)
	if cached, ok := s.cache.get(key); ok {
		return cached.(api.Project), nil
	}
	project, err := s.service.Get(ctx, id)
	if err != nil {
		return api.Project{}, err
	}
	s.cache.put(key, project)
	return project, nil
}

// Create adds a project and invalidates all list variants.
func (s *ProjectStore) Create(ctx context.Context, payload api.ProjectPayload) (api.Project, error) {
	project, err := s.service.Create(ctx, payload)
	if err != nil {
		return api.Project{}, err
	}
	s.cache.dropPrefix(projectListPrefix)
	return project, nil
}

// Update rewrites a project and invalidates its entry plus all lists.
func (s *ProjectStore) Update(ctx context.Context, id int, payload api.ProjectPayload) (api.Project, error) {
	project, err := s.service.Update(ctx, id, payload)
	if err != nil {
		return api.Project{}, err
	}
	s.cache.dropPrefix(projectListPrefix)
	s.cache.drop(projectGetKey(id))
	return project, nil
}

// ChangeStatus issues the status-only PATCH and invalidates the affected
// keys. The kanban view applies its own optimistic patch before calling this.
func (s *ProjectStore) ChangeStatus(ctx context.Context, id int, status string) (api.Project, error) {
	project, err := s.service.ChangeStatus(ctx, id, status)
	if err != nil {
		return api.Project{}, err
	}
	s.cache.dropPrefix(projectListPrefix)
	s.cache.drop(projectGetKey(id))
	return project, nil
}

// Remove deletes a project and invalidates its entry plus all lists.
func (s *ProjectStore) Remove(ctx context.Context, id int) error {
	if err := s.service.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.dropPrefix(projectListPrefix)
	s.cache.drop(projectGetKey(id))
	return nil
}

// Invalidate forces the next read to refetch, used for explicit refresh and
// for the kanban rollback path.
func (s *ProjectStore) Invalidate() {
	s.cache.dropPrefix(projectListPrefix)
	s.cache.dropPrefix(projectGetPrefix)
}
