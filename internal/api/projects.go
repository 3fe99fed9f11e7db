package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ProjectService wraps the /api/projects/ endpoints.
type ProjectService struct {
	client *Client
}

// ProjectFilter narrows List results. Zero value means no filtering.
type ProjectFilter struct {
	// Search matches the backend's ?q= free-text filter.
	Search string
	Status string
}

func (f ProjectFilter) query() url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		values.Set("q", s)
	}
	if f.Status != "" {
		values.Set("status", f.Status)
	}
	return values
}

// List fetches the project collection.
func (s *ProjectService) List(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	var projects []Project
	if err := s.client.Get(ctx, "/api/projects/", filter.query(), &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Managed fetches only the projects managed by the session user.
func (s *ProjectService) Managed(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := s.client.Get(ctx, "/api/projects/managed/", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get fetches one project by id.
func (s *ProjectService) Get(ctx context.Context, id int) (Project, error) {
	var project Project
	if err := s.client.Get(ctx, fmt.Sprintf("/api/projects/%d/", id), nil, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Create adds a project.
func (s *ProjectService) Create(ctx context.Context, payload ProjectPayload) (Project, error) {
	if err := payload.Validate(); err != nil {
		return Project{}, err
	}
	var project Project
	if err := s.client.Post(ctx, "/api/projects/", payload, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Update replaces a project's writable fields.
func (s *ProjectService) Update(ctx context.Context, id int, payload ProjectPayload) (Project, error) {
	if err := payload.Validate(); err != nil {
		return Project{}, err
	}
	var project Project
	if err := s.client.Put(ctx, fmt.Sprintf("/api/projects/%d/", id), payload, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// ChangeStatus issues a status-only PATCH, the call behind a kanban move.
func (s *ProjectService) ChangeStatus(ctx context.Context, id int, status string) (Project, error) {
	if !ValidProjectStatus(status) {
		return Project{}, fmt.Errorf("api: unknown project status %q", status)
	}
	body := map[string]string{"status": status}
	var project Project
	if err := s.client.Patch(ctx, fmt.Sprintf("/api/projects/%d/", id), body, &project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/projects/%d/", id))
}
