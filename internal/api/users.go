package api

import "context"

// UserService wraps the /api/users/ endpoints. Users are read-only from the
// dashboard's perspective; accounts are managed server-side.
type UserService struct {
	client *Client
}

// List fetches all accounts, used to populate the task form's assignee
// picker.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.Get(ctx, "/api/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
