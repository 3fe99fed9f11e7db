package resource

import (
	"github.com/lonhq/lonboard/internal/api"
)

// Store bundles the per-entity caches over one API client. Views read and
// mutate through it; they never talk to the services directly.
type Store struct {
	Projects *ProjectStore
	Tasks    *TaskStore
	Users    *UserStore
	Clients  *ClientStore

	cache *cache
}

// NewStore builds the resource layer over the given client.
func NewStore(client *api.Client) *Store {
	c := newCache()
	return &Store{
		Projects: &ProjectStore{service: client.Projects(), cache: c},
		Tasks:    &TaskStore{service: client.Tasks(), cache: c},
		Users:    &UserStore{service: client.Users(), cache: c},
		Clients:  &ClientStore{service: client.Clients(), cache: c},
		cache:    c,
	}
}

// Reset drops everything cached, used on logout so the next session never
// sees another account's data.
func (s *Store) Reset() {
	s.cache.clear()
}
