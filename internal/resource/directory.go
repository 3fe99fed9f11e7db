package resource

import (
	"context"

	"github.com/lonhq/lonboard/internal/api"
)

const (
	userListKey   = "users:list"
	clientListKey = "clients:list"
)

// UserStore caches the account directory used by assignee and team pickers.
type UserStore struct {
	service *api.UserService
	cache   *cache
}

// List returns all accounts, fetching once per cache generation.
func (s *UserStore) List(ctx context.Context) ([]api.User, error) {
	if cached, ok := s.cache.get(userListKey); ok {
		return cached.([]api.User), nil
	}
	users, err := s.service.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.put(userListKey, users)
	return users, nil
}

// Invalidate forces the next read to refetch.
func (s *UserStore) Invalidate() {
	s.cache.drop(userListKey)
}

// ClientStore caches the customer directory.
type ClientStore struct {
	service *api.ClientService
	cache   *cache
}

// List returns all customers, fetching once per cache generation.
func (s *ClientStore) List(ctx context.Context) ([]api.Customer, error) {
	if cached, ok := s.cache.get(clientListKey); ok {
		return cached.([]api.Customer), nil
	}
	clients, err := s.service.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.put(clientListKey, clients)
	return clients, nil
}

// Invalidate forces the next read to refetch.
func (s *ClientStore) Invalidate() {
	s.cache.drop(clientListKey)
}
