package api

import "context"

// ClientService wraps the /api/clients/ endpoints. Customers are read-only
// from the dashboard; they are created through the back office.
type ClientService struct {
	client *Client
}

// List fetches all customers, used to populate the project form's client
// picker.
func (s *ClientService) List(ctx context.Context) ([]Customer, error) {
	var clients []Customer
	if err := s.client.Get(ctx, "/api/clients/", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}
