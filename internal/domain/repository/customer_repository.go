package repository

import "context"

// CustomerDirectory defines the narrow lookup this service needs from the
// customer subsystem.
type CustomerDirectory interface {
	Exists(ctx context.Context, tenantID, customerID string) (bool, error)
}
