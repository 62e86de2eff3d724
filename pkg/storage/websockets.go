package storage

import "context"

// ConnectionStore defines the interface for dashboard WebSocket connection
// records.
type ConnectionStore interface {
	// AddConnection records a new WebSocket connection.
	AddConnection(ctx context.Context, connectionID string) error

	// RemoveConnection deletes a WebSocket connection record.
	RemoveConnection(ctx context.Context, connectionID string) error

	// GetAllConnections retrieves all live connection IDs.
	GetAllConnections(ctx context.Context) ([]string, error)
}
