package reminders

import (
	"context"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
)

// Store is the durable keyed storage for reminders.
type Store interface {
	// GetAll returns every record in store iteration order. Never nil on success.
	GetAll(ctx context.Context) ([]models.Reminder, error)

	// GetByID returns the record with the given id or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Reminder, error)

	// Upsert inserts r or replaces the record with the same id.
	Upsert(ctx context.Context, r *models.Reminder) error

	// DeleteAll unconditionally removes every record.
	DeleteAll(ctx context.Context) error
}
