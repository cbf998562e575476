package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/reminders"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
)

// NotFoundMessage is the Error payload for a lookup of an unknown id.
const NotFoundMessage = "Reminder not found!"

// ReminderRepository mediates between view-models and the Entity Store.
//
// Contract:
//   - ListReminders and GetReminder never return a Go error; store faults
//     become result.Error carrying the fault message.
//   - SaveReminder and DeleteAllReminders return store faults to the caller.
//   - No caching: every call reaches the store.
type ReminderRepository interface {
	ListReminders(ctx context.Context) result.Result[[]models.Reminder]
	GetReminder(ctx context.Context, id string) result.Result[models.Reminder]
	SaveReminder(ctx context.Context, r models.Reminder) error
	DeleteAllReminders(ctx context.Context) error
}

type reminderRepository struct {
	store reminders.Store
	log   logging.Logger
}

// NewReminderRepository constructs a ReminderRepository over store.
func NewReminderRepository(store reminders.Store, log logging.Logger) ReminderRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &reminderRepository{store: store, log: log.With("component", "repository")}
}

func (r *reminderRepository) ListReminders(ctx context.Context) result.Result[[]models.Reminder] {
	items, err := r.store.GetAll(ctx)
	if err != nil {
		r.log.Warn(ctx, "list reminders failed", "error", err)
		return result.Fail[[]models.Reminder](err.Error())
	}
	if items == nil {
		items = []models.Reminder{}
	}
	r.log.Debug(ctx, "listed reminders", "count", len(items))
	return result.Ok(items)
}

func (r *reminderRepository) GetReminder(ctx context.Context, id string) result.Result[models.Reminder] {
	item, err := r.store.GetByID(ctx, id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		r.log.Debug(ctx, "reminder not found", "id", id)
		return result.Fail[models.Reminder](NotFoundMessage)
	case err != nil:
		r.log.Warn(ctx, "get reminder failed", "id", id, "error", err)
		return result.Fail[models.Reminder](err.Error())
	}
	return result.Ok(*item)
}

func (r *reminderRepository) SaveReminder(ctx context.Context, rem models.Reminder) error {
	if err := r.store.Upsert(ctx, &rem); err != nil {
		r.log.Warn(ctx, "save reminder failed", "id", rem.ID, "error", err)
		return fmt.Errorf("saving error: %w", err)
	}
	r.log.Debug(ctx, "reminder saved", "id", rem.ID)
	return nil
}

func (r *reminderRepository) DeleteAllReminders(ctx context.Context) error {
	if err := r.store.DeleteAll(ctx); err != nil {
		r.log.Warn(ctx, "delete reminders failed", "error", err)
		return fmt.Errorf("delete error: %w", err)
	}
	r.log.Info(ctx, "all reminders deleted")
	return nil
}
