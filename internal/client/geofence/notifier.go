package geofence

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
)

// LogNotifier records entered reminders in the log.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, r models.Reminder) error {
	n.log.Info(ctx, "reminder triggered", "id", r.ID, "title", models.Deref(r.Title))
	return nil
}

// WriterNotifier prints a notification line followed by the reminder
// detail view.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(ctx context.Context, r models.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.w, "\n>>> You are near %s\n%s", models.Deref(r.Location), r.Detail())
	return err
}

// Notifiers fans a notification out to every member, returning the first error.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, r models.Reminder) error {
	var first error
	for _, n := range ns {
		if err := n.Notify(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
