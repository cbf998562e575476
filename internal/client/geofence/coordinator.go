package geofence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
)

type Options struct {
	Radius     float64
	Expiration time.Duration
}

type Coordinator struct {
	platform Platform
	provider Provider
	repo     services.ReminderRepository
	notifier Notifier
	opts     Options
	log      logging.Logger
}

func NewCoordinator(platform Platform, provider Provider, repo services.ReminderRepository,
	notifier Notifier, opts Options, log logging.Logger) *Coordinator {
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{
		platform: platform,
		provider: provider,
		repo:     repo,
		notifier: notifier,
		opts:     opts,
		log:      log.With("component", "geofence"),
	}
}

// Arm makes sure a region is registered for r: permission first, then
// location settings, then registration.
func (c *Coordinator) Arm(ctx context.Context, r models.Reminder) error {
	if !r.HasCoordinates() {
		return ErrMissingCoordinates
	}

	if err := c.ensurePermission(ctx); err != nil {
		return err
	}
	if err := c.ensureLocation(ctx); err != nil {
		return err
	}

	region := Region{
		ID:         r.ID,
		Latitude:   *r.Latitude,
		Longitude:  *r.Longitude,
		Radius:     c.opts.Radius,
		Expiration: c.opts.Expiration,
	}
	if err := c.provider.Register(ctx, region); err != nil {
		c.log.Warn(ctx, "region registration failed", "id", r.ID, "error", err)
		return &RegistrationError{ID: r.ID, Err: err}
	}

	c.log.Info(ctx, "region registered", "id", r.ID, "radius", region.Radius)
	return nil
}

func (c *Coordinator) ensurePermission(ctx context.Context) error {
	ok, err := c.platform.PermissionGranted(ctx)
	if err != nil {
		return fmt.Errorf("permission check: %w", err)
	}
	if ok {
		return nil
	}

	ok, err = c.platform.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("permission request: %w", err)
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (c *Coordinator) ensureLocation(ctx context.Context) error {
	ok, err := c.platform.LocationEnabled(ctx)
	if err != nil {
		return fmt.Errorf("location settings check: %w", err)
	}
	if ok {
		return nil
	}

	ok, err = c.platform.ResolveLocationSettings(ctx)
	if err != nil {
		return fmt.Errorf("location settings resolution: %w", err)
	}
	if !ok {
		return ErrLocationDisabled
	}
	return nil
}

// HandleEnter loads the reminder behind region id and notifies about it.
func (c *Coordinator) HandleEnter(ctx context.Context, id string) error {
	res := c.repo.GetReminder(ctx, id)

	return result.Match(res,
		func(r models.Reminder) error {
			c.log.Info(ctx, "region entered", "id", id)
			return c.notifier.Notify(ctx, r)
		},
		func(msg string) error {
			c.log.Warn(ctx, "entered region without reminder", "id", id, "message", msg)
			return errors.New(msg)
		})
}

// Listen calls HandleEnter for every id received until events is closed or
// ctx is done. Failures are logged and do not stop the loop.
func (c *Coordinator) Listen(ctx context.Context, events <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			if err := c.HandleEnter(ctx, id); err != nil {
				c.log.Error(ctx, "enter handling failed", "id", id, "error", err)
			}
		}
	}
}

// DisarmAll removes the regions of the given reminders.
func (c *Coordinator) DisarmAll(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.provider.Unregister(ctx, ids...); err != nil {
		return fmt.Errorf("unregister regions: %w", err)
	}
	c.log.Info(ctx, "regions removed", "count", len(ids))
	return nil
}
