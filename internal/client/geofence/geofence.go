package geofence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
)

const (
	DefaultRadius = 100.0
	// NeverExpire keeps a region registered until it is removed.
	NeverExpire time.Duration = 0
)

var (
	ErrPermissionDenied   = errors.New("location permission denied")
	ErrLocationDisabled   = errors.New("location services disabled")
	ErrMissingCoordinates = errors.New("reminder has no coordinates")
	ErrInvalidRegion      = errors.New("invalid region")
)

// Region is a circular monitored area keyed by reminder id.
type Region struct {
	ID         string
	Latitude   float64
	Longitude  float64
	Radius     float64
	Expiration time.Duration
}

func (r Region) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRegion)
	case r.Radius <= 0:
		return fmt.Errorf("%w: radius %v", ErrInvalidRegion, r.Radius)
	case r.Latitude < -90 || r.Latitude > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidRegion, r.Latitude)
	case r.Longitude < -180 || r.Longitude > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidRegion, r.Longitude)
	case r.Expiration < 0:
		return fmt.Errorf("%w: expiration %v", ErrInvalidRegion, r.Expiration)
	}
	return nil
}

// Provider registers and removes monitored regions.
type Provider interface {
	Register(ctx context.Context, r Region) error
	Unregister(ctx context.Context, ids ...string) error
}

// Platform answers permission and location-settings questions. The Request
// and Resolve calls prompt the user once and report the outcome.
type Platform interface {
	PermissionGranted(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	LocationEnabled(ctx context.Context) (bool, error)
	ResolveLocationSettings(ctx context.Context) (bool, error)
}

// Notifier shows a reminder whose region was entered.
type Notifier interface {
	Notify(ctx context.Context, r models.Reminder) error
}

// RegistrationError reports a region the provider refused.
type RegistrationError struct {
	ID  string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("geofence %s: registration failed: %v", e.ID, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// MessageFor maps an Arm failure onto its user-facing message.
func MessageFor(err error) models.Message {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return models.MsgPermissionDenied
	case errors.Is(err, ErrLocationDisabled):
		return models.MsgLocationDisabled
	case errors.Is(err, ErrMissingCoordinates):
		return models.MsgMissingCoordinates
	default:
		return models.MsgGeofenceFailed
	}
}
