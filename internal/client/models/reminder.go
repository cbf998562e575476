// Package models defines the client-side reminder entity and the fixed
// user-facing messages the screens display.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation failures, detected before any I/O.
var (
	ErrMissingTitle    = errors.New("missing title")
	ErrMissingLocation = errors.New("missing location")
)

// Reminder is a titled, described, geolocated record the user wants to be
// notified about on arrival. Nil pointer fields are unset.
type Reminder struct {
	ID          string   `json:"id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// NewReminder returns a draft reminder with a freshly generated id.
func NewReminder(title, description, location *string, lat, lon *float64) Reminder {
	return Reminder{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Location:    location,
		Latitude:    lat,
		Longitude:   lon,
	}
}

// EnsureID assigns a generated id when r has none and returns r.
func (r Reminder) EnsureID() Reminder {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r
}

// HasCoordinates reports whether both latitude and longitude are set.
func (r Reminder) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Validate reports whether r may be persisted. Location is checked before
// title, so a reminder missing both reports ErrMissingLocation.
func Validate(r Reminder) error {
	if isBlank(r.Location) {
		return ErrMissingLocation
	}
	if isBlank(r.Title) {
		return ErrMissingTitle
	}
	return nil
}

func (r Reminder) String() string {
	s := fmt.Sprintf("%s  %s @ %s", r.ID, Deref(r.Title), Deref(r.Location))
	if r.HasCoordinates() {
		s += fmt.Sprintf(" (%.5f, %.5f)", *r.Latitude, *r.Longitude)
	}
	return s
}

// Detail renders the read-only description view of r.
func (r Reminder) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:       %s\n", Deref(r.Title))
	fmt.Fprintf(&b, "Description: %s\n", Deref(r.Description))
	fmt.Fprintf(&b, "Location:    %s\n", Deref(r.Location))
	if r.HasCoordinates() {
		fmt.Fprintf(&b, "Coordinates: %.5f, %.5f\n", *r.Latitude, *r.Longitude)
	}
	return b.String()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// OptionalString maps "" to nil, which is how the screens represent unset text.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
