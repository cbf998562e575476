// Package savereminder holds the view-model shared by the reminder edit
// screen and its location picker.
package savereminder

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
	"github.com/dmitrijs2005/geokeeper/internal/client/livedata"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/google/uuid"
)

// Geofencer arms a region for a reminder before it is saved.
type Geofencer interface {
	Arm(ctx context.Context, r models.Reminder) error
}

// ViewModel owns the draft. Both screens hold the same instance; the edit
// screen calls OnClear when it is torn down.
type ViewModel struct {
	Title       *livedata.Cell[*string]
	Description *livedata.Cell[*string]
	Location    *livedata.Cell[*string]
	Latitude    *livedata.Cell[*float64]
	Longitude   *livedata.Cell[*float64]
	Loading     *livedata.Cell[bool]

	Toast        *livedata.Event[models.Message]
	Error        *livedata.Event[models.Message]
	NavigateBack *livedata.Event[struct{}]

	repo  services.ReminderRepository
	geo   Geofencer
	scope *livedata.Scope
	log   logging.Logger

	mu      sync.Mutex
	draftID string
}

func NewViewModel(repo services.ReminderRepository, geo Geofencer, d livedata.Dispatcher, log logging.Logger) *ViewModel {
	if log == nil {
		log = logging.Nop()
	}
	return &ViewModel{
		Title:        livedata.NewCell[*string](nil),
		Description:  livedata.NewCell[*string](nil),
		Location:     livedata.NewCell[*string](nil),
		Latitude:     livedata.NewCell[*float64](nil),
		Longitude:    livedata.NewCell[*float64](nil),
		Loading:      livedata.NewCell(false),
		Toast:        livedata.NewEvent[models.Message](),
		Error:        livedata.NewEvent[models.Message](),
		NavigateBack: livedata.NewEvent[struct{}](),
		repo:         repo,
		geo:          geo,
		scope:        livedata.NewScope(context.Background(), d),
		log:          log.With("component", "save_reminder"),
	}
}

// ValidateEnteredData reports whether r may be persisted. On failure the
// matching message is emitted on Error. The store is never touched.
func (vm *ViewModel) ValidateEnteredData(r models.Reminder) bool {
	msg, failed := models.ValidationMessage(models.Validate(r))
	if failed {
		vm.Error.Emit(msg)
		return false
	}
	return true
}

// SaveReminder persists r. On success a toast and a navigate-back command
// are emitted; a store fault is surfaced as MsgSaveFailed and the screen
// stays put so the user can retry.
func (vm *ViewModel) SaveReminder(r models.Reminder) {
	if !vm.scope.Active() {
		return
	}
	vm.Loading.Set(true)
	vm.scope.Launch(func(ctx context.Context) {
		vm.save(ctx, r)
	})
}

func (vm *ViewModel) save(ctx context.Context, r models.Reminder) {
	err := vm.repo.SaveReminder(ctx, r)

	vm.scope.Do(func() {
		vm.Loading.Set(false)
		if err != nil {
			vm.log.Error(ctx, "save failed", "id", r.ID, "error", err)
			vm.Error.Emit(models.MsgSaveFailed)
			return
		}
		vm.Toast.Emit(models.MsgReminderSaved)
		vm.NavigateBack.Emit(struct{}{})
	})
}

// Submit validates the current draft, arms its geofence and saves it. It
// reports whether validation passed and the work was started; a closed
// view-model reports false. The rest runs in the dispatcher. A
// geofence failure is surfaced on Error and nothing is saved.
func (vm *ViewModel) Submit() bool {
	if !vm.scope.Active() {
		return false
	}
	r := vm.Draft()
	if !vm.ValidateEnteredData(r) {
		return false
	}

	vm.Loading.Set(true)
	vm.scope.Launch(func(ctx context.Context) {
		if err := vm.geo.Arm(ctx, r); err != nil {
			vm.log.Warn(ctx, "geofence not armed, reminder not saved", "id", r.ID, "error", err)
			vm.scope.Do(func() {
				vm.Loading.Set(false)
				vm.Error.Emit(geofence.MessageFor(err))
			})
			return
		}
		vm.save(ctx, r)
	})
	return true
}

// Draft builds a reminder from the current cells. The id is allocated on
// first use and kept until OnClear, so a retried submit updates the same
// record.
func (vm *ViewModel) Draft() models.Reminder {
	vm.mu.Lock()
	if vm.draftID == "" {
		vm.draftID = uuid.NewString()
	}
	id := vm.draftID
	vm.mu.Unlock()

	return models.Reminder{
		ID:          id,
		Title:       vm.Title.Get(),
		Description: vm.Description.Get(),
		Location:    vm.Location.Get(),
		Latitude:    vm.Latitude.Get(),
		Longitude:   vm.Longitude.Get(),
	}
}

// Edit loads an existing reminder into the draft.
func (vm *ViewModel) Edit(r models.Reminder) {
	vm.mu.Lock()
	vm.draftID = r.ID
	vm.mu.Unlock()

	vm.Title.Set(r.Title)
	vm.Description.Set(r.Description)
	vm.Location.Set(r.Location)
	vm.Latitude.Set(r.Latitude)
	vm.Longitude.Set(r.Longitude)
}

// SelectLocation is called by the location picker. It fills the location
// part of the draft and sends the picker back to the edit screen.
func (vm *ViewModel) SelectLocation(name string, lat, lon float64) {
	vm.Location.Set(models.OptionalString(name))
	vm.Latitude.Set(&lat)
	vm.Longitude.Set(&lon)
	vm.NavigateBack.Emit(struct{}{})
}

// OnClear resets every draft field.
func (vm *ViewModel) OnClear() {
	vm.mu.Lock()
	vm.draftID = ""
	vm.mu.Unlock()

	vm.Title.Set(nil)
	vm.Description.Set(nil)
	vm.Location.Set(nil)
	vm.Latitude.Set(nil)
	vm.Longitude.Set(nil)
}

// Close detaches pending work; later results are dropped.
func (vm *ViewModel) Close() {
	vm.scope.Close()
}
