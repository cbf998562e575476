// Package reminderslist holds the view-model behind the reminder list screen.
package reminderslist

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/geokeeper/internal/client/livedata"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"golang.org/x/sync/singleflight"
)

const loadKey = "list"

// ViewModel exposes the list screen state. Loads overlapping in time share
// one repository call, and Loading stays true until the last of them is
// applied. Loading observers run with the load counter held and must not
// start another load.
type ViewModel struct {
	Loading *livedata.Cell[bool]
	Items   *livedata.Cell[[]models.Reminder]
	Empty   *livedata.Cell[bool]
	Auth    *livedata.Cell[models.AuthenticationState]
	Error   *livedata.Event[string]

	repo    services.ReminderRepository
	auth    services.AuthService
	scope   *livedata.Scope
	group   singleflight.Group
	log     logging.Logger

	mu      sync.Mutex
	pending int

	// joined, when set, runs once a load is registered with the group.
	joined func()
}

// NewViewModel wires the view-model. auth may be nil, in which case the
// screen is always authorized.
func NewViewModel(repo services.ReminderRepository, auth services.AuthService, d livedata.Dispatcher, log logging.Logger) *ViewModel {
	if log == nil {
		log = logging.Nop()
	}
	return &ViewModel{
		Loading: livedata.NewCell(false),
		Items:   livedata.NewCell([]models.Reminder{}),
		Empty:   livedata.NewCell(false),
		Auth:    livedata.NewCell(models.Unknown),
		Error:   livedata.NewEvent[string](),
		repo:    repo,
		auth:    auth,
		scope:   livedata.NewScope(context.Background(), d),
		log:     log.With("component", "reminders_list"),
	}
}

// LoadReminders refreshes Items from the repository. Loading is set before
// this returns; the rest happens in the dispatcher.
func (vm *ViewModel) LoadReminders() {
	if !vm.scope.Active() {
		return
	}
	vm.mu.Lock()
	vm.pending++
	vm.Loading.Set(true)
	vm.mu.Unlock()

	vm.scope.Launch(func(ctx context.Context) {
		ch := vm.group.DoChan(loadKey, func() (any, error) {
			return vm.repo.ListReminders(ctx), nil
		})
		if vm.joined != nil {
			vm.joined()
		}
		out := <-ch
		res := out.Val.(result.Result[[]models.Reminder])
		if out.Shared {
			vm.log.Debug(ctx, "joined in-flight load")
		}

		vm.scope.Do(func() {
			vm.apply(ctx, res)
			vm.finishLoad()
		})
	})
}

func (vm *ViewModel) finishLoad() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.pending--
	if vm.pending == 0 {
		vm.Loading.Set(false)
	}
}

func (vm *ViewModel) apply(ctx context.Context, res result.Result[[]models.Reminder]) {
	switch r := res.(type) {
	case result.Success[[]models.Reminder]:
		vm.Items.Set(r.Data)
		vm.Empty.Set(len(r.Data) == 0)
	case result.Error[[]models.Reminder]:
		vm.log.Warn(ctx, "load failed", "message", r.Message)
		vm.Items.Set([]models.Reminder{})
		vm.Empty.Set(true)
		vm.Error.Emit(r.Message)
	}
}

// Authorize refreshes Auth and reports whether reminder content may be
// shown. Anything but Authenticated routes the screen to login.
func (vm *ViewModel) Authorize(ctx context.Context) bool {
	state := models.Authenticated
	if vm.auth != nil {
		state = vm.auth.State(ctx)
	}
	vm.Auth.Set(state)
	return state == models.Authenticated
}

// Close detaches pending work; later results are dropped.
func (vm *ViewModel) Close() {
	vm.scope.Close()
}
