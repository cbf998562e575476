package reminderslist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/geokeeper/internal/client/livedata"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/reminders"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(n int) *reminders.MemoryStore {
	items := make([]models.Reminder, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, models.Reminder{
			ID:          fmt.Sprintf("%d", i),
			Title:       models.Ptr(fmt.Sprintf("title%d", i)),
			Description: models.Ptr(fmt.Sprintf("description%d", i)),
			Location:    models.Ptr(fmt.Sprintf("location%d", i)),
			Latitude:    models.Ptr(float64(i)),
			Longitude:   models.Ptr(float64(i)),
		})
	}
	return reminders.NewMemoryStore(items...)
}

func newVM(t *testing.T, store reminders.Store, auth services.AuthService) (*ViewModel, *livedata.ManualDispatcher) {
	t.Helper()
	d := livedata.NewManualDispatcher()
	vm := NewViewModel(services.NewReminderRepository(store, logging.Nop()), auth, d, logging.Nop())
	t.Cleanup(vm.Close)
	return vm, d
}

func TestLoadReminders_Loaded(t *testing.T) {
	vm, _ := newVM(t, seeded(10), nil)

	vm.LoadReminders()

	items := vm.Items.Get()
	require.Len(t, items, 10)
	assert.Equal(t, "title2", *items[1].Title)
	assert.False(t, vm.Empty.Get())
	assert.False(t, vm.Loading.Get())
	assert.False(t, vm.Error.Pending())
}

func TestLoadReminders_Empty(t *testing.T) {
	vm, _ := newVM(t, reminders.NewMemoryStore(), nil)

	vm.LoadReminders()

	assert.Empty(t, vm.Items.Get())
	assert.True(t, vm.Empty.Get())
}

func TestLoadReminders_FaultSetsEmptyAndEmitsOnce(t *testing.T) {
	store := seeded(3)
	store.Fail(errors.New("Error"))
	vm, _ := newVM(t, store, nil)

	vm.LoadReminders()

	assert.True(t, vm.Empty.Get())
	assert.Empty(t, vm.Items.Get())

	msg, ok := vm.Error.Consume()
	require.True(t, ok)
	assert.Equal(t, "Error", msg)

	_, ok = vm.Error.Consume()
	assert.False(t, ok, "error message must not be replayed")
}

func TestLoadReminders_LoadingTransitions(t *testing.T) {
	vm, d := newVM(t, seeded(2), nil)

	var seen []bool
	vm.Loading.Observe(func(v bool) { seen = append(seen, v) })

	d.Pause()
	vm.LoadReminders()
	assert.True(t, vm.Loading.Get(), "loading while the repository call is pending")
	assert.Empty(t, vm.Items.Get())

	d.Resume()
	assert.False(t, vm.Loading.Get())
	assert.Len(t, vm.Items.Get(), 2)
	assert.Equal(t, []bool{false, true, false}, seen)
}

func TestLoadReminders_OverlappingKeepsLoadingUntilLast(t *testing.T) {
	vm, d := newVM(t, seeded(2), nil)

	d.Pause()
	vm.LoadReminders()
	vm.LoadReminders()
	require.Equal(t, 2, d.Pending())

	d.RunPending()
	assert.False(t, vm.Loading.Get())
	assert.Len(t, vm.Items.Get(), 2)
}

type blockingRepo struct {
	services.ReminderRepository
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *blockingRepo) ListReminders(ctx context.Context) result.Result[[]models.Reminder] {
	r.calls.Add(1)
	r.once.Do(func() { close(r.entered) })
	<-r.release
	return r.ReminderRepository.ListReminders(ctx)
}

func TestLoadReminders_ConcurrentLoadsShareCall(t *testing.T) {
	repo := &blockingRepo{
		ReminderRepository: services.NewReminderRepository(seeded(4), logging.Nop()),
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	d := livedata.NewGoDispatcher()
	vm := NewViewModel(repo, nil, d, logging.Nop())
	defer vm.Close()
	registered := make(chan struct{}, 2)
	vm.joined = func() { registered <- struct{}{} }

	vm.LoadReminders()
	<-repo.entered
	<-registered
	vm.LoadReminders()
	<-registered
	assert.True(t, vm.Loading.Get())

	close(repo.release)
	d.Wait()

	assert.Equal(t, int32(1), repo.calls.Load())
	assert.False(t, vm.Loading.Get())
	assert.Len(t, vm.Items.Get(), 4)
}

func TestLoadReminders_LoadingEndsFalseUnderConcurrency(t *testing.T) {
	d := livedata.NewGoDispatcher()
	vm := NewViewModel(services.NewReminderRepository(seeded(3), logging.Nop()), nil, d, logging.Nop())
	defer vm.Close()

	var (
		mu   sync.Mutex
		last bool
	)
	vm.Loading.Observe(func(v bool) {
		mu.Lock()
		last = v
		mu.Unlock()
	})

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				vm.LoadReminders()
			}()
		}
		wg.Wait()
		d.Wait()

		require.False(t, vm.Loading.Get(), "round %d", round)
		mu.Lock()
		require.False(t, last, "round %d", round)
		mu.Unlock()
	}
	assert.Len(t, vm.Items.Get(), 3)
}

func TestClose_DropsPendingResult(t *testing.T) {
	vm, d := newVM(t, seeded(5), nil)

	d.Pause()
	vm.LoadReminders()
	vm.Close()
	d.Resume()

	assert.Empty(t, vm.Items.Get())
	assert.True(t, vm.Loading.Get(), "state is frozen after close")

	vm.LoadReminders()
	assert.Zero(t, d.Pending())
}

type stubAuth struct {
	services.AuthService
	state models.AuthenticationState
}

func (s stubAuth) State(context.Context) models.AuthenticationState { return s.state }

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name  string
		auth  services.AuthService
		want  bool
		state models.AuthenticationState
	}{
		{name: "no auth configured", auth: nil, want: true, state: models.Authenticated},
		{name: "authenticated", auth: stubAuth{state: models.Authenticated}, want: true, state: models.Authenticated},
		{name: "unauthenticated", auth: stubAuth{state: models.Unauthenticated}, want: false, state: models.Unauthenticated},
		{name: "unknown", auth: stubAuth{state: models.Unknown}, want: false, state: models.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, _ := newVM(t, seeded(1), tt.auth)
			assert.Equal(t, tt.want, vm.Authorize(context.Background()))
			assert.Equal(t, tt.state, vm.Auth.Get())
		})
	}
}
