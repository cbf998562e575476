package geofence

import (
	"context"
	"sort"
	"sync"
	"time"
)

type simRegion struct {
	Region
	registeredAt time.Time
	inside       bool
}

func (r simRegion) expired(now time.Time) bool {
	return r.Expiration > 0 && now.Sub(r.registeredAt) >= r.Expiration
}

// Simulator is an in-process Platform and Provider driven by MoveTo.
// Regions registered while the device is already inside them fire an enter
// event immediately.
type Simulator struct {
	mu sync.Mutex

	permission     bool
	grantOnRequest bool
	location       bool
	enableOnPrompt bool
	registerErr    error

	regions     map[string]*simRegion
	lat, lon    float64
	hasPosition bool

	subs    map[int]chan string
	nextSub int
	now     func() time.Time
}

// NewSimulator starts with permission not yet granted but granted on
// request, and location services enabled.
func NewSimulator() *Simulator {
	return &Simulator{
		grantOnRequest: true,
		location:       true,
		enableOnPrompt: true,
		regions:        make(map[string]*simRegion),
		subs:           make(map[int]chan string),
		now:            time.Now,
	}
}

// SetPermission sets the current permission and the answer to the next request.
func (s *Simulator) SetPermission(granted, grantOnRequest bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission, s.grantOnRequest = granted, grantOnRequest
}

// SetLocation sets whether location services are on and whether the
// resolution prompt turns them on.
func (s *Simulator) SetLocation(enabled, enableOnPrompt bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location, s.enableOnPrompt = enabled, enableOnPrompt
}

// FailRegistrations makes Register return err; nil clears it.
func (s *Simulator) FailRegistrations(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerErr = err
}

func (s *Simulator) PermissionGranted(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

func (s *Simulator) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grantOnRequest {
		s.permission = true
	}
	return s.permission, nil
}

func (s *Simulator) LocationEnabled(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, nil
}

func (s *Simulator) ResolveLocationSettings(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enableOnPrompt {
		s.location = true
	}
	return s.location, nil
}

func (s *Simulator) Register(ctx context.Context, r Region) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registerErr != nil {
		return s.registerErr
	}
	if !s.permission {
		return ErrPermissionDenied
	}

	sr := &simRegion{Region: r, registeredAt: s.now()}
	s.regions[r.ID] = sr
	if s.hasPosition && r.Contains(s.lat, s.lon) {
		sr.inside = true
		s.publish(r.ID)
	}
	return nil
}

func (s *Simulator) Unregister(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.regions, id)
	}
	return nil
}

// Regions returns the ids of live regions, sorted.
func (s *Simulator) Regions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropExpired()

	ids := make([]string, 0, len(s.regions))
	for id := range s.regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MoveTo sets the device position and returns the ids of regions entered by
// this move, sorted. Leaving a region re-arms its enter event.
func (s *Simulator) MoveTo(lat, lon float64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lat, s.lon, s.hasPosition = lat, lon, true
	s.dropExpired()

	entered := make([]string, 0)
	for id, r := range s.regions {
		in := r.Contains(lat, lon)
		if in && !r.inside {
			entered = append(entered, id)
		}
		r.inside = in
	}
	sort.Strings(entered)

	for _, id := range entered {
		s.publish(id)
	}
	return entered
}

// Subscribe returns a channel of entered region ids. Events are dropped
// when the buffer is full. The returned func closes the channel.
func (s *Simulator) Subscribe(buffer int) (<-chan string, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan string, buffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Simulator) dropExpired() {
	now := s.now()
	for id, r := range s.regions {
		if r.expired(now) {
			delete(s.regions, id)
		}
	}
}

// publish must be called with s.mu held.
func (s *Simulator) publish(id string) {
	for _, ch := range s.subs {
		select {
		case ch <- id:
		default:
		}
	}
}
