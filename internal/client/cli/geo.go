package cli

import (
	"context"

	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
)

// geoBackend is what the REPL needs from the device location layer: the
// coordinator's platform and provider, a way to move the simulated device
// and the stream of entered regions.
type geoBackend interface {
	geofence.Platform
	geofence.Provider
	MoveTo(ctx context.Context, lat, lon float64) ([]string, error)
	Watch(ctx context.Context) (<-chan string, error)
	Close() error
}

// localGeo runs the simulator in-process when no daemon address is set.
type localGeo struct {
	*geofence.Simulator
}

func newLocalGeo() *localGeo {
	return &localGeo{Simulator: geofence.NewSimulator()}
}

func (l *localGeo) MoveTo(_ context.Context, lat, lon float64) ([]string, error) {
	return l.Simulator.MoveTo(lat, lon), nil
}

func (l *localGeo) Watch(ctx context.Context) (<-chan string, error) {
	events, cancel := l.Subscribe(16)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return events, nil
}

func (l *localGeo) Close() error { return nil }

var (
	_ geoBackend = (*localGeo)(nil)
	_ geoBackend = (*geofence.GRPCClient)(nil)
)
