package geofence

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startDaemon(t *testing.T, sim *Simulator, serverToken, clientToken string) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	srv := NewGRPCServer("bufnet", sim, serverToken, logging.Nop())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	client, err := Dial("passthrough:///bufnet", clientToken,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return client
}

func TestGRPC_RegisterMoveWatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sim := NewSimulator()
	client := startDaemon(t, sim, "secret", "secret")

	granted, err := client.PermissionGranted(ctx)
	require.NoError(t, err)
	assert.False(t, granted)

	granted, err = client.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, granted)

	enabled, err := client.LocationEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = client.ResolveLocationSettings(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	events, err := client.Watch(ctx)
	require.NoError(t, err)

	region := Region{ID: "r1", Latitude: berlinLat, Longitude: berlinLon, Radius: 100, Expiration: 90 * time.Minute}
	require.NoError(t, client.Register(ctx, region))
	assert.Equal(t, []string{"r1"}, sim.Regions())

	entered, err := client.MoveTo(ctx, berlinLat, berlinLon)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, entered)

	select {
	case id := <-events:
		assert.Equal(t, "r1", id)
	case <-ctx.Done():
		t.Fatal("no enter event received")
	}

	require.NoError(t, client.Unregister(ctx, "r1"))
	assert.Empty(t, sim.Regions())
}

func TestGRPC_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	client := startDaemon(t, NewSimulator(), "", "")

	err := client.Register(ctx, Region{ID: "r1", Latitude: 1, Longitude: 1, Radius: 100})
	require.ErrorIs(t, err, ErrPermissionDenied)

	err = client.Register(ctx, Region{ID: "r1", Radius: -1})
	require.ErrorIs(t, err, ErrInvalidRegion)
}

func TestGRPC_RejectsWrongToken(t *testing.T) {
	ctx := context.Background()
	client := startDaemon(t, NewSimulator(), "secret", "wrong")

	_, err := client.PermissionGranted(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.Watch(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPC_HealthIsPublic(t *testing.T) {
	client := startDaemon(t, NewSimulator(), "secret", "")

	resp, err := healthpb.NewHealthClient(client.Conn()).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestGRPCClient_SatisfiesBoundaries(t *testing.T) {
	var _ Platform = (*GRPCClient)(nil)
	var _ Provider = (*GRPCClient)(nil)
	var _ Platform = (*Simulator)(nil)
	var _ Provider = (*Simulator)(nil)
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", NewSimulator(), "", logging.Nop())
	require.Error(t, srv.Run(context.Background()))
}
