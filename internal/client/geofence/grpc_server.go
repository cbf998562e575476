package geofence

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const watchBuffer = 32

// GRPCServer serves a Simulator over gRPC. A non-empty token is required in
// the access_token metadata of every call.
type GRPCServer struct {
	address string
	sim     *Simulator
	token   string
	logger  logging.Logger
}

func NewGRPCServer(address string, sim *Simulator, token string, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address: address,
		sim:     sim,
		token:   token,
		logger:  l.With("module", "geofence_grpc"),
	}
}

// NewServer builds a grpc.Server with the geofence and health services
// registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.accessTokenStreamInterceptor),
	)
	srv.RegisterService(&serviceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping geofence gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting geofence gRPC server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *GRPCServer) authorize(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(accessTokenHeader); len(values) > 0 && values[0] == s.token {
			return nil
		}
	}
	return status.Error(codes.Unauthenticated, "missing or invalid token")
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == healthpb.Health_Check_FullMethodName {
		return handler(ctx, req)
	}
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if info.FullMethod == healthpb.Health_Watch_FullMethodName {
		return handler(srv, ss)
	}
	if err := s.authorize(ss.Context()); err != nil {
		return err
	}
	return handler(srv, ss)
}

func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrInvalidRegion):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	r := regionFromStruct(req)
	if err := s.sim.Register(ctx, r); err != nil {
		s.logger.Warn(ctx, "register rejected", "id", r.ID, "error", err)
		return nil, toStatus(err)
	}
	s.logger.Info(ctx, "region registered", "id", r.ID, "radius", r.Radius)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Unregister(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	ids := idsFromStruct("ids", req)
	if err := s.sim.Unregister(ctx, ids...); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) MoveTo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	entered := s.sim.MoveTo(f["latitude"].GetNumberValue(), f["longitude"].GetNumberValue())
	s.logger.Debug(ctx, "moved", "entered", len(entered))

	resp, err := idsToStruct("entered", entered)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

func (s *GRPCServer) PermissionGranted(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	ok, err := s.sim.PermissionGranted(ctx)
	return wrapperspb.Bool(ok), toStatus(err)
}

func (s *GRPCServer) RequestPermission(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	ok, err := s.sim.RequestPermission(ctx)
	return wrapperspb.Bool(ok), toStatus(err)
}

func (s *GRPCServer) LocationEnabled(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	ok, err := s.sim.LocationEnabled(ctx)
	return wrapperspb.Bool(ok), toStatus(err)
}

func (s *GRPCServer) ResolveLocationSettings(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	ok, err := s.sim.ResolveLocationSettings(ctx)
	return wrapperspb.Bool(ok), toStatus(err)
}

// Watch streams entered region ids. Headers are sent once the subscription
// is live so clients know no event can be missed after that point.
func (s *GRPCServer) Watch(_ *emptypb.Empty, stream grpc.ServerStream) error {
	events, cancel := s.sim.Subscribe(watchBuffer)
	defer cancel()

	if err := stream.SendHeader(metadata.Pairs(subscribedHeader, "true")); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(wrapperspb.String(id)); err != nil {
				return err
			}
		}
	}
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
