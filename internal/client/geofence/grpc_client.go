package geofence

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GRPCClient talks to a geofence daemon. It implements Platform and Provider.
type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

// Dial connects to target without transport security; extra options are
// appended (tests pass a bufconn dialer).
func Dial(target, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{token: token}

	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.accessTokenStreamInterceptor),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Conn exposes the underlying connection, e.g. for health checks.
func (c *GRPCClient) Conn() *grpc.ClientConn {
	return c.conn
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(accessTokenHeader, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(ctx context.Context, method string, req, reply any,
	cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	return invoker(withAccessToken(ctx, c.token), method, req, reply, cc, opts...)
}

func (c *GRPCClient) accessTokenStreamInterceptor(ctx context.Context, desc *grpc.StreamDesc,
	cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return streamer(withAccessToken(ctx, c.token), desc, cc, method, opts...)
}

// mapError converts a status back into the package sentinels.
func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRegion, st.Message())
	default:
		return err
	}
}

func (c *GRPCClient) Register(ctx context.Context, r Region) error {
	req, err := regionToStruct(r)
	if err != nil {
		return err
	}
	if err := c.conn.Invoke(ctx, fullMethod("Register"), req, &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) Unregister(ctx context.Context, ids ...string) error {
	req, err := idsToStruct("ids", ids)
	if err != nil {
		return err
	}
	if err := c.conn.Invoke(ctx, fullMethod("Unregister"), req, &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

// MoveTo moves the simulated device and returns the regions it entered.
func (c *GRPCClient) MoveTo(ctx context.Context, lat, lon float64) ([]string, error) {
	req, err := structpb.NewStruct(map[string]any{"latitude": lat, "longitude": lon})
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, fullMethod("MoveTo"), req, resp); err != nil {
		return nil, mapError(err)
	}
	return idsFromStruct("entered", resp), nil
}

func (c *GRPCClient) boolCall(ctx context.Context, name string) (bool, error) {
	resp := &wrapperspb.BoolValue{}
	if err := c.conn.Invoke(ctx, fullMethod(name), &emptypb.Empty{}, resp); err != nil {
		return false, mapError(err)
	}
	return resp.GetValue(), nil
}

func (c *GRPCClient) PermissionGranted(ctx context.Context) (bool, error) {
	return c.boolCall(ctx, "PermissionGranted")
}

func (c *GRPCClient) RequestPermission(ctx context.Context) (bool, error) {
	return c.boolCall(ctx, "RequestPermission")
}

func (c *GRPCClient) LocationEnabled(ctx context.Context) (bool, error) {
	return c.boolCall(ctx, "LocationEnabled")
}

func (c *GRPCClient) ResolveLocationSettings(ctx context.Context) (bool, error) {
	return c.boolCall(ctx, "ResolveLocationSettings")
}

// Watch subscribes to enter events. It returns once the daemon confirmed the
// subscription; the channel is closed when the stream ends or ctx is done.
func (c *GRPCClient) Watch(ctx context.Context) (<-chan string, error) {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("Watch"))
	if err != nil {
		return nil, mapError(err)
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, mapError(err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, mapError(err)
	}
	md, err := stream.Header()
	if err != nil {
		return nil, mapError(err)
	}
	if len(md.Get(subscribedHeader)) == 0 {
		// Trailers-only response: the status carries the rejection.
		err := stream.RecvMsg(&wrapperspb.StringValue{})
		if err == nil || errors.Is(err, io.EOF) {
			err = status.Error(codes.Unavailable, "watch ended before subscribing")
		}
		return nil, mapError(err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			msg := &wrapperspb.StringValue{}
			if err := stream.RecvMsg(msg); err != nil {
				return
			}
			select {
			case out <- msg.GetValue():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
