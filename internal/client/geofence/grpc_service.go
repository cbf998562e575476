package geofence

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service of the geofence daemon.
// Messages are protobuf well-known types, so no generated code is needed.
const ServiceName = "geokeeper.geofence.v1.Geofence"

const (
	accessTokenHeader = "access_token"
	subscribedHeader  = "x-geofence-subscribed"
)

// GeofenceServer is the server side of ServiceName.
type GeofenceServer interface {
	Register(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Unregister(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	MoveTo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PermissionGranted(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	RequestPermission(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	LocationEnabled(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	ResolveLocationSettings(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	Watch(*emptypb.Empty, grpc.ServerStream) error
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp proto.Message](name string, newReq func() Req,
	call func(GeofenceServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GeofenceServer), ctx, req.(Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}, handler)
		},
	}
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }
func newEmpty() *emptypb.Empty    { return &emptypb.Empty{} }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeofenceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", newStruct, GeofenceServer.Register),
		unary("Unregister", newStruct, GeofenceServer.Unregister),
		unary("MoveTo", newStruct, GeofenceServer.MoveTo),
		unary("PermissionGranted", newEmpty, GeofenceServer.PermissionGranted),
		unary("RequestPermission", newEmpty, GeofenceServer.RequestPermission),
		unary("LocationEnabled", newEmpty, GeofenceServer.LocationEnabled),
		unary("ResolveLocationSettings", newEmpty, GeofenceServer.ResolveLocationSettings),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(emptypb.Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(GeofenceServer).Watch(in, stream)
			},
		},
	},
	Metadata: "geokeeper/geofence/v1/geofence.proto",
}

func regionToStruct(r Region) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":            r.ID,
		"latitude":      r.Latitude,
		"longitude":     r.Longitude,
		"radius":        r.Radius,
		"expiration_ms": float64(r.Expiration.Milliseconds()),
	})
}

func regionFromStruct(s *structpb.Struct) Region {
	f := s.GetFields()
	return Region{
		ID:         f["id"].GetStringValue(),
		Latitude:   f["latitude"].GetNumberValue(),
		Longitude:  f["longitude"].GetNumberValue(),
		Radius:     f["radius"].GetNumberValue(),
		Expiration: msDuration(f["expiration_ms"].GetNumberValue()),
	}
}

func idsToStruct(key string, ids []string) (*structpb.Struct, error) {
	list := make([]any, 0, len(ids))
	for _, id := range ids {
		list = append(list, id)
	}
	return structpb.NewStruct(map[string]any{key: list})
}

func idsFromStruct(key string, s *structpb.Struct) []string {
	values := s.GetFields()[key].GetListValue().GetValues()
	ids := make([]string, 0, len(values))
	for _, v := range values {
		ids = append(ids, v.GetStringValue())
	}
	return ids
}
