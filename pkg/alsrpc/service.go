// Package alsrpc defines the als.v1.AmbientLight gRPC service.
//
// Messages are protobuf well-known types so no code generation is needed:
// readings travel as structpb.Struct, manual lux values as
// wrapperspb.DoubleValue.
package alsrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "als.v1.AmbientLight"

	GetCurrentLightMethod = "/" + ServiceName + "/GetCurrentLight"
	GetHistoryMethod      = "/" + ServiceName + "/GetHistory"
	RecordReadingMethod   = "/" + ServiceName + "/RecordReading"
)

// AmbientLightServer is the server API for the AmbientLight service
type AmbientLightServer interface {
	// GetCurrentLight returns the most recent recorded reading
	GetCurrentLight(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// GetHistory returns readings in [start_time, end_time) with statistics
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// RecordReading stores a manual lux value
	RecordReading(context.Context, *wrapperspb.DoubleValue) (*structpb.Struct, error)
}

// RegisterAmbientLightServer registers srv on s
func RegisterAmbientLightServer(s grpc.ServiceRegistrar, srv AmbientLightServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AmbientLightServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCurrentLight", Handler: getCurrentLightHandler},
		{MethodName: "GetHistory", Handler: getHistoryHandler},
		{MethodName: "RecordReading", Handler: recordReadingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "als/v1/als.proto",
}

func getCurrentLightHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AmbientLightServer).GetCurrentLight(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetCurrentLightMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AmbientLightServer).GetCurrentLight(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getHistoryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AmbientLightServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetHistoryMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AmbientLightServer).GetHistory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func recordReadingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AmbientLightServer).RecordReading(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RecordReadingMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AmbientLightServer).RecordReading(ctx, req.(*wrapperspb.DoubleValue))
	}
	return interceptor(ctx, in, info, handler)
}
