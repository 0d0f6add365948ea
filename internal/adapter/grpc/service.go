package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "portfoy.v1.PortfolioService"

// PortfolioServiceServer is the server API for PortfolioService.
// Requests and responses are google.protobuf.Struct documents whose fields
// follow the JSON form of the domain types; decimals travel as strings.
type PortfolioServiceServer interface {
	ListAssets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddAsset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveAsset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTargets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetTarget(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetManualPrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeRebalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewRebalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAlerts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(PortfolioServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PortfolioServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PortfolioServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// PortfolioServiceDesc is the grpc.ServiceDesc for PortfolioService
var PortfolioServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListAssets", PortfolioServiceServer.ListAssets),
		unaryHandler("AddAsset", PortfolioServiceServer.AddAsset),
		unaryHandler("RemoveAsset", PortfolioServiceServer.RemoveAsset),
		unaryHandler("GetTargets", PortfolioServiceServer.GetTargets),
		unaryHandler("SetTarget", PortfolioServiceServer.SetTarget),
		unaryHandler("SetManualPrice", PortfolioServiceServer.SetManualPrice),
		unaryHandler("ComputeRebalance", PortfolioServiceServer.ComputeRebalance),
		unaryHandler("PreviewRebalance", PortfolioServiceServer.PreviewRebalance),
		unaryHandler("GetSummary", PortfolioServiceServer.GetSummary),
		unaryHandler("GetAlerts", PortfolioServiceServer.GetAlerts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "portfoy/v1/portfolio.proto",
}

// RegisterPortfolioServiceServer registers the service on a gRPC server
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, srv PortfolioServiceServer) {
	s.RegisterService(&PortfolioServiceDesc, srv)
}
