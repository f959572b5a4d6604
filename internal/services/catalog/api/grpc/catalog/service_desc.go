package catalog

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name, also used as the
// health check service key.
const ServiceName = "catalog.v1.BuildCatalogService"

// Method names served by BuildCatalogService.
const (
	MethodListCategories = "ListCategories"
	MethodListNames      = "ListNames"
	MethodLookupByShape  = "LookupByShape"
	MethodLookupByTier   = "LookupByTier"
	MethodResolveBuild   = "ResolveBuild"
	MethodStats          = "Stats"
	MethodEnumerations   = "Enumerations"
)

// BuildCatalogServiceServer is the server API for BuildCatalogService.
// Requests and responses travel as google.protobuf.Struct and are decoded
// into the typed messages before reaching the implementation.
type BuildCatalogServiceServer interface {
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	ListNames(context.Context, *ListNamesRequest) (*ListNamesResponse, error)
	LookupByShape(context.Context, *LookupByShapeRequest) (*BuildsResponse, error)
	LookupByTier(context.Context, *LookupByTierRequest) (*BuildsResponse, error)
	ResolveBuild(context.Context, *ResolveBuildRequest) (*ResolveBuildResponse, error)
	Stats(context.Context, *StatsRequest) (*StatsResponse, error)
	Enumerations(context.Context, *EnumerationsRequest) (*EnumerationsResponse, error)
}

// RegisterBuildCatalogServiceServer registers srv on s.
func RegisterBuildCatalogServiceServer(s grpc.ServiceRegistrar, srv BuildCatalogServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes BuildCatalogService for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BuildCatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodListCategories, Handler: unaryHandler(MethodListCategories, BuildCatalogServiceServer.ListCategories)},
		{MethodName: MethodListNames, Handler: unaryHandler(MethodListNames, BuildCatalogServiceServer.ListNames)},
		{MethodName: MethodLookupByShape, Handler: unaryHandler(MethodLookupByShape, BuildCatalogServiceServer.LookupByShape)},
		{MethodName: MethodLookupByTier, Handler: unaryHandler(MethodLookupByTier, BuildCatalogServiceServer.LookupByTier)},
		{MethodName: MethodResolveBuild, Handler: unaryHandler(MethodResolveBuild, BuildCatalogServiceServer.ResolveBuild)},
		{MethodName: MethodStats, Handler: unaryHandler(MethodStats, BuildCatalogServiceServer.Stats)},
		{MethodName: MethodEnumerations, Handler: unaryHandler(MethodEnumerations, BuildCatalogServiceServer.Enumerations)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

// FullMethod returns the "/service/method" path for a method name.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(BuildCatalogServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		wire := new(structpb.Struct)
		if err := dec(wire); err != nil {
			return nil, err
		}
		in := new(Req)
		if err := fromStruct(wire, in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decode %s request: %v", method, err)
		}

		handler := func(ctx context.Context, req any) (any, error) {
			out, err := call(srv.(BuildCatalogServiceServer), ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			encoded, err := toStruct(out)
			if err != nil {
				return nil, status.Errorf(codes.Internal, "encode %s response: %v", method, err)
			}
			return encoded, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		return interceptor(ctx, in, info, handler)
	}
}
