package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of bankrecon.v1.ReconciliationService.
const (
	ServiceName            = "bankrecon.v1.ReconciliationService"
	ReconcileMethod        = "/" + ServiceName + "/Reconcile"
	ReconcileAccountMethod = "/" + ServiceName + "/ReconcileAccount"
	GetRunMethod           = "/" + ServiceName + "/GetRun"
	ListRunsMethod         = "/" + ServiceName + "/ListRuns"
)

// ReconciliationServiceServer is the server API for bankrecon.v1.ReconciliationService.
type ReconciliationServiceServer interface {
	Reconcile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReconcileAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedReconciliationServiceServer can be embedded for forward compatibility.
type UnimplementedReconciliationServiceServer struct{}

func (UnimplementedReconciliationServiceServer) Reconcile(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Reconcile not implemented")
}

func (UnimplementedReconciliationServiceServer) ReconcileAccount(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ReconcileAccount not implemented")
}

func (UnimplementedReconciliationServiceServer) GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRun not implemented")
}

func (UnimplementedReconciliationServiceServer) ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRuns not implemented")
}

// RegisterReconciliationServiceServer registers srv with s.
func RegisterReconciliationServiceServer(s grpc.ServiceRegistrar, srv ReconciliationServiceServer) {
	s.RegisterService(&ReconciliationServiceDesc, srv)
}

type structMethod func(ReconciliationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReconciliationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReconciliationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ReconciliationServiceDesc is the grpc.ServiceDesc for bankrecon.v1.ReconciliationService.
var ReconciliationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReconciliationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Reconcile", Handler: unaryHandler(ReconcileMethod, ReconciliationServiceServer.Reconcile)},
		{MethodName: "ReconcileAccount", Handler: unaryHandler(ReconcileAccountMethod, ReconciliationServiceServer.ReconcileAccount)},
		{MethodName: "GetRun", Handler: unaryHandler(GetRunMethod, ReconciliationServiceServer.GetRun)},
		{MethodName: "ListRuns", Handler: unaryHandler(ListRunsMethod, ReconciliationServiceServer.ListRuns)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bankrecon/v1/reconciliation.proto",
}

// ReconciliationServiceClient is the client API for bankrecon.v1.ReconciliationService.
type ReconciliationServiceClient interface {
	Reconcile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ReconcileAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type reconciliationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReconciliationServiceClient creates a client over cc.
func NewReconciliationServiceClient(cc grpc.ClientConnInterface) ReconciliationServiceClient {
	return &reconciliationServiceClient{cc: cc}
}

func (c *reconciliationServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reconciliationServiceClient) Reconcile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ReconcileMethod, in, opts)
}

func (c *reconciliationServiceClient) ReconcileAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ReconcileAccountMethod, in, opts)
}

func (c *reconciliationServiceClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetRunMethod, in, opts)
}

func (c *reconciliationServiceClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListRunsMethod, in, opts)
}
