package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const KPIDashboardServiceName = "kpi.v1.KPIDashboard"

const (
	KPIDashboard_GetTopPerformers_FullMethodName  = "/kpi.v1.KPIDashboard/GetTopPerformers"
	KPIDashboard_GetWeeklySummary_FullMethodName  = "/kpi.v1.KPIDashboard/GetWeeklySummary"
	KPIDashboard_GetDailySummary_FullMethodName   = "/kpi.v1.KPIDashboard/GetDailySummary"
	KPIDashboard_GetMonthlySummary_FullMethodName = "/kpi.v1.KPIDashboard/GetMonthlySummary"
	KPIDashboard_ListPeriods_FullMethodName       = "/kpi.v1.KPIDashboard/ListPeriods"
)

// KPIDashboardServer is the server API for the kpi.v1.KPIDashboard service.
// Requests and responses are google.protobuf.Struct messages.
type KPIDashboardServer interface {
	GetTopPerformers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetWeeklySummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDailySummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMonthlySummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPeriods(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterKPIDashboardServer(s grpc.ServiceRegistrar, srv KPIDashboardServer) {
	s.RegisterService(&KPIDashboard_ServiceDesc, srv)
}

type unaryCall func(srv KPIDashboardServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(KPIDashboardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(KPIDashboardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// KPIDashboard_ServiceDesc is the grpc.ServiceDesc for the kpi.v1.KPIDashboard service.
var KPIDashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: KPIDashboardServiceName,
	HandlerType: (*KPIDashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTopPerformers",
			Handler:    unaryHandler(KPIDashboard_GetTopPerformers_FullMethodName, KPIDashboardServer.GetTopPerformers),
		},
		{
			MethodName: "GetWeeklySummary",
			Handler:    unaryHandler(KPIDashboard_GetWeeklySummary_FullMethodName, KPIDashboardServer.GetWeeklySummary),
		},
		{
			MethodName: "GetDailySummary",
			Handler:    unaryHandler(KPIDashboard_GetDailySummary_FullMethodName, KPIDashboardServer.GetDailySummary),
		},
		{
			MethodName: "GetMonthlySummary",
			Handler:    unaryHandler(KPIDashboard_GetMonthlySummary_FullMethodName, KPIDashboardServer.GetMonthlySummary),
		},
		{
			MethodName: "ListPeriods",
			Handler:    unaryHandler(KPIDashboard_ListPeriods_FullMethodName, KPIDashboardServer.ListPeriods),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kpi/v1/kpi.proto",
}

// KPIDashboardClient is the client API for the kpi.v1.KPIDashboard service.
type KPIDashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewKPIDashboardClient(cc grpc.ClientConnInterface) *KPIDashboardClient {
	return &KPIDashboardClient{cc: cc}
}

func (c *KPIDashboardClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *KPIDashboardClient) GetTopPerformers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KPIDashboard_GetTopPerformers_FullMethodName, in, opts...)
}

func (c *KPIDashboardClient) GetWeeklySummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KPIDashboard_GetWeeklySummary_FullMethodName, in, opts...)
}

func (c *KPIDashboardClient) GetDailySummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KPIDashboard_GetDailySummary_FullMethodName, in, opts...)
}

func (c *KPIDashboardClient) GetMonthlySummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KPIDashboard_GetMonthlySummary_FullMethodName, in, opts...)
}

func (c *KPIDashboardClient) ListPeriods(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KPIDashboard_ListPeriods_FullMethodName, in, opts...)
}
