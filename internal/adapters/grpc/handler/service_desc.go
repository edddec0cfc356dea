package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName は社員参照 gRPC サービスの完全修飾名です。
const ServiceName = "payroll.v1.EmployeeQueryService"

// EmployeeQueryServer は payroll.v1.EmployeeQueryService のサーバー側インターフェースです。
// リクエストとレスポンスは google.protobuf.Struct で表現します。
type EmployeeQueryServer interface {
	ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListRecentEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CheckEmployeeNumber(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CheckEmail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(EmployeeQueryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EmployeeQueryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EmployeeQueryServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EmployeeQueryServiceDesc は EmployeeQueryService の grpc.ServiceDesc です。
var EmployeeQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EmployeeQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListEmployees", EmployeeQueryServer.ListEmployees),
		unaryMethod("GetEmployee", EmployeeQueryServer.GetEmployee),
		unaryMethod("ListRecentEmployees", EmployeeQueryServer.ListRecentEmployees),
		unaryMethod("CheckEmployeeNumber", EmployeeQueryServer.CheckEmployeeNumber),
		unaryMethod("CheckEmail", EmployeeQueryServer.CheckEmail),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payroll/v1/employee_query.proto",
}

// RegisterEmployeeQueryServer は srv を s に登録します。
func RegisterEmployeeQueryServer(s grpc.ServiceRegistrar, srv EmployeeQueryServer) {
	s.RegisterService(&EmployeeQueryServiceDesc, srv)
}

// EmployeeQueryClient は EmployeeQueryService のクライアントです。
type EmployeeQueryClient struct {
	cc grpc.ClientConnInterface
}

// NewEmployeeQueryClient は EmployeeQueryClient を生成します。
func NewEmployeeQueryClient(cc grpc.ClientConnInterface) *EmployeeQueryClient {
	return &EmployeeQueryClient{cc: cc}
}

// Call は method を呼び出します。method は ListEmployees などのメソッド名です。
func (c *EmployeeQueryClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
