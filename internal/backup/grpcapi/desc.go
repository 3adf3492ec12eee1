package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described by hand over protobuf well-known types so the module
// needs no protoc toolchain.
//
//	service BackupAuth {
//	  rpc SetBackupId(google.protobuf.BytesValue) returns (google.protobuf.Empty);
//	  rpc RedeemReceipt(google.protobuf.BytesValue) returns (google.protobuf.Empty);
//	  rpc GetBackupAuthCredentials(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
const (
	ServiceName = "backupauth.v1.BackupAuth"

	methodSetBackupID    = "/" + ServiceName + "/SetBackupId"
	methodRedeemReceipt  = "/" + ServiceName + "/RedeemReceipt"
	methodGetCredentials = "/" + ServiceName + "/GetBackupAuthCredentials"
)

// BackupAuthServer is the server API of the BackupAuth service.
type BackupAuthServer interface {
	SetBackupId(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	RedeemReceipt(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	GetBackupAuthCredentials(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedBackupAuthServer can be embedded for forward compatibility.
type UnimplementedBackupAuthServer struct{}

func (UnimplementedBackupAuthServer) SetBackupId(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetBackupId not implemented")
}
func (UnimplementedBackupAuthServer) RedeemReceipt(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RedeemReceipt not implemented")
}
func (UnimplementedBackupAuthServer) GetBackupAuthCredentials(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBackupAuthCredentials not implemented")
}

func RegisterBackupAuthServer(s grpc.ServiceRegistrar, srv BackupAuthServer) {
	s.RegisterService(&BackupAuth_ServiceDesc, srv)
}

// BackupAuthClient is the client API of the BackupAuth service.
type BackupAuthClient interface {
	SetBackupId(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RedeemReceipt(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetBackupAuthCredentials(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type backupAuthClient struct{ cc grpc.ClientConnInterface }

func NewBackupAuthClient(cc grpc.ClientConnInterface) BackupAuthClient {
	return &backupAuthClient{cc: cc}
}

func (c *backupAuthClient) SetBackupId(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodSetBackupID, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backupAuthClient) RedeemReceipt(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodRedeemReceipt, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backupAuthClient) GetBackupAuthCredentials(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetCredentials, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _BackupAuth_SetBackupId_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackupAuthServer).SetBackupId(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSetBackupID}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BackupAuthServer).SetBackupId(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _BackupAuth_RedeemReceipt_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackupAuthServer).RedeemReceipt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRedeemReceipt}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BackupAuthServer).RedeemReceipt(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _BackupAuth_GetBackupAuthCredentials_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackupAuthServer).GetBackupAuthCredentials(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetCredentials}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BackupAuthServer).GetBackupAuthCredentials(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// BackupAuth_ServiceDesc is the grpc.ServiceDesc for the BackupAuth service.
var BackupAuth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackupAuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetBackupId", Handler: _BackupAuth_SetBackupId_Handler},
		{MethodName: "RedeemReceipt", Handler: _BackupAuth_RedeemReceipt_Handler},
		{MethodName: "GetBackupAuthCredentials", Handler: _BackupAuth_GetBackupAuthCredentials_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "backupauth.proto",
}
