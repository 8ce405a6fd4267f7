package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	FileService_List_FullMethodName        = "/lockbox.v1.FileService/List"
	FileService_Size_FullMethodName        = "/lockbox.v1.FileService/Size"
	FileService_Acquire_FullMethodName     = "/lockbox.v1.FileService/Acquire"
	FileService_Release_FullMethodName     = "/lockbox.v1.FileService/Release"
	FileService_CreateEmpty_FullMethodName = "/lockbox.v1.FileService/CreateEmpty"
	FileService_WriteChunk_FullMethodName  = "/lockbox.v1.FileService/WriteChunk"
	FileService_ReadChunk_FullMethodName   = "/lockbox.v1.FileService/ReadChunk"
	FileService_Delete_FullMethodName      = "/lockbox.v1.FileService/Delete"
	FileService_Status_FullMethodName      = "/lockbox.v1.FileService/Status"
	FileService_History_FullMethodName     = "/lockbox.v1.FileService/History"
)

// FileServiceClient is the client API for FileService.
type FileServiceClient interface {
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
	Size(ctx context.Context, in *SizeRequest, opts ...grpc.CallOption) (*SizeResponse, error)
	Acquire(ctx context.Context, in *AcquireRequest, opts ...grpc.CallOption) (*AcquireResponse, error)
	Release(ctx context.Context, in *ReleaseRequest, opts ...grpc.CallOption) (*ReleaseResponse, error)
	CreateEmpty(ctx context.Context, in *CreateEmptyRequest, opts ...grpc.CallOption) (*CreateEmptyResponse, error)
	WriteChunk(ctx context.Context, in *WriteChunkRequest, opts ...grpc.CallOption) (*WriteChunkResponse, error)
	ReadChunk(ctx context.Context, in *ReadChunkRequest, opts ...grpc.CallOption) (*ReadChunkResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error)
}

type fileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFileServiceClient(cc grpc.ClientConnInterface) FileServiceClient {
	return &fileServiceClient{cc}
}

// every call is pinned to the lockbox codec
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fileServiceClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	return invoke[ListResponse](ctx, c.cc, FileService_List_FullMethodName, in, opts)
}

func (c *fileServiceClient) Size(ctx context.Context, in *SizeRequest, opts ...grpc.CallOption) (*SizeResponse, error) {
	return invoke[SizeResponse](ctx, c.cc, FileService_Size_FullMethodName, in, opts)
}

func (c *fileServiceClient) Acquire(ctx context.Context, in *AcquireRequest, opts ...grpc.CallOption) (*AcquireResponse, error) {
	return invoke[AcquireResponse](ctx, c.cc, FileService_Acquire_FullMethodName, in, opts)
}

func (c *fileServiceClient) Release(ctx context.Context, in *ReleaseRequest, opts ...grpc.CallOption) (*ReleaseResponse, error) {
	return invoke[ReleaseResponse](ctx, c.cc, FileService_Release_FullMethodName, in, opts)
}

func (c *fileServiceClient) CreateEmpty(ctx context.Context, in *CreateEmptyRequest, opts ...grpc.CallOption) (*CreateEmptyResponse, error) {
	return invoke[CreateEmptyResponse](ctx, c.cc, FileService_CreateEmpty_FullMethodName, in, opts)
}

func (c *fileServiceClient) WriteChunk(ctx context.Context, in *WriteChunkRequest, opts ...grpc.CallOption) (*WriteChunkResponse, error) {
	return invoke[WriteChunkResponse](ctx, c.cc, FileService_WriteChunk_FullMethodName, in, opts)
}

func (c *fileServiceClient) ReadChunk(ctx context.Context, in *ReadChunkRequest, opts ...grpc.CallOption) (*ReadChunkResponse, error) {
	return invoke[ReadChunkResponse](ctx, c.cc, FileService_ReadChunk_FullMethodName, in, opts)
}

func (c *fileServiceClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c.cc, FileService_Delete_FullMethodName, in, opts)
}

func (c *fileServiceClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, FileService_Status_FullMethodName, in, opts)
}

func (c *fileServiceClient) History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryResponse](ctx, c.cc, FileService_History_FullMethodName, in, opts)
}

// FileServiceServer is the server API for FileService.
type FileServiceServer interface {
	List(context.Context, *ListRequest) (*ListResponse, error)
	Size(context.Context, *SizeRequest) (*SizeResponse, error)
	Acquire(context.Context, *AcquireRequest) (*AcquireResponse, error)
	Release(context.Context, *ReleaseRequest) (*ReleaseResponse, error)
	CreateEmpty(context.Context, *CreateEmptyRequest) (*CreateEmptyResponse, error)
	WriteChunk(context.Context, *WriteChunkRequest) (*WriteChunkResponse, error)
	ReadChunk(context.Context, *ReadChunkRequest) (*ReadChunkResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
}

// UnimplementedFileServiceServer can be embedded to have forward compatible implementations.
type UnimplementedFileServiceServer struct{}

func (UnimplementedFileServiceServer) List(context.Context, *ListRequest) (*ListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedFileServiceServer) Size(context.Context, *SizeRequest) (*SizeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Size not implemented")
}
func (UnimplementedFileServiceServer) Acquire(context.Context, *AcquireRequest) (*AcquireResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Acquire not implemented")
}
func (UnimplementedFileServiceServer) Release(context.Context, *ReleaseRequest) (*ReleaseResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Release not implemented")
}
func (UnimplementedFileServiceServer) CreateEmpty(context.Context, *CreateEmptyRequest) (*CreateEmptyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateEmpty not implemented")
}
func (UnimplementedFileServiceServer) WriteChunk(context.Context, *WriteChunkRequest) (*WriteChunkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WriteChunk not implemented")
}
func (UnimplementedFileServiceServer) ReadChunk(context.Context, *ReadChunkRequest) (*ReadChunkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReadChunk not implemented")
}
func (UnimplementedFileServiceServer) Delete(context.Context, *DeleteRequest) (*DeleteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedFileServiceServer) Status(context.Context, *StatusRequest) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedFileServiceServer) History(context.Context, *HistoryRequest) (*HistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method History not implemented")
}

func RegisterFileServiceServer(s grpc.ServiceRegistrar, srv FileServiceServer) {
	s.RegisterService(&FileService_ServiceDesc, srv)
}

// builds the unary handler for one method of the service
func unaryHandler[Req, Resp any](fullMethod string, call func(FileServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FileServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FileServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FileService_ServiceDesc is the grpc.ServiceDesc for FileService service.
var FileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "lockbox.v1.FileService",
	HandlerType: (*FileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unaryHandler(FileService_List_FullMethodName, FileServiceServer.List)},
		{MethodName: "Size", Handler: unaryHandler(FileService_Size_FullMethodName, FileServiceServer.Size)},
		{MethodName: "Acquire", Handler: unaryHandler(FileService_Acquire_FullMethodName, FileServiceServer.Acquire)},
		{MethodName: "Release", Handler: unaryHandler(FileService_Release_FullMethodName, FileServiceServer.Release)},
		{MethodName: "CreateEmpty", Handler: unaryHandler(FileService_CreateEmpty_FullMethodName, FileServiceServer.CreateEmpty)},
		{MethodName: "WriteChunk", Handler: unaryHandler(FileService_WriteChunk_FullMethodName, FileServiceServer.WriteChunk)},
		{MethodName: "ReadChunk", Handler: unaryHandler(FileService_ReadChunk_FullMethodName, FileServiceServer.ReadChunk)},
		{MethodName: "Delete", Handler: unaryHandler(FileService_Delete_FullMethodName, FileServiceServer.Delete)},
		{MethodName: "Status", Handler: unaryHandler(FileService_Status_FullMethodName, FileServiceServer.Status)},
		{MethodName: "History", Handler: unaryHandler(FileService_History_FullMethodName, FileServiceServer.History)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/filestore.proto",
}
