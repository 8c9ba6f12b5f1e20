package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MangaServiceClient is the client API for MangaService, matching the
// interface protoc-gen-go-grpc would emit from a manga.proto service block.
type MangaServiceClient interface {
	GetManga(ctx context.Context, in *GetMangaRequest, opts ...grpc.CallOption) (*MangaResponse, error)
	SearchManga(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error)
	UpdateProgress(ctx context.Context, in *ProgressRequest, opts ...grpc.CallOption) (*ProgressResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type mangaServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMangaServiceClient(cc grpc.ClientConnInterface) MangaServiceClient {
	return &mangaServiceClient{cc}
}

const (
	mangaServiceGetManga        = "/mangahub.grpc.MangaService/GetManga"
	mangaServiceSearchManga     = "/mangahub.grpc.MangaService/SearchManga"
	mangaServiceUpdateProgress  = "/mangahub.grpc.MangaService/UpdateProgress"
	mangaServicePing            = "/mangahub.grpc.MangaService/Ping"
)

func (c *mangaServiceClient) GetManga(ctx context.Context, in *GetMangaRequest, opts ...grpc.CallOption) (*MangaResponse, error) {
	out := new(MangaResponse)
	if err := c.cc.Invoke(ctx, mangaServiceGetManga, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mangaServiceClient) SearchManga(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error) {
	out := new(SearchResponse)
	if err := c.cc.Invoke(ctx, mangaServiceSearchManga, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mangaServiceClient) UpdateProgress(ctx context.Context, in *ProgressRequest, opts ...grpc.CallOption) (*ProgressResponse, error) {
	out := new(ProgressResponse)
	if err := c.cc.Invoke(ctx, mangaServiceUpdateProgress, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mangaServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, mangaServicePing, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MangaServiceServer is the server API for MangaService.
type MangaServiceServer interface {
	GetManga(context.Context, *GetMangaRequest) (*MangaResponse, error)
	SearchManga(context.Context, *SearchRequest) (*SearchResponse, error)
	UpdateProgress(context.Context, *ProgressRequest) (*ProgressResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedMangaServiceServer must be embedded for forward
// compatibility, matching generated-code convention.
type UnimplementedMangaServiceServer struct{}

func (UnimplementedMangaServiceServer) GetManga(context.Context, *GetMangaRequest) (*MangaResponse, error) {
	return nil, errUnimplemented("GetManga")
}
func (UnimplementedMangaServiceServer) SearchManga(context.Context, *SearchRequest) (*SearchResponse, error) {
	return nil, errUnimplemented("SearchManga")
}
func (UnimplementedMangaServiceServer) UpdateProgress(context.Context, *ProgressRequest) (*ProgressResponse, error) {
	return nil, errUnimplemented("UpdateProgress")
}
func (UnimplementedMangaServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, errUnimplemented("Ping")
}

func errUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func RegisterMangaServiceServer(s grpc.ServiceRegistrar, srv MangaServiceServer) {
	s.RegisterService(&MangaService_ServiceDesc, srv)
}

func _MangaService_GetManga_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetMangaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MangaServiceServer).GetManga(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: mangaServiceGetManga}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MangaServiceServer).GetManga(ctx, req.(*GetMangaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MangaService_SearchManga_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MangaServiceServer).SearchManga(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: mangaServiceSearchManga}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MangaServiceServer).SearchManga(ctx, req.(*SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MangaService_UpdateProgress_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ProgressRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MangaServiceServer).UpdateProgress(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: mangaServiceUpdateProgress}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MangaServiceServer).UpdateProgress(ctx, req.(*ProgressRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MangaService_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MangaServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: mangaServicePing}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MangaServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MangaService_ServiceDesc is the grpc.ServiceDesc for MangaService,
// registered with a *grpc.Server in the same shape protoc-gen-go-grpc
// would emit.
var MangaService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mangahub.grpc.MangaService",
	HandlerType: (*MangaServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetManga", Handler: _MangaService_GetManga_Handler},
		{MethodName: "SearchManga", Handler: _MangaService_SearchManga_Handler},
		{MethodName: "UpdateProgress", Handler: _MangaService_UpdateProgress_Handler},
		{MethodName: "Ping", Handler: _MangaService_Ping_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "manga.proto",
}
