package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/pkg/api"
)

// FolderServiceName is the fully-qualified name of the FolderService.
const FolderServiceName = "catalog.v1.FolderService"

// Procedure paths of the FolderService.
const (
	FolderServiceCreateFolderProcedure = "/catalog.v1.FolderService/CreateFolder"
	FolderServiceListFoldersProcedure  = "/catalog.v1.FolderService/ListFolders"
	FolderServiceUpdateFolderProcedure = "/catalog.v1.FolderService/UpdateFolder"
	FolderServiceDeleteFolderProcedure = "/catalog.v1.FolderService/DeleteFolder"
)

// FolderServiceClient is a client for the catalog.v1.FolderService service.
type FolderServiceClient interface {
	CreateFolder(context.Context, *connect.Request[api.CreateFolderRequest]) (*connect.Response[api.CreateFolderResponse], error)
	ListFolders(context.Context, *connect.Request[api.ListFoldersRequest]) (*connect.Response[api.ListFoldersResponse], error)
	UpdateFolder(context.Context, *connect.Request[api.UpdateFolderRequest]) (*connect.Response[api.UpdateFolderResponse], error)
	DeleteFolder(context.Context, *connect.Request[api.DeleteFolderRequest]) (*connect.Response[api.DeleteFolderResponse], error)
}

// NewFolderServiceClient constructs a client for the catalog.v1.FolderService service. baseURL
// is the server root, e.g. http://localhost:8080.
func NewFolderServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FolderServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &folderServiceClient{
		createFolder: connect.NewClient[api.CreateFolderRequest, api.CreateFolderResponse](httpClient, baseURL+FolderServiceCreateFolderProcedure, opts...),
		listFolders:  connect.NewClient[api.ListFoldersRequest, api.ListFoldersResponse](httpClient, baseURL+FolderServiceListFoldersProcedure, opts...),
		updateFolder: connect.NewClient[api.UpdateFolderRequest, api.UpdateFolderResponse](httpClient, baseURL+FolderServiceUpdateFolderProcedure, opts...),
		deleteFolder: connect.NewClient[api.DeleteFolderRequest, api.DeleteFolderResponse](httpClient, baseURL+FolderServiceDeleteFolderProcedure, opts...),
	}
}

type folderServiceClient struct {
	createFolder *connect.Client[api.CreateFolderRequest, api.CreateFolderResponse]
	listFolders  *connect.Client[api.ListFoldersRequest, api.ListFoldersResponse]
	updateFolder *connect.Client[api.UpdateFolderRequest, api.UpdateFolderResponse]
	deleteFolder *connect.Client[api.DeleteFolderRequest, api.DeleteFolderResponse]
}

func (c *folderServiceClient) CreateFolder(ctx context.Context, req *connect.Request[api.CreateFolderRequest]) (*connect.Response[api.CreateFolderResponse], error) {
	return c.createFolder.CallUnary(ctx, req)
}

func (c *folderServiceClient) ListFolders(ctx context.Context, req *connect.Request[api.ListFoldersRequest]) (*connect.Response[api.ListFoldersResponse], error) {
	return c.listFolders.CallUnary(ctx, req)
}

func (c *folderServiceClient) UpdateFolder(ctx context.Context, req *connect.Request[api.UpdateFolderRequest]) (*connect.Response[api.UpdateFolderResponse], error) {
	return c.updateFolder.CallUnary(ctx, req)
}

func (c *folderServiceClient) DeleteFolder(ctx context.Context, req *connect.Request[api.DeleteFolderRequest]) (*connect.Response[api.DeleteFolderResponse], error) {
	return c.deleteFolder.CallUnary(ctx, req)
}

// FolderServiceHandler is implemented by the server side of catalog.v1.FolderService.
type FolderServiceHandler interface {
	CreateFolder(context.Context, *connect.Request[api.CreateFolderRequest]) (*connect.Response[api.CreateFolderResponse], error)
	ListFolders(context.Context, *connect.Request[api.ListFoldersRequest]) (*connect.Response[api.ListFoldersResponse], error)
	UpdateFolder(context.Context, *connect.Request[api.UpdateFolderRequest]) (*connect.Response[api.UpdateFolderResponse], error)
	DeleteFolder(context.Context, *connect.Request[api.DeleteFolderRequest]) (*connect.Response[api.DeleteFolderResponse], error)
}

// NewFolderServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewFolderServiceHandler(svc FolderServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/catalog.v1.FolderService/", route(map[string]http.Handler{
		FolderServiceCreateFolderProcedure: connect.NewUnaryHandler(FolderServiceCreateFolderProcedure, svc.CreateFolder, opts...),
		FolderServiceListFoldersProcedure:  connect.NewUnaryHandler(FolderServiceListFoldersProcedure, svc.ListFolders, opts...),
		FolderServiceUpdateFolderProcedure: connect.NewUnaryHandler(FolderServiceUpdateFolderProcedure, svc.UpdateFolder, opts...),
		FolderServiceDeleteFolderProcedure: connect.NewUnaryHandler(FolderServiceDeleteFolderProcedure, svc.DeleteFolder, opts...),
	})
}
