package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/pkg/api"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService.
const ReceiptServiceName = "catalog.v1.ReceiptService"

// Procedure paths of the ReceiptService.
const (
	ReceiptServiceCreateReceiptProcedure     = "/catalog.v1.ReceiptService/CreateReceipt"
	ReceiptServiceGetReceiptProcedure        = "/catalog.v1.ReceiptService/GetReceipt"
	ReceiptServiceUpdateReceiptProcedure     = "/catalog.v1.ReceiptService/UpdateReceipt"
	ReceiptServiceDeleteReceiptProcedure     = "/catalog.v1.ReceiptService/DeleteReceipt"
	ReceiptServiceListReceiptsProcedure      = "/catalog.v1.ReceiptService/ListReceipts"
	ReceiptServiceListGroupReceiptsProcedure = "/catalog.v1.ReceiptService/ListGroupReceipts"
)

// ReceiptServiceClient is a client for the catalog.v1.ReceiptService service.
type ReceiptServiceClient interface {
	CreateReceipt(context.Context, *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error)
	GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	UpdateReceipt(context.Context, *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error)
	DeleteReceipt(context.Context, *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error)
	ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	ListGroupReceipts(context.Context, *connect.Request[api.ListGroupReceiptsRequest]) (*connect.Response[api.ListGroupReceiptsResponse], error)
}

// NewReceiptServiceClient constructs a client for the catalog.v1.ReceiptService service. baseURL
// is the server root, e.g. http://localhost:8080.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &receiptServiceClient{
		createReceipt:     connect.NewClient[api.CreateReceiptRequest, api.CreateReceiptResponse](httpClient, baseURL+ReceiptServiceCreateReceiptProcedure, opts...),
		getReceipt:        connect.NewClient[api.GetReceiptRequest, api.GetReceiptResponse](httpClient, baseURL+ReceiptServiceGetReceiptProcedure, opts...),
		updateReceipt:     connect.NewClient[api.UpdateReceiptRequest, api.UpdateReceiptResponse](httpClient, baseURL+ReceiptServiceUpdateReceiptProcedure, opts...),
		deleteReceipt:     connect.NewClient[api.DeleteReceiptRequest, api.DeleteReceiptResponse](httpClient, baseURL+ReceiptServiceDeleteReceiptProcedure, opts...),
		listReceipts:      connect.NewClient[api.ListReceiptsRequest, api.ListReceiptsResponse](httpClient, baseURL+ReceiptServiceListReceiptsProcedure, opts...),
		listGroupReceipts: connect.NewClient[api.ListGroupReceiptsRequest, api.ListGroupReceiptsResponse](httpClient, baseURL+ReceiptServiceListGroupReceiptsProcedure, opts...),
	}
}

type receiptServiceClient struct {
	createReceipt     *connect.Client[api.CreateReceiptRequest, api.CreateReceiptResponse]
	getReceipt        *connect.Client[api.GetReceiptRequest, api.GetReceiptResponse]
	updateReceipt     *connect.Client[api.UpdateReceiptRequest, api.UpdateReceiptResponse]
	deleteReceipt     *connect.Client[api.DeleteReceiptRequest, api.DeleteReceiptResponse]
	listReceipts      *connect.Client[api.ListReceiptsRequest, api.ListReceiptsResponse]
	listGroupReceipts *connect.Client[api.ListGroupReceiptsRequest, api.ListGroupReceiptsResponse]
}

func (c *receiptServiceClient) CreateReceipt(ctx context.Context, req *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error) {
	return c.createReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) UpdateReceipt(ctx context.Context, req *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error) {
	return c.updateReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) DeleteReceipt(ctx context.Context, req *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error) {
	return c.deleteReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	return c.listReceipts.CallUnary(ctx, req)
}

func (c *receiptServiceClient) ListGroupReceipts(ctx context.Context, req *connect.Request[api.ListGroupReceiptsRequest]) (*connect.Response[api.ListGroupReceiptsResponse], error) {
	return c.listGroupReceipts.CallUnary(ctx, req)
}

// ReceiptServiceHandler is implemented by the server side of catalog.v1.ReceiptService.
type ReceiptServiceHandler interface {
	CreateReceipt(context.Context, *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error)
	GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	UpdateReceipt(context.Context, *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error)
	DeleteReceipt(context.Context, *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error)
	ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	ListGroupReceipts(context.Context, *connect.Request[api.ListGroupReceiptsRequest]) (*connect.Response[api.ListGroupReceiptsResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/catalog.v1.ReceiptService/", route(map[string]http.Handler{
		ReceiptServiceCreateReceiptProcedure:     connect.NewUnaryHandler(ReceiptServiceCreateReceiptProcedure, svc.CreateReceipt, opts...),
		ReceiptServiceGetReceiptProcedure:        connect.NewUnaryHandler(ReceiptServiceGetReceiptProcedure, svc.GetReceipt, opts...),
		ReceiptServiceUpdateReceiptProcedure:     connect.NewUnaryHandler(ReceiptServiceUpdateReceiptProcedure, svc.UpdateReceipt, opts...),
		ReceiptServiceDeleteReceiptProcedure:     connect.NewUnaryHandler(ReceiptServiceDeleteReceiptProcedure, svc.DeleteReceipt, opts...),
		ReceiptServiceListReceiptsProcedure:      connect.NewUnaryHandler(ReceiptServiceListReceiptsProcedure, svc.ListReceipts, opts...),
		ReceiptServiceListGroupReceiptsProcedure: connect.NewUnaryHandler(ReceiptServiceListGroupReceiptsProcedure, svc.ListGroupReceipts, opts...),
	})
}
