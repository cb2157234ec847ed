package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/pkg/api"
)

// AccountServiceName is the fully-qualified name of the AccountService.
const AccountServiceName = "catalog.v1.AccountService"

// Procedure paths of the AccountService.
const (
	AccountServiceEnsureAccountProcedure        = "/catalog.v1.AccountService/EnsureAccount"
	AccountServiceGetMeProcedure                = "/catalog.v1.AccountService/GetMe"
	AccountServiceListNotificationsProcedure    = "/catalog.v1.AccountService/ListNotifications"
	AccountServiceMarkNotificationReadProcedure = "/catalog.v1.AccountService/MarkNotificationRead"
	AccountServiceDismissNotificationProcedure  = "/catalog.v1.AccountService/DismissNotification"
)

// AccountServiceClient is a client for the catalog.v1.AccountService service.
type AccountServiceClient interface {
	EnsureAccount(context.Context, *connect.Request[api.EnsureAccountRequest]) (*connect.Response[api.EnsureAccountResponse], error)
	GetMe(context.Context, *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error)
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	MarkNotificationRead(context.Context, *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error)
	DismissNotification(context.Context, *connect.Request[api.DismissNotificationRequest]) (*connect.Response[api.DismissNotificationResponse], error)
}

// NewAccountServiceClient constructs a client for the catalog.v1.AccountService service. baseURL
// is the server root, e.g. http://localhost:8080.
func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AccountServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &accountServiceClient{
		ensureAccount:        connect.NewClient[api.EnsureAccountRequest, api.EnsureAccountResponse](httpClient, baseURL+AccountServiceEnsureAccountProcedure, opts...),
		getMe:                connect.NewClient[api.GetMeRequest, api.GetMeResponse](httpClient, baseURL+AccountServiceGetMeProcedure, opts...),
		listNotifications:    connect.NewClient[api.ListNotificationsRequest, api.ListNotificationsResponse](httpClient, baseURL+AccountServiceListNotificationsProcedure, opts...),
		markNotificationRead: connect.NewClient[api.MarkNotificationReadRequest, api.MarkNotificationReadResponse](httpClient, baseURL+AccountServiceMarkNotificationReadProcedure, opts...),
		dismissNotification:  connect.NewClient[api.DismissNotificationRequest, api.DismissNotificationResponse](httpClient, baseURL+AccountServiceDismissNotificationProcedure, opts...),
	}
}

type accountServiceClient struct {
	ensureAccount        *connect.Client[api.EnsureAccountRequest, api.EnsureAccountResponse]
	getMe                *connect.Client[api.GetMeRequest, api.GetMeResponse]
	listNotifications    *connect.Client[api.ListNotificationsRequest, api.ListNotificationsResponse]
	markNotificationRead *connect.Client[api.MarkNotificationReadRequest, api.MarkNotificationReadResponse]
	dismissNotification  *connect.Client[api.DismissNotificationRequest, api.DismissNotificationResponse]
}

func (c *accountServiceClient) EnsureAccount(ctx context.Context, req *connect.Request[api.EnsureAccountRequest]) (*connect.Response[api.EnsureAccountResponse], error) {
	return c.ensureAccount.CallUnary(ctx, req)
}

func (c *accountServiceClient) GetMe(ctx context.Context, req *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error) {
	return c.getMe.CallUnary(ctx, req)
}

func (c *accountServiceClient) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *accountServiceClient) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	return c.markNotificationRead.CallUnary(ctx, req)
}

func (c *accountServiceClient) DismissNotification(ctx context.Context, req *connect.Request[api.DismissNotificationRequest]) (*connect.Response[api.DismissNotificationResponse], error) {
	return c.dismissNotification.CallUnary(ctx, req)
}

// AccountServiceHandler is implemented by the server side of catalog.v1.AccountService.
type AccountServiceHandler interface {
	EnsureAccount(context.Context, *connect.Request[api.EnsureAccountRequest]) (*connect.Response[api.EnsureAccountResponse], error)
	GetMe(context.Context, *connect.Request[api.GetMeRequest]) (*connect.Response[api.GetMeResponse], error)
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	MarkNotificationRead(context.Context, *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error)
	DismissNotification(context.Context, *connect.Request[api.DismissNotificationRequest]) (*connect.Response[api.DismissNotificationResponse], error)
}

// NewAccountServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/catalog.v1.AccountService/", route(map[string]http.Handler{
		AccountServiceEnsureAccountProcedure:        connect.NewUnaryHandler(AccountServiceEnsureAccountProcedure, svc.EnsureAccount, opts...),
		AccountServiceGetMeProcedure:                connect.NewUnaryHandler(AccountServiceGetMeProcedure, svc.GetMe, opts...),
		AccountServiceListNotificationsProcedure:    connect.NewUnaryHandler(AccountServiceListNotificationsProcedure, svc.ListNotifications, opts...),
		AccountServiceMarkNotificationReadProcedure: connect.NewUnaryHandler(AccountServiceMarkNotificationReadProcedure, svc.MarkNotificationRead, opts...),
		AccountServiceDismissNotificationProcedure:  connect.NewUnaryHandler(AccountServiceDismissNotificationProcedure, svc.DismissNotification, opts...),
	})
}
