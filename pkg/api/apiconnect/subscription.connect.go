package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/pkg/api"
)

// SubscriptionServiceName is the fully-qualified name of the SubscriptionService.
const SubscriptionServiceName = "catalog.v1.SubscriptionService"

// Procedure paths of the SubscriptionService.
const (
	SubscriptionServiceCreateSubscriptionProcedure   = "/catalog.v1.SubscriptionService/CreateSubscription"
	SubscriptionServiceListSubscriptionsProcedure    = "/catalog.v1.SubscriptionService/ListSubscriptions"
	SubscriptionServiceUpdateSubscriptionProcedure   = "/catalog.v1.SubscriptionService/UpdateSubscription"
	SubscriptionServiceDeleteSubscriptionProcedure   = "/catalog.v1.SubscriptionService/DeleteSubscription"
	SubscriptionServiceListUpcomingRenewalsProcedure = "/catalog.v1.SubscriptionService/ListUpcomingRenewals"
	SubscriptionServiceAdvanceRenewalProcedure       = "/catalog.v1.SubscriptionService/AdvanceRenewal"
)

// SubscriptionServiceClient is a client for the catalog.v1.SubscriptionService service.
type SubscriptionServiceClient interface {
	CreateSubscription(context.Context, *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error)
	ListSubscriptions(context.Context, *connect.Request[api.ListSubscriptionsRequest]) (*connect.Response[api.ListSubscriptionsResponse], error)
	UpdateSubscription(context.Context, *connect.Request[api.UpdateSubscriptionRequest]) (*connect.Response[api.UpdateSubscriptionResponse], error)
	DeleteSubscription(context.Context, *connect.Request[api.DeleteSubscriptionRequest]) (*connect.Response[api.DeleteSubscriptionResponse], error)
	ListUpcomingRenewals(context.Context, *connect.Request[api.ListUpcomingRenewalsRequest]) (*connect.Response[api.ListUpcomingRenewalsResponse], error)
	AdvanceRenewal(context.Context, *connect.Request[api.AdvanceRenewalRequest]) (*connect.Response[api.AdvanceRenewalResponse], error)
}

// NewSubscriptionServiceClient constructs a client for the catalog.v1.SubscriptionService service. baseURL
// is the server root, e.g. http://localhost:8080.
func NewSubscriptionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SubscriptionServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &subscriptionServiceClient{
		createSubscription:   connect.NewClient[api.CreateSubscriptionRequest, api.CreateSubscriptionResponse](httpClient, baseURL+SubscriptionServiceCreateSubscriptionProcedure, opts...),
		listSubscriptions:    connect.NewClient[api.ListSubscriptionsRequest, api.ListSubscriptionsResponse](httpClient, baseURL+SubscriptionServiceListSubscriptionsProcedure, opts...),
		updateSubscription:   connect.NewClient[api.UpdateSubscriptionRequest, api.UpdateSubscriptionResponse](httpClient, baseURL+SubscriptionServiceUpdateSubscriptionProcedure, opts...),
		deleteSubscription:   connect.NewClient[api.DeleteSubscriptionRequest, api.DeleteSubscriptionResponse](httpClient, baseURL+SubscriptionServiceDeleteSubscriptionProcedure, opts...),
		listUpcomingRenewals: connect.NewClient[api.ListUpcomingRenewalsRequest, api.ListUpcomingRenewalsResponse](httpClient, baseURL+SubscriptionServiceListUpcomingRenewalsProcedure, opts...),
		advanceRenewal:       connect.NewClient[api.AdvanceRenewalRequest, api.AdvanceRenewalResponse](httpClient, baseURL+SubscriptionServiceAdvanceRenewalProcedure, opts...),
	}
}

type subscriptionServiceClient struct {
	createSubscription   *connect.Client[api.CreateSubscriptionRequest, api.CreateSubscriptionResponse]
	listSubscriptions    *connect.Client[api.ListSubscriptionsRequest, api.ListSubscriptionsResponse]
	updateSubscription   *connect.Client[api.UpdateSubscriptionRequest, api.UpdateSubscriptionResponse]
	deleteSubscription   *connect.Client[api.DeleteSubscriptionRequest, api.DeleteSubscriptionResponse]
	listUpcomingRenewals *connect.Client[api.ListUpcomingRenewalsRequest, api.ListUpcomingRenewalsResponse]
	advanceRenewal       *connect.Client[api.AdvanceRenewalRequest, api.AdvanceRenewalResponse]
}

func (c *subscriptionServiceClient) CreateSubscription(ctx context.Context, req *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error) {
	return c.createSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) ListSubscriptions(ctx context.Context, req *connect.Request[api.ListSubscriptionsRequest]) (*connect.Response[api.ListSubscriptionsResponse], error) {
	return c.listSubscriptions.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) UpdateSubscription(ctx context.Context, req *connect.Request[api.UpdateSubscriptionRequest]) (*connect.Response[api.UpdateSubscriptionResponse], error) {
	return c.updateSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) DeleteSubscription(ctx context.Context, req *connect.Request[api.DeleteSubscriptionRequest]) (*connect.Response[api.DeleteSubscriptionResponse], error) {
	return c.deleteSubscription.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) ListUpcomingRenewals(ctx context.Context, req *connect.Request[api.ListUpcomingRenewalsRequest]) (*connect.Response[api.ListUpcomingRenewalsResponse], error) {
	return c.listUpcomingRenewals.CallUnary(ctx, req)
}

func (c *subscriptionServiceClient) AdvanceRenewal(ctx context.Context, req *connect.Request[api.AdvanceRenewalRequest]) (*connect.Response[api.AdvanceRenewalResponse], error) {
	return c.advanceRenewal.CallUnary(ctx, req)
}

// SubscriptionServiceHandler is implemented by the server side of catalog.v1.SubscriptionService.
type SubscriptionServiceHandler interface {
	CreateSubscription(context.Context, *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error)
	ListSubscriptions(context.Context, *connect.Request[api.ListSubscriptionsRequest]) (*connect.Response[api.ListSubscriptionsResponse], error)
	UpdateSubscription(context.Context, *connect.Request[api.UpdateSubscriptionRequest]) (*connect.Response[api.UpdateSubscriptionResponse], error)
	DeleteSubscription(context.Context, *connect.Request[api.DeleteSubscriptionRequest]) (*connect.Response[api.DeleteSubscriptionResponse], error)
	ListUpcomingRenewals(context.Context, *connect.Request[api.ListUpcomingRenewalsRequest]) (*connect.Response[api.ListUpcomingRenewalsResponse], error)
	AdvanceRenewal(context.Context, *connect.Request[api.AdvanceRenewalRequest]) (*connect.Response[api.AdvanceRenewalResponse], error)
}

// NewSubscriptionServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewSubscriptionServiceHandler(svc SubscriptionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/catalog.v1.SubscriptionService/", route(map[string]http.Handler{
		SubscriptionServiceCreateSubscriptionProcedure:   connect.NewUnaryHandler(SubscriptionServiceCreateSubscriptionProcedure, svc.CreateSubscription, opts...),
		SubscriptionServiceListSubscriptionsProcedure:    connect.NewUnaryHandler(SubscriptionServiceListSubscriptionsProcedure, svc.ListSubscriptions, opts...),
		SubscriptionServiceUpdateSubscriptionProcedure:   connect.NewUnaryHandler(SubscriptionServiceUpdateSubscriptionProcedure, svc.UpdateSubscription, opts...),
		SubscriptionServiceDeleteSubscriptionProcedure:   connect.NewUnaryHandler(SubscriptionServiceDeleteSubscriptionProcedure, svc.DeleteSubscription, opts...),
		SubscriptionServiceListUpcomingRenewalsProcedure: connect.NewUnaryHandler(SubscriptionServiceListUpcomingRenewalsProcedure, svc.ListUpcomingRenewals, opts...),
		SubscriptionServiceAdvanceRenewalProcedure:       connect.NewUnaryHandler(SubscriptionServiceAdvanceRenewalProcedure, svc.AdvanceRenewal, opts...),
	})
}
