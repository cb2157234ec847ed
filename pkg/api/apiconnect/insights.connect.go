package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/pkg/api"
)

// InsightsServiceName is the fully-qualified name of the InsightsService.
const InsightsServiceName = "catalog.v1.InsightsService"

// Procedure paths of the InsightsService.
const (
	InsightsServiceGetInsightsProcedure     = "/catalog.v1.InsightsService/GetInsights"
	InsightsServiceRefreshInsightsProcedure = "/catalog.v1.InsightsService/RefreshInsights"
	InsightsServiceGetDashboardProcedure    = "/catalog.v1.InsightsService/GetDashboard"
)

// InsightsServiceClient is a client for the catalog.v1.InsightsService service.
type InsightsServiceClient interface {
	GetInsights(context.Context, *connect.Request[api.GetInsightsRequest]) (*connect.Response[api.GetInsightsResponse], error)
	RefreshInsights(context.Context, *connect.Request[api.RefreshInsightsRequest]) (*connect.Response[api.RefreshInsightsResponse], error)
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
}

// NewInsightsServiceClient constructs a client for the catalog.v1.InsightsService service. baseURL
// is the server root, e.g. http://localhost:8080.
func NewInsightsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) InsightsServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &insightsServiceClient{
		getInsights:     connect.NewClient[api.GetInsightsRequest, api.GetInsightsResponse](httpClient, baseURL+InsightsServiceGetInsightsProcedure, opts...),
		refreshInsights: connect.NewClient[api.RefreshInsightsRequest, api.RefreshInsightsResponse](httpClient, baseURL+InsightsServiceRefreshInsightsProcedure, opts...),
		getDashboard:    connect.NewClient[api.GetDashboardRequest, api.GetDashboardResponse](httpClient, baseURL+InsightsServiceGetDashboardProcedure, opts...),
	}
}

type insightsServiceClient struct {
	getInsights     *connect.Client[api.GetInsightsRequest, api.GetInsightsResponse]
	refreshInsights *connect.Client[api.RefreshInsightsRequest, api.RefreshInsightsResponse]
	getDashboard    *connect.Client[api.GetDashboardRequest, api.GetDashboardResponse]
}

func (c *insightsServiceClient) GetInsights(ctx context.Context, req *connect.Request[api.GetInsightsRequest]) (*connect.Response[api.GetInsightsResponse], error) {
	return c.getInsights.CallUnary(ctx, req)
}

func (c *insightsServiceClient) RefreshInsights(ctx context.Context, req *connect.Request[api.RefreshInsightsRequest]) (*connect.Response[api.RefreshInsightsResponse], error) {
	return c.refreshInsights.CallUnary(ctx, req)
}

func (c *insightsServiceClient) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

// InsightsServiceHandler is implemented by the server side of catalog.v1.InsightsService.
type InsightsServiceHandler interface {
	GetInsights(context.Context, *connect.Request[api.GetInsightsRequest]) (*connect.Response[api.GetInsightsResponse], error)
	RefreshInsights(context.Context, *connect.Request[api.RefreshInsightsRequest]) (*connect.Response[api.RefreshInsightsResponse], error)
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
}

// NewInsightsServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewInsightsServiceHandler(svc InsightsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/catalog.v1.InsightsService/", route(map[string]http.Handler{
		InsightsServiceGetInsightsProcedure:     connect.NewUnaryHandler(InsightsServiceGetInsightsProcedure, svc.GetInsights, opts...),
		InsightsServiceRefreshInsightsProcedure: connect.NewUnaryHandler(InsightsServiceRefreshInsightsProcedure, svc.RefreshInsights, opts...),
		InsightsServiceGetDashboardProcedure:    connect.NewUnaryHandler(InsightsServiceGetDashboardProcedure, svc.GetDashboard, opts...),
	})
}
