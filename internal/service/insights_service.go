package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/catalog/internal/insights"
	"github.com/mmynk/catalog/internal/middleware"
	"github.com/mmynk/catalog/internal/models"
	"github.com/mmynk/catalog/internal/storage"
	"github.com/mmynk/catalog/pkg/api"
	"github.com/mmynk/catalog/pkg/api/apiconnect"
)

var _ apiconnect.InsightsServiceHandler = (*InsightsService)(nil)

// InsightsService implements the Connect InsightsService.
type InsightsService struct {
	accounts   *accounts
	aggregator *insights.Aggregator
}

// NewInsightsService creates a new InsightsService.
func NewInsightsService(store storage.Store, aggregator *insights.Aggregator) *InsightsService {
	return &InsightsService{accounts: newAccounts(store), aggregator: aggregator}
}

// GetInsights returns today's snapshot for one period, computing it when
// none exists yet.
func (s *InsightsService) GetInsights(ctx context.Context, req *connect.Request[api.GetInsightsRequest]) (*connect.Response[api.GetInsightsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	period, err := models.ParsePeriod(req.Msg.Period)
	if err != nil {
		return nil, connectError(err)
	}
	slog.Info("GetInsights request received", "user_id", userID, "period", period)

	in, err := s.aggregator.Snapshot(ctx, userID, middleware.GetClientIP(ctx), period)
	if err != nil {
		slog.Error("GetInsights failed", "user_id", userID, "period", period, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetInsightsResponse{Insight: toAPIInsight(in)}), nil
}

// RefreshInsights recomputes every period and returns the new snapshots.
func (s *InsightsService) RefreshInsights(ctx context.Context, req *connect.Request[api.RefreshInsightsRequest]) (*connect.Response[api.RefreshInsightsResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}
	clientIP := middleware.GetClientIP(ctx)

	if err := s.aggregator.Refresh(ctx, userID, clientIP); err != nil {
		slog.Error("RefreshInsights failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Insight, 0, len(models.Periods))
	for _, period := range models.Periods {
		in, err := s.aggregator.Snapshot(ctx, userID, clientIP, period)
		if err != nil {
			return nil, connectError(err)
		}
		out = append(out, toAPIInsight(in))
	}

	slog.Info("Insights refreshed", "user_id", userID)
	return connect.NewResponse(&api.RefreshInsightsResponse{Insights: out}), nil
}

// GetDashboard returns the home screen summary.
func (s *InsightsService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	userID, err := s.accounts.caller(ctx)
	if err != nil {
		return nil, err
	}

	dashboard, err := s.aggregator.Dashboard(ctx, userID, middleware.GetClientIP(ctx))
	if err != nil {
		slog.Error("GetDashboard failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetDashboardResponse{Dashboard: toAPIDashboard(dashboard)}), nil
}
