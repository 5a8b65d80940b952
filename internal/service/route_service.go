package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
	"github.com/kcirtapfromspace/offleash-sub004/internal/schedule"
)

// RouteService builds walkers' daily route plans. Stop order is always
// chronological; the service annotates travel legs and reports the minutes
// saved versus visiting stops in the order they were booked.
type RouteService struct {
	repo       domain.Repository
	estimator  domain.TravelEstimator
	syncWorker domain.SyncWorker
	log        zerolog.Logger
}

func NewRouteService(repo domain.Repository, estimator domain.TravelEstimator, syncWorker domain.SyncWorker, logger *zerolog.Logger) *RouteService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "route_service").Logger()
	}
	return &RouteService{repo: repo, estimator: estimator, syncWorker: syncWorker, log: log}
}

func (s *RouteService) GetRoute(ctx context.Context, orgID, walkerID string, date time.Time) (*models.RoutePlan, error) {
	return s.buildPlan(ctx, orgID, walkerID, date)
}

// OptimizeRoute recomputes the plan with fresh travel estimates and pushes
// the updated schedule to the mirror.
func (s *RouteService) OptimizeRoute(ctx context.Context, orgID, walkerID string, date time.Time) (*models.RoutePlan, error) {
	plan, err := s.buildPlan(ctx, orgID, walkerID, date)
	if err != nil {
		return nil, err
	}

	if s.syncWorker != nil {
		if err := s.syncWorker.EnqueueScheduleMirror(ctx, orgID, walkerID, date); err != nil {
			s.log.Error().Err(err).Msg("failed to enqueue schedule mirror after optimize")
		}
	}
	return plan, nil
}

func (s *RouteService) buildPlan(ctx context.Context, orgID, walkerID string, date time.Time) (*models.RoutePlan, error) {
	bookings, err := s.repo.GetWalkerBookings(ctx, orgID, walkerID, date)
	if err != nil {
		return nil, err
	}

	var cost schedule.CostFunc
	if s.estimator != nil {
		cost = s.estimator.EstimateMinutes
	}
	plan := schedule.BuildRoutePlan(ctx, walkerID, date, bookings, cost)

	if !plan.IsOptimized && len(plan.Stops) > 1 {
		s.log.Warn().
			Str("walker_id", walkerID).
			Str("date", date.Format("2006-01-02")).
			Msg("route served without travel annotations")
	}
	return &plan, nil
}
