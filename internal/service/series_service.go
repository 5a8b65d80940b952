package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/events"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
	"github.com/kcirtapfromspace/offleash-sub004/internal/schedule"
)

// SeriesService expands recurring booking requests into concrete occurrences
// and manages their lifecycle as a group.
type SeriesService struct {
	repo       domain.Repository
	catalog    *Catalog
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	log        zerolog.Logger
}

func NewSeriesService(repo domain.Repository, catalog *Catalog, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *SeriesService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "series_service").Logger()
	}
	return &SeriesService{
		repo:       repo,
		catalog:    catalog,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		log:        log,
	}
}

// CreateSeries validates the recurrence rule, expands it and writes the
// series with its occurrences atomically. Occurrences landing on already
// booked windows are skipped and reported back, not treated as failures.
func (s *SeriesService) CreateSeries(ctx context.Context, series *models.RecurringBookingSeries) (*models.SeriesExpansion, error) {
	if _, err := s.catalog.CheckEligibility(series.ServiceID, series.WalkerID); err != nil {
		return nil, err
	}

	occurrences, err := schedule.ExpandSeries(series)
	if err != nil {
		return nil, err
	}

	expansion, err := s.repo.CreateSeriesWithBookings(ctx, series, occurrences)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("series_id", series.ID).
		Int("created", len(expansion.Created)).
		Int("skipped", len(expansion.Skipped)).
		Msg("recurring series created")

	s.publishSeries(events.EventSeriesCreated, series, events.SeriesEventPayload{
		CreatedCount: len(expansion.Created),
		SkippedCount: len(expansion.Skipped),
	})
	if s.syncWorker != nil && len(expansion.Created) > 0 {
		if err := s.syncWorker.EnqueueScheduleMirror(ctx, series.OrgID, series.WalkerID, series.StartAt); err != nil {
			s.log.Error().Err(err).Msg("failed to enqueue schedule mirror")
		}
	}
	return expansion, nil
}

// CancelSeries cancels the series' occurrences for the requested scope.
func (s *SeriesService) CancelSeries(ctx context.Context, orgID string, seriesID int64, scope string) (int64, error) {
	cancelled, err := s.repo.CancelSeries(ctx, orgID, seriesID, scope, time.Now())
	if err != nil {
		return 0, err
	}

	series, err := s.repo.GetSeries(ctx, orgID, seriesID)
	if err == nil {
		s.publishSeries(events.EventSeriesCancelled, series, events.SeriesEventPayload{
			CancelledCount: cancelled,
			Scope:          scope,
		})
		if s.syncWorker != nil {
			if err := s.syncWorker.EnqueueScheduleMirror(ctx, orgID, series.WalkerID, series.StartAt); err != nil {
				s.log.Error().Err(err).Msg("failed to enqueue schedule mirror")
			}
		}
	}
	return cancelled, nil
}

func (s *SeriesService) GetSeriesBookings(ctx context.Context, orgID string, seriesID int64) ([]*models.Booking, error) {
	return s.repo.GetSeriesBookings(ctx, orgID, seriesID)
}

func (s *SeriesService) publishSeries(eventType string, series *models.RecurringBookingSeries, payload events.SeriesEventPayload) {
	if s.eventBus == nil {
		return
	}
	payload.SeriesID = series.ID
	payload.Reference = series.Reference
	payload.OrgID = series.OrgID
	payload.WalkerID = series.WalkerID
	payload.CustomerID = series.CustomerID
	payload.Frequency = series.Frequency
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to publish series event")
	}
}
