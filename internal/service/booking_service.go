package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/database"
	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/events"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

type BookingService struct {
	repo           domain.Repository
	catalog        *Catalog
	eventBus       domain.EventPublisher
	syncWorker     domain.SyncWorker
	maxBookingDays int
	log            zerolog.Logger
}

func NewBookingService(repo domain.Repository, catalog *Catalog, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "booking_service").Logger()
	}
	return &BookingService{
		repo:           repo,
		catalog:        catalog,
		eventBus:       eventBus,
		syncWorker:     syncWorker,
		maxBookingDays: maxBookingDays,
		log:            log,
	}
}

func (s *BookingService) ValidateBookingDate(date time.Time) error {
	now := time.Now()
	if date.Before(now) {
		return database.ErrPastDate
	}
	if date.After(now.AddDate(0, 0, s.maxBookingDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// CreateBooking validates the request and writes it through the locked path.
// The overlap guard runs inside the write transaction, so two concurrent
// requests for the same window resolve to one winner.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if !booking.EndAt.After(booking.StartAt) {
		return ErrInvalidInterval
	}
	if err := s.ValidateBookingDate(booking.StartAt); err != nil {
		return err
	}

	svc, err := s.catalog.CheckEligibility(booking.ServiceID, booking.WalkerID)
	if err != nil {
		return err
	}
	if booking.PriceCents == 0 {
		booking.PriceCents = svc.PriceCents
	}

	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		return err
	}

	s.publish(events.EventBookingCreated, booking)
	s.enqueueSync(ctx, "upsert_booking", booking)
	return nil
}

// TransitionBooking moves a booking through its status machine. A zero
// version skips the optimistic check.
func (s *BookingService) TransitionBooking(ctx context.Context, orgID string, id, version int64, toStatus string) (*models.Booking, error) {
	booking, err := s.repo.TransitionBookingStatus(ctx, orgID, id, version, toStatus)
	if err != nil {
		return nil, err
	}

	if eventType, ok := statusEvents[toStatus]; ok {
		s.publish(eventType, booking)
	}
	s.enqueueSync(ctx, "update_status", booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, orgID string, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, orgID, id)
}

func (s *BookingService) GetBookingsByDateRange(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, orgID, from, to)
}

var statusEvents = map[string]string{
	models.StatusConfirmed:  events.EventBookingConfirmed,
	models.StatusInProgress: events.EventBookingStarted,
	models.StatusCompleted:  events.EventBookingCompleted,
	models.StatusCancelled:  events.EventBookingCancelled,
}

func (s *BookingService) publish(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, events.PayloadForBooking(booking)); err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to publish booking event")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}
	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking); err != nil {
		s.log.Error().Err(err).Str("task_type", taskType).Msg("failed to enqueue sync task")
	}
	if err := s.syncWorker.EnqueueScheduleMirror(ctx, booking.OrgID, booking.WalkerID, booking.StartAt); err != nil {
		s.log.Error().Err(err).Msg("failed to enqueue schedule mirror")
	}
}
