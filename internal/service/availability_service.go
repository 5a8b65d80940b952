package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/config"
	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
	"github.com/kcirtapfromspace/offleash-sub004/internal/schedule"
)

// AvailabilityService answers "when can this walker take this service" by
// combining working hours, blocking events and the booking ledger.
type AvailabilityService struct {
	repo      domain.Repository
	catalog   *Catalog
	generator *schedule.SlotGenerator
	log       zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, catalog *Catalog, estimator domain.TravelEstimator, cfg config.SchedulingConfig, logger *zerolog.Logger) *AvailabilityService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "availability_service").Logger()
	}

	var estimate schedule.TravelEstimateFunc
	if estimator != nil {
		estimate = estimator.EstimateMinutes
	}
	generator := schedule.NewSlotGenerator(schedule.SlotConfig{
		Granularity:  time.Duration(cfg.SlotGranularityMinutes) * time.Minute,
		TravelBuffer: time.Duration(cfg.TravelBufferMinutes) * time.Minute,
	}, estimate)

	return &AvailabilityService{
		repo:      repo,
		catalog:   catalog,
		generator: generator,
		log:       log,
	}
}

// maxAvailabilityRangeDays bounds a range query so one request cannot walk
// the whole booking horizon.
const maxAvailabilityRangeDays = 31

// GetAvailableSlotsRange expands the day query over a civil date range,
// inclusive on both ends. With an empty walkerID every walker on the
// service's roster is consulted; a roster-less service needs an explicit
// walker because there is no walker registry to enumerate.
func (s *AvailabilityService) GetAvailableSlotsRange(ctx context.Context, orgID, walkerID, serviceID string, startDate, endDate time.Time) ([]models.Slot, error) {
	svc, err := s.catalog.Get(serviceID)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidDateRange,
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if days > maxAvailabilityRangeDays {
		return nil, fmt.Errorf("%w: %d days exceeds the %d day limit", ErrInvalidDateRange, days, maxAvailabilityRangeDays)
	}

	walkers := []string{walkerID}
	if walkerID == "" {
		if len(svc.WalkerIDs) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrWalkerRequired, serviceID)
		}
		walkers = svc.WalkerIDs
	}

	var all []models.Slot
	for _, w := range walkers {
		for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
			slots, err := s.GetAvailableSlots(ctx, orgID, w, serviceID, day)
			if err != nil {
				return nil, err
			}
			all = append(all, slots...)
		}
	}
	return all, nil
}

// GetAvailableSlots returns every bookable slot for the walker, service and
// civil date. Slots are advisory; the booking write re-checks conflicts
// atomically.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, orgID, walkerID, serviceID string, date time.Time) ([]models.Slot, error) {
	svc, err := s.catalog.CheckEligibility(serviceID, walkerID)
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.GetWorkingHours(ctx, orgID, walkerID)
	if err != nil {
		return nil, err
	}
	calendar := schedule.NewWorkingHoursCalendar(rules)
	working := calendar.IntervalsFor(date.Year(), date.Month(), date.Day())
	if len(working) == 0 {
		return []models.Slot{}, nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	// Working hours in a walker's timezone can reach into the neighbor UTC
	// days, so the event and booking windows are padded by a day each way.
	from := dayStart.AddDate(0, 0, -1)
	to := dayStart.AddDate(0, 0, 2)

	eventsList, err := s.repo.GetCalendarEvents(ctx, orgID, walkerID, from, to)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.repo.GetEventExceptions(ctx, orgID, walkerID)
	if err != nil {
		return nil, err
	}
	blocking := schedule.BlockingIntervals(eventsList, exceptions, from, to)

	bookings, err := s.repo.GetWalkerBookingsInRange(ctx, orgID, walkerID, from, to)
	if err != nil {
		return nil, err
	}

	day := schedule.DaySchedule{
		WalkerID: walkerID,
		Working:  working,
		Blocking: blocking,
		Bookings: bookings,
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute
	slots := s.generator.SlotsForDay(ctx, day, duration)

	s.log.Debug().
		Str("walker_id", walkerID).
		Str("service_id", serviceID).
		Str("date", dayStart.Format("2006-01-02")).
		Int("slots", len(slots)).
		Msg("computed availability")
	return slots, nil
}
