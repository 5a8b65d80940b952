package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/events"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// CalendarService manages walkers' working hours and calendar events.
type CalendarService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	log      zerolog.Logger
}

func NewCalendarService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *CalendarService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "calendar_service").Logger()
	}
	return &CalendarService{repo: repo, eventBus: eventBus, log: log}
}

// SetWorkingHours replaces the walker's weekly schedule after validating
// every rule.
func (s *CalendarService) SetWorkingHours(ctx context.Context, orgID, walkerID string, rules []models.WorkingHoursRule) error {
	seen := make(map[int]bool)
	for i := range rules {
		r := &rules[i]
		r.OrgID = orgID
		r.WalkerID = walkerID
		if err := validateWorkingHoursRule(r); err != nil {
			return err
		}
		if seen[r.DayOfWeek] {
			return fmt.Errorf("%w: duplicate rule for weekday %d", ErrInvalidWorkingHours, r.DayOfWeek)
		}
		seen[r.DayOfWeek] = true
	}

	if err := s.repo.ReplaceWorkingHours(ctx, orgID, walkerID, rules); err != nil {
		return err
	}

	s.publishChange(events.EventWorkingHoursChanged, orgID, walkerID, 0, "replace")
	return nil
}

func (s *CalendarService) GetWorkingHours(ctx context.Context, orgID, walkerID string) ([]models.WorkingHoursRule, error) {
	return s.repo.GetWorkingHours(ctx, orgID, walkerID)
}

func (s *CalendarService) CreateEvent(ctx context.Context, ev *models.CalendarEvent) error {
	if !ev.EndAt.After(ev.StartAt) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidCalendarEvent)
	}
	if ev.RecurFrequency != "" && !models.ValidFrequencies[ev.RecurFrequency] {
		return fmt.Errorf("%w: unknown recurrence frequency %q", ErrInvalidCalendarEvent, ev.RecurFrequency)
	}
	if ev.RecurUntil != nil && ev.RecurUntil.Before(ev.StartAt) {
		return fmt.Errorf("%w: recurrence ends before the event starts", ErrInvalidCalendarEvent)
	}

	if err := s.repo.CreateCalendarEvent(ctx, ev); err != nil {
		return err
	}

	s.publishChange(events.EventCalendarChanged, ev.OrgID, ev.WalkerID, ev.ID, "create")
	return nil
}

func (s *CalendarService) ListEvents(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.CalendarEvent, error) {
	return s.repo.GetCalendarEvents(ctx, orgID, walkerID, from, to)
}

// DeleteEvent removes an event, or only one occurrence of a recurring event
// when occurrenceDate is given.
func (s *CalendarService) DeleteEvent(ctx context.Context, orgID string, id int64, occurrenceDate *time.Time) error {
	ev, err := s.repo.GetCalendarEvent(ctx, orgID, id)
	if err != nil {
		return err
	}

	if occurrenceDate != nil {
		if err := s.repo.DeleteEventOccurrence(ctx, orgID, id, *occurrenceDate); err != nil {
			return err
		}
		s.publishChange(events.EventCalendarChanged, orgID, ev.WalkerID, id, "delete_occurrence")
		return nil
	}

	if err := s.repo.DeleteCalendarEvent(ctx, orgID, id); err != nil {
		return err
	}
	s.publishChange(events.EventCalendarChanged, orgID, ev.WalkerID, id, "delete")
	return nil
}

func validateWorkingHoursRule(r *models.WorkingHoursRule) error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidWorkingHours, r.DayOfWeek)
	}

	start, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		return fmt.Errorf("%w: bad start time %q", ErrInvalidWorkingHours, r.StartTime)
	}
	end, err := time.Parse("15:04", r.EndTime)
	if err != nil {
		return fmt.Errorf("%w: bad end time %q", ErrInvalidWorkingHours, r.EndTime)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end %s must be after start %s", ErrInvalidWorkingHours, r.EndTime, r.StartTime)
	}

	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidWorkingHours, r.Timezone)
		}
	}
	return nil
}

func (s *CalendarService) publishChange(eventType, orgID, walkerID string, eventID int64, action string) {
	if s.eventBus == nil {
		return
	}
	payload := events.CalendarEventPayload{
		OrgID:    orgID,
		WalkerID: walkerID,
		EventID:  eventID,
		Action:   action,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to publish calendar event")
	}
}
