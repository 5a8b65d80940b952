package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/database"
	"github.com/kcirtapfromspace/offleash-sub004/internal/metrics"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
	"github.com/kcirtapfromspace/offleash-sub004/internal/schedule"
	"github.com/kcirtapfromspace/offleash-sub004/internal/service"
)

const civilDateLayout = "2006-01-02"

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"services": s.services.Catalog.Active()})
}

func (s *HTTPServer) handleAvailabilitySlots(w http.ResponseWriter, r *http.Request) {
	walkerID := r.PathValue("walker_id")
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if serviceID == "" {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}

	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	slots, err := s.services.Availability.GetAvailableSlots(r.Context(), OrgFromContext(r.Context()), walkerID, serviceID, date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncSlotQuery()

	if slots == nil {
		slots = []models.Slot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"walker_id":  walkerID,
		"date":       date.Format(civilDateLayout),
		"service_id": serviceID,
		"slots":      slots,
	})
}

func (s *HTTPServer) handleAvailabilityRange(w http.ResponseWriter, r *http.Request) {
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if serviceID == "" {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}

	startDate, ok := queryDate(w, r, "start_date")
	if !ok {
		return
	}
	endDate, ok := queryDate(w, r, "end_date")
	if !ok {
		return
	}
	walkerID := strings.TrimSpace(r.URL.Query().Get("walker_id"))

	slots, err := s.services.Availability.GetAvailableSlotsRange(r.Context(), OrgFromContext(r.Context()), walkerID, serviceID, startDate, endDate)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	metrics.IncSlotQuery()

	if slots == nil {
		slots = []models.Slot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service_id": serviceID,
		"start_date": startDate.Format(civilDateLayout),
		"end_date":   endDate.Format(civilDateLayout),
		"walker_id":  walkerID,
		"slots":      slots,
	})
}

func (s *HTTPServer) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	s.serveRoute(w, r, false)
}

func (s *HTTPServer) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	s.serveRoute(w, r, true)
}

func (s *HTTPServer) serveRoute(w http.ResponseWriter, r *http.Request, optimize bool) {
	walkerID := r.PathValue("walker_id")
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	var (
		plan *models.RoutePlan
		err  error
	)
	if optimize {
		plan, err = s.services.Routes.OptimizeRoute(r.Context(), OrgFromContext(r.Context()), walkerID, date)
	} else {
		plan, err = s.services.Routes.GetRoute(r.Context(), OrgFromContext(r.Context()), walkerID, date)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	metrics.IncRoutePlan(plan.IsOptimized)
	writeJSON(w, http.StatusOK, plan)
}

func (s *HTTPServer) handleGetWorkingHours(w http.ResponseWriter, r *http.Request) {
	walkerID := r.PathValue("walker_id")
	rules, err := s.services.Calendar.GetWorkingHours(r.Context(), OrgFromContext(r.Context()), walkerID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if rules == nil {
		rules = []models.WorkingHoursRule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"walker_id": walkerID, "rules": rules})
}

func (s *HTTPServer) handleSetWorkingHours(w http.ResponseWriter, r *http.Request) {
	walkerID := r.PathValue("walker_id")

	var body struct {
		Rules []models.WorkingHoursRule `json:"rules"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.services.Calendar.SetWorkingHours(r.Context(), OrgFromContext(r.Context()), walkerID, body.Rules); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"walker_id": walkerID, "rules_count": len(body.Rules)})
}

func (s *HTTPServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	walkerID := r.PathValue("walker_id")
	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}

	events, err := s.services.Calendar.ListEvents(r.Context(), OrgFromContext(r.Context()), walkerID, from, to.AddDate(0, 0, 1))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"walker_id": walkerID, "events": events})
}

func (s *HTTPServer) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev models.CalendarEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	ev.OrgID = OrgFromContext(r.Context())

	if err := s.services.Calendar.CreateEvent(r.Context(), &ev); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *HTTPServer) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var occurrence *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("occurrence_date")); raw != "" {
		parsed, err := time.ParseInLocation(civilDateLayout, raw, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid occurrence_date format; expected YYYY-MM-DD")
			return
		}
		occurrence = &parsed
	}

	if err := s.services.Calendar.DeleteEvent(r.Context(), OrgFromContext(r.Context()), id, occurrence); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type createBookingRequest struct {
	WalkerID   string    `json:"walker_id"`
	CustomerID string    `json:"customer_id"`
	ServiceID  string    `json:"service_id"`
	LocationID string    `json:"location_id"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	PriceCents int64     `json:"price_cents"`
	Notes      string    `json:"notes"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.WalkerID == "" || body.CustomerID == "" || body.ServiceID == "" {
		writeError(w, http.StatusBadRequest, "walker_id, customer_id and service_id are required")
		return
	}
	if body.StartAt.IsZero() {
		writeError(w, http.StatusBadRequest, "start_at is required")
		return
	}

	endAt := body.EndAt
	if endAt.IsZero() {
		if svc, err := s.services.Catalog.Get(body.ServiceID); err == nil {
			endAt = body.StartAt.Add(time.Duration(svc.DurationMinutes) * time.Minute)
		}
	}

	booking := &models.Booking{
		OrgID:      OrgFromContext(r.Context()),
		WalkerID:   body.WalkerID,
		CustomerID: body.CustomerID,
		ServiceID:  body.ServiceID,
		LocationID: body.LocationID,
		StartAt:    body.StartAt.UTC(),
		EndAt:      endAt.UTC(),
		Status:     models.StatusPending,
		PriceCents: body.PriceCents,
		Notes:      body.Notes,
	}

	if err := s.services.Bookings.CreateBooking(r.Context(), booking); err != nil {
		if errors.Is(err, database.ErrSlotUnavailable) {
			metrics.IncBookingConflict()
		}
		s.writeServiceError(w, err)
		return
	}

	metrics.IncBookingCreated()
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := s.services.Bookings.GetBooking(r.Context(), OrgFromContext(r.Context()), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleTransitionBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		ToStatus string `json:"to_status"`
		Version  int64  `json:"version"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ToStatus == "" {
		writeError(w, http.StatusBadRequest, "to_status is required")
		return
	}

	booking, err := s.services.Bookings.TransitionBooking(r.Context(), OrgFromContext(r.Context()), id, body.Version, body.ToStatus)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	metrics.IncBookingTransition(body.ToStatus)
	writeJSON(w, http.StatusOK, booking)
}

type createSeriesRequest struct {
	WalkerID        string     `json:"walker_id"`
	CustomerID      string     `json:"customer_id"`
	ServiceID       string     `json:"service_id"`
	LocationID      string     `json:"location_id"`
	Frequency       string     `json:"frequency"`
	StartAt         time.Time  `json:"start_at"`
	DurationMinutes int        `json:"duration_minutes"`
	OccurrenceCount int        `json:"occurrence_count"`
	UntilDate       *time.Time `json:"until_date"`
}

func (s *HTTPServer) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	var body createSeriesRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.WalkerID == "" || body.CustomerID == "" || body.ServiceID == "" {
		writeError(w, http.StatusBadRequest, "walker_id, customer_id and service_id are required")
		return
	}

	duration := body.DurationMinutes
	if duration == 0 {
		if svc, err := s.services.Catalog.Get(body.ServiceID); err == nil {
			duration = svc.DurationMinutes
		}
	}

	series := &models.RecurringBookingSeries{
		OrgID:           OrgFromContext(r.Context()),
		WalkerID:        body.WalkerID,
		CustomerID:      body.CustomerID,
		ServiceID:       body.ServiceID,
		LocationID:      body.LocationID,
		Frequency:       body.Frequency,
		StartAt:         body.StartAt.UTC(),
		DurationMinutes: duration,
		OccurrenceCount: body.OccurrenceCount,
		UntilDate:       body.UntilDate,
	}

	expansion, err := s.services.Series.CreateSeries(r.Context(), series)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"series":        series,
		"created_count": len(expansion.Created),
		"skipped_count": len(expansion.Skipped),
		"created":       expansion.Created,
		"skipped":       expansion.Skipped,
	})
}

func (s *HTTPServer) handleCancelSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Scope string `json:"scope"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Scope != models.CancelScopeAllFuture && body.Scope != models.CancelScopeEntireSeries {
		writeError(w, http.StatusBadRequest, "scope must be all_future or entire_series")
		return
	}

	cancelled, err := s.services.Series.CancelSeries(r.Context(), OrgFromContext(r.Context()), id, body.Scope)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series_id": id, "cancelled_count": cancelled, "scope": body.Scope})
}

func (s *HTTPServer) handleSeriesBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	bookings, err := s.services.Series.GetSeriesBookings(r.Context(), OrgFromContext(r.Context()), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"series_id": id, "bookings": bookings})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.services.Exporter == nil {
		writeError(w, http.StatusNotImplemented, "exports are not configured")
		return
	}

	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	from, err := time.ParseInLocation(civilDateLayout, body.From, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
		return
	}
	to, err := time.ParseInLocation(civilDateLayout, body.To, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
		return
	}

	path, err := s.services.Exporter.ExportSchedule(r.Context(), OrgFromContext(r.Context()), from, to)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_path": path})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, service.ErrUnknownService):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrSlotUnavailable), errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidTransition), errors.Is(err, service.ErrWalkerNotEligible):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, service.ErrInvalidInterval),
		errors.Is(err, service.ErrInvalidWorkingHours),
		errors.Is(err, service.ErrInvalidCalendarEvent),
		errors.Is(err, service.ErrWalkerRequired),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, schedule.ErrInvalidRecurrenceRule):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func queryDate(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		writeError(w, http.StatusBadRequest, param+" is required")
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(civilDateLayout, raw, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+param+" format; expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
