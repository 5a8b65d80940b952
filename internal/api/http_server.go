package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/config"
	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/metrics"
	"github.com/kcirtapfromspace/offleash-sub004/internal/service"
)

// ScheduleExporter renders a date range to a file and returns its path.
type ScheduleExporter interface {
	ExportSchedule(ctx context.Context, orgID string, startDate, endDate time.Time) (string, error)
}

// Services bundles everything the HTTP layer dispatches into.
type Services struct {
	Availability domain.AvailabilityService
	Bookings     domain.BookingOperations
	Routes       domain.RouteOperations
	Series       domain.SeriesOperations
	Calendar     domain.CalendarOperations
	Catalog      *service.Catalog
	Exporter     ScheduleExporter
}

// HTTPServer exposes the scheduling API.
type HTTPServer struct {
	cfg      config.APIConfig
	services Services
	server   *http.Server
	mux      *http.ServeMux
	auth     *HTTPAuth
	log      zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, services Services, logger *zerolog.Logger) *HTTPServer {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "http").Logger()
	}

	srv := &HTTPServer{cfg: cfg, services: services, log: log}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	srv.mux = mux
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /api/v1/services", srv.handleListServices)
	mux.HandleFunc("GET /api/v1/availability-slots", srv.handleAvailabilityRange)
	mux.HandleFunc("GET /api/v1/walkers/{walker_id}/availability-slots", srv.handleAvailabilitySlots)
	mux.HandleFunc("GET /api/v1/walkers/{walker_id}/route", srv.handleGetRoute)
	mux.HandleFunc("POST /api/v1/walkers/{walker_id}/route/optimize", srv.handleOptimizeRoute)
	mux.HandleFunc("GET /api/v1/walkers/{walker_id}/working-hours", srv.handleGetWorkingHours)
	mux.HandleFunc("PUT /api/v1/walkers/{walker_id}/working-hours", srv.handleSetWorkingHours)
	mux.HandleFunc("GET /api/v1/walkers/{walker_id}/calendar-events", srv.handleListEvents)
	mux.HandleFunc("POST /api/v1/calendar-events", srv.handleCreateEvent)
	mux.HandleFunc("DELETE /api/v1/calendar-events/{id}", srv.handleDeleteEvent)
	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}", srv.handleGetBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/transition", srv.handleTransitionBooking)
	mux.HandleFunc("POST /api/v1/recurring-series", srv.handleCreateSeries)
	mux.HandleFunc("POST /api/v1/recurring-series/{id}/cancel", srv.handleCancelSeries)
	mux.HandleFunc("GET /api/v1/recurring-series/{id}/bookings", srv.handleSeriesBookings)
	mux.HandleFunc("POST /api/v1/exports", srv.handleExport)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler exposes the configured handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		_, endpoint := s.mux.Handler(r)
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
