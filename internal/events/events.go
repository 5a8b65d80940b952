package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

const (
	EventBookingCreated      = "booking_created"
	EventBookingConfirmed    = "booking_confirmed"
	EventBookingStarted      = "booking_started"
	EventBookingCompleted    = "booking_completed"
	EventBookingCancelled    = "booking_cancelled"
	EventSeriesCreated       = "series_created"
	EventSeriesCancelled     = "series_cancelled"
	EventCalendarChanged     = "calendar_changed"
	EventWorkingHoursChanged = "working_hours_changed"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	OrgID      string    `json:"org_id"`
	WalkerID   string    `json:"walker_id"`
	CustomerID string    `json:"customer_id"`
	ServiceID  string    `json:"service_id"`
	Status     string    `json:"status"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	SeriesID   int64     `json:"series_id,omitempty"`
}

// SeriesEventPayload describes a recurring series change.
type SeriesEventPayload struct {
	SeriesID       int64  `json:"series_id"`
	Reference      string `json:"reference"`
	OrgID          string `json:"org_id"`
	WalkerID       string `json:"walker_id"`
	CustomerID     string `json:"customer_id"`
	Frequency      string `json:"frequency"`
	CreatedCount   int    `json:"created_count,omitempty"`
	SkippedCount   int    `json:"skipped_count,omitempty"`
	CancelledCount int64  `json:"cancelled_count,omitempty"`
	Scope          string `json:"scope,omitempty"`
}

// CalendarEventPayload describes a schedule change that invalidates cached
// availability for a walker.
type CalendarEventPayload struct {
	OrgID    string `json:"org_id"`
	WalkerID string `json:"walker_id"`
	EventID  int64  `json:"event_id,omitempty"`
	Action   string `json:"action"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}

// PayloadForBooking snapshots a booking for event consumers.
func PayloadForBooking(b *models.Booking) BookingEventPayload {
	return BookingEventPayload{
		BookingID:  b.ID,
		Reference:  b.Reference,
		OrgID:      b.OrgID,
		WalkerID:   b.WalkerID,
		CustomerID: b.CustomerID,
		ServiceID:  b.ServiceID,
		Status:     b.Status,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		SeriesID:   b.SeriesID,
	}
}
