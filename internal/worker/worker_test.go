package worker

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/database"
	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, zerolog.Nop())

	booking := walkBooking(1, "walker-1", time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC))

	ctx := context.Background()
	if err := worker.EnqueueTask(ctx, TaskUpsertBooking, booking); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if sheets.upsertCalls != 1 {
		t.Fatalf("expected upsert call, got %d", sheets.upsertCalls)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, zerolog.Nop())

	booking := walkBooking(2, "walker-1", time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC))

	ctx := context.Background()
	if err := worker.EnqueueTask(ctx, TaskUpsertBooking, booking); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("fatal")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 1}, zerolog.Nop())

	booking := walkBooking(3, "walker-1", time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC))

	ctx := context.Background()
	worker.EnqueueTask(ctx, TaskUpsertBooking, booking)
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestScheduleMirror(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3}, zerolog.Nop())

	ctx := context.Background()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	stored := walkBooking(0, "walker-1", date.Add(9*time.Hour))
	if err := db.CreateBookingWithLock(ctx, stored); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	if err := worker.EnqueueScheduleMirror(ctx, "org-1", "walker-1", date); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	if task.TaskType != TaskScheduleMirror {
		t.Fatalf("expected %s, got %s", TaskScheduleMirror, task.TaskType)
	}
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if sheets.scheduleCalls != 1 {
		t.Fatalf("expected 1 schedule call, got %d", sheets.scheduleCalls)
	}
	if !sheets.lastScheduleDate.Equal(date) {
		t.Fatalf("expected mirror date %v, got %v", date, sheets.lastScheduleDate)
	}
	if len(sheets.lastScheduleRows) != 1 {
		t.Fatalf("expected 1 booking in mirror, got %d", len(sheets.lastScheduleRows))
	}
}

func TestHandleTask(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3}, zerolog.Nop())

	ctx := context.Background()

	t.Run("UpsertBooking", func(t *testing.T) {
		booking := walkBooking(1, "walker-1", time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC))
		err := worker.handleTask(ctx, TaskUpsertBooking, taskPayload{BookingID: booking.ID, Booking: booking})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.upsertCalls != 1 {
			t.Fatalf("expected 1 upsert call, got %d", sheets.upsertCalls)
		}
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		err := worker.handleTask(ctx, TaskUpdateStatus, taskPayload{BookingID: 123, Status: models.StatusConfirmed})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.statusCalls != 1 {
			t.Fatalf("expected 1 status call, got %d", sheets.statusCalls)
		}
	})

	t.Run("MirrorMissingFields", func(t *testing.T) {
		err := worker.handleTask(ctx, TaskScheduleMirror, taskPayload{OrgID: "org-1"})
		if err == nil {
			t.Fatalf("expected error for incomplete mirror payload")
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := worker.handleTask(ctx, "export_pdf", taskPayload{})
		if err == nil {
			t.Fatalf("expected error for unknown task type")
		}
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}

	budget := RetryPolicy{MaxRetries: 3}
	if budget.Exhausted(2) {
		t.Fatal("attempt 2 of 3 should not be exhausted")
	}
	if !budget.Exhausted(3) {
		t.Fatal("attempt 3 of 3 should be exhausted")
	}
}

func TestEnqueueTaskValidation(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, zerolog.Nop())

	ctx := context.Background()
	booking := walkBooking(1, "walker-1", time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC))

	t.Run("ValidTask", func(t *testing.T) {
		if err := worker.EnqueueTask(ctx, TaskUpsertBooking, booking); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	})

	t.Run("EmptyTaskType", func(t *testing.T) {
		if err := worker.EnqueueTask(ctx, "", booking); err == nil {
			t.Fatalf("expected error for empty task type")
		}
	})

	t.Run("MissingBooking", func(t *testing.T) {
		if err := worker.EnqueueTask(ctx, TaskUpsertBooking, nil); err == nil {
			t.Fatalf("expected error for missing booking")
		}
	})

	t.Run("MissingMirrorIDs", func(t *testing.T) {
		if err := worker.EnqueueScheduleMirror(ctx, "", "walker-1", time.Now()); err == nil {
			t.Fatalf("expected error for missing org id")
		}
	})
}

func TestDecodePayload(t *testing.T) {
	worker := NewSheetsWorker(nil, nil, nil, RetryPolicy{}, zerolog.Nop())

	t.Run("ValidPayload", func(t *testing.T) {
		payload := `{"booking_id":123,"status":"confirmed"}`
		decoded, err := worker.decodePayload(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.BookingID != 123 || decoded.Status != "confirmed" {
			t.Fatalf("unexpected decoded payload: %+v", decoded)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		payload := `invalid json`
		_, err := worker.decodePayload(payload)
		if err == nil {
			t.Fatalf("expected error for invalid json")
		}
	})
}

// Helpers

type fakeSheets struct {
	err              error
	upsertCalls      int
	statusCalls      int
	scheduleCalls    int
	lastScheduleDate time.Time
	lastScheduleRows []*models.Booking
}

func (f *fakeSheets) UpsertBooking(ctx context.Context, b *models.Booking) error {
	f.upsertCalls++
	return f.err
}

func (f *fakeSheets) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	f.statusCalls++
	return f.err
}

func (f *fakeSheets) UpdateScheduleSheet(ctx context.Context, date time.Time, bookings []*models.Booking) error {
	f.scheduleCalls++
	f.lastScheduleDate = date
	f.lastScheduleRows = bookings
	return f.err
}

func walkBooking(id int64, walkerID string, start time.Time) *models.Booking {
	return &models.Booking{
		ID:         id,
		Reference:  "BK-TEST",
		OrgID:      "org-1",
		WalkerID:   walkerID,
		CustomerID: "cust-1",
		ServiceID:  "walk-30",
		LocationID: "loc-1",
		StartAt:    start,
		EndAt:      start.Add(30 * time.Minute),
		Status:     models.StatusPending,
		PriceCents: 2500,
	}
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
