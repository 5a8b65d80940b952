package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

const bookingColumns = `id, reference, org_id, walker_id, customer_id, service_id, location_id,
                        start_at, end_at, status, price_cents, notes,
                        COALESCE(series_id, 0), COALESCE(occurrence_number, 0),
                        created_at, updated_at, version`

// CreateBookingWithLock inserts a booking after re-checking the overlap
// invariant inside the same transaction. This is the authoritative guard:
// under concurrent attempts for the same window exactly one insert commits,
// the rest get ErrSlotUnavailable.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := overlapCheck(ctx, tx, booking); err != nil {
		return err
	}
	if err := insertBooking(ctx, tx, booking); err != nil {
		return err
	}
	return tx.Commit()
}

func overlapCheck(ctx context.Context, tx *sql.Tx, booking *models.Booking) error {
	query := `SELECT COUNT(*) FROM bookings
              WHERE org_id = ? AND walker_id = ?
                AND status IN (?, ?, ?)
                AND start_at < ? AND end_at > ?`
	var conflicts int
	err := tx.QueryRowContext(ctx, query,
		booking.OrgID, booking.WalkerID,
		models.StatusPending, models.StatusConfirmed, models.StatusInProgress,
		formatTime(booking.EndAt), formatTime(booking.StartAt),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("check overlap in tx: %w", err)
	}
	if conflicts > 0 {
		return ErrSlotUnavailable
	}
	return nil
}

func insertBooking(ctx context.Context, tx *sql.Tx, booking *models.Booking) error {
	if booking.Reference == "" {
		booking.Reference = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}

	query := `INSERT INTO bookings (
                reference, org_id, walker_id, customer_id, service_id, location_id,
                start_at, end_at, status, price_cents, notes, series_id, occurrence_number,
                created_at, updated_at, version
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.Reference, booking.OrgID, booking.WalkerID, booking.CustomerID,
		booking.ServiceID, booking.LocationID,
		formatTime(booking.StartAt), formatTime(booking.EndAt),
		booking.Status, booking.PriceCents, booking.Notes,
		nullableInt64(booking.SeriesID), nullableInt(booking.OccurrenceNumber),
		now, now, 1,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, orgID string, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE org_id = ? AND id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, orgID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return booking, err
}

// TransitionBookingStatus applies a status change after validating it against
// the state machine and the optimistic version, all inside one transaction.
// Illegal transitions fail with ErrInvalidTransition and leave the row
// untouched.
func (db *DB) TransitionBookingStatus(ctx context.Context, orgID string, id, fromVersion int64, toStatus string) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT status, version FROM bookings WHERE org_id = ? AND id = ?`, orgID, id,
	).Scan(&current, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read booking status: %w", err)
	}

	if !models.CanTransition(current, toStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, toStatus)
	}
	if fromVersion != 0 && version != fromVersion {
		return nil, ErrConcurrentModification
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`,
		toStatus, time.Now(), id,
	); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return db.GetBooking(ctx, orgID, id)
}

// GetWalkerBookings returns a walker's active bookings for one civil date,
// ordered by start time. The day window follows the walker's working-hours
// timezone, so a late evening booking in Denver stays on Denver's day rather
// than spilling onto the next UTC day.
func (db *DB) GetWalkerBookings(ctx context.Context, orgID, walkerID string, date time.Time) ([]*models.Booking, error) {
	loc := db.walkerLocation(ctx, orgID, walkerID)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return db.GetWalkerBookingsInRange(ctx, orgID, walkerID, dayStart, dayStart.AddDate(0, 0, 1))
}

// walkerLocation resolves the walker's timezone from their active
// working-hours rules, defaulting to UTC.
func (db *DB) walkerLocation(ctx context.Context, orgID, walkerID string) *time.Location {
	rules, err := db.GetWorkingHours(ctx, orgID, walkerID)
	if err != nil {
		return time.UTC
	}
	for _, rule := range rules {
		if rule.IsActive && rule.Timezone != "" {
			return rule.Location()
		}
	}
	return time.UTC
}

// GetWalkerBookingsInRange returns active bookings overlapping [from, to).
func (db *DB) GetWalkerBookingsInRange(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE org_id = ? AND walker_id = ?
                AND status IN (?, ?, ?)
                AND start_at < ? AND end_at > ?
              ORDER BY start_at, id`
	rows, err := db.QueryContext(ctx, query,
		orgID, walkerID,
		models.StatusPending, models.StatusConfirmed, models.StatusInProgress,
		formatTime(to), formatTime(from),
	)
	if err != nil {
		return nil, fmt.Errorf("get walker bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// GetOccupiedIntervals returns the walker's occupied windows in [from, to):
// the intervals of bookings in an active status.
func (db *DB) GetOccupiedIntervals(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.TimeInterval, error) {
	bookings, err := db.GetWalkerBookingsInRange(ctx, orgID, walkerID, from, to)
	if err != nil {
		return nil, err
	}
	intervals := make([]models.TimeInterval, 0, len(bookings))
	for _, b := range bookings {
		intervals = append(intervals, b.Interval())
	}
	return intervals, nil
}

// GetBookingsByDateRange returns all bookings (any status) for an org between
// two timestamps, for export and schedule mirroring.
func (db *DB) GetBookingsByDateRange(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE org_id = ? AND start_at >= ? AND start_at < ?
              ORDER BY walker_id, start_at, id`
	rows, err := db.QueryContext(ctx, query, orgID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("get bookings by date range: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var startStr, endStr string
	if err := row.Scan(
		&b.ID, &b.Reference, &b.OrgID, &b.WalkerID, &b.CustomerID,
		&b.ServiceID, &b.LocationID, &startStr, &endStr,
		&b.Status, &b.PriceCents, &b.Notes,
		&b.SeriesID, &b.OccurrenceNumber,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	var err error
	if b.StartAt, err = parseTime(startStr); err != nil {
		return nil, err
	}
	if b.EndAt, err = parseTime(endStr); err != nil {
		return nil, err
	}
	return &b, nil
}

func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
