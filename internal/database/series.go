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

// CreateSeriesWithBookings persists a series and its expanded occurrences in
// one transaction. Occurrences that would overlap an existing active booking
// are skipped and reported. The series is never partially written: either
// the whole batch commits or nothing does.
func (db *DB) CreateSeriesWithBookings(ctx context.Context, series *models.RecurringBookingSeries, occurrences []*models.Booking) (*models.SeriesExpansion, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if series.Reference == "" {
		series.Reference = uuid.NewString()
	}
	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO recurring_series (reference, org_id, customer_id, walker_id, service_id, location_id,
                                       frequency, start_at, duration_minutes, occurrence_count, until_date,
                                       is_active, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		series.Reference, series.OrgID, series.CustomerID, series.WalkerID,
		series.ServiceID, series.LocationID, series.Frequency,
		formatTime(series.StartAt), series.DurationMinutes,
		series.OccurrenceCount, nullableTime(series.UntilDate),
		true, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert series: %w", err)
	}
	seriesID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get series id: %w", err)
	}
	series.ID = seriesID
	series.IsActive = true
	series.CreatedAt = now

	expansion := &models.SeriesExpansion{}
	for _, occ := range occurrences {
		occ.SeriesID = seriesID
		// Occurrences created earlier in this transaction are visible to the
		// overlap check, so a series cannot conflict with itself either.
		if err := overlapCheck(ctx, tx, occ); err != nil {
			if errors.Is(err, ErrSlotUnavailable) {
				expansion.Skipped = append(expansion.Skipped, occ)
				continue
			}
			return nil, err
		}
		if err := insertBooking(ctx, tx, occ); err != nil {
			return nil, err
		}
		expansion.Created = append(expansion.Created, occ)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit series: %w", err)
	}
	return expansion, nil
}

func (db *DB) GetSeries(ctx context.Context, orgID string, id int64) (*models.RecurringBookingSeries, error) {
	query := `SELECT id, reference, org_id, customer_id, walker_id, service_id, location_id,
                     frequency, start_at, duration_minutes, occurrence_count, until_date,
                     is_active, created_at, updated_at
              FROM recurring_series WHERE org_id = ? AND id = ?`

	var s models.RecurringBookingSeries
	var startStr string
	var untilStr sql.NullString
	err := db.QueryRowContext(ctx, query, orgID, id).Scan(
		&s.ID, &s.Reference, &s.OrgID, &s.CustomerID, &s.WalkerID,
		&s.ServiceID, &s.LocationID, &s.Frequency,
		&startStr, &s.DurationMinutes, &s.OccurrenceCount, &untilStr,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}

	if s.StartAt, err = parseTime(startStr); err != nil {
		return nil, err
	}
	if untilStr.Valid && untilStr.String != "" {
		until, err := parseTime(untilStr.String)
		if err != nil {
			return nil, err
		}
		s.UntilDate = &until
	}
	return &s, nil
}

func (db *DB) GetSeriesBookings(ctx context.Context, orgID string, seriesID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE org_id = ? AND series_id = ? ORDER BY occurrence_number`
	rows, err := db.QueryContext(ctx, query, orgID, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get series bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// CancelSeries cancels occurrences per the requested scope in one
// transaction. all_future cancels pending/confirmed occurrences starting
// after now; entire_series also cancels past pending/confirmed ones (never
// completed) and deactivates the series so nothing more is generated.
func (db *DB) CancelSeries(ctx context.Context, orgID string, seriesID int64, scope string, now time.Time) (int64, error) {
	if scope != models.CancelScopeAllFuture && scope != models.CancelScopeEntireSeries {
		return 0, fmt.Errorf("unknown cancellation scope %q", scope)
	}

	if _, err := db.GetSeries(ctx, orgID, seriesID); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE bookings
              SET status = ?, version = version + 1, updated_at = ?
              WHERE org_id = ? AND series_id = ? AND status IN (?, ?)`
	args := []interface{}{
		models.StatusCancelled, time.Now(), orgID, seriesID,
		models.StatusPending, models.StatusConfirmed,
	}
	if scope == models.CancelScopeAllFuture {
		query += ` AND start_at > ?`
		args = append(args, formatTime(now))
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cancel series occurrences: %w", err)
	}
	cancelled, _ := result.RowsAffected()

	if scope == models.CancelScopeEntireSeries {
		if _, err := tx.ExecContext(ctx,
			`UPDATE recurring_series SET is_active = 0, updated_at = ? WHERE org_id = ? AND id = ?`,
			time.Now(), orgID, seriesID,
		); err != nil {
			return 0, fmt.Errorf("deactivate series: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cancellation: %w", err)
	}
	return cancelled, nil
}
