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

func (db *DB) CreateCalendarEvent(ctx context.Context, ev *models.CalendarEvent) error {
	if ev.Reference == "" {
		ev.Reference = uuid.NewString()
	}
	query := `INSERT INTO calendar_events (reference, org_id, walker_id, title, start_at, end_at, is_blocking, recur_frequency, recur_until, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		ev.Reference, ev.OrgID, ev.WalkerID, ev.Title,
		formatTime(ev.StartAt), formatTime(ev.EndAt), ev.IsBlocking,
		ev.RecurFrequency, nullableTime(ev.RecurUntil), now, now,
	)
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	ev.ID = id
	ev.CreatedAt = now
	ev.UpdatedAt = now
	return nil
}

func (db *DB) GetCalendarEvent(ctx context.Context, orgID string, id int64) (*models.CalendarEvent, error) {
	query := eventSelect + ` WHERE org_id = ? AND id = ?`
	ev, err := scanEvent(db.QueryRowContext(ctx, query, orgID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ev, err
}

// GetCalendarEvents returns a walker's events whose base interval starts
// before the range end; recurring events are kept regardless of anchor so the
// caller can expand them into the range.
func (db *DB) GetCalendarEvents(ctx context.Context, orgID, walkerID string, from, to time.Time) ([]models.CalendarEvent, error) {
	query := eventSelect + `
              WHERE org_id = ? AND walker_id = ?
                AND start_at < ?
                AND (recur_frequency IS NOT NULL AND recur_frequency != '' OR end_at > ?)
              ORDER BY start_at`
	rows, err := db.QueryContext(ctx, query, orgID, walkerID, formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("get calendar events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// DeleteCalendarEvent removes the whole event (all occurrences for recurring
// ones) and its exceptions.
func (db *DB) DeleteCalendarEvent(ctx context.Context, orgID string, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_exceptions WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete event exceptions: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM calendar_events WHERE org_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// DeleteEventOccurrence suppresses a single occurrence of a recurring event
// by recording an exception for its date.
func (db *DB) DeleteEventOccurrence(ctx context.Context, orgID string, id int64, date time.Time) error {
	ev, err := db.GetCalendarEvent(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !ev.IsRecurring() {
		return db.DeleteCalendarEvent(ctx, orgID, id)
	}

	day := date.UTC().Format("2006-01-02")
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO event_exceptions (event_id, date) VALUES (?, ?)`, id, day); err != nil {
		return fmt.Errorf("insert event exception: %w", err)
	}
	return nil
}

func (db *DB) GetEventExceptions(ctx context.Context, orgID, walkerID string) ([]models.EventException, error) {
	query := `SELECT ex.id, ex.event_id, ex.date
              FROM event_exceptions ex
              JOIN calendar_events ev ON ev.id = ex.event_id
              WHERE ev.org_id = ? AND ev.walker_id = ?`
	rows, err := db.QueryContext(ctx, query, orgID, walkerID)
	if err != nil {
		return nil, fmt.Errorf("get event exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []models.EventException
	for rows.Next() {
		var ex models.EventException
		var day string
		if err := rows.Scan(&ex.ID, &ex.EventID, &day); err != nil {
			return nil, fmt.Errorf("scan event exception: %w", err)
		}
		ex.Date, err = time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse exception date %q: %w", day, err)
		}
		exceptions = append(exceptions, ex)
	}
	return exceptions, rows.Err()
}

const eventSelect = `SELECT id, reference, org_id, walker_id, title, start_at, end_at, is_blocking,
                            COALESCE(recur_frequency, ''), recur_until, created_at, updated_at
                     FROM calendar_events`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.CalendarEvent, error) {
	var ev models.CalendarEvent
	var startStr, endStr string
	var untilStr sql.NullString
	if err := row.Scan(
		&ev.ID, &ev.Reference, &ev.OrgID, &ev.WalkerID, &ev.Title,
		&startStr, &endStr, &ev.IsBlocking,
		&ev.RecurFrequency, &untilStr, &ev.CreatedAt, &ev.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan calendar event: %w", err)
	}

	var err error
	if ev.StartAt, err = parseTime(startStr); err != nil {
		return nil, err
	}
	if ev.EndAt, err = parseTime(endStr); err != nil {
		return nil, err
	}
	if untilStr.Valid && untilStr.String != "" {
		until, err := parseTime(untilStr.String)
		if err != nil {
			return nil, err
		}
		ev.RecurUntil = &until
	}
	return &ev, nil
}
