package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

// UpsertWorkingHoursRule writes a walker's rule for one weekday. The unique
// constraint on (org, walker, day_of_week) keeps exactly one authoritative
// rule per weekday.
func (db *DB) UpsertWorkingHoursRule(ctx context.Context, rule *models.WorkingHoursRule) error {
	query := `INSERT INTO working_hours (org_id, walker_id, day_of_week, start_time, end_time, timezone, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(org_id, walker_id, day_of_week) DO UPDATE SET
                  start_time = excluded.start_time,
                  end_time = excluded.end_time,
                  timezone = excluded.timezone,
                  is_active = excluded.is_active,
                  updated_at = excluded.updated_at`
	now := time.Now()
	if _, err := db.ExecContext(ctx, query,
		rule.OrgID, rule.WalkerID, rule.DayOfWeek,
		rule.StartTime, rule.EndTime, rule.Timezone, rule.IsActive, now, now,
	); err != nil {
		return fmt.Errorf("upsert working hours rule: %w", err)
	}
	return nil
}

// ReplaceWorkingHours applies a full per-weekday rule list in one transaction.
func (db *DB) ReplaceWorkingHours(ctx context.Context, orgID, walkerID string, rules []models.WorkingHoursRule) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM working_hours WHERE org_id = ? AND walker_id = ?`, orgID, walkerID); err != nil {
		return fmt.Errorf("clear working hours: %w", err)
	}

	now := time.Now()
	for i := range rules {
		r := &rules[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO working_hours (org_id, walker_id, day_of_week, start_time, end_time, timezone, is_active, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orgID, walkerID, r.DayOfWeek, r.StartTime, r.EndTime, r.Timezone, r.IsActive, now, now,
		); err != nil {
			return fmt.Errorf("insert working hours rule: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) GetWorkingHours(ctx context.Context, orgID, walkerID string) ([]models.WorkingHoursRule, error) {
	query := `SELECT id, org_id, walker_id, day_of_week, start_time, end_time, timezone, is_active, created_at, updated_at
              FROM working_hours WHERE org_id = ? AND walker_id = ? ORDER BY day_of_week`
	rows, err := db.QueryContext(ctx, query, orgID, walkerID)
	if err != nil {
		return nil, fmt.Errorf("get working hours: %w", err)
	}
	defer rows.Close()

	var rules []models.WorkingHoursRule
	for rows.Next() {
		var r models.WorkingHoursRule
		if err := rows.Scan(
			&r.ID, &r.OrgID, &r.WalkerID, &r.DayOfWeek,
			&r.StartTime, &r.EndTime, &r.Timezone, &r.IsActive,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan working hours rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
