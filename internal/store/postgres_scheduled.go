package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finance-tracker-backend/internal/models"

	"github.com/google/uuid"
)

const scheduledSelect = `
	SELECT s.id, s.user_id, s.account_id, s.amount, s.type, s.category, s.description, s.scheduled_date,
	       s.is_recurring, s.recurrence_type, s.recurrence_end, s.status, s.created_at,
	       a.name AS account_name, a.kind AS account_kind
	FROM scheduled_transactions s
	LEFT JOIN accounts a ON a.id = s.account_id AND a.user_id = s.user_id`

func scanScheduled(row rowScanner) (*models.ScheduledTransaction, error) {
	var (
		st        models.ScheduledTransaction
		recurType sql.NullString
		recurEnd  sql.NullTime
		name      sql.NullString
		kind      sql.NullString
	)
	err := row.Scan(
		&st.ID, &st.UserID, &st.AccountID, &st.Amount, &st.Type, &st.Category, &st.Description, &st.ScheduledDate,
		&st.IsRecurring, &recurType, &recurEnd, &st.Status, &st.CreatedAt,
		&name, &kind,
	)
	if err != nil {
		return nil, err
	}
	if recurType.Valid {
		r := models.Recurrence(recurType.String)
		st.RecurrenceType = &r
	}
	if recurEnd.Valid {
		e := recurEnd.Time
		st.RecurrenceEnd = &e
	}
	if name.Valid {
		n, k := name.String, models.AccountKind(kind.String)
		st.AccountName, st.AccountKind = &n, &k
	}
	return &st, nil
}

func recurrenceArgs(st *models.ScheduledTransaction) (sql.NullString, sql.NullTime) {
	var (
		rt sql.NullString
		re sql.NullTime
	)
	if st.RecurrenceType != nil {
		rt = sql.NullString{String: string(*st.RecurrenceType), Valid: true}
	}
	if st.RecurrenceEnd != nil {
		re = sql.NullTime{Time: *st.RecurrenceEnd, Valid: true}
	}
	return rt, re
}

func (s *PostgresStore) queryScheduled(ctx context.Context, query string, args ...any) ([]*models.ScheduledTransaction, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*models.ScheduledTransaction, 0)
	for rows.Next() {
		st, err := scanScheduled(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning: %w", err)
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (s *PostgresStore) ListScheduled(ctx context.Context, userID string, status models.ScheduleStatus) ([]*models.ScheduledTransaction, error) {
	query := scheduledSelect + ` WHERE s.user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND s.status = $2`
		args = append(args, string(status))
	}
	result, err := s.queryScheduled(ctx, query+` ORDER BY s.scheduled_date ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list scheduled transactions: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) GetScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error) {
	st, err := scanScheduled(s.q.QueryRowContext(ctx, scheduledSelect+` WHERE s.id = $1 AND s.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, "scheduled transaction", id)
	}
	return st, nil
}

func (s *PostgresStore) GetPendingScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error) {
	st, err := scanScheduled(s.q.QueryRowContext(ctx,
		scheduledSelect+` WHERE s.id = $1 AND s.user_id = $2 AND s.status = 'pending'`+s.forUpdate("s"), id, userID))
	if err != nil {
		return nil, notFound(err, "pending scheduled transaction", id)
	}
	return st, nil
}

func (s *PostgresStore) ListDueScheduled(ctx context.Context, t time.Time) ([]*models.ScheduledTransaction, error) {
	result, err := s.queryScheduled(ctx,
		scheduledSelect+` WHERE s.status = 'pending' AND s.scheduled_date <= $1 ORDER BY s.scheduled_date ASC`, t)
	if err != nil {
		return nil, fmt.Errorf("list due scheduled transactions: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) CreateScheduled(ctx context.Context, st *models.ScheduledTransaction) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	rt, re := recurrenceArgs(st)
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO scheduled_transactions
			(id, user_id, account_id, amount, type, category, description, scheduled_date, is_recurring, recurrence_type, recurrence_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		st.ID, st.UserID, st.AccountID, st.Amount, string(st.Type), st.Category, st.Description, st.ScheduledDate,
		st.IsRecurring, rt, re, string(st.Status),
	).Scan(&st.CreatedAt)
	if err != nil {
		return fmt.Errorf("create scheduled transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateScheduled(ctx context.Context, st *models.ScheduledTransaction) error {
	rt, re := recurrenceArgs(st)
	res, err := s.q.ExecContext(ctx, `
		UPDATE scheduled_transactions
		SET account_id = $3, amount = $4, type = $5, category = $6, description = $7, scheduled_date = $8,
		    is_recurring = $9, recurrence_type = $10, recurrence_end = $11, status = $12
		WHERE id = $1 AND user_id = $2`,
		st.ID, st.UserID, st.AccountID, st.Amount, string(st.Type), st.Category, st.Description, st.ScheduledDate,
		st.IsRecurring, rt, re, string(st.Status))
	if err != nil {
		return fmt.Errorf("update scheduled transaction %s: %w", st.ID, err)
	}
	return requireRow(res, "scheduled transaction", st.ID)
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, userID, id string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE scheduled_transactions SET status = 'processed'
		WHERE id = $1 AND user_id = $2 AND status = 'pending'`, id, userID)
	if err != nil {
		return fmt.Errorf("mark scheduled transaction %s processed: %w", id, err)
	}
	return requireRow(res, "pending scheduled transaction", id)
}

func (s *PostgresStore) DeleteScheduled(ctx context.Context, userID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM scheduled_transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete scheduled transaction %s: %w", id, err)
	}
	return requireRow(res, "scheduled transaction", id)
}
