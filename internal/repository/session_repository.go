package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focusflow/internal/model"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

const sessionColumns = `id, user_id, start_time, end_time, planned_duration,
	actual_duration, pomodoros_planned, pomodoros_completed, task,
	is_completed, abort_reason`

// GetActiveTx returns the user's open session, ErrNotFound if none. The
// partial unique index on (user_id) WHERE end_time IS NULL guarantees there
// is at most one.
func (r *SessionRepository) GetActiveTx(ctx context.Context, tx *sql.Tx, userID string) (*model.Session, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE user_id = ? AND end_time IS NULL`,
		userID,
	)
	return scanSession(row)
}

func (r *SessionRepository) GetActive(ctx context.Context, userID string) (*model.Session, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE user_id = ? AND end_time IS NULL`,
		userID,
	)
	return scanSession(row)
}

func (r *SessionRepository) InsertTx(ctx context.Context, tx *sql.Tx, session *model.Session) error {
	var endTime interface{}
	if session.EndTime != nil {
		endTime = session.EndTime.UTC().Format(time.RFC3339Nano)
	}
	var task interface{}
	if session.Task != "" {
		task = session.Task
	}

	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (
			id, user_id, start_time, end_time, planned_duration, actual_duration,
			pomodoros_planned, pomodoros_completed, task, is_completed, abort_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.StartTime.UTC().Format(time.RFC3339Nano),
		endTime,
		session.PlannedDuration,
		session.ActualDuration,
		session.PomodorosPlanned,
		session.PomodorosCompleted,
		task,
		session.IsCompleted,
		nullableString(session.AbortReason),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetTx(ctx context.Context, tx *sql.Tx, id, userID string) (*model.Session, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanSession(row)
}

func (r *SessionRepository) Get(ctx context.Context, id, userID string) (*model.Session, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanSession(row)
}

func (r *SessionRepository) UpdateTx(ctx context.Context, tx *sql.Tx, session *model.Session) error {
	var endTime interface{}
	if session.EndTime != nil {
		endTime = session.EndTime.UTC().Format(time.RFC3339Nano)
	}

	_, err := tx.ExecContext(
		ctx,
		`UPDATE sessions
		 SET end_time = ?,
		     actual_duration = ?,
		     pomodoros_completed = ?,
		     is_completed = ?,
		     abort_reason = ?
		 WHERE id = ? AND user_id = ?`,
		endTime,
		session.ActualDuration,
		session.PomodorosCompleted,
		session.IsCompleted,
		nullableString(session.AbortReason),
		session.ID,
		session.UserID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context, userID string, limit int) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + `
		 FROM sessions
		 WHERE user_id = ?
		 ORDER BY start_time DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(s scanner) (*model.Session, error) {
	session := model.Session{}
	var startTime string
	var endTime sql.NullString
	var task sql.NullString
	var abortReason sql.NullString
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&startTime,
		&endTime,
		&session.PlannedDuration,
		&session.ActualDuration,
		&session.PomodorosPlanned,
		&session.PomodorosCompleted,
		&task,
		&session.IsCompleted,
		&abortReason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	parsedStartTime, err := parseTime(startTime)
	if err != nil {
		return nil, fmt.Errorf("parse session start_time: %w", err)
	}
	session.StartTime = parsedStartTime

	if endTime.Valid {
		parsedEndTime, parseErr := parseTime(endTime.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse session end_time: %w", parseErr)
		}
		session.EndTime = &parsedEndTime
	}
	if task.Valid {
		session.Task = task.String
	}
	if abortReason.Valid {
		session.AbortReason = abortReason.String
	}

	return &session, nil
}

func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
