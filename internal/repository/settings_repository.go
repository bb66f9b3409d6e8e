package repository

import (
	"context"
	"database/sql"
	"fmt"

	"focusflow/internal/model"
)

// SettingsRepository stores the per-user timer and notification settings
// singletons.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetTimerSettings(ctx context.Context, userID string) (*model.TimerSettings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, focus_minutes, short_break_minutes, long_break_minutes,
		        pomodoros_until_long_break, auto_start_breaks, auto_start_pomodoros
		 FROM timer_settings WHERE user_id = ?`,
		userID,
	)

	var s model.TimerSettings
	err := row.Scan(
		&s.UserID,
		&s.FocusMinutes,
		&s.ShortBreakMinutes,
		&s.LongBreakMinutes,
		&s.PomodorosUntilLongBreak,
		&s.AutoStartBreaks,
		&s.AutoStartPomodoros,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan timer settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) CreateTimerSettings(ctx context.Context, s *model.TimerSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO timer_settings (
			user_id, focus_minutes, short_break_minutes, long_break_minutes,
			pomodoros_until_long_break, auto_start_breaks, auto_start_pomodoros
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.UserID,
		s.FocusMinutes,
		s.ShortBreakMinutes,
		s.LongBreakMinutes,
		s.PomodorosUntilLongBreak,
		s.AutoStartBreaks,
		s.AutoStartPomodoros,
	)
	if err != nil {
		return fmt.Errorf("create timer settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) UpdateTimerSettings(ctx context.Context, s *model.TimerSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE timer_settings
		 SET focus_minutes = ?,
		     short_break_minutes = ?,
		     long_break_minutes = ?,
		     pomodoros_until_long_break = ?,
		     auto_start_breaks = ?,
		     auto_start_pomodoros = ?
		 WHERE user_id = ?`,
		s.FocusMinutes,
		s.ShortBreakMinutes,
		s.LongBreakMinutes,
		s.PomodorosUntilLongBreak,
		s.AutoStartBreaks,
		s.AutoStartPomodoros,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("update timer settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) GetNotificationSettings(ctx context.Context, userID string) (*model.NotificationSettings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, session_start, break_time, session_completion, sound_alerts, volume
		 FROM notification_settings WHERE user_id = ?`,
		userID,
	)

	var s model.NotificationSettings
	err := row.Scan(
		&s.UserID,
		&s.SessionStart,
		&s.BreakTime,
		&s.SessionCompletion,
		&s.SoundAlerts,
		&s.Volume,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan notification settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) CreateNotificationSettings(ctx context.Context, s *model.NotificationSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO notification_settings (
			user_id, session_start, break_time, session_completion, sound_alerts, volume
		) VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID,
		s.SessionStart,
		s.BreakTime,
		s.SessionCompletion,
		s.SoundAlerts,
		s.Volume,
	)
	if err != nil {
		return fmt.Errorf("create notification settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) UpdateNotificationSettings(ctx context.Context, s *model.NotificationSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE notification_settings
		 SET session_start = ?,
		     break_time = ?,
		     session_completion = ?,
		     sound_alerts = ?,
		     volume = ?
		 WHERE user_id = ?`,
		s.SessionStart,
		s.BreakTime,
		s.SessionCompletion,
		s.SoundAlerts,
		s.Volume,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("update notification settings: %w", err)
	}
	return nil
}
