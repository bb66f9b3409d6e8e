package service

import (
	"context"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

// SettingsService serves the per-user timer and notification settings
// singletons, creating them lazily with documented defaults on first read.
type SettingsService struct {
	repo *repository.SettingsRepository
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// UpdateTimerSettingsInput is a partial patch; nil fields are left untouched.
type UpdateTimerSettingsInput struct {
	FocusMinutes            *int  `json:"focusMinutes"`
	ShortBreakMinutes       *int  `json:"shortBreakMinutes"`
	LongBreakMinutes        *int  `json:"longBreakMinutes"`
	PomodorosUntilLongBreak *int  `json:"pomodorosUntilLongBreak"`
	AutoStartBreaks         *bool `json:"autoStartBreaks"`
	AutoStartPomodoros      *bool `json:"autoStartPomodoros"`
}

type UpdateNotificationSettingsInput struct {
	SessionStart      *bool `json:"sessionStart"`
	BreakTime         *bool `json:"breakTime"`
	SessionCompletion *bool `json:"sessionCompletion"`
	SoundAlerts       *bool `json:"soundAlerts"`
	Volume            *int  `json:"volume"`
}

func (s *SettingsService) GetTimerSettings(ctx context.Context, userID string) (*model.TimerSettings, *apperrors.APIError) {
	settings, err := s.repo.GetTimerSettings(ctx, userID)
	if err == repository.ErrNotFound {
		defaults := model.DefaultTimerSettings(userID)
		if createErr := s.repo.CreateTimerSettings(ctx, &defaults); createErr != nil {
			return nil, apperrors.Internal("failed to create timer settings")
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get timer settings")
	}
	return settings, nil
}

func (s *SettingsService) UpdateTimerSettings(ctx context.Context, userID string, input UpdateTimerSettingsInput) (*model.TimerSettings, *apperrors.APIError) {
	settings, apiErr := s.GetTimerSettings(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	if input.FocusMinutes != nil {
		settings.FocusMinutes = *input.FocusMinutes
	}
	if input.ShortBreakMinutes != nil {
		settings.ShortBreakMinutes = *input.ShortBreakMinutes
	}
	if input.LongBreakMinutes != nil {
		settings.LongBreakMinutes = *input.LongBreakMinutes
	}
	if input.PomodorosUntilLongBreak != nil {
		settings.PomodorosUntilLongBreak = *input.PomodorosUntilLongBreak
	}
	if input.AutoStartBreaks != nil {
		settings.AutoStartBreaks = *input.AutoStartBreaks
	}
	if input.AutoStartPomodoros != nil {
		settings.AutoStartPomodoros = *input.AutoStartPomodoros
	}

	if apiErr := validateTimerSettings(settings); apiErr != nil {
		return nil, apiErr
	}

	if err := s.repo.UpdateTimerSettings(ctx, settings); err != nil {
		return nil, apperrors.Internal("failed to update timer settings")
	}
	return settings, nil
}

func (s *SettingsService) GetNotificationSettings(ctx context.Context, userID string) (*model.NotificationSettings, *apperrors.APIError) {
	settings, err := s.repo.GetNotificationSettings(ctx, userID)
	if err == repository.ErrNotFound {
		defaults := model.DefaultNotificationSettings(userID)
		if createErr := s.repo.CreateNotificationSettings(ctx, &defaults); createErr != nil {
			return nil, apperrors.Internal("failed to create notification settings")
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get notification settings")
	}
	return settings, nil
}

func (s *SettingsService) UpdateNotificationSettings(ctx context.Context, userID string, input UpdateNotificationSettingsInput) (*model.NotificationSettings, *apperrors.APIError) {
	settings, apiErr := s.GetNotificationSettings(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	if input.SessionStart != nil {
		settings.SessionStart = *input.SessionStart
	}
	if input.BreakTime != nil {
		settings.BreakTime = *input.BreakTime
	}
	if input.SessionCompletion != nil {
		settings.SessionCompletion = *input.SessionCompletion
	}
	if input.SoundAlerts != nil {
		settings.SoundAlerts = *input.SoundAlerts
	}
	if input.Volume != nil {
		settings.Volume = *input.Volume
	}

	if settings.Volume < 0 || settings.Volume > 100 {
		return nil, apperrors.Validation("invalid_volume", "volume must be between 0 and 100")
	}

	if err := s.repo.UpdateNotificationSettings(ctx, settings); err != nil {
		return nil, apperrors.Internal("failed to update notification settings")
	}
	return settings, nil
}

func validateTimerSettings(settings *model.TimerSettings) *apperrors.APIError {
	switch {
	case settings.FocusMinutes < 1 || settings.FocusMinutes > 120:
		return apperrors.Validation("invalid_focus_minutes", "focusMinutes must be between 1 and 120")
	case settings.ShortBreakMinutes < 1 || settings.ShortBreakMinutes > 30:
		return apperrors.Validation("invalid_short_break_minutes", "shortBreakMinutes must be between 1 and 30")
	case settings.LongBreakMinutes < 5 || settings.LongBreakMinutes > 60:
		return apperrors.Validation("invalid_long_break_minutes", "longBreakMinutes must be between 5 and 60")
	case settings.PomodorosUntilLongBreak < 1 || settings.PomodorosUntilLongBreak > 10:
		return apperrors.Validation("invalid_pomodoros_until_long_break", "pomodorosUntilLongBreak must be between 1 and 10")
	}
	return nil
}
