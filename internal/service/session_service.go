package service

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

const maxSessionListLimit = 200

// SessionService is the only writer of session rows. It translates timer
// lifecycle events into writes that preserve the at-most-one-active-session
// invariant and guard finalize/abort races.
type SessionService struct {
	repo     *repository.SessionRepository
	settings *SettingsService
	stats    *gocache.Cache
	logger   *zap.Logger
}

func NewSessionService(
	repo *repository.SessionRepository,
	settings *SettingsService,
	statsTTL time.Duration,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:     repo,
		settings: settings,
		stats:    gocache.New(statsTTL, 2*statsTTL),
		logger:   logger,
	}
}

type StartSessionInput struct {
	StartTime        *time.Time
	PlannedDuration  int
	PomodorosPlanned int
	Task             string
}

// UpdateSessionInput is the partial patch accepted on a session. Which
// lifecycle operation it maps to depends on the fields present.
type UpdateSessionInput struct {
	EndTime            *time.Time `json:"endTime"`
	ActualDuration     *int       `json:"actualDuration"`
	IsCompleted        *bool      `json:"isCompleted"`
	AbortReason        *string    `json:"abortReason"`
	PomodorosCompleted *int       `json:"pomodorosCompleted"`
}

// StartFocusCycle opens a session record. Refused with a conflict when the
// user already has an open session; the caller should sync to discover it.
func (s *SessionService) StartFocusCycle(ctx context.Context, userID string, input StartSessionInput) (*model.Session, *apperrors.APIError) {
	if input.PlannedDuration <= 0 {
		return nil, apperrors.Validation("invalid_planned_duration", "plannedDuration must be positive seconds")
	}
	if input.PomodorosPlanned <= 0 {
		return nil, apperrors.Validation("invalid_pomodoros_planned", "pomodorosPlanned must be positive")
	}

	now := time.Now().UTC()
	startTime := now
	if input.StartTime != nil {
		startTime = input.StartTime.UTC()
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	existing, err := s.repo.GetActiveTx(ctx, tx, userID)
	if err == nil {
		return nil, apperrors.ActiveSessionExists(map[string]interface{}{"session": existing})
	}
	if err != repository.ErrNotFound {
		return nil, apperrors.Internal("failed to check active session")
	}

	session := model.Session{
		ID:               newSessionID(),
		UserID:           userID,
		StartTime:        startTime,
		PlannedDuration:  input.PlannedDuration,
		PomodorosPlanned: input.PomodorosPlanned,
		Task:             strings.TrimSpace(input.Task),
	}

	if err := s.repo.InsertTx(ctx, tx, &session); err != nil {
		// The partial unique index backs the invariant when two starts race
		// past the read above.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.ActiveSessionExists(nil)
		}
		return nil, apperrors.Internal("failed to create session")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.invalidateStats(userID)
	s.logger.Info("session started",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Int("planned_duration", session.PlannedDuration))
	return &session, nil
}

// RecordPomodoroCompletion increments pomodorosCompleted by one. Finalized
// sessions are treated as gone.
func (s *SessionService) RecordPomodoroCompletion(ctx context.Context, userID, sessionID string) (*model.Session, *apperrors.APIError) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, apiErr := s.getOpenTx(ctx, tx, sessionID, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	session.PomodorosCompleted++
	if err := s.repo.UpdateTx(ctx, tx, session); err != nil {
		return nil, apperrors.Internal("failed to update session")
	}
	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return session, nil
}

// FinalizeCompleted closes the session as completed. Idempotency guard: a
// second finalize (e.g. web client and extension racing on the same
// long-break expiry) gets already_finalized and the row is untouched.
func (s *SessionService) FinalizeCompleted(ctx context.Context, userID, sessionID string, actualSeconds int) (*model.Session, *apperrors.APIError) {
	return s.finalize(ctx, userID, sessionID, actualSeconds, true, "")
}

// Abort closes the session as not completed with the user's reason.
func (s *SessionService) Abort(ctx context.Context, userID, sessionID, reason string, actualSeconds int) (*model.Session, *apperrors.APIError) {
	return s.finalize(ctx, userID, sessionID, actualSeconds, false, reason)
}

func (s *SessionService) finalize(ctx context.Context, userID, sessionID string, actualSeconds int, completed bool, abortReason string) (*model.Session, *apperrors.APIError) {
	if actualSeconds < 0 {
		actualSeconds = 0
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, err := s.repo.GetTx(ctx, tx, sessionID, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	if !session.Active() {
		return nil, apperrors.AlreadyFinalized()
	}

	now := time.Now().UTC()
	session.EndTime = &now
	session.ActualDuration = actualSeconds
	session.IsCompleted = completed
	session.AbortReason = strings.TrimSpace(abortReason)

	if err := s.repo.UpdateTx(ctx, tx, session); err != nil {
		return nil, apperrors.Internal("failed to update session")
	}
	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.invalidateStats(userID)
	s.logger.Info("session finalized",
		zap.String("user_id", userID),
		zap.String("session_id", sessionID),
		zap.Bool("completed", completed),
		zap.Int("actual_duration", actualSeconds))
	return session, nil
}

// ApplyPatch routes a partial session update through the lifecycle
// operations so the finalize guards always hold:
// isCompleted=true finalizes, an abort reason aborts, and a bare
// pomodorosCompleted field records one pomodoro completion.
func (s *SessionService) ApplyPatch(ctx context.Context, userID, sessionID string, patch UpdateSessionInput) (*model.Session, *apperrors.APIError) {
	actual := 0
	if patch.ActualDuration != nil {
		actual = *patch.ActualDuration
	}

	if patch.IsCompleted != nil && *patch.IsCompleted {
		return s.FinalizeCompleted(ctx, userID, sessionID, actual)
	}
	if patch.AbortReason != nil {
		return s.Abort(ctx, userID, sessionID, *patch.AbortReason, actual)
	}
	if patch.PomodorosCompleted != nil {
		return s.RecordPomodoroCompletion(ctx, userID, sessionID)
	}
	return nil, apperrors.Validation("invalid_session_patch", "patch must finalize, abort, or record a pomodoro")
}

func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*model.Session, *apperrors.APIError) {
	session, err := s.repo.Get(ctx, sessionID, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, userID string, limit int) ([]model.Session, *apperrors.APIError) {
	if limit <= 0 || limit > maxSessionListLimit {
		limit = 50
	}
	sessions, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list sessions")
	}
	return sessions, nil
}

// TimerStatus is the sync protocol response: the open session (or nil), the
// user's timer settings, and the server clock.
func (s *SessionService) TimerStatus(ctx context.Context, userID string) (*model.TimerStatus, *apperrors.APIError) {
	settings, apiErr := s.settings.GetTimerSettings(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	status := model.TimerStatus{
		TimerSettings: *settings,
		ServerTime:    time.Now().UTC(),
	}

	active, err := s.repo.GetActive(ctx, userID)
	if err == nil {
		status.ActiveSession = active
	} else if err != repository.ErrNotFound {
		return nil, apperrors.Internal("failed to read active session")
	}

	return &status, nil
}

// Stats aggregates the dashboard view, cached per user until the next
// finalize/abort/create invalidates it.
func (s *SessionService) Stats(ctx context.Context, userID string) (*model.SessionStats, *apperrors.APIError) {
	if cached, ok := s.stats.Get(userID); ok {
		stats := cached.(model.SessionStats)
		return &stats, nil
	}

	sessions, err := s.repo.List(ctx, userID, 0)
	if err != nil {
		return nil, apperrors.Internal("failed to list sessions")
	}

	stats := computeStats(sessions, time.Now())
	s.stats.Set(userID, stats, gocache.DefaultExpiration)
	return &stats, nil
}

func computeStats(sessions []model.Session, now time.Time) model.SessionStats {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	oneWeekAgo := now.AddDate(0, 0, -7)

	var stats model.SessionStats
	var completed int
	var weekFocusSeconds int

	for _, session := range sessions {
		start := session.StartTime.In(now.Location())
		if !start.Before(startOfToday) {
			stats.Today++
		}
		if !start.Before(oneWeekAgo) {
			stats.Week++
			weekFocusSeconds += session.ActualDuration
		}
		if session.IsCompleted {
			completed++
		}
	}

	stats.FocusTime = math.Round(float64(weekFocusSeconds)/3600*10) / 10
	if len(sessions) > 0 {
		stats.CompletionRate = int(math.Round(float64(completed) / float64(len(sessions)) * 100))
	}
	return stats
}

func (s *SessionService) invalidateStats(userID string) {
	s.stats.Delete(userID)
}

// getOpenTx fetches a session that must still be open. A finalized session
// is reported as not found: finalized rows are immutable.
func (s *SessionService) getOpenTx(ctx context.Context, tx *sql.Tx, sessionID, userID string) (*model.Session, *apperrors.APIError) {
	session, err := s.repo.GetTx(ctx, tx, sessionID, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	if !session.Active() {
		return nil, apperrors.NotFound("session_not_found", "session not found or already finalized")
	}
	return session, nil
}

func newSessionID() string {
	return uuid.NewString()
}
