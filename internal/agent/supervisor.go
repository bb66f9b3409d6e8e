package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"focusflow/internal/blocker"
	"focusflow/internal/model"
	"focusflow/internal/notify"
	"focusflow/internal/timer"
)

// Supervisor runs the agent's long-lived loops: a 1-second local tick through
// the timer runner, a periodic sync against the server, and a periodic
// blocklist refresh. Fetched data is cached so blocking decisions keep
// working from the last known snapshot while the server is unreachable.
type Supervisor struct {
	client *Client
	runner *timer.Runner
	logger *zap.Logger

	syncInterval      time.Duration
	blocklistInterval time.Duration

	mu            sync.Mutex
	sites         []model.BlockedSite
	notifications model.NotificationSettings

	syncNow chan struct{}
}

func NewSupervisor(client *Client, logger *zap.Logger, syncInterval, blocklistInterval time.Duration) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if syncInterval <= 0 {
		syncInterval = 30 * time.Second
	}
	if blocklistInterval <= 0 {
		blocklistInterval = time.Minute
	}

	s := &Supervisor{
		client:            client,
		logger:            logger,
		syncInterval:      syncInterval,
		blocklistInterval: blocklistInterval,
		notifications:     model.DefaultNotificationSettings(""),
		syncNow:           make(chan struct{}, 1),
	}

	s.runner = timer.NewRunner(model.DefaultTimerSettings(""), client, logger)
	s.runner.OnSignal(s.handleSignal)
	s.runner.OnConflict(s.requestSync)
	return s
}

// Runner exposes the timer runner for command surfaces (start, pause, skip).
func (s *Supervisor) Runner() *timer.Runner {
	return s.runner
}

// Run blocks until ctx is canceled, driving the tick, sync, and refresh
// loops. The first sync and refresh happen before the clock starts so the
// runner does not tick against default settings longer than necessary.
func (s *Supervisor) Run(ctx context.Context) error {
	s.sync(ctx)
	s.refreshBlocklist(ctx)
	s.refreshNotificationSettings(ctx)

	go func() {
		if err := s.runner.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("timer loop stopped", zap.Error(err))
		}
	}()

	syncTicker := time.NewTicker(s.syncInterval)
	defer syncTicker.Stop()
	blocklistTicker := time.NewTicker(s.blocklistInterval)
	defer blocklistTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-syncTicker.C:
			s.sync(ctx)
		case <-s.syncNow:
			s.sync(ctx)
		case <-blocklistTicker.C:
			s.refreshBlocklist(ctx)
			s.refreshNotificationSettings(ctx)
		}
	}
}

// ShouldBlock answers the navigation hook with the cached blocklist and the
// current local timer state. Works offline.
func (s *Supervisor) ShouldBlock(hostname string) blocker.Decision {
	state := s.runner.Snapshot()

	s.mu.Lock()
	sites := s.sites
	s.mu.Unlock()

	return blocker.Decide(hostname, state.Mode, state.IsRunning, sites)
}

// requestSync schedules an immediate sync without blocking the caller. A
// pending request is collapsed into the one already queued.
func (s *Supervisor) requestSync() {
	select {
	case s.syncNow <- struct{}{}:
	default:
	}
}

func (s *Supervisor) sync(ctx context.Context) {
	status, err := s.client.TimerStatus(ctx)
	if err != nil {
		// Local state keeps ticking; the next successful sync corrects drift.
		s.logger.Warn("timer sync failed", zap.Error(err))
		return
	}
	s.runner.Reconcile(*status)
	s.logger.Debug("timer synced",
		zap.Bool("active", status.ActiveSession != nil),
		zap.Time("server_time", status.ServerTime))
}

func (s *Supervisor) refreshBlocklist(ctx context.Context) {
	sites, err := s.client.BlockedSites(ctx)
	if err != nil {
		s.logger.Warn("blocklist refresh failed, keeping cached list", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.sites = sites
	s.mu.Unlock()
	s.logger.Debug("blocklist refreshed", zap.Int("sites", len(sites)))
}

func (s *Supervisor) refreshNotificationSettings(ctx context.Context) {
	settings, err := s.client.NotificationSettings(ctx)
	if err != nil {
		s.logger.Warn("notification settings refresh failed, keeping cached", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.notifications = *settings
	s.mu.Unlock()
}

// handleSignal surfaces lifecycle transitions as user-visible alerts, gated
// on the cached notification settings. This build delivers them to the log;
// a desktop host would swap in native notifications.
func (s *Supervisor) handleSignal(sig timer.Signal) {
	var kind notify.Kind
	var message string

	switch sig.Kind {
	case timer.SignalFocusStarted, timer.SignalSessionStartRequested:
		kind = notify.KindSessionStart
		message = "Focus time started"
	case timer.SignalBreakStarted:
		kind = notify.KindBreakTime
		message = "Time for a break"
	case timer.SignalSessionCompleted:
		kind = notify.KindSessionCompletion
		message = "Session complete, well done"
	default:
		return
	}

	s.mu.Lock()
	settings := s.notifications
	s.mu.Unlock()

	if !notify.ShouldNotify(kind, settings) {
		return
	}

	fields := []zap.Field{zap.String("kind", string(kind))}
	if notify.ShouldPlaySound(kind, settings) {
		fields = append(fields, zap.Float64("volume", notify.Volume(settings)))
	}
	s.logger.Info(message, fields...)
}
