package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"focusflow/internal/model"
)

// Sentinel errors a SessionWriter must surface so the runner can react to
// cross-client races.
var (
	// ErrSessionConflict means another client already opened a session for
	// this user. The runner falls back to a sync instead of retrying.
	ErrSessionConflict = errors.New("active session already exists")
	// ErrSessionFinalized means another client finalized the session first.
	// Benign: the loser of the race drops its write.
	ErrSessionFinalized = errors.New("session already finalized")
	// ErrSessionNotFound means the session id is stale; local state should
	// be cleared.
	ErrSessionNotFound = errors.New("session not found")
)

// StartSessionRequest carries the fields the lifecycle manager needs to open
// a session record.
type StartSessionRequest struct {
	StartTime        time.Time
	PlannedDuration  int
	PomodorosPlanned int
	Task             string
}

// SessionWriter persists session transitions. The server implements it
// directly on the lifecycle service; the agent implements it over HTTP.
type SessionWriter interface {
	StartSession(ctx context.Context, req StartSessionRequest) (*model.Session, error)
	RecordPomodoro(ctx context.Context, sessionID string) error
	CompleteSession(ctx context.Context, sessionID string, actualSeconds int) error
	AbortSession(ctx context.Context, sessionID, reason string, actualSeconds int) error
}

const (
	defaultTickInterval = time.Second
	writeTimeout        = 10 * time.Second
)

// Runner drives the state machine with a local 1-second clock. It owns one
// State behind a mutex; persistence runs on separate goroutines so a slow or
// failing write never stalls the countdown.
type Runner struct {
	writer SessionWriter
	logger *zap.Logger

	tickInterval time.Duration

	mu          sync.Mutex
	settings    model.TimerSettings
	state       State
	subscribers []func(State)
	onSignal    func(Signal)
	onConflict  func()
}

func NewRunner(settings model.TimerSettings, writer SessionWriter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		writer:       writer,
		logger:       logger,
		tickInterval: defaultTickInterval,
		settings:     settings,
		state:        NewState(settings),
	}
}

// Subscribe registers a callback invoked with a state snapshot after every
// mutation. Callbacks run on the mutating goroutine and must not block.
func (r *Runner) Subscribe(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// OnSignal registers a hook observing lifecycle signals, used by hosts for
// notification gating. Persistence is handled by the runner itself.
func (r *Runner) OnSignal(fn func(Signal)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSignal = fn
}

// OnConflict registers a hook invoked when a session create loses the race
// to another client. Hosts should schedule a sync.
func (r *Runner) OnConflict(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onConflict = fn
}

// Run ticks the state machine once per interval until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.apply(EventTick)
		}
	}
}

func (r *Runner) Start() { r.apply(EventStart) }
func (r *Runner) Pause() { r.apply(EventPause) }
func (r *Runner) Reset() { r.apply(EventReset) }
func (r *Runner) Skip()  { r.apply(EventSkip) }
func (r *Runner) Tick()  { r.apply(EventTick) }

func (r *Runner) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) SetTask(task string) {
	r.mu.Lock()
	r.state.Task = task
	snapshot := r.state
	subs := r.subscribers
	r.mu.Unlock()
	publish(subs, snapshot)
}

// UpdateSettings swaps the settings used for future transitions. The
// in-flight countdown is deliberately left untouched.
func (r *Runner) UpdateSettings(settings model.TimerSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings
}

// Reconcile replaces local state with the server-derived view from a sync
// response, correcting any drift accumulated while ticking locally.
func (r *Runner) Reconcile(status model.TimerStatus) {
	r.mu.Lock()
	r.settings = status.TimerSettings
	r.state = FromStatus(status)
	snapshot := r.state
	subs := r.subscribers
	r.mu.Unlock()
	publish(subs, snapshot)
}

// Abort finalizes the active session as aborted. The write is synchronous:
// the local session reference is cleared only after the store acknowledges,
// so a failed write never silently loses the abort.
func (r *Runner) Abort(ctx context.Context, reason string) error {
	r.mu.Lock()
	r.state.IsRunning = false
	sessionID := r.state.SessionID
	elapsed := r.state.ElapsedFocusSeconds
	r.mu.Unlock()

	if sessionID == "" {
		return nil
	}

	err := r.writer.AbortSession(ctx, sessionID, reason, elapsed)
	if err != nil && !errors.Is(err, ErrSessionFinalized) && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	r.mu.Lock()
	r.state = NewState(r.settings)
	snapshot := r.state
	subs := r.subscribers
	r.mu.Unlock()
	publish(subs, snapshot)
	return nil
}

func (r *Runner) apply(event Event) {
	r.mu.Lock()
	next, signals := Apply(r.settings, r.state, event)
	r.state = next
	snapshot := r.state
	subs := r.subscribers
	onSignal := r.onSignal
	r.mu.Unlock()

	publish(subs, snapshot)

	if onSignal != nil {
		for _, sig := range signals {
			onSignal(sig)
		}
	}
	if len(signals) > 0 {
		go r.dispatch(signals)
	}
}

// dispatch performs the persistence side of lifecycle signals off the tick
// path. Errors are logged, never propagated into the countdown.
func (r *Runner) dispatch(signals []Signal) {
	for _, sig := range signals {
		switch sig.Kind {
		case SignalSessionStartRequested:
			r.startSession(sig)
		case SignalPomodoroCompleted:
			if sig.SessionID == "" {
				continue
			}
			r.recordPomodoro(sig.SessionID)
		case SignalSessionCompleted:
			if sig.SessionID == "" {
				continue
			}
			r.completeSession(sig.SessionID, sig.ElapsedFocusSeconds)
		}
	}
}

func (r *Runner) startSession(sig Signal) {
	r.mu.Lock()
	settings := r.settings
	onConflict := r.onConflict
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	session, err := r.writer.StartSession(ctx, StartSessionRequest{
		StartTime:        time.Now().UTC(),
		PlannedDuration:  settings.FocusMinutes * 60 * settings.PomodorosUntilLongBreak,
		PomodorosPlanned: settings.PomodorosUntilLongBreak,
		Task:             sig.Task,
	})
	if err != nil {
		if errors.Is(err, ErrSessionConflict) {
			r.logger.Warn("session create conflicted, requesting sync")
			if onConflict != nil {
				onConflict()
			}
			return
		}
		r.logger.Error("session create failed", zap.Error(err))
		return
	}

	r.mu.Lock()
	if r.state.SessionID == "" {
		r.state.SessionID = session.ID
	}
	snapshot := r.state
	subs := r.subscribers
	r.mu.Unlock()
	publish(subs, snapshot)
}

func (r *Runner) recordPomodoro(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := r.writer.RecordPomodoro(ctx, sessionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionFinalized):
		r.logger.Debug("pomodoro increment lost finalize race", zap.String("session_id", sessionID))
	case errors.Is(err, ErrSessionNotFound):
		r.clearSession(sessionID)
	default:
		r.logger.Error("pomodoro increment failed", zap.Error(err))
	}
}

func (r *Runner) completeSession(sessionID string, actualSeconds int) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := r.writer.CompleteSession(ctx, sessionID, actualSeconds)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionFinalized):
		// Another client reported the same completion first.
		r.logger.Debug("session completion lost finalize race", zap.String("session_id", sessionID))
	case errors.Is(err, ErrSessionNotFound):
		r.clearSession(sessionID)
	default:
		r.logger.Error("session completion failed", zap.Error(err))
	}
}

func (r *Runner) clearSession(sessionID string) {
	r.mu.Lock()
	if r.state.SessionID == sessionID {
		r.state.SessionID = ""
	}
	snapshot := r.state
	subs := r.subscribers
	r.mu.Unlock()
	r.logger.Warn("session id is stale, cleared local reference", zap.String("session_id", sessionID))
	publish(subs, snapshot)
}

func publish(subs []func(State), snapshot State) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
