package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/model"
)

// fakeWriter records SessionWriter calls and returns scripted errors.
type fakeWriter struct {
	mu sync.Mutex

	startErr    error
	completeErr error
	abortErr    error

	started   []StartSessionRequest
	recorded  []string
	completed []string
	aborted   []string
	reasons   []string
}

func (f *fakeWriter) StartSession(ctx context.Context, req StartSessionRequest) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, req)
	return &model.Session{ID: "session-1", StartTime: req.StartTime}, nil
}

func (f *fakeWriter) RecordPomodoro(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, sessionID)
	return nil
}

func (f *fakeWriter) CompleteSession(ctx context.Context, sessionID string, actualSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, sessionID)
	return nil
}

func (f *fakeWriter) AbortSession(ctx context.Context, sessionID, reason string, actualSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abortErr != nil {
		return f.abortErr
	}
	f.aborted = append(f.aborted, sessionID)
	f.reasons = append(f.reasons, reason)
	return nil
}

func (f *fakeWriter) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestRunnerStartCreatesSession(t *testing.T) {
	writer := &fakeWriter{}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)
	runner.SetTask("review notes")

	runner.Start()

	waitFor(t, func() bool { return writer.startCount() == 1 })
	waitFor(t, func() bool { return runner.Snapshot().SessionID == "session-1" })

	writer.mu.Lock()
	req := writer.started[0]
	writer.mu.Unlock()
	assert.Equal(t, "review notes", req.Task)
	assert.Equal(t, 25*60*4, req.PlannedDuration)
	assert.Equal(t, 4, req.PomodorosPlanned)

	// Pause and restart: the session already exists, no second create.
	runner.Pause()
	runner.Start()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, writer.startCount())
}

func TestRunnerConflictTriggersHook(t *testing.T) {
	writer := &fakeWriter{startErr: ErrSessionConflict}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)

	conflicts := make(chan struct{}, 1)
	runner.OnConflict(func() { conflicts <- struct{}{} })

	runner.Start()

	select {
	case <-conflicts:
	case <-time.After(2 * time.Second):
		t.Fatal("conflict hook never invoked")
	}
	assert.Empty(t, runner.Snapshot().SessionID)
}

func TestRunnerAbortClearsStateAfterAck(t *testing.T) {
	writer := &fakeWriter{}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)
	runner.Start()
	waitFor(t, func() bool { return runner.Snapshot().SessionID != "" })

	runner.Tick()
	runner.Tick()

	err := runner.Abort(context.Background(), "interrupted")
	require.NoError(t, err)

	writer.mu.Lock()
	require.Len(t, writer.aborted, 1)
	assert.Equal(t, "session-1", writer.aborted[0])
	assert.Equal(t, "interrupted", writer.reasons[0])
	writer.mu.Unlock()

	state := runner.Snapshot()
	assert.Empty(t, state.SessionID)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 25*60, state.SecondsRemaining)
}

func TestRunnerAbortKeepsSessionOnWriteFailure(t *testing.T) {
	writer := &fakeWriter{abortErr: errors.New("network down")}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)
	runner.Start()
	waitFor(t, func() bool { return runner.Snapshot().SessionID != "" })

	err := runner.Abort(context.Background(), "interrupted")
	require.Error(t, err)

	// The local reference survives so the abort can be retried.
	assert.Equal(t, "session-1", runner.Snapshot().SessionID)
}

func TestRunnerAbortTreatsFinalizedAsDone(t *testing.T) {
	writer := &fakeWriter{abortErr: ErrSessionFinalized}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)
	runner.Start()
	waitFor(t, func() bool { return runner.Snapshot().SessionID != "" })

	err := runner.Abort(context.Background(), "interrupted")
	require.NoError(t, err)
	assert.Empty(t, runner.Snapshot().SessionID)
}

func TestRunnerAbortWithoutSessionIsNoOp(t *testing.T) {
	writer := &fakeWriter{}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)

	require.NoError(t, runner.Abort(context.Background(), "nothing to do"))
	writer.mu.Lock()
	assert.Empty(t, writer.aborted)
	writer.mu.Unlock()
}

func TestRunnerReconcileAdoptsServerState(t *testing.T) {
	writer := &fakeWriter{}
	runner := NewRunner(model.DefaultTimerSettings(""), writer, nil)

	var mu sync.Mutex
	var last State
	runner.Subscribe(func(s State) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	now := time.Now().UTC()
	runner.Reconcile(model.TimerStatus{
		TimerSettings: model.DefaultTimerSettings(""),
		ServerTime:    now,
		ActiveSession: &model.Session{
			ID:               "remote-1",
			StartTime:        now.Add(-time.Minute),
			PlannedDuration:  6000,
			PomodorosPlanned: 4,
		},
	})

	state := runner.Snapshot()
	assert.Equal(t, "remote-1", state.SessionID)
	assert.True(t, state.IsRunning)
	assert.Equal(t, 6000-60, state.SecondsRemaining)

	mu.Lock()
	assert.Equal(t, state, last)
	mu.Unlock()
}
