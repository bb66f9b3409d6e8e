package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/model"
)

func testSettings() model.TimerSettings {
	return model.TimerSettings{
		FocusMinutes:            25,
		ShortBreakMinutes:       5,
		LongBreakMinutes:        15,
		PomodorosUntilLongBreak: 4,
		AutoStartBreaks:         true,
		AutoStartPomodoros:      false,
	}
}

// drain ticks the state until the current phase expires, returning the
// signals of the expiring tick.
func drain(t *testing.T, settings model.TimerSettings, state State) (State, []Signal) {
	t.Helper()
	for i := 0; i < state.SecondsRemaining+1; i++ {
		var signals []Signal
		state, signals = Apply(settings, state, EventTick)
		if len(signals) > 0 {
			return state, signals
		}
	}
	t.Fatal("phase never expired")
	return state, nil
}

func signalKinds(signals []Signal) []SignalKind {
	kinds := make([]SignalKind, len(signals))
	for i, sig := range signals {
		kinds[i] = sig.Kind
	}
	return kinds
}

func TestStartRequestsSessionOnce(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.Task = "write report"

	state, signals := Apply(settings, state, EventStart)
	require.Len(t, signals, 1)
	assert.Equal(t, SignalSessionStartRequested, signals[0].Kind)
	assert.Equal(t, "write report", signals[0].Task)
	assert.True(t, state.IsRunning)

	// Start while already running is a no-op.
	state, signals = Apply(settings, state, EventStart)
	assert.Empty(t, signals)

	// Pausing and restarting with a session attached does not request again.
	state, _ = Apply(settings, state, EventPause)
	state.SessionID = "s1"
	_, signals = Apply(settings, state, EventStart)
	assert.Empty(t, signals)
}

func TestTickAtRestIsNoOp(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)

	next, signals := Apply(settings, state, EventTick)
	assert.Empty(t, signals)
	assert.Equal(t, state, next)
}

func TestFullCycle(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state, _ = Apply(settings, state, EventStart)
	state.SessionID = "s1"

	var completedPomodoros int
	var sessionCompletions int

	// 4 focus phases, 3 short breaks, 1 long break. Breaks auto-start;
	// focus phases need an explicit start since autoStartPomodoros is off.
	for phase := 0; phase < 8; phase++ {
		if !state.IsRunning {
			state, _ = Apply(settings, state, EventStart)
		}
		require.True(t, state.IsRunning, "phase %d should be running", phase)
		var signals []Signal
		state, signals = drain(t, settings, state)
		for _, sig := range signals {
			switch sig.Kind {
			case SignalPomodoroCompleted:
				completedPomodoros++
				assert.Equal(t, "s1", sig.SessionID)
			case SignalSessionCompleted:
				sessionCompletions++
				assert.Equal(t, "s1", sig.SessionID)
				assert.Equal(t, 4*25*60, sig.ElapsedFocusSeconds)
			}
		}
	}

	assert.Equal(t, 4, completedPomodoros)
	assert.Equal(t, 1, sessionCompletions)

	// Back at an idle focus phase for the next cycle.
	assert.Equal(t, ModeFocus, state.Mode)
	assert.Equal(t, 1, state.CurrentPomodoro)
	assert.Empty(t, state.SessionID)
	assert.Zero(t, state.ElapsedFocusSeconds)
	assert.False(t, state.IsRunning, "autoStartPomodoros is off")
}

func TestLastFocusEntersLongBreak(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.CurrentPomodoro = 4
	state.IsRunning = true
	state.SecondsRemaining = 1

	state, signals := Apply(settings, state, EventTick)
	assert.Equal(t, ModeLongBreak, state.Mode)
	assert.Equal(t, 15*60, state.SecondsRemaining)
	assert.Contains(t, signalKinds(signals), SignalPomodoroCompleted)
	assert.Contains(t, signalKinds(signals), SignalBreakStarted)
}

func TestSkipExpiresAndPauses(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.IsRunning = true

	state, signals := Apply(settings, state, EventSkip)
	assert.Equal(t, ModeShortBreak, state.Mode)
	assert.False(t, state.IsRunning)
	assert.Contains(t, signalKinds(signals), SignalPomodoroCompleted)

	// Repeated skips walk the phases but always land paused.
	state, _ = Apply(settings, state, EventSkip)
	assert.Equal(t, ModeFocus, state.Mode)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 2, state.CurrentPomodoro)
}

func TestResetRestoresPhaseFromSettings(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.IsRunning = true
	state.SecondsRemaining = 100

	state, signals := Apply(settings, state, EventReset)
	assert.Empty(t, signals)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 25*60, state.SecondsRemaining)
}

func TestSettingsChangeDoesNotRescaleInFlightPhase(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.IsRunning = true
	state, _ = Apply(settings, state, EventTick)
	require.Equal(t, 25*60-1, state.SecondsRemaining)

	settings.FocusMinutes = 50
	state, _ = Apply(settings, state, EventTick)
	assert.Equal(t, 25*60-2, state.SecondsRemaining)

	// The new duration applies from the next focus phase on.
	state.SecondsRemaining = 0
	state, _ = Apply(settings, state, EventSkip)
	state, _ = Apply(settings, state, EventSkip)
	assert.Equal(t, ModeFocus, state.Mode)
	assert.Equal(t, 50*60, state.TotalSeconds)
}

func TestFocusTimeAccumulatesOnlyInFocus(t *testing.T) {
	settings := testSettings()
	state := NewState(settings)
	state.IsRunning = true

	state, _ = Apply(settings, state, EventTick)
	state, _ = Apply(settings, state, EventTick)
	assert.Equal(t, 2, state.ElapsedFocusSeconds)

	state.Mode = ModeShortBreak
	state.SecondsRemaining = 30
	state, _ = Apply(settings, state, EventTick)
	assert.Equal(t, 2, state.ElapsedFocusSeconds)
}

func TestFromStatusRebuildsRunningState(t *testing.T) {
	settings := testSettings()
	now := time.Now().UTC()
	start := now.Add(-10 * time.Minute)

	status := model.TimerStatus{
		TimerSettings: settings,
		ServerTime:    now,
		ActiveSession: &model.Session{
			ID:                 "s1",
			StartTime:          start,
			PlannedDuration:    6000,
			PomodorosPlanned:   4,
			PomodorosCompleted: 1,
			Task:               "reading",
		},
	}

	state := FromStatus(status)
	assert.Equal(t, ModeFocus, state.Mode)
	assert.True(t, state.IsRunning)
	assert.Equal(t, 600, state.ElapsedFocusSeconds)
	assert.Equal(t, 6000-600, state.SecondsRemaining)
	assert.Equal(t, "s1", state.SessionID)
	assert.Equal(t, "reading", state.Task)
	assert.Equal(t, 2, state.CurrentPomodoro)
}

func TestFromStatusClampsOverdueSession(t *testing.T) {
	settings := testSettings()
	now := time.Now().UTC()

	status := model.TimerStatus{
		TimerSettings: settings,
		ServerTime:    now,
		ActiveSession: &model.Session{
			ID:               "s1",
			StartTime:        now.Add(-3 * time.Hour),
			PlannedDuration:  6000,
			PomodorosPlanned: 4,
		},
	}

	state := FromStatus(status)
	assert.Zero(t, state.SecondsRemaining)
	assert.Equal(t, 6000, state.ElapsedFocusSeconds)
	// Still running so the next tick expires the phase instead of stalling.
	assert.True(t, state.IsRunning)
}

func TestTickAtZeroWhileRunningExpires(t *testing.T) {
	// A clamped sync result lands at zero remaining but still running; the
	// next tick must expire the phase rather than suppressing it.
	settings := testSettings()
	state := NewState(settings)
	state.IsRunning = true
	state.SecondsRemaining = 0
	state.SessionID = "s1"

	state, signals := Apply(settings, state, EventTick)
	assert.NotEqual(t, ModeFocus, state.Mode)
	assert.Contains(t, signalKinds(signals), SignalPomodoroCompleted)
}

func TestFromStatusWithoutSessionIsIdle(t *testing.T) {
	settings := testSettings()
	status := model.TimerStatus{
		TimerSettings: settings,
		ServerTime:    time.Now().UTC(),
	}

	state := FromStatus(status)
	assert.False(t, state.IsRunning)
	assert.Equal(t, 25*60, state.SecondsRemaining)
	assert.Empty(t, state.SessionID)
}
