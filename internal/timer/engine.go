// Package timer holds the pomodoro state machine shared by every client
// surface, plus the local runner that drives it. Transitions are pure:
// Apply never does I/O and cannot fail.
package timer

import (
	"focusflow/internal/model"
)

type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

type Event int

const (
	EventStart Event = iota
	EventPause
	EventReset
	EventSkip
	EventTick
)

type SignalKind int

const (
	// SignalSessionStartRequested asks the lifecycle manager to create a
	// session record for the cycle that just started ticking.
	SignalSessionStartRequested SignalKind = iota
	// SignalPomodoroCompleted fires when a focus phase expires.
	SignalPomodoroCompleted
	// SignalBreakStarted fires on the transition into a short or long break.
	SignalBreakStarted
	// SignalFocusStarted fires on the transition back into a focus phase.
	SignalFocusStarted
	// SignalSessionCompleted fires once the long break expires; the session
	// should be finalized with the accumulated focus seconds.
	SignalSessionCompleted
)

// Signal is a side-effect request emitted by a transition. The state machine
// itself never performs the effect.
type Signal struct {
	Kind                SignalKind
	SessionID           string
	Task                string
	ElapsedFocusSeconds int
}

// State is the ephemeral per-process timer state. It is allowed to be stale;
// the session row in the store stays the source of truth for wall-clock
// elapsed time.
type State struct {
	Mode                Mode   `json:"timerMode"`
	SecondsRemaining    int    `json:"secondsRemaining"`
	TotalSeconds        int    `json:"totalSecondsForPhase"`
	CurrentPomodoro     int    `json:"currentPomodoroIndex"`
	TotalPomodoros      int    `json:"totalPomodoros"`
	IsRunning           bool   `json:"isRunning"`
	ElapsedFocusSeconds int    `json:"elapsedFocusTime"`
	Task                string `json:"currentTaskLabel,omitempty"`
	SessionID           string `json:"activeSessionId,omitempty"`
	CycleComplete       bool   `json:"-"`
}

// Progress reports phase completion in [0, 1].
func (s State) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	return float64(s.TotalSeconds-s.SecondsRemaining) / float64(s.TotalSeconds)
}

// NewState returns an idle focus-phase state derived from settings.
func NewState(settings model.TimerSettings) State {
	total := settings.FocusMinutes * 60
	return State{
		Mode:             ModeFocus,
		SecondsRemaining: total,
		TotalSeconds:     total,
		CurrentPomodoro:  1,
		TotalPomodoros:   settings.PomodorosUntilLongBreak,
	}
}

// FromStatus rebuilds local state from the server's sync response. The
// protocol collapses intra-cycle detail to "focus time elapsed since session
// start": a client resuming mid-break re-enters at the focus phase with
// remaining time computed against the planned total.
func FromStatus(status model.TimerStatus) State {
	state := NewState(status.TimerSettings)
	active := status.ActiveSession
	if active == nil {
		return state
	}

	elapsed := int(status.ServerTime.Sub(active.StartTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := active.PlannedDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	if elapsed > active.PlannedDuration {
		elapsed = active.PlannedDuration
	}

	state.Mode = ModeFocus
	// Running stays true even at zero remaining so the next tick expires the
	// phase instead of suppressing it.
	state.IsRunning = true
	state.SecondsRemaining = remaining
	state.TotalSeconds = active.PlannedDuration
	state.ElapsedFocusSeconds = elapsed
	state.SessionID = active.ID
	state.Task = active.Task
	state.TotalPomodoros = active.PomodorosPlanned
	state.CurrentPomodoro = active.PomodorosCompleted + 1
	if state.CurrentPomodoro > state.TotalPomodoros {
		state.CurrentPomodoro = state.TotalPomodoros
	}
	return state
}

// Apply advances the state machine by one event. Settings are read at
// transition time only: editing durations mid-phase never rescales the
// in-flight countdown.
func Apply(settings model.TimerSettings, state State, event Event) (State, []Signal) {
	var signals []Signal

	switch event {
	case EventStart:
		if state.IsRunning {
			break
		}
		state.IsRunning = true
		if state.Mode == ModeFocus && state.SessionID == "" {
			signals = append(signals, Signal{
				Kind: SignalSessionStartRequested,
				Task: state.Task,
			})
		}

	case EventPause:
		state.IsRunning = false

	case EventReset:
		state.IsRunning = false
		state.TotalSeconds = modeDuration(settings, state.Mode)
		state.SecondsRemaining = state.TotalSeconds

	case EventSkip:
		// Skip expires the phase regardless of running state, then always
		// leaves the timer paused.
		state.SecondsRemaining = 0
		state, signals = expire(settings, state)
		state.IsRunning = false

	case EventTick:
		if !state.IsRunning {
			break
		}
		if state.SecondsRemaining > 0 {
			state.SecondsRemaining--
			if state.Mode == ModeFocus {
				state.ElapsedFocusSeconds++
			}
		}
		if state.SecondsRemaining == 0 {
			state, signals = expire(settings, state)
		}
	}

	return state, signals
}

// expire applies the PhaseExpired transition, atomic with the tick that
// drained the countdown.
func expire(settings model.TimerSettings, state State) (State, []Signal) {
	var signals []Signal

	switch state.Mode {
	case ModeFocus:
		signals = append(signals, Signal{
			Kind:      SignalPomodoroCompleted,
			SessionID: state.SessionID,
		})
		if state.CurrentPomodoro >= state.TotalPomodoros {
			state.Mode = ModeLongBreak
			state.TotalSeconds = settings.LongBreakMinutes * 60
			state.CycleComplete = true
		} else {
			state.Mode = ModeShortBreak
			state.TotalSeconds = settings.ShortBreakMinutes * 60
		}
		state.SecondsRemaining = state.TotalSeconds
		state.IsRunning = settings.AutoStartBreaks
		signals = append(signals, Signal{Kind: SignalBreakStarted})

	case ModeShortBreak:
		state.CurrentPomodoro++
		state = enterFocus(settings, state)
		signals = append(signals, Signal{Kind: SignalFocusStarted})

	case ModeLongBreak:
		signals = append(signals, Signal{
			Kind:                SignalSessionCompleted,
			SessionID:           state.SessionID,
			ElapsedFocusSeconds: state.ElapsedFocusSeconds,
		})
		state.CurrentPomodoro = 1
		state.CycleComplete = false
		state.SessionID = ""
		state.ElapsedFocusSeconds = 0
		state.TotalPomodoros = settings.PomodorosUntilLongBreak
		state = enterFocus(settings, state)
		signals = append(signals, Signal{Kind: SignalFocusStarted})
	}

	return state, signals
}

func enterFocus(settings model.TimerSettings, state State) State {
	state.Mode = ModeFocus
	state.TotalSeconds = settings.FocusMinutes * 60
	state.SecondsRemaining = state.TotalSeconds
	state.IsRunning = settings.AutoStartPomodoros
	return state
}

func modeDuration(settings model.TimerSettings, mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return settings.ShortBreakMinutes * 60
	case ModeLongBreak:
		return settings.LongBreakMinutes * 60
	default:
		return settings.FocusMinutes * 60
	}
}
