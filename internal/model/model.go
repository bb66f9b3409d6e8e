package model

import "time"

const (
	DefaultFocusMinutes            = 25
	DefaultShortBreakMinutes       = 5
	DefaultLongBreakMinutes        = 15
	DefaultPomodorosUntilLongBreak = 4
	DefaultAutoStartBreaks         = true
	DefaultAutoStartPomodoros      = false

	DefaultVolume = 70
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TimerSettings is a per-user singleton, created lazily with defaults on
// first read. Durations are minutes; the timer engine converts to seconds.
type TimerSettings struct {
	UserID                  string `json:"userId"`
	FocusMinutes            int    `json:"focusMinutes"`
	ShortBreakMinutes       int    `json:"shortBreakMinutes"`
	LongBreakMinutes        int    `json:"longBreakMinutes"`
	PomodorosUntilLongBreak int    `json:"pomodorosUntilLongBreak"`
	AutoStartBreaks         bool   `json:"autoStartBreaks"`
	AutoStartPomodoros      bool   `json:"autoStartPomodoros"`
}

func DefaultTimerSettings(userID string) TimerSettings {
	return TimerSettings{
		UserID:                  userID,
		FocusMinutes:            DefaultFocusMinutes,
		ShortBreakMinutes:       DefaultShortBreakMinutes,
		LongBreakMinutes:        DefaultLongBreakMinutes,
		PomodorosUntilLongBreak: DefaultPomodorosUntilLongBreak,
		AutoStartBreaks:         DefaultAutoStartBreaks,
		AutoStartPomodoros:      DefaultAutoStartPomodoros,
	}
}

// NotificationSettings is a per-user singleton with the same lazy-default
// pattern as TimerSettings.
type NotificationSettings struct {
	UserID            string `json:"userId"`
	SessionStart      bool   `json:"sessionStart"`
	BreakTime         bool   `json:"breakTime"`
	SessionCompletion bool   `json:"sessionCompletion"`
	SoundAlerts       bool   `json:"soundAlerts"`
	Volume            int    `json:"volume"`
}

func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:            userID,
		SessionStart:      true,
		BreakTime:         true,
		SessionCompletion: true,
		SoundAlerts:       true,
		Volume:            DefaultVolume,
	}
}

// BlockedSite holds a normalized domain: lowercase, no scheme, no leading
// www., no path.
type BlockedSite struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Domain    string `json:"domain"`
	IsEnabled bool   `json:"isEnabled"`
}

// Session is one planned cycle of N pomodoros. It is open while EndTime is
// nil and immutable once finalized. At most one session per user is open at
// any time; the store enforces this with a partial unique index.
type Session struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	PlannedDuration    int        `json:"plannedDuration"`
	ActualDuration     int        `json:"actualDuration"`
	PomodorosPlanned   int        `json:"pomodorosPlanned"`
	PomodorosCompleted int        `json:"pomodorosCompleted"`
	Task               string     `json:"task,omitempty"`
	IsCompleted        bool       `json:"isCompleted"`
	AbortReason        string     `json:"abortReason,omitempty"`
}

// Active reports whether the session is still open.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// SessionStats is the dashboard aggregate: session counts for today and the
// trailing week, focus hours over the trailing week (one decimal), and the
// all-time completion percentage.
type SessionStats struct {
	Today          int     `json:"today"`
	Week           int     `json:"week"`
	FocusTime      float64 `json:"focusTime"`
	CompletionRate int     `json:"completionRate"`
}

// TimerStatus is the sync protocol response: the server's view of the open
// session (nil if none), the user's timer settings, and the server clock so
// clients can correct local drift.
type TimerStatus struct {
	ActiveSession *Session      `json:"activeSession"`
	TimerSettings TimerSettings `json:"timerSettings"`
	ServerTime    time.Time     `json:"serverTime"`
}
