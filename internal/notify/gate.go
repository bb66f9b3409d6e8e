// Package notify gates user-visible alerts on the user's notification
// settings. Delivery (toast, native notification, sound playback) is the
// host's concern.
package notify

import "focusflow/internal/model"

type Kind string

const (
	KindSessionStart      Kind = "sessionStart"
	KindBreakTime         Kind = "breakTime"
	KindSessionCompletion Kind = "sessionCompletion"
)

// ShouldNotify reports whether an alert of the given kind should fire.
func ShouldNotify(kind Kind, settings model.NotificationSettings) bool {
	switch kind {
	case KindSessionStart:
		return settings.SessionStart
	case KindBreakTime:
		return settings.BreakTime
	case KindSessionCompletion:
		return settings.SessionCompletion
	default:
		return false
	}
}

// ShouldPlaySound additionally gates on the sound toggle.
func ShouldPlaySound(kind Kind, settings model.NotificationSettings) bool {
	return settings.SoundAlerts && ShouldNotify(kind, settings)
}

// Volume returns the playback gain scaled to [0.0, 1.0].
func Volume(settings model.NotificationSettings) float64 {
	v := settings.Volume
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return float64(v) / 100
}
