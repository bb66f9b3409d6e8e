package blocker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/model"
	"focusflow/internal/timer"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"facebook.com", "facebook.com"},
		{"  Facebook.COM  ", "facebook.com"},
		{"https://www.Facebook.com/feed", "facebook.com"},
		{"http://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"www.reddit.com", "reddit.com"},
		{"twitter.com:443", "twitter.com"},
		{"user@mail.example.org/inbox", "mail.example.org"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestNormalizeRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{
		"",
		"not a domain",
		"localhost",
		"http://",
		"-bad-.com",
		"exa mple.com",
	} {
		_, err := Normalize(input)
		assert.Error(t, err, "input %q", input)
		var invalid *ErrInvalidDomain
		assert.ErrorAs(t, err, &invalid, "input %q", input)
	}
}

func TestDecide(t *testing.T) {
	sites := []model.BlockedSite{
		{Domain: "facebook.com", IsEnabled: true},
		{Domain: "reddit.com", IsEnabled: false},
	}

	cases := []struct {
		name     string
		hostname string
		mode     timer.Mode
		running  bool
		blocked  bool
	}{
		{"running focus, enabled site", "facebook.com", timer.ModeFocus, true, true},
		{"www prefix still matches", "www.facebook.com", timer.ModeFocus, true, true},
		{"case insensitive", "FACEBOOK.COM", timer.ModeFocus, true, true},
		{"paused focus never blocks", "facebook.com", timer.ModeFocus, false, false},
		{"short break never blocks", "facebook.com", timer.ModeShortBreak, true, false},
		{"long break never blocks", "facebook.com", timer.ModeLongBreak, true, false},
		{"disabled site never blocks", "reddit.com", timer.ModeFocus, true, false},
		{"unlisted site never blocks", "example.com", timer.ModeFocus, true, false},
		{"subdomain is not an exact match", "m.facebook.com", timer.ModeFocus, true, false},
		{"suffix trick is not a match", "facebook.com.evil.net", timer.ModeFocus, true, false},
		{"empty hostname", "", timer.ModeFocus, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(tc.hostname, tc.mode, tc.running, sites)
			assert.Equal(t, tc.blocked, decision.Blocked)
			if tc.blocked {
				assert.Equal(t, "facebook.com", decision.Domain)
			}
		})
	}
}

func TestShouldBlockMatchesStoredWWWForm(t *testing.T) {
	// A site stored before normalization tightened still matches by
	// normalized comparison.
	sites := []model.BlockedSite{{Domain: "www.youtube.com", IsEnabled: true}}
	assert.True(t, ShouldBlock("youtube.com", timer.ModeFocus, true, sites))
}
