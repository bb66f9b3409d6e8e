// Package blocker decides whether a navigated-to domain should be suppressed
// given the current timer state and the user's blocklist. Enforcement (the
// browser-level request blocking) is the host's concern.
package blocker

import (
	"fmt"
	"regexp"
	"strings"

	"focusflow/internal/model"
	"focusflow/internal/timer"
)

// hostnamePattern accepts dotted labels ending in a 2+ letter TLD-like
// suffix. Bare hosts without a dot are rejected.
var hostnamePattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)

// ErrInvalidDomain is returned by Normalize for input that is not a
// plausible hostname.
type ErrInvalidDomain struct {
	Input string
}

func (e *ErrInvalidDomain) Error() string {
	return fmt.Sprintf("invalid domain %q", e.Input)
}

// Normalize canonicalizes user input into a stored blocklist domain:
// lowercase, scheme and path stripped, leading www. removed.
// "https://www.Facebook.com/feed" becomes "facebook.com".
func Normalize(raw string) (string, error) {
	domain := strings.TrimSpace(strings.ToLower(raw))

	if idx := strings.Index(domain, "://"); idx != -1 {
		domain = domain[idx+3:]
	}
	if idx := strings.IndexAny(domain, "/?#"); idx != -1 {
		domain = domain[:idx]
	}
	if idx := strings.Index(domain, "@"); idx != -1 {
		domain = domain[idx+1:]
	}
	if idx := strings.Index(domain, ":"); idx != -1 {
		domain = domain[:idx]
	}
	domain = strings.TrimPrefix(domain, "www.")

	if !hostnamePattern.MatchString(domain) {
		return "", &ErrInvalidDomain{Input: raw}
	}
	return domain, nil
}

// NormalizeHostname canonicalizes a navigated-to hostname for matching. No
// validation: unparseable hosts simply never match.
func NormalizeHostname(hostname string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hostname)), "www.")
}

// Decision reports a blocking verdict. Domain names the matched blocklist
// entry for the overlay text.
type Decision struct {
	Blocked bool
	Domain  string
}

// Decide applies the blocking rule: block only while a focus phase is
// actively running, and only on an exact match between the normalized
// hostname and an enabled site. Substring containment is deliberately not
// used; "example.com.evil.net" must not match "example.com".
func Decide(hostname string, mode timer.Mode, isRunning bool, sites []model.BlockedSite) Decision {
	if !isRunning || mode != timer.ModeFocus {
		return Decision{}
	}

	host := NormalizeHostname(hostname)
	if host == "" {
		return Decision{}
	}

	for _, site := range sites {
		if !site.IsEnabled {
			continue
		}
		if NormalizeHostname(site.Domain) == host {
			return Decision{Blocked: true, Domain: site.Domain}
		}
	}
	return Decision{}
}

// ShouldBlock is Decide reduced to the bare predicate.
func ShouldBlock(hostname string, mode timer.Mode, isRunning bool, sites []model.BlockedSite) bool {
	return Decide(hostname, mode, isRunning, sites).Blocked
}
