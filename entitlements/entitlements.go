// Package entitlements evaluates billing-provider access levels.
package entitlements

import "time"

// AccessLevel represents a time-bounded grant within a billing profile.
// A nil bound is unbounded on that side.
type AccessLevel struct {
	ID        string     `json:"id,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ActiveAt reports whether the level has started (or has no start) and has
// not expired (or has no expiry) at now. Both bounds are inclusive.
func (l AccessLevel) ActiveAt(now time.Time) bool {
	if l.StartsAt != nil && now.Before(*l.StartsAt) {
		return false
	}
	if l.ExpiresAt != nil && now.After(*l.ExpiresAt) {
		return false
	}
	return true
}

// AnyActive reports whether at least one access level is active at now.
// An empty list evaluates false: an account with no grants has no
// entitlement, and a malformed profile decodes to no grants.
func AnyActive(levels []AccessLevel, now time.Time) bool {
	for _, l := range levels {
		if l.ActiveAt(now) {
			return true
		}
	}
	return false
}
