// Package claims models the custom claim set this service maintains inside
// the identity provider's per-user record. The claim set is the only
// persisted state in the system and is replaced wholesale on every write.
package claims

import (
	"encoding/json"
	"time"
)

// UserClaims is the full entitlement claim set attached to one identity.
// All fields are optional; absence means the corresponding state was never
// established (or was deliberately dropped on a downgrade).
type UserClaims struct {
	// TrialExpireDate is the absolute instant the free trial ends, in epoch
	// milliseconds. Set at most once per account, never recomputed.
	TrialExpireDate *int64 `json:"trialExpireDate,omitempty"`

	// HasPremium reports whether the account holds a verified active paid
	// entitlement. Driven only by the entitlement evaluator or the operator
	// override list, never by client input.
	HasPremium *bool `json:"hasPremium,omitempty"`

	// LastSubscriptionCheck is the instant of the most recent successful
	// premium re-verification, in epoch milliseconds. Written only alongside
	// a positive verdict so a downgrade is never debounced.
	LastSubscriptionCheck *int64 `json:"lastSubscriptionCheck,omitempty"`
}

// FromMap decodes a claim set from decoded-token custom claims. Numeric
// values arrive as float64 or json.Number depending on the decoder.
func FromMap(m map[string]any) UserClaims {
	var c UserClaims
	if v, ok := asInt64(m["trialExpireDate"]); ok {
		c.TrialExpireDate = &v
	}
	if v, ok := m["hasPremium"].(bool); ok {
		c.HasPremium = &v
	}
	if v, ok := asInt64(m["lastSubscriptionCheck"]); ok {
		c.LastSubscriptionCheck = &v
	}
	return c
}

// ToMap encodes the claim set for a full-replacement write. Only present
// fields are emitted, so an absent field stays absent after the overwrite.
func (c UserClaims) ToMap() map[string]any {
	m := make(map[string]any, 3)
	if c.TrialExpireDate != nil {
		m["trialExpireDate"] = *c.TrialExpireDate
	}
	if c.HasPremium != nil {
		m["hasPremium"] = *c.HasPremium
	}
	if c.LastSubscriptionCheck != nil {
		m["lastSubscriptionCheck"] = *c.LastSubscriptionCheck
	}
	return m
}

// TrialSet reports whether the trial was ever activated.
func (c UserClaims) TrialSet() bool { return c.TrialExpireDate != nil }

// TrialActiveAt reports whether a set trial has not yet expired at now.
func (c UserClaims) TrialActiveAt(now time.Time) bool {
	return c.TrialExpireDate != nil && now.UnixMilli() <= *c.TrialExpireDate
}

// PremiumActive reports whether the premium flag is present and true.
func (c UserClaims) PremiumActive() bool {
	return c.HasPremium != nil && *c.HasPremium
}

// CheckedWithin reports whether the last successful re-verification happened
// less than window before now.
func (c UserClaims) CheckedWithin(window time.Duration, now time.Time) bool {
	if c.LastSubscriptionCheck == nil {
		return false
	}
	return now.UnixMilli()-*c.LastSubscriptionCheck < window.Milliseconds()
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
