package claims

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFromMapNumericForms(t *testing.T) {
	cases := []struct {
		name string
		m    map[string]any
		want int64
	}{
		{"float64", map[string]any{"trialExpireDate": float64(1700000000000)}, 1700000000000},
		{"int64", map[string]any{"trialExpireDate": int64(1700000000000)}, 1700000000000},
		{"json.Number", map[string]any{"trialExpireDate": json.Number("1700000000000")}, 1700000000000},
	}
	for _, tc := range cases {
		c := FromMap(tc.m)
		if c.TrialExpireDate == nil || *c.TrialExpireDate != tc.want {
			t.Errorf("%s: got %v, want %d", tc.name, c.TrialExpireDate, tc.want)
		}
	}
}

func TestFromMapAbsentFields(t *testing.T) {
	c := FromMap(map[string]any{"unrelated": "x"})
	if c.TrialExpireDate != nil || c.HasPremium != nil || c.LastSubscriptionCheck != nil {
		t.Errorf("expected empty claim set, got %+v", c)
	}
}

func TestToMapOmitsAbsent(t *testing.T) {
	c := UserClaims{TrialExpireDate: Int64(42)}
	m := c.ToMap()
	if len(m) != 1 {
		t.Fatalf("expected 1 entry, got %v", m)
	}
	if m["trialExpireDate"] != int64(42) {
		t.Errorf("trialExpireDate = %v", m["trialExpireDate"])
	}
}

func TestPremiumActive(t *testing.T) {
	if (UserClaims{}).PremiumActive() {
		t.Error("absent flag must not be active")
	}
	if (UserClaims{HasPremium: Bool(false)}).PremiumActive() {
		t.Error("false flag must not be active")
	}
	if !(UserClaims{HasPremium: Bool(true)}).PremiumActive() {
		t.Error("true flag must be active")
	}
}

func TestTrialActiveAt(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	if (UserClaims{}).TrialActiveAt(now) {
		t.Error("unset trial must be inactive")
	}
	past := UserClaims{TrialExpireDate: Int64(now.UnixMilli() - 1)}
	if past.TrialActiveAt(now) {
		t.Error("expired trial must be inactive")
	}
	// Boundary is inclusive: a trial expiring exactly now still passes.
	edge := UserClaims{TrialExpireDate: Int64(now.UnixMilli())}
	if !edge.TrialActiveAt(now) {
		t.Error("trial expiring now must still be active")
	}
}

func TestCheckedWithin(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	window := 24 * time.Hour
	if (UserClaims{}).CheckedWithin(window, now) {
		t.Error("absent check time must not debounce")
	}
	recent := UserClaims{LastSubscriptionCheck: Int64(now.Add(-time.Hour).UnixMilli())}
	if !recent.CheckedWithin(window, now) {
		t.Error("1h-old check must debounce")
	}
	stale := UserClaims{LastSubscriptionCheck: Int64(now.Add(-25 * time.Hour).UnixMilli())}
	if stale.CheckedWithin(window, now) {
		t.Error("25h-old check must not debounce")
	}
}
