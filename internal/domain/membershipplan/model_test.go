package membershipplan

import "testing"

// TestMembershipPlan_Validate verifies plan form validation.
func TestMembershipPlan_Validate(t *testing.T) {
	ok := MembershipPlan{Name: "Gold", PriceCents: 4900, Currency: "USD", DurationDays: 30}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
	tests := []struct {
		name string
		p    MembershipPlan
		want error
	}{
		{"empty_name", MembershipPlan{DurationDays: 30}, ErrEmptyName},
		{"negative", MembershipPlan{Name: "x", PriceCents: -1, DurationDays: 30}, ErrNegativePrice},
		{"no_duration", MembershipPlan{Name: "x"}, ErrInvalidDuration},
		{"bad_currency", MembershipPlan{Name: "x", DurationDays: 1, Currency: "DOLLAR"}, ErrInvalidCurrency},
	}
	for _, tt := range tests {
		if got := tt.p.Validate(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestMembershipPlan_BillingPeriod verifies duration labels.
func TestMembershipPlan_BillingPeriod(t *testing.T) {
	for days, want := range map[int]string{1: "day", 7: "week", 30: "month", 365: "year", 90: ""} {
		if got := (MembershipPlan{DurationDays: days}).BillingPeriod(); got != want {
			t.Errorf("%d days: got %q, want %q", days, got, want)
		}
	}
}
