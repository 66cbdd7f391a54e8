package main

import (
	"testing"
	"time"
)

func expiryIn(days int) *DateOnly {
	d := DateOnly{pantryToday().AddDate(0, 0, days)}
	return &d
}

// pantryToday is a fixed reference date with a non-midnight clock, to make
// sure classification happens at date precision rather than instant precision.
func pantryToday() time.Time {
	return time.Date(2026, 8, 15, 17, 30, 0, 0, time.UTC)
}

/* ─── daysUntilExpiry ────────────────────────────────────────────────── */

func TestDaysUntilExpiry(t *testing.T) {
	cases := []struct {
		name string
		days int
	}{
		{"expires today", 0},
		{"expires tomorrow", 1},
		{"expired yesterday", -1},
		{"expires next week", 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := daysUntilExpiry(expiryIn(tc.days), pantryToday())
			if got == nil {
				t.Fatal("expected a value, got nil")
			}
			if *got != tc.days {
				t.Errorf("daysUntilExpiry = %d, want %d", *got, tc.days)
			}
		})
	}

	if got := daysUntilExpiry(nil, pantryToday()); got != nil {
		t.Errorf("expected nil for absent expiry, got %d", *got)
	}
}

/* ─── Expired / near-expiry ──────────────────────────────────────────── */

// TestIsExpired verifies the expiry day itself does not count as expired and
// that an item without an expiry date never expires.
func TestIsExpired(t *testing.T) {
	cases := []struct {
		name   string
		expiry *DateOnly
		want   bool
	}{
		{"day before expiry", expiryIn(1), false},
		{"on expiry day", expiryIn(0), false},
		{"day after expiry", expiryIn(-1), true},
		{"no expiry date", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := pantryItem{Name: "milk", ExpiryDate: tc.expiry}
			if got := isExpired(item, pantryToday()); got != tc.want {
				t.Errorf("isExpired = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestIsNearExpiry verifies the window is inclusive on both ends and that
// expired items are not near-expiry.
func TestIsNearExpiry(t *testing.T) {
	cases := []struct {
		name      string
		expiry    *DateOnly
		threshold int
		want      bool
	}{
		{"expires today, zero threshold", expiryIn(0), 0, true},
		{"expires at threshold", expiryIn(3), 3, true},
		{"expires past threshold", expiryIn(4), 3, false},
		{"already expired", expiryIn(-1), 3, false},
		{"no expiry date", nil, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := pantryItem{Name: "yogurt", ExpiryDate: tc.expiry}
			if got := isNearExpiry(item, pantryToday(), tc.threshold); got != tc.want {
				t.Errorf("isNearExpiry = %v, want %v", got, tc.want)
			}
		})
	}
}

/* ─── Running low ────────────────────────────────────────────────────── */

// TestIsRunningLow verifies both quantities must be present and the
// comparison is inclusive at the threshold.
func TestIsRunningLow(t *testing.T) {
	cases := []struct {
		name     string
		quantity *float64
		minimum  *float64
		want     bool
	}{
		{"below minimum", fptr(1), fptr(2), true},
		{"exactly at minimum", fptr(2), fptr(2), true},
		{"above minimum", fptr(3), fptr(2), false},
		{"no minimum set", fptr(0), nil, false},
		{"no quantity set", nil, fptr(2), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := pantryItem{Name: "rice", Quantity: tc.quantity, MinQuantity: tc.minimum}
			if got := isRunningLow(item); got != tc.want {
				t.Errorf("isRunningLow = %v, want %v", got, tc.want)
			}
		})
	}
}
