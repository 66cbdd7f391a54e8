package main

import (
	"math"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

/* ─── BMI ────────────────────────────────────────────────────────────── */

// TestBMI_Computation verifies the weight / height² formula with height
// converted from centimetres to metres.
func TestBMI_Computation(t *testing.T) {
	got := bmi(fptr(175), fptr(70))
	if got == nil {
		t.Fatal("expected a BMI value, got nil")
	}
	want := 70 / (1.75 * 1.75)
	if math.Abs(*got-want) > 0.01 {
		t.Errorf("bmi = %.4f, want %.4f", *got, want)
	}
}

// TestBMI_MissingOrInvalidInputs verifies that absent or non-positive inputs
// yield nil rather than zero or a division blowup.
func TestBMI_MissingOrInvalidInputs(t *testing.T) {
	cases := []struct {
		name   string
		height *float64
		weight *float64
	}{
		{"nil height", nil, fptr(70)},
		{"nil weight", fptr(175), nil},
		{"zero height", fptr(0), fptr(70)},
		{"negative weight", fptr(175), fptr(-5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bmi(tc.height, tc.weight); got != nil {
				t.Errorf("expected nil, got %.2f", *got)
			}
		})
	}
}

/* ─── Age ────────────────────────────────────────────────────────────── */

// TestAgeYears_CalendarYearSubtraction verifies that age is the difference of
// calendar years regardless of whether the birthday has occurred yet.
func TestAgeYears_CalendarYearSubtraction(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday passed", time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC), 36},
		{"birthday not yet", time.Date(1990, 11, 20, 0, 0, 0, 0, time.UTC), 36},
		{"born this year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dob := DateOnly{tc.dob}
			got := ageYears(&dob, today)
			if got == nil {
				t.Fatal("expected an age, got nil")
			}
			if *got != tc.want {
				t.Errorf("ageYears = %d, want %d", *got, tc.want)
			}
		})
	}
}

func TestAgeYears_NilDOB(t *testing.T) {
	if got := ageYears(nil, time.Now()); got != nil {
		t.Errorf("expected nil, got %d", *got)
	}
}

/* ─── BMR / TDEE ─────────────────────────────────────────────────────── */

// TestBMR_MifflinStJeor verifies the sex-specific constants:
// 10×70 + 6.25×175 − 5×30 + 5 = 1648.75 for a male.
func TestBMR_MifflinStJeor(t *testing.T) {
	male := bmr(fptr(70), fptr(175), iptr(30), sptr("male"))
	if male == nil {
		t.Fatal("expected a male BMR, got nil")
	}
	if math.Abs(*male-1648.75) > 0.01 {
		t.Errorf("male bmr = %.2f, want 1648.75", *male)
	}

	female := bmr(fptr(70), fptr(175), iptr(30), sptr("female"))
	if female == nil {
		t.Fatal("expected a female BMR, got nil")
	}
	if math.Abs(*female-(1648.75-166)) > 0.01 {
		t.Errorf("female bmr = %.2f, want %.2f", *female, 1648.75-166)
	}
}

// TestBMR_MissingInputs verifies each absent input maps to a nil result,
// including a sex string outside male/female.
func TestBMR_MissingInputs(t *testing.T) {
	cases := []struct {
		name   string
		weight *float64
		height *float64
		age    *int
		sex    *string
	}{
		{"nil weight", nil, fptr(175), iptr(30), sptr("male")},
		{"nil height", fptr(70), nil, iptr(30), sptr("male")},
		{"nil age", fptr(70), fptr(175), nil, sptr("male")},
		{"nil sex", fptr(70), fptr(175), iptr(30), nil},
		{"unrecognized sex", fptr(70), fptr(175), iptr(30), sptr("other")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bmr(tc.weight, tc.height, tc.age, tc.sex); got != nil {
				t.Errorf("expected nil, got %.2f", *got)
			}
		})
	}
}

// TestTDEE_ActivityMultipliers verifies the five tiers plus the sedentary
// default for an unknown tier.
func TestTDEE_ActivityMultipliers(t *testing.T) {
	cases := []struct {
		level string
		want  float64
	}{
		{"sedentary", 1648.75 * 1.2},
		{"low", 1648.75 * 1.375},
		{"moderate", 1648.75 * 1.55},
		{"high", 1648.75 * 1.725},
		{"very_high", 1648.75 * 1.9},
		{"unknown_tier", 1648.75 * 1.2},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			got := tdee(fptr(1648.75), sptr(tc.level))
			if got == nil {
				t.Fatal("expected a TDEE value, got nil")
			}
			if math.Abs(*got-tc.want) > 0.01 {
				t.Errorf("tdee = %.2f, want %.2f", *got, tc.want)
			}
		})
	}
}

func TestTDEE_NilBMR(t *testing.T) {
	if got := tdee(nil, sptr("moderate")); got != nil {
		t.Errorf("expected nil, got %.2f", *got)
	}
}

/* ─── Calorie estimation ─────────────────────────────────────────────── */

// TestEstimateCalories verifies METs × weight × hours, the per-type MET
// values, and the 200 fallback when weight or duration is missing.
func TestEstimateCalories(t *testing.T) {
	cases := []struct {
		name     string
		weight   *float64
		wType    *string
		duration *int
		want     float64
	}{
		{"hiit hour", fptr(70), sptr("hiit"), iptr(60), 560},
		{"cardio half hour", fptr(80), sptr("cardio"), iptr(30), 280},
		{"strength", fptr(70), sptr("strength"), iptr(60), 420},
		{"yoga", fptr(70), sptr("yoga"), iptr(60), 210},
		{"unknown type default MET", fptr(70), sptr("pilates"), iptr(60), 350},
		{"missing weight", nil, sptr("hiit"), iptr(60), 200},
		{"missing duration", fptr(70), sptr("hiit"), nil, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := estimateCalories(tc.weight, tc.wType, tc.duration)
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("estimateCalories = %.2f, want %.2f", got, tc.want)
			}
		})
	}
}
