package main

import (
	"math"
	"testing"
	"time"
)

func sessionAt(daysAgo int, sessionType string, duration *int, calories *float64) workoutSession {
	created := analysisNow().AddDate(0, 0, -daysAgo)
	return workoutSession{
		SessionType:    sessionType,
		Duration:       duration,
		CaloriesBurned: calories,
		CreatedAt:      &created,
	}
}

func entryAt(daysAgo int, calories, protein float64) nutritionEntry {
	return nutritionEntry{
		Date:     DateOnly{analysisNow().AddDate(0, 0, -daysAgo)},
		Calories: calories,
		ProteinG: protein,
	}
}

// analysisNow is a fixed reference time so half-window splits are stable.
func analysisNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

/* ─── Workout aggregates ─────────────────────────────────────────────── */

// TestAnalyzeWorkouts_WeeklyAverageIntegerDivision pins the /4 divisor with
// integer division: 7 sessions over the window is a weekly average of 1.
func TestAnalyzeWorkouts_WeeklyAverageIntegerDivision(t *testing.T) {
	cases := []struct {
		sessions int
		want     int
	}{
		{0, 0}, {3, 0}, {4, 1}, {7, 1}, {8, 2}, {12, 3},
	}
	for _, tc := range cases {
		var sessions []workoutSession
		for i := 0; i < tc.sessions; i++ {
			sessions = append(sessions, sessionAt(i, "cardio", nil, nil))
		}
		agg := analyzeWorkouts(sessions)
		if agg.WeeklyAverage != tc.want {
			t.Errorf("%d sessions: WeeklyAverage = %d, want %d", tc.sessions, agg.WeeklyAverage, tc.want)
		}
	}
}

// TestAnalyzeWorkouts_SkipsMissingValues verifies sessions without duration
// or calories are excluded from those aggregates, not treated as zero.
func TestAnalyzeWorkouts_SkipsMissingValues(t *testing.T) {
	agg := analyzeWorkouts([]workoutSession{
		sessionAt(1, "cardio", iptr(30), fptr(300)),
		sessionAt(2, "cardio", nil, fptr(200)),
		sessionAt(3, "cardio", iptr(60), nil),
	})
	if agg.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", agg.TotalSessions)
	}
	if agg.AverageDuration != 45 {
		t.Errorf("AverageDuration = %.1f, want 45 (mean of non-missing only)", agg.AverageDuration)
	}
	if agg.TotalCaloriesBurned != 500 {
		t.Errorf("TotalCaloriesBurned = %.1f, want 500", agg.TotalCaloriesBurned)
	}
}

func TestAnalyzeNutrition_Averages(t *testing.T) {
	agg := analyzeNutrition([]nutritionEntry{
		{Calories: 1800, ProteinG: 100, CarbsG: 200, FatG: 50},
		{Calories: 2200, ProteinG: 120, CarbsG: 240, FatG: 70},
	})
	if agg.EntriesCount != 2 {
		t.Errorf("EntriesCount = %d, want 2", agg.EntriesCount)
	}
	if agg.AverageCalories != 2000 {
		t.Errorf("AverageCalories = %.1f, want 2000", agg.AverageCalories)
	}
	if agg.AverageProtein != 110 || agg.AverageCarbs != 220 || agg.AverageFat != 60 {
		t.Errorf("macro averages = %.1f/%.1f/%.1f, want 110/220/60",
			agg.AverageProtein, agg.AverageCarbs, agg.AverageFat)
	}
}

/* ─── Trends ─────────────────────────────────────────────────────────── */

// TestAnalyzeTrends_GatedBelowFourteenRecords verifies no label is emitted at
// 13 records: a nil label is distinct from "stable".
func TestAnalyzeTrends_GatedBelowFourteenRecords(t *testing.T) {
	var sessions []workoutSession
	for i := 0; i < 13; i++ {
		sessions = append(sessions, sessionAt(i%28, "cardio", nil, nil))
	}
	trends := analyzeTrends(sessions, nil, analysisNow())
	if trends.WorkoutFrequency != nil {
		t.Errorf("expected nil workout trend at 13 records, got %q", *trends.WorkoutFrequency)
	}
	if trends.NutritionConsistency != nil {
		t.Errorf("expected nil nutrition trend with no entries, got %q", *trends.NutritionConsistency)
	}
}

// TestAnalyzeTrends_HalfWindowComparison verifies the labels for each
// relation between the newer and older 15-day halves.
func TestAnalyzeTrends_HalfWindowComparison(t *testing.T) {
	build := func(newer, older int) []workoutSession {
		var out []workoutSession
		for i := 0; i < newer; i++ {
			out = append(out, sessionAt(i%14, "cardio", nil, nil))
		}
		for i := 0; i < older; i++ {
			out = append(out, sessionAt(16+i%13, "cardio", nil, nil))
		}
		return out
	}

	cases := []struct {
		name         string
		newer, older int
		want         string
	}{
		{"more recent activity", 10, 5, "increasing"},
		{"less recent activity", 5, 10, "decreasing"},
		{"even split", 7, 7, "stable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trends := analyzeTrends(build(tc.newer, tc.older), nil, analysisNow())
			if trends.WorkoutFrequency == nil {
				t.Fatal("expected a workout trend label")
			}
			if *trends.WorkoutFrequency != tc.want {
				t.Errorf("workout trend = %q, want %q", *trends.WorkoutFrequency, tc.want)
			}
		})
	}
}

// TestAnalyzeTrends_NutritionLabels verifies the nutrition vocabulary is
// improving/declining/stable rather than the workout one.
func TestAnalyzeTrends_NutritionLabels(t *testing.T) {
	var entries []nutritionEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, entryAt(i%14, 2000, 100))
	}
	for i := 0; i < 4; i++ {
		entries = append(entries, entryAt(16+i, 2000, 100))
	}
	trends := analyzeTrends(nil, entries, analysisNow())
	if trends.NutritionConsistency == nil {
		t.Fatal("expected a nutrition trend label")
	}
	if *trends.NutritionConsistency != "improving" {
		t.Errorf("nutrition trend = %q, want %q", *trends.NutritionConsistency, "improving")
	}
}

/* ─── Goal progress ──────────────────────────────────────────────────── */

// TestAnalyzeWeightLoss_Projection verifies the deficit projection:
// (TDEE − mean intake + burned/30) × 7 / 3500, with TDEE defaulting to 2000
// for an empty profile.
func TestAnalyzeWeightLoss_Projection(t *testing.T) {
	sessions := []workoutSession{
		sessionAt(1, "cardio", iptr(30), fptr(1500)),
		sessionAt(2, "cardio", iptr(30), fptr(1500)),
	}
	entries := []nutritionEntry{
		{Calories: 1500}, {Calories: 1500},
	}

	got := analyzeWeightLoss(profile{}, sessions, entries)
	// deficit = 2000 - 1500 + 3000/30 = 600; weekly = 600*7/3500 = 1.2
	if math.Abs(got.EstimatedWeeklyChange-1.2) > 0.001 {
		t.Errorf("EstimatedWeeklyChange = %.3f, want 1.200", got.EstimatedWeeklyChange)
	}
	if got.TotalCaloriesBurned != 3000 {
		t.Errorf("TotalCaloriesBurned = %.1f, want 3000", got.TotalCaloriesBurned)
	}
	if got.AverageDailyCalories != 1500 {
		t.Errorf("AverageDailyCalories = %.1f, want 1500", got.AverageDailyCalories)
	}
}

// TestAnalyzeMuscleGain_OnTrackThreshold verifies on_track flips at 8
// strength sessions in the window.
func TestAnalyzeMuscleGain_OnTrackThreshold(t *testing.T) {
	build := func(n int) []workoutSession {
		var out []workoutSession
		for i := 0; i < n; i++ {
			out = append(out, sessionAt(i, "strength", nil, nil))
		}
		out = append(out, sessionAt(0, "cardio", nil, nil)) // must not count
		return out
	}

	if got := analyzeMuscleGain(build(7)); got.OnTrack {
		t.Error("7 strength sessions: expected on_track=false")
	}
	got := analyzeMuscleGain(build(8))
	if !got.OnTrack {
		t.Error("8 strength sessions: expected on_track=true")
	}
	if got.StrengthSessions != 8 {
		t.Errorf("StrengthSessions = %d, want 8", got.StrengthSessions)
	}
}

// TestAnalyzeEndurance verifies first-vs-last cardio duration comparison and
// that improvement is omitted entirely below 2 cardio sessions.
func TestAnalyzeEndurance(t *testing.T) {
	t.Run("too few cardio sessions", func(t *testing.T) {
		got := analyzeEndurance([]workoutSession{sessionAt(1, "cardio", iptr(20), nil)})
		if got.DurationImprovement != nil || got.Label != nil {
			t.Error("expected improvement omitted with a single cardio session")
		}
	})

	t.Run("improving", func(t *testing.T) {
		got := analyzeEndurance([]workoutSession{
			sessionAt(20, "cardio", iptr(20), nil),
			sessionAt(10, "strength", iptr(90), nil), // ignored
			sessionAt(2, "cardio", iptr(35), nil),
		})
		if got.DurationImprovement == nil || *got.DurationImprovement != 15 {
			t.Fatalf("DurationImprovement = %v, want 15", got.DurationImprovement)
		}
		if *got.Label != "improving" {
			t.Errorf("Label = %q, want improving", *got.Label)
		}
	})

	t.Run("flat or worse is stable", func(t *testing.T) {
		got := analyzeEndurance([]workoutSession{
			sessionAt(20, "cardio", iptr(40), nil),
			sessionAt(2, "cardio", iptr(30), nil),
		})
		if got.Label == nil || *got.Label != "stable" {
			t.Errorf("Label = %v, want stable", got.Label)
		}
	})
}

func TestAnalyzeStrength_Trend(t *testing.T) {
	var sessions []workoutSession
	for i := 0; i < 8; i++ {
		sessions = append(sessions, sessionAt(i, "strength", nil, nil))
	}
	if got := analyzeStrength(sessions); got.Trend != "good" {
		t.Errorf("Trend = %q, want good", got.Trend)
	}
	if got := analyzeStrength(sessions[:7]); got.Trend != "needs_improvement" {
		t.Errorf("Trend = %q, want needs_improvement", got.Trend)
	}
}

/* ─── Goal adjustments ───────────────────────────────────────────────── */

// TestSuggestGoalAdjustments verifies the two heuristics: weekly average
// below 2 and a weight gap over 20 kg.
func TestSuggestGoalAdjustments(t *testing.T) {
	p := profile{WeightKG: fptr(110), TargetWeightKG: fptr(80)}
	adjustments := suggestGoalAdjustments(p, workoutAggregate{WeeklyAverage: 1})
	if _, ok := adjustments["workout_frequency"]; !ok {
		t.Error("expected a workout_frequency adjustment at weekly average 1")
	}
	if _, ok := adjustments["weight_goal"]; !ok {
		t.Error("expected a weight_goal adjustment for a 30 kg gap")
	}

	onTrack := profile{WeightKG: fptr(85), TargetWeightKG: fptr(80)}
	adjustments = suggestGoalAdjustments(onTrack, workoutAggregate{WeeklyAverage: 3})
	if len(adjustments) != 0 {
		t.Errorf("expected no adjustments, got %v", adjustments)
	}
}

// TestAnalyzeGoalProgress_OnlyListedGoals verifies analyzers only run for the
// goals the profile actually lists.
func TestAnalyzeGoalProgress_OnlyListedGoals(t *testing.T) {
	p := profile{FitnessGoals: []string{"endurance"}}
	gp := analyzeGoalProgress(p, nil, nil)
	if gp.Endurance == nil {
		t.Error("expected endurance progress for a listed goal")
	}
	if gp.WeightLoss != nil || gp.MuscleGain != nil || gp.Strength != nil {
		t.Error("expected unlisted goals to stay nil")
	}
}
