package main

import (
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Aggregate types ────────────────────────────────────────────────── */

// workoutAggregate summarizes a 30-day window of workout sessions.
type workoutAggregate struct {
	TotalSessions       int     `json:"total_sessions"`
	WeeklyAverage       int     `json:"weekly_average"`
	AverageDuration     float64 `json:"average_duration"`
	TotalCaloriesBurned float64 `json:"total_calories_burned"`
}

// nutritionAggregate summarizes a 30-day window of nutrition entries.
type nutritionAggregate struct {
	EntriesCount    int     `json:"entries_count"`
	AverageCalories float64 `json:"average_calories"`
	AverageProtein  float64 `json:"average_protein"`
	AverageCarbs    float64 `json:"average_carbs"`
	AverageFat      float64 `json:"average_fat"`
}

// trendLabels carries directional trend labels. A nil field means the window
// held too few records to label at all — deliberately distinct from "stable",
// which is a positive claim about the data.
type trendLabels struct {
	WorkoutFrequency     *string `json:"workout_frequency_trend,omitempty"`
	NutritionConsistency *string `json:"nutrition_consistency_trend,omitempty"`
}

// weightLossProgress estimates weekly weight change from the caloric deficit.
type weightLossProgress struct {
	TotalCaloriesBurned   float64 `json:"total_calories_burned"`
	AverageDailyCalories  float64 `json:"average_daily_calories"`
	EstimatedWeeklyChange float64 `json:"estimated_weekly_weight_loss"`
}

type muscleGainProgress struct {
	StrengthSessions  int  `json:"strength_sessions_count"`
	RecommendedWeekly int  `json:"recommended_weekly_strength_sessions"`
	OnTrack           bool `json:"on_track"`
}

// enduranceProgress compares the earliest and latest cardio session durations
// in the window. Improvement is omitted entirely below 2 cardio sessions.
type enduranceProgress struct {
	CardioSessions      int     `json:"cardio_sessions_count"`
	DurationImprovement *int    `json:"duration_improvement,omitempty"`
	Label               *string `json:"endurance_improvement,omitempty"`
}

type strengthProgress struct {
	StrengthSessions int    `json:"strength_sessions_count"`
	Trend            string `json:"progress_trend"`
}

// goalProgress holds per-goal analysis, keyed by the fitness-goal tags present
// on the profile. Goals the user hasn't set stay nil and are omitted.
type goalProgress struct {
	WeightLoss *weightLossProgress `json:"weight_loss,omitempty"`
	MuscleGain *muscleGainProgress `json:"muscle_gain,omitempty"`
	Endurance  *enduranceProgress  `json:"endurance,omitempty"`
	Strength   *strengthProgress   `json:"strength,omitempty"`
}

// progressAnalysis is the full trend report for GET /api/coach/progress.
type progressAnalysis struct {
	WorkoutAnalysis   workoutAggregate   `json:"workout_analysis"`
	NutritionAnalysis nutritionAggregate `json:"nutrition_analysis"`
	Trends            trendLabels        `json:"trends"`
	GoalProgress      goalProgress       `json:"goal_progress"`
	GoalAdjustments   map[string]string  `json:"goal_adjustments"`
}

/* ─── Pure analysis functions ────────────────────────────────────────── */

// trendWindowDays is the canonical trailing analysis window.
const trendWindowDays = 30

// minRecordsForTrend gates trend labeling: below this, a label would say more
// about sparse data than about the user.
const minRecordsForTrend = 14

// analyzeWorkouts aggregates a window of sessions. The weekly average uses
// the fixed divisor 4 (30 days ≈ 4 weeks) with integer division; sessions
// without a duration or calorie value are excluded from those aggregates,
// not counted as zero.
func analyzeWorkouts(sessions []workoutSession) workoutAggregate {
	agg := workoutAggregate{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return agg
	}

	agg.WeeklyAverage = len(sessions) / 4

	var durationSum, durationCount int
	var calorieSum float64
	for _, s := range sessions {
		if s.Duration != nil {
			durationSum += *s.Duration
			durationCount++
		}
		if s.CaloriesBurned != nil {
			calorieSum += *s.CaloriesBurned
		}
	}
	if durationCount > 0 {
		agg.AverageDuration = round0(float64(durationSum) / float64(durationCount))
	}
	agg.TotalCaloriesBurned = round0(calorieSum)
	return agg
}

// analyzeNutrition averages calories and macros across the window's entries.
func analyzeNutrition(entries []nutritionEntry) nutritionAggregate {
	agg := nutritionAggregate{EntriesCount: len(entries)}
	if len(entries) == 0 {
		return agg
	}

	var calories, protein, carbs, fat float64
	for _, e := range entries {
		calories += e.Calories
		protein += e.ProteinG
		carbs += e.CarbsG
		fat += e.FatG
	}
	n := float64(len(entries))
	agg.AverageCalories = round0(calories / n)
	agg.AverageProtein = round2(protein / n)
	agg.AverageCarbs = round2(carbs / n)
	agg.AverageFat = round2(fat / n)
	return agg
}

// halfSplitLabel compares record counts between the older and newer 15-day
// halves of the window and returns up/down/flat depending on which is
// strictly greater.
func halfSplitLabel(newer, older int, up, down, flat string) string {
	switch {
	case newer > older:
		return up
	case newer < older:
		return down
	default:
		return flat
	}
}

// analyzeTrends labels workout-frequency and nutrition-consistency direction
// by splitting the 30-day window into two 15-day halves. Each label is only
// emitted when that record type has at least minRecordsForTrend records in
// the full window.
func analyzeTrends(sessions []workoutSession, entries []nutritionEntry, now time.Time) trendLabels {
	var t trendLabels
	midpoint := now.AddDate(0, 0, -trendWindowDays/2)

	if len(sessions) >= minRecordsForTrend {
		older, newer := 0, 0
		for _, s := range sessions {
			if s.CreatedAt == nil {
				continue
			}
			if s.CreatedAt.After(midpoint) {
				newer++
			} else {
				older++
			}
		}
		label := halfSplitLabel(newer, older, "increasing", "decreasing", "stable")
		t.WorkoutFrequency = &label
	}

	if len(entries) >= minRecordsForTrend {
		older, newer := 0, 0
		for _, e := range entries {
			if e.Date.Time.After(midpoint) {
				newer++
			} else {
				older++
			}
		}
		label := halfSplitLabel(newer, older, "improving", "declining", "stable")
		t.NutritionConsistency = &label
	}

	return t
}

// sessionsOfType filters sessions by type tag, case-insensitively.
func sessionsOfType(sessions []workoutSession, sessionType string) []workoutSession {
	var out []workoutSession
	for _, s := range sessions {
		if strings.EqualFold(s.SessionType, sessionType) {
			out = append(out, s)
		}
	}
	return out
}

// analyzeWeightLoss estimates weekly weight change from the caloric deficit:
// TDEE − mean daily intake + (window calories burned / 30), scaled by
// 7/3500 (3500 kcal ≈ 1 lb). TDEE defaults to 2000 when the profile can't
// provide one.
func analyzeWeightLoss(p profile, sessions []workoutSession, entries []nutritionEntry) *weightLossProgress {
	var burned float64
	for _, s := range sessions {
		if s.CaloriesBurned != nil {
			burned += *s.CaloriesBurned
		}
	}

	var avgIntake float64
	if len(entries) > 0 {
		var sum float64
		for _, e := range entries {
			sum += e.Calories
		}
		avgIntake = sum / float64(len(entries))
	}

	userTDEE := 2000.0
	age := ageYears(p.DateOfBirth, time.Now())
	if v := tdee(bmr(p.WeightKG, p.HeightCM, age, p.Sex), p.ActivityLevel); v != nil {
		userTDEE = *v
	}

	dailyDeficit := userTDEE - avgIntake + burned/float64(trendWindowDays)
	weekly := round2(dailyDeficit * 7 / 3500)

	return &weightLossProgress{
		TotalCaloriesBurned:   burned,
		AverageDailyCalories:  avgIntake,
		EstimatedWeeklyChange: weekly,
	}
}

func analyzeMuscleGain(sessions []workoutSession) *muscleGainProgress {
	count := len(sessionsOfType(sessions, "strength"))
	return &muscleGainProgress{
		StrengthSessions:  count,
		RecommendedWeekly: 3,
		OnTrack:           count >= 8, // 2+ per week over 4 weeks
	}
}

func analyzeEndurance(sessions []workoutSession) *enduranceProgress {
	cardio := sessionsOfType(sessions, "cardio")
	sort.SliceStable(cardio, func(i, j int) bool {
		a, b := cardio[i].CreatedAt, cardio[j].CreatedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	p := &enduranceProgress{CardioSessions: len(cardio)}
	if len(cardio) < 2 {
		return p
	}

	first, last := cardio[0], cardio[len(cardio)-1]
	if first.Duration == nil || last.Duration == nil {
		return p
	}

	improvement := *last.Duration - *first.Duration
	label := "stable"
	if improvement > 0 {
		label = "improving"
	}
	p.DurationImprovement = &improvement
	p.Label = &label
	return p
}

func analyzeStrength(sessions []workoutSession) *strengthProgress {
	count := len(sessionsOfType(sessions, "strength"))
	trend := "needs_improvement"
	if count >= 8 {
		trend = "good"
	}
	return &strengthProgress{StrengthSessions: count, Trend: trend}
}

// analyzeGoalProgress runs the per-goal analyzers for each fitness-goal tag
// on the profile. Unrecognized goal tags are skipped.
func analyzeGoalProgress(p profile, sessions []workoutSession, entries []nutritionEntry) goalProgress {
	var gp goalProgress
	for _, goal := range p.FitnessGoals {
		switch strings.ToLower(goal) {
		case "weight_loss":
			gp.WeightLoss = analyzeWeightLoss(p, sessions, entries)
		case "muscle_gain":
			gp.MuscleGain = analyzeMuscleGain(sessions)
		case "endurance":
			gp.Endurance = analyzeEndurance(sessions)
		case "strength":
			gp.Strength = analyzeStrength(sessions)
		}
	}
	return gp
}

// suggestGoalAdjustments flags goals that look misconfigured: a weekly
// workout average under 2 suggests lowering the frequency target, and a
// current-to-target weight gap over 20 kg suggests an intermediate milestone.
func suggestGoalAdjustments(p profile, workouts workoutAggregate) map[string]string {
	adjustments := map[string]string{}

	if workouts.WeeklyAverage < 2 {
		adjustments["workout_frequency"] = "Consider setting a more achievable goal of 2 workouts per week initially"
	}

	if p.WeightKG != nil && p.TargetWeightKG != nil {
		if math.Abs(*p.WeightKG-*p.TargetWeightKG) > 20 {
			adjustments["weight_goal"] = "Consider setting intermediate weight goals for better motivation"
		}
	}

	return adjustments
}

// computeProgressAnalysis assembles the full trend report. Pure with respect
// to its inputs; the caller supplies the window-restricted records and "now".
func computeProgressAnalysis(p profile, sessions []workoutSession, entries []nutritionEntry, now time.Time) progressAnalysis {
	workouts := analyzeWorkouts(sessions)
	return progressAnalysis{
		WorkoutAnalysis:   workouts,
		NutritionAnalysis: analyzeNutrition(entries),
		Trends:            analyzeTrends(sessions, entries, now),
		GoalProgress:      analyzeGoalProgress(p, sessions, entries),
		GoalAdjustments:   suggestGoalAdjustments(p, workouts),
	}
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// loadAnalysisWindow fetches the profile plus the trailing 30 days of
// sessions and nutrition entries for the user.
func (h *Handler) loadAnalysisWindow(c *gin.Context, userID int, now time.Time) (profile, []workoutSession, []nutritionEntry, error) {
	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return profile{}, nil, nil, err
	}

	cutoff := now.AddDate(0, 0, -trendWindowDays)

	sessions, err := queryMany[workoutSession](h.db, c,
		`SELECT * FROM workout_sessions
		 WHERE user_id = @userID AND created_at > @cutoff
		 ORDER BY created_at ASC`,
		pgx.NamedArgs{"userID": userID, "cutoff": cutoff})
	if err != nil {
		return profile{}, nil, nil, err
	}

	entries, err := queryMany[nutritionEntry](h.db, c,
		`SELECT * FROM nutrition_entries
		 WHERE user_id = @userID AND date > @cutoff
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "cutoff": cutoff.Format("2006-01-02")})
	if err != nil {
		return profile{}, nil, nil, err
	}

	return p, sessions, entries, nil
}

// getProgressAnalysis returns 30-day aggregates, trend labels, and per-goal
// progress. GET /api/coach/progress.
// A missing profile is 404; an empty window is a valid (mostly zero) report.
func (h *Handler) getProgressAnalysis(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := time.Now()

	p, sessions, entries, err := h.loadAnalysisWindow(c, userID, now)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	c.JSON(http.StatusOK, computeProgressAnalysis(p, sessions, entries, now))
}
