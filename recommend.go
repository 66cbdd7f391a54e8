package main

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Eligibility filters ────────────────────────────────────────────── */

// containsFold reports whether any needle is a case-insensitive substring of
// any haystack entry.
func containsFold(haystack []string, needles []string) bool {
	for _, n := range needles {
		ln := strings.ToLower(n)
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), ln) {
				return true
			}
		}
	}
	return false
}

// recipeEligible filters out recipes conflicting with the profile's dietary
// restrictions or allergies, and when cuisine preferences are set, recipes
// whose cuisine doesn't exactly match one of them.
func recipeEligible(p profile, r recipe) bool {
	if containsFold(r.Tags, p.DietaryTags) {
		return false
	}
	if containsFold(r.Ingredients, p.Allergies) {
		return false
	}
	if len(p.CuisinePrefs) > 0 {
		if r.CuisineType == nil {
			return false
		}
		matched := false
		for _, c := range p.CuisinePrefs {
			if strings.EqualFold(c, *r.CuisineType) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// planEligible excludes advanced plans for beginners and plans whose duration
// is more than 30 minutes off the profile's preferred workout duration.
func planEligible(p profile, plan workoutPlan) bool {
	if p.Experience != nil && plan.Difficulty != nil &&
		strings.EqualFold(*p.Experience, "beginner") &&
		strings.EqualFold(*plan.Difficulty, "advanced") {
		return false
	}
	if p.WorkoutDuration != nil && plan.Duration != nil {
		if math.Abs(float64(*p.WorkoutDuration-*plan.Duration)) > 30 {
			return false
		}
	}
	return true
}

/* ─── Scoring ────────────────────────────────────────────────────────── */

// scoreRecipe ranks a recipe for a profile. Rating dominates; popularity
// counters are capped so runaway counts can't drown out fit; recipes over an
// hour of total time take a small penalty.
func scoreRecipe(p profile, r recipe) float64 {
	score := r.RatingAverage * 20
	score += math.Min(float64(r.MadeCount)/10, 15)
	score += math.Min(float64(r.SaveCount)/5, 10)
	if p.Experience != nil && r.Difficulty != nil && strings.EqualFold(*p.Experience, *r.Difficulty) {
		score += 15
	}
	if r.CuisineType != nil {
		for _, c := range p.CuisinePrefs {
			if strings.EqualFold(c, *r.CuisineType) {
				score += 10
				break
			}
		}
	}
	if r.totalTime() > 60 {
		score -= 5
	}
	return score
}

// scorePlan ranks a workout plan for a profile. Duration fit decays linearly
// (10 points at an exact match, 0 at 100 minutes off) and each fitness goal
// that substring-matches a plan tag is worth 5.
func scorePlan(p profile, plan workoutPlan) float64 {
	score := plan.RatingAverage * 20
	score += math.Min(float64(plan.CompletedCount)/10, 20)
	if p.Experience != nil && plan.Difficulty != nil && strings.EqualFold(*p.Experience, *plan.Difficulty) {
		score += 15
	}
	if p.WorkoutDuration != nil && plan.Duration != nil {
		delta := math.Abs(float64(*p.WorkoutDuration - *plan.Duration))
		score += math.Max(0, 10-delta/10)
	}
	for _, goal := range p.FitnessGoals {
		if containsFold(plan.Tags, []string{goal}) {
			score += 5
		}
	}
	return score
}

// rankRecipes filters then sorts descending by score. The sort is stable so
// ties keep the fetch order and repeated calls return the same ranking.
func rankRecipes(p profile, candidates []recipe) []recipe {
	eligible := []recipe{}
	for _, r := range candidates {
		if recipeEligible(p, r) {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return scoreRecipe(p, eligible[i]) > scoreRecipe(p, eligible[j])
	})
	return eligible
}

func rankPlans(p profile, candidates []workoutPlan) []workoutPlan {
	eligible := []workoutPlan{}
	for _, plan := range candidates {
		if planEligible(p, plan) {
			eligible = append(eligible, plan)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return scorePlan(p, eligible[i]) > scorePlan(p, eligible[j])
	})
	return eligible
}

/* ─── Rating aggregates ──────────────────────────────────────────────── */

var errInvalidRating = errors.New("rating must be between 1.0 and 5.0")

// updatedRatingAverage folds one new rating into an average+count aggregate.
// Ratings outside [1.0, 5.0] are rejected before any mutation happens.
func updatedRatingAverage(oldAverage float64, oldCount int, rating float64) (float64, error) {
	if rating < 1.0 || rating > 5.0 {
		return 0, errInvalidRating
	}
	return (oldAverage*float64(oldCount) + rating) / float64(oldCount+1), nil
}

// histogramBucket maps a rating to its 1–5 histogram key, rounding halves up.
func histogramBucket(rating float64) string {
	return strconv.Itoa(int(math.Round(rating)))
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// recommendLimit parses ?limit with a default of 10, capped at 50.
func recommendLimit(c *gin.Context) int {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 50 {
		limit = 50
	}
	return limit
}

// recommendRecipes returns public recipes ranked for the caller's profile.
// GET /api/recipes/recommendations?limit=N.
// Callers without a stored profile get the plain popularity ranking instead.
func (h *Handler) recommendRecipes(c *gin.Context) {
	userID := c.GetInt("user_id")
	limit := recommendLimit(c)

	candidates, err := queryMany[recipe](h.db, c,
		"SELECT * FROM recipes WHERE is_public ORDER BY rating_average DESC LIMIT 200",
		pgx.NamedArgs{})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load recipes")
		return
	}

	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		c.JSON(http.StatusOK, rankPopularRecipes(candidates, limit))
		return
	}

	ranked := rankRecipes(p, candidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	c.JSON(http.StatusOK, ranked)
}

// recommendWorkoutPlans returns public plans ranked for the caller's profile.
// GET /api/workout-plans/recommendations?limit=N.
func (h *Handler) recommendWorkoutPlans(c *gin.Context) {
	userID := c.GetInt("user_id")
	limit := recommendLimit(c)

	candidates, err := queryMany[workoutPlan](h.db, c,
		"SELECT * FROM workout_plans WHERE is_public ORDER BY rating_average DESC LIMIT 200",
		pgx.NamedArgs{})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load workout plans")
		return
	}

	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		if candidates == nil {
			candidates = []workoutPlan{}
		}
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		c.JSON(http.StatusOK, candidates)
		return
	}

	ranked := rankPlans(p, candidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	c.JSON(http.StatusOK, ranked)
}
