package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Physiological calculator ───────────────────────────────────────── */

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used
// for input validation in patchProfile.
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"low":       1.375,
	"moderate":  1.55,
	"high":      1.725,
	"very_high": 1.9,
}

// bmi returns weight / (height/100)^2, or nil when either input is missing
// or non-positive. Callers must treat nil as "cannot compute", never as zero.
func bmi(heightCM, weightKG *float64) *float64 {
	if heightCM == nil || weightKG == nil || *heightCM <= 0 || *weightKG <= 0 {
		return nil
	}
	m := *heightCM / 100.0
	v := *weightKG / (m * m)
	return &v
}

// ageYears derives age by calendar-year subtraction: today.year - dob.year,
// with no birthday adjustment. Downstream thresholds are tuned against this
// exact rule, so it must not be replaced with elapsed-years precision.
func ageYears(dob *DateOnly, today time.Time) *int {
	if dob == nil {
		return nil
	}
	a := today.Year() - dob.Time.Year()
	return &a
}

// bmr computes basal metabolic rate via Mifflin-St Jeor. Returns nil when any
// input is missing or the sex value is neither "male" nor "female"
// (case-insensitive).
func bmr(weightKG, heightCM *float64, age *int, sex *string) *float64 {
	if weightKG == nil || heightCM == nil || age == nil || sex == nil {
		return nil
	}
	base := 10**weightKG + 6.25**heightCM - 5*float64(*age)
	switch strings.ToLower(*sex) {
	case "male":
		base += 5
	case "female":
		base -= 161
	default:
		return nil
	}
	return &base
}

// tdee scales BMR by the activity multiplier. Unrecognized activity levels
// fall back to the sedentary multiplier 1.2 rather than failing.
func tdee(bmrVal *float64, activityLevel *string) *float64 {
	if bmrVal == nil {
		return nil
	}
	mult := 1.2
	if activityLevel != nil {
		if m, ok := activityMultipliers[strings.ToLower(*activityLevel)]; ok {
			mult = m
		}
	}
	v := *bmrVal * mult
	return &v
}

// populateComputed fills the computed-only fields on p from its stored fields.
// Fields that cannot be computed stay nil and are omitted from JSON.
func populateComputed(p *profile) {
	p.ComputedBMI = bmi(p.HeightCM, p.WeightKG)
	p.ComputedAge = ageYears(p.DateOfBirth, time.Now())
	p.ComputedBMR = bmr(p.WeightKG, p.HeightCM, p.ComputedAge, p.Sex)
	p.ComputedTDEE = tdee(p.ComputedBMR, p.ActivityLevel)
}

/* ─── MET-based calorie estimation ───────────────────────────────────── */

// workoutType is the set of session/plan type tags with known MET values.
// Keeping these as typed constants makes an unrecognized tag a visible gap
// in metsFor's switch instead of a silent string mismatch.
type workoutType string

const (
	workoutHIIT     workoutType = "hiit"
	workoutCardio   workoutType = "cardio"
	workoutStrength workoutType = "strength"
	workoutYoga     workoutType = "yoga"
)

// metsFor returns the MET value for a workout type tag; unknown tags get a
// general-activity default of 5.
func metsFor(t workoutType) float64 {
	switch t {
	case workoutHIIT:
		return 8.0
	case workoutCardio:
		return 7.0
	case workoutStrength:
		return 6.0
	case workoutYoga:
		return 3.0
	default:
		return 5.0
	}
}

// estimateCalories estimates calories burned for a workout from the user's
// weight and the workout duration: METs × weight(kg) × hours, rounded to the
// nearest whole calorie. Falls back to 200 when weight or duration is missing.
func estimateCalories(weightKG *float64, wType *string, durationMin *int) float64 {
	if weightKG == nil || durationMin == nil {
		return 200.0
	}
	t := workoutType("")
	if wType != nil {
		t = workoutType(strings.ToLower(*wType))
	}
	hours := float64(*durationMin) / 60.0
	return round0(metsFor(t) * *weightKG * hours)
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getProfile returns the authenticated user's profile with computed
// bmi/age/bmr/tdee fields populated when possible.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	populateComputed(&p)
	c.JSON(http.StatusOK, p)
}

// patchProfileRequest is the request body for PATCH /api/profile. All fields
// are pointers — only non-nil fields get written to the database.
type patchProfileRequest struct {
	HeightCM        *float64  `json:"height_cm"`
	WeightKG        *float64  `json:"weight_kg"`
	TargetWeightKG  *float64  `json:"target_weight_kg"`
	DateOfBirth     *string   `json:"date_of_birth"` // YYYY-MM-DD string, stored as date
	Sex             *string   `json:"sex"`
	ActivityLevel   *string   `json:"activity_level"`
	Experience      *string   `json:"experience"`
	FitnessGoals    *[]string `json:"fitness_goals"`
	DietaryTags     *[]string `json:"dietary_restrictions"`
	Allergies       *[]string `json:"allergies"`
	CuisinePrefs    *[]string `json:"cuisine_preferences"`
	WorkoutDuration *int      `json:"workout_duration"`
	WorkoutFreq     *int      `json:"workout_frequency"`
}

// validExperienceLevels mirrors the experience enum; also used by the workout
// recommendation filter in recommend.go.
var validExperienceLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate enums and ranges before saving — a bad activity_level silently
	// degrades every future TDEE computation to the sedentary multiplier.
	if body.ActivityLevel != nil {
		if _, ok := activityMultipliers[strings.ToLower(*body.ActivityLevel)]; !ok {
			apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, low, moderate, high, very_high")
			return
		}
	}
	if body.Experience != nil && !validExperienceLevels[strings.ToLower(*body.Experience)] {
		apiError(c, http.StatusBadRequest, "experience must be one of: beginner, intermediate, advanced")
		return
	}
	if body.HeightCM != nil && *body.HeightCM <= 0 {
		apiError(c, http.StatusBadRequest, "height_cm must be positive")
		return
	}
	if body.WeightKG != nil && *body.WeightKG <= 0 {
		apiError(c, http.StatusBadRequest, "weight_kg must be positive")
		return
	}
	if body.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *body.DateOfBirth); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
			return
		}
	}

	// Build SET clause dynamically — only update fields the client actually sent.
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}
	if body.TargetWeightKG != nil {
		setClauses = append(setClauses, "target_weight_kg = @targetWeightKG")
		args["targetWeightKG"] = *body.TargetWeightKG
	}
	if body.DateOfBirth != nil {
		setClauses = append(setClauses, "date_of_birth = @dateOfBirth")
		args["dateOfBirth"] = *body.DateOfBirth
	}
	if body.Sex != nil {
		setClauses = append(setClauses, "sex = @sex")
		args["sex"] = *body.Sex
	}
	if body.ActivityLevel != nil {
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = *body.ActivityLevel
	}
	if body.Experience != nil {
		setClauses = append(setClauses, "experience = @experience")
		args["experience"] = *body.Experience
	}
	if body.FitnessGoals != nil {
		setClauses = append(setClauses, "fitness_goals = @fitnessGoals")
		args["fitnessGoals"] = *body.FitnessGoals
	}
	if body.DietaryTags != nil {
		setClauses = append(setClauses, "dietary_restrictions = @dietaryTags")
		args["dietaryTags"] = *body.DietaryTags
	}
	if body.Allergies != nil {
		setClauses = append(setClauses, "allergies = @allergies")
		args["allergies"] = *body.Allergies
	}
	if body.CuisinePrefs != nil {
		setClauses = append(setClauses, "cuisine_preferences = @cuisinePrefs")
		args["cuisinePrefs"] = *body.CuisinePrefs
	}
	if body.WorkoutDuration != nil {
		setClauses = append(setClauses, "workout_duration = @workoutDuration")
		args["workoutDuration"] = *body.WorkoutDuration
	}
	if body.WorkoutFreq != nil {
		setClauses = append(setClauses, "workout_frequency = @workoutFreq")
		args["workoutFreq"] = *body.WorkoutFreq
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE profiles SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	p, err := queryOne[profile](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	populateComputed(&p)
	c.JSON(http.StatusOK, p)
}
