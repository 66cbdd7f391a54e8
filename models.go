package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to the profiles table: one row per user with body stats and
// personalization preferences. Nullable fields use pointers so pgx can scan
// NULLs and the core can distinguish "absent" from zero.
type profile struct {
	UserID          int       `json:"user_id" db:"user_id"`
	HeightCM        *float64  `json:"height_cm" db:"height_cm"`
	WeightKG        *float64  `json:"weight_kg" db:"weight_kg"`
	TargetWeightKG  *float64  `json:"target_weight_kg" db:"target_weight_kg"`
	DateOfBirth     *DateOnly `json:"date_of_birth" db:"date_of_birth"`
	Sex             *string   `json:"sex" db:"sex"`
	ActivityLevel   *string   `json:"activity_level" db:"activity_level"`
	Experience      *string   `json:"experience" db:"experience"`
	FitnessGoals    []string  `json:"fitness_goals" db:"fitness_goals"`
	DietaryTags     []string  `json:"dietary_restrictions" db:"dietary_restrictions"`
	Allergies       []string  `json:"allergies" db:"allergies"`
	CuisinePrefs    []string  `json:"cuisine_preferences" db:"cuisine_preferences"`
	WorkoutDuration *int      `json:"workout_duration" db:"workout_duration"`
	WorkoutFreq     *int      `json:"workout_frequency" db:"workout_frequency"`

	// Computed fields — populated server-side from the stored profile; not
	// persisted. db:"-" tells RowToStructByName to skip these during scanning.
	ComputedBMI  *float64 `json:"computed_bmi,omitempty" db:"-"`
	ComputedAge  *int     `json:"computed_age,omitempty" db:"-"`
	ComputedBMR  *float64 `json:"computed_bmr,omitempty" db:"-"`
	ComputedTDEE *float64 `json:"computed_tdee,omitempty" db:"-"`
}

// workoutSession maps to workout_sessions. Route metric columns are filled in
// when GPS tracking ends; they stay nil for sessions without a route.
type workoutSession struct {
	ID             int        `json:"id" db:"id"`
	UserID         int        `json:"user_id" db:"user_id"`
	SessionType    string     `json:"session_type" db:"session_type"`
	SessionName    *string    `json:"session_name" db:"session_name"`
	Duration       *int       `json:"duration" db:"duration"`
	CaloriesBurned *float64   `json:"calories_burned" db:"calories_burned"`
	Status         string     `json:"status" db:"status"`
	DistanceM      *float64   `json:"distance_m" db:"distance_m"`
	AvgSpeed       *float64   `json:"avg_speed" db:"avg_speed"`
	MaxSpeed       *float64   `json:"max_speed" db:"max_speed"`
	ElevationGain  *float64   `json:"elevation_gain" db:"elevation_gain"`
	ElevationLoss  *float64   `json:"elevation_loss" db:"elevation_loss"`
	CreatedAt      *time.Time `json:"created_at" db:"created_at"`
}

// gpsPoint maps to gps_points: one location sample inside a tracked session.
// Latitude and longitude are always present; altitude and speed are optional
// since not every device reports them.
type gpsPoint struct {
	ID         int       `json:"id" db:"id"`
	SessionID  int       `json:"session_id" db:"session_id"`
	Latitude   float64   `json:"latitude" db:"latitude"`
	Longitude  float64   `json:"longitude" db:"longitude"`
	Altitude   *float64  `json:"altitude" db:"altitude"`
	Speed      *float64  `json:"speed" db:"speed"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// nutritionEntry maps to nutrition_entries: one logged meal with calories and
// the fixed macro set (grams, except calories and sodium in mg).
type nutritionEntry struct {
	ID       int      `json:"id" db:"id"`
	UserID   int      `json:"user_id" db:"user_id"`
	Date     DateOnly `json:"date" db:"date"`
	Calories float64  `json:"calories" db:"calories"`
	ProteinG float64  `json:"protein_g" db:"protein_g"`
	CarbsG   float64  `json:"carbs_g" db:"carbs_g"`
	FatG     float64  `json:"fat_g" db:"fat_g"`
	FiberG   *float64 `json:"fiber_g" db:"fiber_g"`
	SugarG   *float64 `json:"sugar_g" db:"sugar_g"`
	SodiumMG *float64 `json:"sodium_mg" db:"sodium_mg"`
}

// recipe maps to recipes. The rating aggregate (average + count + 1–5
// histogram) lives directly on the row; the histogram is a jsonb column with
// bucket keys "1".."5".
type recipe struct {
	ID              int            `json:"id" db:"id"`
	Title           string         `json:"title" db:"title"`
	CuisineType     *string        `json:"cuisine_type" db:"cuisine_type"`
	MealType        *string        `json:"meal_type" db:"meal_type"`
	Difficulty      *string        `json:"difficulty" db:"difficulty"`
	PrepTime        *int           `json:"prep_time" db:"prep_time"`
	CookTime        *int           `json:"cook_time" db:"cook_time"`
	Tags            []string       `json:"tags" db:"tags"`
	Ingredients     []string       `json:"ingredients" db:"ingredients"`
	RatingAverage   float64        `json:"rating_average" db:"rating_average"`
	RatingCount     int            `json:"rating_count" db:"rating_count"`
	RatingHistogram map[string]int `json:"rating_histogram" db:"rating_histogram"`
	ViewCount       int            `json:"view_count" db:"view_count"`
	SaveCount       int            `json:"save_count" db:"save_count"`
	MadeCount       int            `json:"made_count" db:"made_count"`
	IsPublic        bool           `json:"is_public" db:"is_public"`
	CreatedBy       *int           `json:"created_by" db:"created_by"`
	CreatedAt       *time.Time     `json:"created_at" db:"created_at"`
}

// totalTime is prep + cook time in minutes, treating missing components as 0.
func (r recipe) totalTime() int {
	total := 0
	if r.PrepTime != nil {
		total += *r.PrepTime
	}
	if r.CookTime != nil {
		total += *r.CookTime
	}
	return total
}

// workoutPlan maps to workout_plans. Unlike recipes, the plan rating aggregate
// carries only average + count (no histogram).
type workoutPlan struct {
	ID               int        `json:"id" db:"id"`
	UserID           *int       `json:"user_id" db:"user_id"`
	Name             string     `json:"name" db:"name"`
	Difficulty       *string    `json:"difficulty" db:"difficulty"`
	Duration         *int       `json:"duration" db:"duration"`
	WorkoutType      *string    `json:"workout_type" db:"workout_type"`
	Tags             []string   `json:"tags" db:"tags"`
	CaloriesEstimate *float64   `json:"calories_estimate" db:"calories_estimate"`
	RatingAverage    float64    `json:"rating_average" db:"rating_average"`
	RatingCount      int        `json:"rating_count" db:"rating_count"`
	CompletedCount   int        `json:"completed_count" db:"completed_count"`
	IsPublic         bool       `json:"is_public" db:"is_public"`
	CreatedAt        *time.Time `json:"created_at" db:"created_at"`
}

// pantryItem maps to pantry_items. Quantity thresholds and expiry are all
// optional; the freshness classifiers in pantry.go treat absent values as
// "cannot classify" rather than zero.
type pantryItem struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Brand       *string    `json:"brand" db:"brand"`
	Category    *string    `json:"category" db:"category"`
	Quantity    *float64   `json:"quantity" db:"quantity"`
	Unit        *string    `json:"unit" db:"unit"`
	MinQuantity *float64   `json:"minimum_quantity" db:"minimum_quantity"`
	ExpiryDate  *DateOnly  `json:"expiry_date" db:"expiry_date"`
	Barcode     *string    `json:"barcode" db:"barcode"`
	Finished    bool       `json:"finished" db:"finished"`
	CreatedAt   *time.Time `json:"created_at" db:"created_at"`
}
