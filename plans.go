package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// createWorkoutPlan stores a new plan owned by the caller.
// POST /api/workout-plans.
// When no calorie estimate is supplied but a duration is, one is derived from
// the workout type's MET value and the caller's stored weight.
func (h *Handler) createWorkoutPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Name             string   `json:"name"`
		Difficulty       *string  `json:"difficulty"`
		Duration         *int     `json:"duration"`
		WorkoutType      *string  `json:"workout_type"`
		Tags             []string `json:"tags"`
		CaloriesEstimate *float64 `json:"calories_estimate"`
		IsPublic         *bool    `json:"is_public"`
	}
	if err := c.BindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.Tags == nil {
		body.Tags = []string{}
	}
	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	if body.CaloriesEstimate == nil && body.Duration != nil && body.WorkoutType != nil {
		var weight *float64
		if p, err := queryOne[profile](h.db, c,
			"SELECT * FROM profiles WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID}); err == nil {
			weight = p.WeightKG
		}
		estimate := estimateCalories(weight, body.WorkoutType, body.Duration)
		body.CaloriesEstimate = &estimate
	}

	created, err := queryOne[workoutPlan](h.db, c,
		`INSERT INTO workout_plans
		   (user_id, name, difficulty, duration, workout_type, tags,
		    calories_estimate, is_public)
		 VALUES
		   (@userID, @name, @difficulty, @duration, @workoutType, @tags,
		    @caloriesEstimate, @isPublic)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":           userID,
			"name":             strings.TrimSpace(body.Name),
			"difficulty":       body.Difficulty,
			"duration":         body.Duration,
			"workoutType":      body.WorkoutType,
			"tags":             body.Tags,
			"caloriesEstimate": body.CaloriesEstimate,
			"isPublic":         isPublic,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create workout plan")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// popularWorkoutPlans lists public plans by rating, then completion count.
// GET /api/workout-plans/popular?limit=N.
func (h *Handler) popularWorkoutPlans(c *gin.Context) {
	limit := recommendLimit(c)

	plans, err := queryMany[workoutPlan](h.db, c,
		`SELECT * FROM workout_plans WHERE is_public
		 ORDER BY rating_average DESC, completed_count DESC
		 LIMIT @limit`,
		pgx.NamedArgs{"limit": limit})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load workout plans")
		return
	}
	if plans == nil {
		plans = []workoutPlan{}
	}

	c.JSON(http.StatusOK, plans)
}

// rateWorkoutPlan folds a 1.0–5.0 rating into the plan's average+count
// aggregate. POST /api/workout-plans/:id/rate.
// Plans carry no histogram; otherwise the rules match recipe rating.
func (h *Handler) rateWorkoutPlan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid workout plan id")
		return
	}

	var body struct {
		Rating *float64 `json:"rating"`
	}
	if err := c.BindJSON(&body); err != nil || body.Rating == nil {
		apiError(c, http.StatusBadRequest, "rating is required")
		return
	}

	current, err := queryOne[workoutPlan](h.db, c,
		"SELECT * FROM workout_plans WHERE id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusNotFound, "workout plan not found")
		return
	}

	newAverage, err := updatedRatingAverage(current.RatingAverage, current.RatingCount, *body.Rating)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := queryOne[workoutPlan](h.db, c,
		`UPDATE workout_plans
		 SET rating_average = @average, rating_count = rating_count + 1
		 WHERE id = @id
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "average": newAverage})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update rating")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// completeWorkoutPlan bumps the plan's completion counter.
// POST /api/workout-plans/:id/complete.
func (h *Handler) completeWorkoutPlan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid workout plan id")
		return
	}

	updated, err := queryOne[workoutPlan](h.db, c,
		`UPDATE workout_plans SET completed_count = completed_count + 1
		 WHERE id = @id RETURNING *`,
		pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusNotFound, "workout plan not found")
		return
	}

	c.JSON(http.StatusOK, updated)
}
