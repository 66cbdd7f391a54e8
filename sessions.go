package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validSessionTypes is the set of allowed workout session type tags. Reject
// unknown values with 400 rather than letting the DB return a cryptic 500.
var validSessionTypes = map[string]bool{
	"cardio":      true,
	"strength":    true,
	"hiit":        true,
	"yoga":        true,
	"flexibility": true,
	"general":     true,
}

// createSession starts a workout session in in_progress status.
// POST /api/sessions.
func (h *Handler) createSession(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		SessionType string  `json:"session_type"`
		SessionName *string `json:"session_name"`
		Duration    *int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SessionType == "" {
		apiError(c, http.StatusBadRequest, "session_type is required")
		return
	}
	if !validSessionTypes[body.SessionType] {
		apiError(c, http.StatusBadRequest, "session_type must be one of: cardio, strength, hiit, yoga, flexibility, general")
		return
	}
	if body.Duration != nil && *body.Duration < 0 {
		apiError(c, http.StatusBadRequest, "duration must not be negative")
		return
	}

	s, err := queryOne[workoutSession](h.db, c,
		`INSERT INTO workout_sessions (user_id, session_type, session_name, duration, status)
		 VALUES (@userID, @sessionType, @sessionName, @duration, @status)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "sessionType": body.SessionType,
			"sessionName": body.SessionName, "duration": body.Duration,
			"status": statusInProgress,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create session")
		return
	}

	c.JSON(http.StatusCreated, s)
}

// listSessions returns the user's workout sessions, newest first.
// GET /api/sessions?type=cardio (type filter optional).
func (h *Handler) listSessions(c *gin.Context) {
	userID := c.GetInt("user_id")

	query := "SELECT * FROM workout_sessions WHERE user_id = @userID"
	args := pgx.NamedArgs{"userID": userID}
	if t := c.Query("type"); t != "" {
		query += " AND session_type = @sessionType"
		args["sessionType"] = t
	}
	query += " ORDER BY created_at DESC"

	sessions, err := queryMany[workoutSession](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch sessions")
		return
	}
	// Ensure empty array (not null) in JSON
	if sessions == nil {
		sessions = []workoutSession{}
	}

	c.JSON(http.StatusOK, sessions)
}

// completeSession marks a session completed and records duration/calories.
// POST /api/sessions/:id/complete. When calories_burned is omitted, it is
// estimated from the user's weight and the session type via METs.
func (h *Handler) completeSession(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Duration       *int     `json:"duration"`
		CaloriesBurned *float64 `json:"calories_burned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Duration != nil && *body.Duration < 0 {
		apiError(c, http.StatusBadRequest, "duration must not be negative")
		return
	}

	s, err := queryOne[workoutSession](h.db, c,
		"SELECT * FROM workout_sessions WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "session not found")
		return
	}

	duration := s.Duration
	if body.Duration != nil {
		duration = body.Duration
	}
	calories := body.CaloriesBurned
	if calories == nil {
		// Estimate from the profile; a missing profile just means the 200 kcal default.
		p, perr := queryOne[profile](h.db, c,
			"SELECT * FROM profiles WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID})
		var weight *float64
		if perr == nil {
			weight = p.WeightKG
		}
		est := estimateCalories(weight, &s.SessionType, duration)
		calories = &est
	}

	updated, err := queryOne[workoutSession](h.db, c,
		`UPDATE workout_sessions SET
			status = @completed,
			duration = COALESCE(@duration, duration),
			calories_burned = @calories
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "completed": statusCompleted,
			"duration": duration, "calories": calories,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "session not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to complete session")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}
