package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Active-tracking state lives in the workout_sessions.status column, not in
// process memory: a partial unique index on (user_id) WHERE status =
// 'gps_tracking' lets the database enforce "one active tracking session per
// user" even across service instances, and point appends are idempotent via
// UNIQUE(session_id, recorded_at) so a retried upload of the same sample is
// a no-op.

const (
	statusInProgress  = "in_progress"
	statusGPSTracking = "gps_tracking"
	statusCompleted   = "completed"
)

// startTracking claims the single active tracking slot for the user by moving
// the session into gps_tracking. POST /api/sessions/:id/track.
// A unique-violation from the partial index means another session is already
// tracking — reported as 409, never silently replaced.
func (h *Handler) startTracking(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	s, err := queryOne[workoutSession](h.db, c,
		`UPDATE workout_sessions SET status = @tracking
		 WHERE id = @id AND user_id = @userID AND status = @inProgress
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"tracking": statusGPSTracking, "inProgress": statusInProgress,
		})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			apiError(c, http.StatusConflict, "another session is already tracking")
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "session not found or not in progress")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to start tracking")
		return
	}

	c.JSON(http.StatusOK, s)
}

// addTrackingPoint appends a location sample to an actively tracked session.
// POST /api/sessions/:id/points. ON CONFLICT DO NOTHING makes retransmitted
// samples (same session, same timestamp) idempotent.
func (h *Handler) addTrackingPoint(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Latitude   *float64   `json:"latitude"`
		Longitude  *float64   `json:"longitude"`
		Altitude   *float64   `json:"altitude"`
		Speed      *float64   `json:"speed"`
		RecordedAt *time.Time `json:"recorded_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	// A valid sample always carries latitude and longitude.
	if body.Latitude == nil || body.Longitude == nil {
		apiError(c, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	if *body.Latitude < -90 || *body.Latitude > 90 || *body.Longitude < -180 || *body.Longitude > 180 {
		apiError(c, http.StatusBadRequest, "latitude/longitude out of range")
		return
	}
	recordedAt := time.Now().UTC()
	if body.RecordedAt != nil {
		recordedAt = body.RecordedAt.UTC()
	}

	// Guard: the session must belong to the user and be actively tracking.
	var sessionID int
	err := h.db.QueryRow(c,
		"SELECT id FROM workout_sessions WHERE id = $1 AND user_id = $2 AND status = $3",
		id, userID, statusGPSTracking).Scan(&sessionID)
	if err != nil {
		apiError(c, http.StatusNotFound, "no active tracking for this session")
		return
	}

	_, err = h.db.Exec(c,
		`INSERT INTO gps_points (session_id, latitude, longitude, altitude, speed, recorded_at)
		 VALUES (@sessionID, @lat, @lon, @alt, @speed, @recordedAt)
		 ON CONFLICT (session_id, recorded_at) DO NOTHING`,
		pgx.NamedArgs{
			"sessionID": sessionID, "lat": *body.Latitude, "lon": *body.Longitude,
			"alt": body.Altitude, "speed": body.Speed, "recordedAt": recordedAt,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to record point")
		return
	}

	c.Status(http.StatusNoContent)
}

// endTracking closes the tracked session, computes route metrics from its
// stored points, and persists them on the session row.
// POST /api/sessions/:id/track/end.
func (h *Handler) endTracking(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	// Load points in capture order before flipping the status, so a failed
	// metric computation leaves the session still tracking.
	points, err := queryMany[gpsPoint](h.db, c,
		`SELECT p.* FROM gps_points p
		 JOIN workout_sessions s ON s.id = p.session_id
		 WHERE s.id = @id AND s.user_id = @userID AND s.status = @tracking
		 ORDER BY p.recorded_at ASC`,
		pgx.NamedArgs{"id": id, "userID": userID, "tracking": statusGPSTracking})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load route")
		return
	}

	m := computeRouteMetrics(points)

	s, err := queryOne[workoutSession](h.db, c,
		`UPDATE workout_sessions SET
			status = @completed,
			distance_m = @distance,
			avg_speed = @avgSpeed,
			max_speed = @maxSpeed,
			elevation_gain = @gain,
			elevation_loss = @loss
		 WHERE id = @id AND user_id = @userID AND status = @tracking
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"completed": statusCompleted, "tracking": statusGPSTracking,
			"distance": m.TotalDistance, "avgSpeed": m.AverageSpeed,
			"maxSpeed": m.MaxSpeed, "gain": m.ElevationGain, "loss": m.ElevationLoss,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "no active tracking for this session")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to end tracking")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": s, "metrics": m})
}

// trackingStatus reports whether the user has an active tracking session.
// GET /api/tracking/status.
func (h *Handler) trackingStatus(c *gin.Context) {
	userID := c.GetInt("user_id")

	var sessionID int
	err := h.db.QueryRow(c,
		"SELECT id FROM workout_sessions WHERE user_id = $1 AND status = $2",
		userID, statusGPSTracking).Scan(&sessionID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"is_active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_active": true, "session_id": sessionID})
}

// listGPSSessions returns the user's sessions that have at least one recorded
// point, newest first. GET /api/sessions/gps.
func (h *Handler) listGPSSessions(c *gin.Context) {
	userID := c.GetInt("user_id")

	sessions, err := queryMany[workoutSession](h.db, c,
		`SELECT s.* FROM workout_sessions s
		 WHERE s.user_id = @userID
		   AND EXISTS (SELECT 1 FROM gps_points p WHERE p.session_id = s.id)
		 ORDER BY s.created_at DESC`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch sessions")
		return
	}
	if sessions == nil {
		sessions = []workoutSession{}
	}

	c.JSON(http.StatusOK, sessions)
}
