package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// createNutritionEntry logs one meal's calories and macros.
// POST /api/nutrition. Defaults date to today if omitted.
func (h *Handler) createNutritionEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string   `json:"date"`
		Calories float64  `json:"calories"`
		ProteinG float64  `json:"protein_g"`
		CarbsG   float64  `json:"carbs_g"`
		FatG     float64  `json:"fat_g"`
		FiberG   *float64 `json:"fiber_g"`
		SugarG   *float64 `json:"sugar_g"`
		SodiumMG *float64 `json:"sodium_mg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}

	entry, err := queryOne[nutritionEntry](h.db, c,
		`INSERT INTO nutrition_entries (user_id, date, calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, sodium_mg)
		 VALUES (@userID, @date, @calories, @proteinG, @carbsG, @fatG, @fiberG, @sugarG, @sodiumMG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
			"fiberG": body.FiberG, "sugarG": body.SugarG, "sodiumMG": body.SodiumMG,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// listNutritionEntries returns entries for the authenticated user within [start, end].
// GET /api/nutrition?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) listNutritionEntries(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := queryMany[nutritionEntry](h.db, c,
		`SELECT * FROM nutrition_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}
	if entries == nil {
		entries = []nutritionEntry{}
	}

	c.JSON(http.StatusOK, entries)
}
