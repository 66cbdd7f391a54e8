package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Popularity ranking ─────────────────────────────────────────────── */

// popularityScore weighs rating quality over raw engagement counts.
func popularityScore(r recipe) float64 {
	return r.RatingAverage*0.6 + float64(r.MadeCount)*0.3 + float64(r.SaveCount)*0.1
}

// rankPopularRecipes sorts by popularity score descending and truncates.
func rankPopularRecipes(candidates []recipe, limit int) []recipe {
	ranked := append([]recipe{}, candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return popularityScore(ranked[i]) > popularityScore(ranked[j])
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// createRecipe stores a new recipe owned by the caller. POST /api/recipes.
// The rating aggregate starts empty (average 0, count 0, all buckets 0).
func (h *Handler) createRecipe(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Title       string   `json:"title"`
		CuisineType *string  `json:"cuisine_type"`
		MealType    *string  `json:"meal_type"`
		Difficulty  *string  `json:"difficulty"`
		PrepTime    *int     `json:"prep_time"`
		CookTime    *int     `json:"cook_time"`
		Tags        []string `json:"tags"`
		Ingredients []string `json:"ingredients"`
		IsPublic    *bool    `json:"is_public"`
	}
	if err := c.BindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		apiError(c, http.StatusBadRequest, "title is required")
		return
	}
	if body.Tags == nil {
		body.Tags = []string{}
	}
	if body.Ingredients == nil {
		body.Ingredients = []string{}
	}
	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	created, err := queryOne[recipe](h.db, c,
		`INSERT INTO recipes
		   (title, cuisine_type, meal_type, difficulty, prep_time, cook_time,
		    tags, ingredients, is_public, created_by)
		 VALUES
		   (@title, @cuisineType, @mealType, @difficulty, @prepTime, @cookTime,
		    @tags, @ingredients, @isPublic, @createdBy)
		 RETURNING *`,
		pgx.NamedArgs{
			"title":       strings.TrimSpace(body.Title),
			"cuisineType": body.CuisineType,
			"mealType":    body.MealType,
			"difficulty":  body.Difficulty,
			"prepTime":    body.PrepTime,
			"cookTime":    body.CookTime,
			"tags":        body.Tags,
			"ingredients": body.Ingredients,
			"isPublic":    isPublic,
			"createdBy":   userID,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// popularRecipes lists public recipes by popularity score.
// GET /api/recipes/popular?limit=N.
func (h *Handler) popularRecipes(c *gin.Context) {
	limit := recommendLimit(c)

	candidates, err := queryMany[recipe](h.db, c,
		"SELECT * FROM recipes WHERE is_public ORDER BY rating_average DESC LIMIT 200",
		pgx.NamedArgs{})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load recipes")
		return
	}

	c.JSON(http.StatusOK, rankPopularRecipes(candidates, limit))
}

// rateRecipe folds a 1.0–5.0 rating into the recipe's aggregate and bumps the
// matching histogram bucket. POST /api/recipes/:id/rate.
// An out-of-range rating is rejected before anything is written.
func (h *Handler) rateRecipe(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid recipe id")
		return
	}

	var body struct {
		Rating *float64 `json:"rating"`
	}
	if err := c.BindJSON(&body); err != nil || body.Rating == nil {
		apiError(c, http.StatusBadRequest, "rating is required")
		return
	}

	current, err := queryOne[recipe](h.db, c,
		"SELECT * FROM recipes WHERE id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusNotFound, "recipe not found")
		return
	}

	newAverage, err := updatedRatingAverage(current.RatingAverage, current.RatingCount, *body.Rating)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	histogram := current.RatingHistogram
	if histogram == nil {
		histogram = map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	}
	histogram[histogramBucket(*body.Rating)]++

	updated, err := queryOne[recipe](h.db, c,
		`UPDATE recipes
		 SET rating_average = @average, rating_count = rating_count + 1,
		     rating_histogram = @histogram
		 WHERE id = @id
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "average": newAverage, "histogram": histogram})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update rating")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// saveRecipe bumps the save counter. POST /api/recipes/:id/save.
func (h *Handler) saveRecipe(c *gin.Context) {
	h.bumpRecipeCounter(c, "save_count")
}

// markRecipeMade bumps the made counter. POST /api/recipes/:id/made.
func (h *Handler) markRecipeMade(c *gin.Context) {
	h.bumpRecipeCounter(c, "made_count")
}

func (h *Handler) bumpRecipeCounter(c *gin.Context, column string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid recipe id")
		return
	}

	updated, err := queryOne[recipe](h.db, c,
		"UPDATE recipes SET "+column+" = "+column+" + 1 WHERE id = @id RETURNING *",
		pgx.NamedArgs{"id": id})
	if err != nil {
		apiError(c, http.StatusNotFound, "recipe not found")
		return
	}

	c.JSON(http.StatusOK, updated)
}

/* ─── Meal suggestions ───────────────────────────────────────────────── */

// defaultMealSuggestions is the fallback when the model call fails, keyed by
// meal type with a general-purpose default for anything unrecognized.
func defaultMealSuggestions(mealType string) []string {
	switch strings.ToLower(mealType) {
	case "breakfast":
		return []string{
			"Greek yogurt with berries and granola",
			"Oatmeal with banana and almonds",
			"Scrambled eggs with whole grain toast",
		}
	case "lunch":
		return []string{
			"Grilled chicken salad with mixed vegetables",
			"Quinoa bowl with roasted vegetables",
			"Turkey and avocado wrap",
		}
	case "dinner":
		return []string{
			"Baked salmon with sweet potato and broccoli",
			"Lean beef stir-fry with brown rice",
			"Lentil soup with whole grain bread",
		}
	case "snack":
		return []string{
			"Apple with almond butter",
			"Greek yogurt with nuts",
			"Hummus with carrot sticks",
		}
	default:
		return []string{
			"Balanced meal with lean protein, complex carbs, and vegetables",
			"Focus on whole, unprocessed foods",
			"Include a variety of colorful fruits and vegetables",
		}
	}
}

// mealSuggestions asks the model for three meals matching the caller's
// profile and target calories. GET /api/recipes/meal-suggestions?meal_type=X.
// Any model failure degrades to the static per-meal-type defaults with a 200.
func (h *Handler) mealSuggestions(c *gin.Context) {
	userID := c.GetInt("user_id")
	mealType := c.DefaultQuery("meal_type", "general")

	targetCalories := 2000.0
	var goals, restrictions []string
	var activity string

	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err == nil {
		goals = p.FitnessGoals
		restrictions = p.DietaryTags
		if p.ActivityLevel != nil {
			activity = *p.ActivityLevel
		}
		age := ageYears(p.DateOfBirth, time.Now())
		if v := tdee(bmr(p.WeightKG, p.HeightCM, age, p.Sex), p.ActivityLevel); v != nil {
			targetCalories = *v
		}
	}

	prompt := fmt.Sprintf(
		"Suggest 3 healthy %s meals for:\n"+
			"- Target Calories: %.0f\n"+
			"- Fitness Goals: %s\n"+
			"- Dietary Restrictions: %s\n"+
			"- Activity Level: %s\n\n"+
			"Provide meal names with brief descriptions. Focus on nutritious, "+
			"balanced options that support their fitness goals. "+
			`Respond with JSON: {"suggestions": ["...", "...", "..."]}`,
		mealType, targetCalories,
		strings.Join(goals, ", "), strings.Join(restrictions, ", "), activity)

	suggestions := defaultMealSuggestions(mealType)
	if content, err := h.callOpenAI(coachSystemPrompt, prompt); err != nil {
		log.Printf("[suggest] model call failed, using defaults: %v", err)
	} else {
		var parsed struct {
			Suggestions []string `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil || len(parsed.Suggestions) == 0 {
			log.Printf("[suggest] unusable model response, using defaults")
		} else {
			suggestions = parsed.Suggestions
		}
	}

	c.JSON(http.StatusOK, gin.H{"meal_type": mealType, "suggestions": suggestions})
}
