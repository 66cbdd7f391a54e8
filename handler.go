package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies (db pool, external base URLs) for all
// route handlers. The base URLs are overridable so tests can point them at
// httptest servers.
type Handler struct {
	db             *pgxpool.Pool
	openAIBaseURL  string // Base URL for the OpenAI API (overridable for tests)
	barcodeBaseURL string // Base URL for the Open Food Facts API (overridable for tests)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// managed Postgres providers close idle connections after a few minutes.
func getDBPool() *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/register", h.register)
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())

	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)

	api.POST("/sessions", h.createSession)
	api.GET("/sessions", h.listSessions)
	api.POST("/sessions/:id/complete", h.completeSession)
	api.GET("/sessions/gps", h.listGPSSessions)
	api.POST("/sessions/:id/track", h.startTracking)
	api.POST("/sessions/:id/points", h.addTrackingPoint)
	api.POST("/sessions/:id/track/end", h.endTracking)
	api.GET("/tracking/status", h.trackingStatus)

	api.POST("/nutrition", h.createNutritionEntry)
	api.GET("/nutrition", h.listNutritionEntries)

	api.POST("/recipes", h.createRecipe)
	api.GET("/recipes/popular", h.popularRecipes)
	api.GET("/recipes/recommendations", h.recommendRecipes)
	api.GET("/recipes/meal-suggestions", h.mealSuggestions)
	api.POST("/recipes/:id/rate", h.rateRecipe)
	api.POST("/recipes/:id/save", h.saveRecipe)
	api.POST("/recipes/:id/made", h.markRecipeMade)

	api.POST("/workout-plans", h.createWorkoutPlan)
	api.GET("/workout-plans/popular", h.popularWorkoutPlans)
	api.GET("/workout-plans/recommendations", h.recommendWorkoutPlans)
	api.POST("/workout-plans/:id/rate", h.rateWorkoutPlan)
	api.POST("/workout-plans/:id/complete", h.completeWorkoutPlan)

	api.POST("/pantry", h.createPantryItem)
	api.GET("/pantry", h.listPantryItems)
	api.GET("/pantry/expiring", h.listExpiringItems)
	api.GET("/pantry/low-stock", h.listLowStockItems)
	api.GET("/pantry/shopping-list", h.shoppingList)
	api.POST("/pantry/:id/finish", h.finishPantryItem)
	api.POST("/pantry/scan", h.scanBarcode)
	api.POST("/pantry/notify-expiring", h.notifyExpiringItems)

	api.GET("/coach/progress", h.getProgressAnalysis)
	api.GET("/coach/recommendations", h.getCoachRecommendations)
	api.POST("/coach/chat", h.coachChat)
}
