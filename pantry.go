package main

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Freshness classifiers ──────────────────────────────────────────── */

// daysUntilExpiry returns whole days between today and the expiry date, both
// truncated to date precision. Nil when the item has no expiry date.
// Negative values mean the expiry date has passed.
func daysUntilExpiry(expiry *DateOnly, today time.Time) *int {
	if expiry == nil {
		return nil
	}
	y, m, d := today.Date()
	todayDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := expiry.Date()
	expiryDate := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	days := int(expiryDate.Sub(todayDate).Hours() / 24)
	return &days
}

// isExpired reports whether the item's expiry date has passed. The expiry day
// itself does not count as expired; an item with no expiry never expires.
func isExpired(item pantryItem, today time.Time) bool {
	days := daysUntilExpiry(item.ExpiryDate, today)
	return days != nil && *days < 0
}

// isNearExpiry reports whether the item expires within threshold days from
// today, inclusive on both ends. Already-expired items are not near-expiry.
func isNearExpiry(item pantryItem, today time.Time, threshold int) bool {
	days := daysUntilExpiry(item.ExpiryDate, today)
	return days != nil && *days >= 0 && *days <= threshold
}

// isRunningLow reports whether the quantity has dropped to or below the
// minimum threshold. Both values must be present to classify at all.
func isRunningLow(item pantryItem) bool {
	return item.Quantity != nil && item.MinQuantity != nil && *item.Quantity <= *item.MinQuantity
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// createPantryItem stores a new pantry item. POST /api/pantry.
func (h *Handler) createPantryItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Name        string    `json:"name"`
		Brand       *string   `json:"brand"`
		Category    *string   `json:"category"`
		Quantity    *float64  `json:"quantity"`
		Unit        *string   `json:"unit"`
		MinQuantity *float64  `json:"minimum_quantity"`
		ExpiryDate  *DateOnly `json:"expiry_date"`
		Barcode     *string   `json:"barcode"`
	}
	if err := c.BindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}

	var expiry *string
	if body.ExpiryDate != nil {
		s := body.ExpiryDate.Format("2006-01-02")
		expiry = &s
	}

	created, err := queryOne[pantryItem](h.db, c,
		`INSERT INTO pantry_items
		   (user_id, name, brand, category, quantity, unit, minimum_quantity,
		    expiry_date, barcode)
		 VALUES
		   (@userID, @name, @brand, @category, @quantity, @unit, @minQuantity,
		    @expiryDate, @barcode)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":      userID,
			"name":        strings.TrimSpace(body.Name),
			"brand":       body.Brand,
			"category":    body.Category,
			"quantity":    body.Quantity,
			"unit":        body.Unit,
			"minQuantity": body.MinQuantity,
			"expiryDate":  expiry,
			"barcode":     body.Barcode,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create pantry item")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// loadPantry fetches the user's unfinished items, soonest expiry first with
// undated items last. Expired items naturally sort to the front.
func (h *Handler) loadPantry(c *gin.Context, userID int) ([]pantryItem, error) {
	return queryMany[pantryItem](h.db, c,
		`SELECT * FROM pantry_items
		 WHERE user_id = @userID AND NOT finished
		 ORDER BY expiry_date ASC NULLS LAST, id ASC`,
		pgx.NamedArgs{"userID": userID})
}

// listPantryItems returns the user's unfinished pantry. GET /api/pantry.
func (h *Handler) listPantryItems(c *gin.Context) {
	items, err := h.loadPantry(c, c.GetInt("user_id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load pantry")
		return
	}
	if items == nil {
		items = []pantryItem{}
	}
	c.JSON(http.StatusOK, items)
}

// listExpiringItems returns unfinished items expiring within ?days (default 7).
// GET /api/pantry/expiring?days=N.
func (h *Handler) listExpiringItems(c *gin.Context) {
	threshold := 7
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			apiError(c, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		threshold = v
	}

	items, err := h.loadPantry(c, c.GetInt("user_id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load pantry")
		return
	}

	now := time.Now()
	expiring := []pantryItem{}
	for _, item := range items {
		if isNearExpiry(item, now, threshold) {
			expiring = append(expiring, item)
		}
	}
	c.JSON(http.StatusOK, expiring)
}

// listLowStockItems returns unfinished items at or below their minimum
// quantity. GET /api/pantry/low-stock.
func (h *Handler) listLowStockItems(c *gin.Context) {
	items, err := h.loadPantry(c, c.GetInt("user_id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load pantry")
		return
	}

	low := []pantryItem{}
	for _, item := range items {
		if isRunningLow(item) {
			low = append(low, item)
		}
	}
	c.JSON(http.StatusOK, low)
}

// shoppingList unions running-low items with items expiring within a week,
// deduplicated by id. GET /api/pantry/shopping-list.
func (h *Handler) shoppingList(c *gin.Context) {
	items, err := h.loadPantry(c, c.GetInt("user_id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load pantry")
		return
	}

	now := time.Now()
	list := []pantryItem{}
	for _, item := range items {
		if isRunningLow(item) || isNearExpiry(item, now, 7) {
			list = append(list, item)
		}
	}
	c.JSON(http.StatusOK, list)
}

// finishPantryItem marks an item used up, removing it from every listing.
// POST /api/pantry/:id/finish.
func (h *Handler) finishPantryItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid pantry item id")
		return
	}

	updated, err := queryOne[pantryItem](h.db, c,
		`UPDATE pantry_items SET finished = TRUE
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "pantry item not found")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// notifyExpiringItems emits an expiry alert per item expiring within 3 days:
// "expires_tomorrow" at exactly 1 day out, "expires_soon" otherwise.
// POST /api/pantry/notify-expiring.
// Alerts are fire and forget; delivery problems are logged, never returned.
func (h *Handler) notifyExpiringItems(c *gin.Context) {
	userID := c.GetInt("user_id")

	items, err := h.loadPantry(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load pantry")
		return
	}

	now := time.Now()
	notified := 0
	for _, item := range items {
		days := daysUntilExpiry(item.ExpiryDate, now)
		if days == nil || *days < 0 || *days > 3 {
			continue
		}
		alertType := "expires_soon"
		if *days == 1 {
			alertType = "expires_tomorrow"
		}
		sendExpiryAlert(userID, item, alertType, *days)
		notified++
	}

	c.JSON(http.StatusOK, gin.H{"notified": notified})
}

// sendExpiryAlert delivers one expiry notification. The delivery channel is
// the application log.
func sendExpiryAlert(userID int, item pantryItem, alertType string, days int) {
	log.Printf("[pantry] expiry alert user=%d item=%q type=%s days=%d", userID, item.Name, alertType, days)
}
