package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// barcodePattern accepts the common 8 to 14 digit formats (EAN-8 through
// GTIN-14).
var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// productInfo is the subset of an Open Food Facts product record the pantry
// cares about.
type productInfo struct {
	Name     string
	Brand    *string
	Category *string
}

var barcodeClient = &http.Client{Timeout: 10 * time.Second}

// lookupProduct queries the Open Food Facts v2 product endpoint. Returns nil
// without error when the barcode is unknown to the catalog.
func (h *Handler) lookupProduct(barcode string) (*productInfo, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", h.barcodeBaseURL, barcode)
	resp, err := barcodeClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("product lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product lookup: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Status  int `json:"status"`
		Product struct {
			ProductName string `json:"product_name"`
			Brands      string `json:"brands"`
			Categories  string `json:"categories"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("product lookup: decoding response: %w", err)
	}
	if payload.Status != 1 || payload.Product.ProductName == "" {
		return nil, nil
	}

	info := &productInfo{Name: payload.Product.ProductName}
	if payload.Product.Brands != "" {
		info.Brand = &payload.Product.Brands
	}
	if payload.Product.Categories != "" {
		info.Category = &payload.Product.Categories
	}
	return info, nil
}

// scanBarcode looks a barcode up in the product catalog and stores the match
// as a pantry item with quantity 1. POST /api/pantry/scan.
func (h *Handler) scanBarcode(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Barcode string `json:"barcode"`
	}
	if err := c.BindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !barcodePattern.MatchString(body.Barcode) {
		apiError(c, http.StatusBadRequest, "barcode must be 8 to 14 digits")
		return
	}

	info, err := h.lookupProduct(body.Barcode)
	if err != nil {
		log.Printf("[pantry] barcode lookup failed: %v", err)
		apiError(c, http.StatusBadGateway, "product lookup failed")
		return
	}
	if info == nil {
		apiError(c, http.StatusNotFound, "product not found for barcode")
		return
	}

	created, err := queryOne[pantryItem](h.db, c,
		`INSERT INTO pantry_items
		   (user_id, name, brand, category, quantity, unit, barcode)
		 VALUES
		   (@userID, @name, @brand, @category, 1, 'piece', @barcode)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":   userID,
			"name":     info.Name,
			"brand":    info.Brand,
			"category": info.Category,
			"barcode":  body.Barcode,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create pantry item")
		return
	}

	c.JSON(http.StatusCreated, created)
}
