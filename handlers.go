package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"splitbill/pkg/money"
	"splitbill/pkg/ocr"
	"splitbill/pkg/receipt"
	"splitbill/pkg/split"
)

var allowedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// extractLines is a seam for tests; production always runs the real pipeline.
var extractLines = ocr.ExtractLines

func setupRoutes(r *gin.Engine) {
	r.POST("/receipts", uploadReceiptHandler)
	r.POST("/receipts/manual", manualEntryHandler)
	r.GET("/receipts", getReceiptHandler)
	r.PUT("/receipts", reviewReceiptHandler)
	r.PUT("/receipts/people", setPeopleHandler)
	r.POST("/receipts/assignments", assignItemsHandler)
	r.GET("/receipts/costs", costsHandler)
}

// Boundary DTOs: currency crosses HTTP as float64; transport precision loss
// is tolerated and squashed on re-ingest via money.FromFloat.
type itemDTO struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type receiptDTO struct {
	Items          []itemDTO `json:"items"`
	Subtotal       float64   `json:"subtotal"`
	Tax            float64   `json:"tax"`
	Tip            float64   `json:"tip"`
	Total          float64   `json:"total"`
	RestaurantName string    `json:"restaurant_name"`
	Date           string    `json:"date"`
}

func toDTO(r *receipt.Receipt) receiptDTO {
	dto := receiptDTO{
		Items:          []itemDTO{},
		Subtotal:       r.Subtotal.InexactFloat64(),
		Tax:            r.Tax.InexactFloat64(),
		Tip:            r.Tip.InexactFloat64(),
		Total:          r.Total.InexactFloat64(),
		RestaurantName: r.RestaurantName,
		Date:           r.Date,
	}
	for _, it := range r.Items {
		dto.Items = append(dto.Items, itemDTO{Name: it.Name, Quantity: it.Quantity, Price: it.Price.InexactFloat64()})
	}
	return dto
}

// uploadReceiptHandler accepts a multipart receipt photo, runs the pipeline
// and stores the parsed receipt in the session. No partial receipt survives
// a parse failure; the caller decides between retry and manual entry.
func uploadReceiptHandler(c *gin.Context) {
	sess := currentSession(c)
	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type, upload PNG, JPG or GIF"})
		return
	}
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	dst := filepath.Join(base, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	defer os.Remove(dst)

	lines, err := extractLines(c.Request.Context(), dst)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrImage):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unreadable image"})
		case errors.Is(err, ocr.ErrRecognition):
			c.JSON(http.StatusBadGateway, gin.H{"error": "text recognition failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	parsed, err := receipt.NewParser().ParseLines(lines)
	if err != nil {
		if errors.Is(err, receipt.ErrNoItems) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no items found in receipt", "fallback": "manual"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rec := receipt.NewAssembler().Assemble(parsed)

	sess.Receipt = rec
	sess.People = nil
	sess.Assignments = nil
	sess.Costs = nil
	c.JSON(http.StatusOK, toDTO(rec))
}

// manualEntryHandler replaces any session receipt with a zero-valued
// skeleton for hand entry.
func manualEntryHandler(c *gin.Context) {
	sess := currentSession(c)
	sess.Receipt = receipt.Skeleton()
	sess.People = nil
	sess.Assignments = nil
	sess.Costs = nil
	c.JSON(http.StatusOK, toDTO(sess.Receipt))
}

func getReceiptHandler(c *gin.Context) {
	sess := currentSession(c)
	if sess.Receipt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no receipt in session"})
		return
	}
	c.JSON(http.StatusOK, toDTO(sess.Receipt))
}

// reviewReceiptHandler applies review-step edits. Totals must reconcile
// exactly; on mismatch the session receipt is left untouched so the caller
// can re-prompt with the same data.
func reviewReceiptHandler(c *gin.Context) {
	sess := currentSession(c)
	if sess.Receipt == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no receipt in session"})
		return
	}
	var req receiptDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var items []receipt.Item
	for _, it := range req.Items {
		name := strings.TrimSpace(it.Name)
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		price := money.FromFloat(it.Price)
		if name == "" || qty < 1 || !price.IsPositive() {
			continue
		}
		items = append(items, receipt.Item{Name: name, Quantity: qty, Price: price})
	}
	subtotal := money.FromFloat(req.Subtotal)
	tax := money.FromFloat(req.Tax)
	tip := money.FromFloat(req.Tip)
	total := money.FromFloat(req.Total)
	if err := receipt.ValidateOverrides(items, subtotal, tax, tip, total); err != nil {
		var verr *receipt.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason, "field": verr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []receipt.Item{}
	}
	sess.Receipt = &receipt.Receipt{
		Items:          items,
		Subtotal:       subtotal,
		Tax:            tax,
		Tip:            tip,
		Total:          total,
		RestaurantName: req.RestaurantName,
		Date:           req.Date,
	}
	sess.Costs = nil
	c.JSON(http.StatusOK, toDTO(sess.Receipt))
}

func setPeopleHandler(c *gin.Context) {
	sess := currentSession(c)
	var req struct {
		People []string `json:"people" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.People) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide at least one person"})
		return
	}
	for _, p := range req.People {
		if strings.TrimSpace(p) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "person names must be non-blank"})
			return
		}
	}
	sess.People = req.People
	sess.Costs = nil
	c.JSON(http.StatusOK, gin.H{"people": sess.People})
}

// assignItemsHandler takes the item-to-people map and runs the splitter.
func assignItemsHandler(c *gin.Context) {
	sess := currentSession(c)
	if sess.Receipt == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no receipt in session"})
		return
	}
	if len(sess.People) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "set the person roster first"})
		return
	}
	var req map[string][]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ledger, err := split.Split(sess.Receipt, req, sess.People)
	if err != nil {
		if errors.Is(err, split.ErrZeroSubtotal) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Assignments = req
	sess.Costs = ledger
	c.JSON(http.StatusOK, gin.H{"costs": ledgerDTO(ledger)})
}

func costsHandler(c *gin.Context) {
	sess := currentSession(c)
	if sess.Costs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assign items to people first"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"costs": ledgerDTO(sess.Costs)})
}

// ledgerDTO renders amounts as decimal strings at the boundary.
func ledgerDTO(l split.Ledger) map[string]string {
	out := make(map[string]string, len(l))
	for person, amt := range l {
		out[person] = amt.StringFixed(2)
	}
	return out
}

// uploadBaseDir returns the base directory for temporary uploads
// (configurable via UPLOAD_BASE env).
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
