package controllers

import (
	"net/http"
	"strconv"
	"time"

	"optionscope/apperrors"
	"optionscope/database"
	"optionscope/models"
	"optionscope/services"

	"github.com/gin-gonic/gin"
)

// JournalController handles trade journal CRUD for the authenticated user
type JournalController struct {
	storage *database.Storage
}

// NewJournalController creates a new journal controller
func NewJournalController(storage *database.Storage) *JournalController {
	return &JournalController{
		storage: storage,
	}
}

// CreateJournalEntryRequest is the body of an entry creation request
type CreateJournalEntryRequest struct {
	Underlying string     `json:"underlying" binding:"required"`
	Strategy   string     `json:"strategy" binding:"required"`
	EntryDate  time.Time  `json:"entry_date" binding:"required"`
	ExitDate   *time.Time `json:"exit_date"`
	EntryPrice float64    `json:"entry_price" binding:"required"`
	ExitPrice  *float64   `json:"exit_price"`
	Quantity   int        `json:"quantity" binding:"required,gt=0"`
	Rationale  string     `json:"rationale"`
	FinalPL    *float64   `json:"final_pl"`
}

// HandleCreateEntry records a new journal entry for the current user
// POST /api/v1/journal
func (jc *JournalController) HandleCreateEntry(c *gin.Context) {
	user := services.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	entry := &models.JournalEntry{
		OwnerID:    user.ID,
		Underlying: req.Underlying,
		Strategy:   req.Strategy,
		EntryDate:  req.EntryDate,
		ExitDate:   req.ExitDate,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		Quantity:   req.Quantity,
		Rationale:  req.Rationale,
		FinalPL:    req.FinalPL,
	}
	if err := jc.storage.CreateJournalEntry(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create journal entry",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// HandleListEntries lists the current user's journal entries
// GET /api/v1/journal?skip=0&limit=100
func (jc *JournalController) HandleListEntries(c *gin.Context) {
	user := services.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := jc.storage.ListJournalEntries(user.ID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list journal entries",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// HandleGetEntry fetches one of the current user's journal entries
// GET /api/v1/journal/:id
func (jc *JournalController) HandleGetEntry(c *gin.Context) {
	user := services.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	entry, err := jc.storage.GetJournalEntry(user.ID, uint(id))
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{
			"error":   "Failed to fetch journal entry",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, entry)
}
