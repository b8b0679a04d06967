package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
)

// ReviewHandler accepts reviews and serves review lists.
type ReviewHandler struct {
	reviewRepo repositories.ReviewRepository
	emitter    *telemetry.AuditEmitter
}

// NewReviewHandler builds a ReviewHandler.
func NewReviewHandler(reviewRepo repositories.ReviewRepository, emitter *telemetry.AuditEmitter) *ReviewHandler {
	return &ReviewHandler{reviewRepo: reviewRepo, emitter: emitter}
}

// Submit records the buyer's review of a settled transaction and reports the
// points credited for it.
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		TransactionID int    `json:"transaction_id" binding:"required"`
		Score         int    `json:"score" binding:"required"`
		Content       string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidScore(req.Score) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 1 and 5"})
		return
	}

	review, earned, err := h.reviewRepo.Submit(c.Request.Context(), req.TransactionID, userID, req.Score, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		case errors.Is(err, repositories.ErrNotTransactionBuyer):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the buyer may review"})
		case errors.Is(err, repositories.ErrReviewExists):
			c.JSON(http.StatusConflict, gin.H{"error": "review already submitted"})
		case errors.Is(err, repositories.ErrReviewWindowClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "review window closed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit review"})
		}
		return
	}

	h.emitter.Emit(c.Request.Context(), "review.submitted", "review submitted", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, gin.H{
		"review":        review,
		"earned_points": earned,
	})
}

// Eligibility reports whether the caller may still review a transaction.
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	userID := c.GetInt("userID")
	transactionID, err := strconv.Atoi(c.Param("transaction_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	eligible, err := h.reviewRepo.Eligibility(c.Request.Context(), transactionID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check eligibility"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": eligible})
}

// Mine returns reviews the caller has written.
func (h *ReviewHandler) Mine(c *gin.Context) {
	userID := c.GetInt("userID")

	reviews, err := h.reviewRepo.ListByBuyer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	if reviews == nil {
		reviews = []models.ReviewView{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Received returns reviews written about the caller's sales.
func (h *ReviewHandler) Received(c *gin.Context) {
	userID := c.GetInt("userID")

	reviews, err := h.reviewRepo.ListReceived(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	if reviews == nil {
		reviews = []models.ReviewView{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
