package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/observability"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
)

// TransactionHandler records manual settlements and serves trade history.
type TransactionHandler struct {
	txRepo    repositories.TransactionRepository
	publisher telemetry.Publisher
	emitter   *telemetry.AuditEmitter
}

// NewTransactionHandler builds a TransactionHandler.
func NewTransactionHandler(txRepo repositories.TransactionRepository, publisher telemetry.Publisher, emitter *telemetry.AuditEmitter) *TransactionHandler {
	return &TransactionHandler{txRepo: txRepo, publisher: publisher, emitter: emitter}
}

// Settle finalizes a sale to a buyer the seller picked by hand.
func (h *TransactionHandler) Settle(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		ProductID int `json:"product_id" binding:"required"`
		BuyerID   int `json:"buyer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settled, err := h.txRepo.DirectSettle(c.Request.Context(), req.ProductID, req.BuyerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, repositories.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "buyer not found"})
		case errors.Is(err, repositories.ErrNotProductOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not the product owner"})
		case errors.Is(err, repositories.ErrSelfSettlement):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot sell to yourself"})
		case errors.Is(err, repositories.ErrProductSold):
			c.JSON(http.StatusConflict, gin.H{"error": "product already sold"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		}
		return
	}

	observability.IncSettlement("direct")
	if h.publisher != nil {
		_ = h.publisher.Publish(c.Request.Context(), "market.transaction.settled", observability.EventEnvelope{
			EventType: "transaction",
			EventName: "settled",
			RequestID: requestIDFromContext(c),
			IP:        observability.IPFromRequest(c.Request),
			Payload:   settled,
		})
	}
	h.emitter.Emit(c.Request.Context(), "transaction.settled", "transaction settled", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, settled)
}

// Get returns one settlement record. Only its buyer or seller may view it.
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := c.GetInt("userID")
	transactionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	settled, err := h.txRepo.Get(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transaction"})
		return
	}
	if settled.BuyerID != userID && settled.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party to this transaction"})
		return
	}
	c.JSON(http.StatusOK, settled)
}

// History returns the caller's settlements. The role query narrows the view
// to "sell" or "buy"; anything else returns both sides.
func (h *TransactionHandler) History(c *gin.Context) {
	userID := c.GetInt("userID")
	role := c.DefaultQuery("role", "all")

	history, err := h.txRepo.ListHistory(c.Request.Context(), userID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if history == nil {
		history = []models.TransactionView{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}
