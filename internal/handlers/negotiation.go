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

// NegotiationHandler drives the purchase-request lifecycle inside chat rooms.
type NegotiationHandler struct {
	negotiationRepo repositories.NegotiationRepository
	publisher       telemetry.Publisher
	emitter         *telemetry.AuditEmitter
}

// NewNegotiationHandler builds a NegotiationHandler.
func NewNegotiationHandler(negotiationRepo repositories.NegotiationRepository, publisher telemetry.Publisher, emitter *telemetry.AuditEmitter) *NegotiationHandler {
	return &NegotiationHandler{negotiationRepo: negotiationRepo, publisher: publisher, emitter: emitter}
}

func (h *NegotiationHandler) publishEvent(c *gin.Context, eventName string, payload any) {
	if h.publisher == nil {
		return
	}
	_ = h.publisher.Publish(c.Request.Context(), "market.negotiation."+eventName, observability.EventEnvelope{
		EventType: "negotiation",
		EventName: eventName,
		RequestID: requestIDFromContext(c),
		IP:        observability.IPFromRequest(c.Request),
		Payload:   payload,
	})
}

// negotiationStatus maps engine errors onto HTTP statuses. Missing entities
// are 404, wrong-party and denylist violations 403, state conflicts 409.
func negotiationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repositories.ErrRoomNotFound):
		return http.StatusNotFound, "chat room not found"
	case errors.Is(err, repositories.ErrRequestNotFound):
		return http.StatusNotFound, "purchase request not found"
	case errors.Is(err, repositories.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, repositories.ErrNotRoomBuyer):
		return http.StatusForbidden, "only the room's buyer may request"
	case errors.Is(err, repositories.ErrNotParticipant):
		return http.StatusForbidden, "not a party to this room"
	case errors.Is(err, repositories.ErrBuyerBlocked):
		return http.StatusForbidden, "a rejected buyer may not request again"
	case errors.Is(err, repositories.ErrNotRequestSeller):
		return http.StatusForbidden, "only the seller may respond"
	case errors.Is(err, repositories.ErrNotRequestBuyer):
		return http.StatusForbidden, "only the requesting buyer may cancel"
	case errors.Is(err, repositories.ErrRequestExists):
		return http.StatusConflict, "a pending request already exists"
	case errors.Is(err, repositories.ErrRequestResolved):
		return http.StatusConflict, "request already resolved"
	case errors.Is(err, repositories.ErrProductSold):
		return http.StatusConflict, "product already sold"
	default:
		return http.StatusInternalServerError, "negotiation failed"
	}
}

func roomIDFromQuery(c *gin.Context) (int, bool) {
	roomID, err := strconv.Atoi(c.Query("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return 0, false
	}
	return roomID, true
}

// Create files a purchase request in a room on behalf of its buyer.
func (h *NegotiationHandler) Create(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		RoomID int `json:"room_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.negotiationRepo.CreateRequest(c.Request.Context(), req.RoomID, userID)
	if err != nil {
		status, msg := negotiationStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	observability.IncNegotiationEvent("request_created")
	h.publishEvent(c, "requested", request)
	h.emitter.Emit(c.Request.Context(), "negotiation.request_created", "purchase request created", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, request)
}

// State returns the room's negotiation state for the calling party.
func (h *NegotiationHandler) State(c *gin.Context) {
	userID := c.GetInt("userID")
	roomID, ok := roomIDFromQuery(c)
	if !ok {
		return
	}

	state, err := h.negotiationRepo.GetState(c.Request.Context(), roomID, userID)
	if err != nil {
		status, msg := negotiationStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Cancel withdraws the room's pending request. Only its buyer may cancel.
func (h *NegotiationHandler) Cancel(c *gin.Context) {
	userID := c.GetInt("userID")
	roomID, ok := roomIDFromQuery(c)
	if !ok {
		return
	}

	if err := h.negotiationRepo.Cancel(c.Request.Context(), roomID, userID); err != nil {
		status, msg := negotiationStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	observability.IncNegotiationEvent("request_cancelled")
	c.Status(http.StatusNoContent)
}

// Respond accepts or rejects a request. Acceptance settles the product and
// rejects every competing pending request.
func (h *NegotiationHandler) Respond(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		RequestID int    `json:"request_id" binding:"required"`
		Action    string `json:"action" binding:"required,oneof=accept reject"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.negotiationRepo.Respond(c.Request.Context(), req.RequestID, userID, req.Action == "accept")
	if err != nil {
		status, msg := negotiationStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	if request.Status == models.RequestAccepted {
		observability.IncNegotiationEvent("request_accepted")
		observability.IncSettlement("accept")
		h.publishEvent(c, "accepted", request)
		h.emitter.Emit(c.Request.Context(), "negotiation.request_accepted", "purchase request accepted", requestIDFromContext(c), &userID)
	} else {
		observability.IncNegotiationEvent("request_rejected")
		h.publishEvent(c, "rejected", request)
	}
	c.JSON(http.StatusOK, request)
}

// ListForSeller returns the caller's incoming requests, optionally scoped to
// one product.
func (h *NegotiationHandler) ListForSeller(c *gin.Context) {
	userID := c.GetInt("userID")

	var productID *int
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		productID = &id
	}

	requests, err := h.negotiationRepo.ListForSeller(c.Request.Context(), userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	if requests == nil {
		requests = []models.RequestView{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// BuyerCandidates returns the buyers who opened a chat about the caller's
// product, for picking a settlement counterparty.
func (h *NegotiationHandler) BuyerCandidates(c *gin.Context) {
	userID := c.GetInt("userID")
	productID, err := strconv.Atoi(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	candidates, err := h.negotiationRepo.ListBuyerCandidates(c.Request.Context(), productID, userID)
	if err != nil {
		status, msg := negotiationStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if candidates == nil {
		candidates = []models.BuyerCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{"buyers": candidates})
}
