package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
)

// ChatHandler serves chat rooms and their message logs.
type ChatHandler struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	emitter     *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, emitter *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, messageRepo: messageRepo, emitter: emitter}
}

// roomForParticipant loads a room and verifies the caller is a party to it.
func (h *ChatHandler) roomForParticipant(c *gin.Context) (models.ChatRoom, bool) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return models.ChatRoom{}, false
	}

	room, err := h.chatRepo.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat room not found"})
			return models.ChatRoom{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat room"})
		return models.ChatRoom{}, false
	}

	userID := c.GetInt("userID")
	if room.BuyerID != userID && room.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return models.ChatRoom{}, false
	}
	return room, true
}

// Open starts a conversation about a product, reusing the existing room when
// the buyer already opened one.
func (h *ChatHandler) Open(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		ProductID int    `json:"product_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	room, err := h.chatRepo.OpenOrReuseRoom(c.Request.Context(), req.ProductID, userID, message)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, repositories.ErrSelfChat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat about own product"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open chat"})
		}
		return
	}

	h.emitter.Emit(c.Request.Context(), "chat.room_opened", "chat room opened", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, room)
}

// Check reports whether the caller already has a room for a product.
func (h *ChatHandler) Check(c *gin.Context) {
	userID := c.GetInt("userID")
	productID, err := strconv.Atoi(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	room, err := h.chatRepo.FindRoom(c.Request.Context(), productID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check chat room"})
		return
	}
	if room == nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "room_id": room.ID})
}

// List returns the caller's rooms with previews and unread counts.
func (h *ChatHandler) List(c *gin.Context) {
	userID := c.GetInt("userID")

	rooms, err := h.chatRepo.ListRooms(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat rooms"})
		return
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// UnreadTotal returns the caller's unread message count across all rooms.
func (h *ChatHandler) UnreadTotal(c *gin.Context) {
	userID := c.GetInt("userID")

	total, err := h.chatRepo.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": total})
}

// Get returns a single room with product context. Opening a room marks the
// counterparty's messages read.
func (h *ChatHandler) Get(c *gin.Context) {
	room, ok := h.roomForParticipant(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	detail, err := h.chatRepo.GetRoomDetail(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat room"})
		return
	}

	if err := h.messageRepo.MarkRead(c.Request.Context(), room.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat room"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Delete removes a room and its messages. Either participant may delete.
func (h *ChatHandler) Delete(c *gin.Context) {
	room, ok := h.roomForParticipant(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.chatRepo.DeleteRoom(c.Request.Context(), room.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chat room"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "chat.room_deleted", "chat room deleted", requestIDFromContext(c), &userID)
	c.Status(http.StatusNoContent)
}

// Messages returns the room's full log and marks the counterparty's messages
// read for the caller.
func (h *ChatHandler) Messages(c *gin.Context) {
	room, ok := h.roomForParticipant(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	messages, err := h.messageRepo.ListMessages(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if messages == nil {
		messages = []models.MessageView{}
	}
	for i := range messages {
		messages[i].IsMine = messages[i].SenderID == userID
	}

	if err := h.messageRepo.MarkRead(c.Request.Context(), room.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Post appends a text message to the room.
func (h *ChatHandler) Post(c *gin.Context) {
	room, ok := h.roomForParticipant(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	message, err := h.messageRepo.AppendMessage(c.Request.Context(), room.ID, userID, content, models.MessageTypeText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, message)
}
