package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	AppendMessage(ctx context.Context, roomID, senderID int, content, messageType string) (models.Message, error)
	ListMessages(ctx context.Context, roomID int) ([]models.MessageView, error)
	MarkRead(ctx context.Context, roomID, readerID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage stores a message in a room.
func (r *MessageRepo) AppendMessage(ctx context.Context, roomID, senderID int, content, messageType string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (room_id, sender_id, content, message_type) VALUES ($1, $2, $3, $4) RETURNING id, room_id, sender_id, content, message_type, is_read, sent_at`, roomID, senderID, content, messageType).
		Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.Type, &msg.IsRead, &msg.SentAt)
	return msg, err
}

// ListMessages returns a room's messages in chronological order.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID int) ([]models.MessageView, error) {
	query := `SELECT m.id, m.room_id, m.sender_id, m.content, m.message_type, m.is_read, m.sent_at,
            u.name AS sender_name
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.room_id=$1
        ORDER BY m.sent_at ASC, m.id ASC`
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs, query, roomID)
	return msgs, err
}

// MarkRead flags every message in the room not sent by the reader as read.
func (r *MessageRepo) MarkRead(ctx context.Context, roomID, readerID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE room_id=$1 AND sender_id <> $2`, roomID, readerID)
	return err
}
