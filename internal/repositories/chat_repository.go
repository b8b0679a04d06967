package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrSelfChat     = errors.New("cannot chat about your own product")
)

// ChatRepository abstracts chat room persistence.
type ChatRepository interface {
	OpenOrReuseRoom(ctx context.Context, productID, buyerID int, firstMessage string) (models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error)
	GetRoomDetail(ctx context.Context, roomID int) (models.RoomDetail, error)
	FindRoom(ctx context.Context, productID, buyerID int) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error)
	DeleteRoom(ctx context.Context, roomID int) error
	UnreadTotal(ctx context.Context, userID int) (int, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// OpenOrReuseRoom returns the room for (product, buyer, seller), creating it if
// absent, and appends the buyer's first message. Creation and the first message
// commit together.
func (r *ChatRepo) OpenOrReuseRoom(ctx context.Context, productID, buyerID int, firstMessage string) (models.ChatRoom, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChatRoom{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var sellerID int
	if err = tx.GetContext(ctx, &sellerID, `SELECT seller_id FROM products WHERE id=$1`, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrProductNotFound
		}
		return models.ChatRoom{}, err
	}
	if sellerID == buyerID {
		err = ErrSelfChat
		return models.ChatRoom{}, err
	}

	var room models.ChatRoom
	query := `SELECT id, product_id, buyer_id, seller_id, created_at FROM chat_rooms WHERE product_id=$1 AND buyer_id=$2 AND seller_id=$3`
	if err = tx.GetContext(ctx, &room, query, productID, buyerID, sellerID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return models.ChatRoom{}, err
		}
		if err = tx.QueryRowxContext(ctx, `INSERT INTO chat_rooms (product_id, buyer_id, seller_id) VALUES ($1, $2, $3) RETURNING id, product_id, buyer_id, seller_id, created_at`, productID, buyerID, sellerID).
			Scan(&room.ID, &room.ProductID, &room.BuyerID, &room.SellerID, &room.CreatedAt); err != nil {
			return models.ChatRoom{}, err
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO messages (room_id, sender_id, content) VALUES ($1, $2, $3)`, room.ID, buyerID, firstMessage); err != nil {
		return models.ChatRoom{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.ChatRoom{}, err
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (r *ChatRepo) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT id, product_id, buyer_id, seller_id, created_at FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrRoomNotFound
	}
	return room, err
}

// GetRoomDetail fetches a room joined with its product and participants.
func (r *ChatRepo) GetRoomDetail(ctx context.Context, roomID int) (models.RoomDetail, error) {
	query := `SELECT
            cr.id, cr.product_id, cr.buyer_id, cr.seller_id,
            p.title AS product_title, p.price AS product_price, p.status AS product_status,
            (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS product_thumbnail,
            buyer.name AS buyer_name, seller.name AS seller_name
        FROM chat_rooms cr
        JOIN products p ON p.id = cr.product_id
        JOIN users buyer ON buyer.id = cr.buyer_id
        JOIN users seller ON seller.id = cr.seller_id
        WHERE cr.id=$1`
	var detail models.RoomDetail
	err := r.db.GetContext(ctx, &detail, query, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoomDetail{}, ErrRoomNotFound
	}
	return detail, err
}

// FindRoom returns the caller's existing room for a product, or nil.
func (r *ChatRepo) FindRoom(ctx context.Context, productID, buyerID int) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT id, product_id, buyer_id, seller_id, created_at FROM chat_rooms WHERE product_id=$1 AND buyer_id=$2`, productID, buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns the user's rooms ordered by most recent activity.
func (r *ChatRepo) ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	query := `SELECT
            cr.id, cr.product_id,
            p.title AS product_title,
            (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS product_thumbnail,
            CASE WHEN cr.buyer_id = $1 THEN cr.seller_id ELSE cr.buyer_id END AS other_user_id,
            CASE WHEN cr.buyer_id = $1 THEN seller.name ELSE buyer.name END AS other_user_name,
            (SELECT content FROM messages WHERE room_id = cr.id ORDER BY sent_at DESC, id DESC LIMIT 1) AS last_message,
            (SELECT message_type FROM messages WHERE room_id = cr.id ORDER BY sent_at DESC, id DESC LIMIT 1) AS last_message_type,
            (SELECT sent_at FROM messages WHERE room_id = cr.id ORDER BY sent_at DESC, id DESC LIMIT 1) AS last_message_time,
            (SELECT COUNT(*) FROM messages WHERE room_id = cr.id AND sender_id <> $1 AND is_read = FALSE) AS unread_count
        FROM chat_rooms cr
        JOIN products p ON p.id = cr.product_id
        JOIN users buyer ON buyer.id = cr.buyer_id
        JOIN users seller ON seller.id = cr.seller_id
        WHERE cr.buyer_id = $1 OR cr.seller_id = $1
        ORDER BY last_message_time DESC NULLS LAST`
	var rooms []models.RoomSummary
	if err := r.db.SelectContext(ctx, &rooms, query, userID); err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].LastMessage != nil && rooms[i].LastMessageType != nil {
			preview := models.PreviewText(*rooms[i].LastMessage, *rooms[i].LastMessageType)
			rooms[i].LastMessage = &preview
		}
	}
	return rooms, nil
}

// DeleteRoom removes a room; its messages cascade.
func (r *ChatRepo) DeleteRoom(ctx context.Context, roomID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// UnreadTotal counts unread messages addressed to the user across all rooms.
func (r *ChatRepo) UnreadTotal(ctx context.Context, userID int) (int, error) {
	var total int
	query := `SELECT COUNT(*)
        FROM messages m
        JOIN chat_rooms cr ON cr.id = m.room_id
        WHERE (cr.buyer_id = $1 OR cr.seller_id = $1)
          AND m.sender_id <> $1
          AND m.is_read = FALSE`
	err := r.db.GetContext(ctx, &total, query, userID)
	return total, err
}
