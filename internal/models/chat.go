package models

import "time"

// ChatRoom is a conversation about one product between one buyer and its seller.
type ChatRoom struct {
	ID        int       `db:"id" json:"id"`
	ProductID int       `db:"product_id" json:"product_id"`
	BuyerID   int       `db:"buyer_id" json:"buyer_id"`
	SellerID  int       `db:"seller_id" json:"seller_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoomSummary is the room-list view with last-message preview and unread count.
type RoomSummary struct {
	RoomID           int        `db:"id" json:"room_id"`
	ProductID        int        `db:"product_id" json:"product_id"`
	ProductTitle     string     `db:"product_title" json:"product_title"`
	ProductThumbnail *string    `db:"product_thumbnail" json:"product_thumbnail"`
	OtherUserID      int        `db:"other_user_id" json:"other_user_id"`
	OtherUserName    string     `db:"other_user_name" json:"other_user_name"`
	LastMessage      *string    `db:"last_message" json:"last_message"`
	LastMessageType  *string    `db:"last_message_type" json:"-"`
	LastMessageTime  *time.Time `db:"last_message_time" json:"last_message_time"`
	UnreadCount      int        `db:"unread_count" json:"unread_count"`
}

// RoomDetail is the single-room view with product context.
type RoomDetail struct {
	RoomID           int     `db:"id" json:"room_id"`
	ProductID        int     `db:"product_id" json:"product_id"`
	ProductTitle     string  `db:"product_title" json:"product_title"`
	ProductPrice     int     `db:"product_price" json:"product_price"`
	ProductStatus    string  `db:"product_status" json:"product_status"`
	ProductThumbnail *string `db:"product_thumbnail" json:"product_thumbnail"`
	BuyerID          int     `db:"buyer_id" json:"buyer_id"`
	SellerID         int     `db:"seller_id" json:"seller_id"`
	BuyerName        string  `db:"buyer_name" json:"buyer_name"`
	SellerName       string  `db:"seller_name" json:"seller_name"`
}
