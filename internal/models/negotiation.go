package models

import "time"

// Transaction request statuses. PENDING is the only non-terminal state.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestRejected = "REJECTED"
)

// TransactionRequest is a buyer's declared intent to purchase, scoped to a
// chat room.
type TransactionRequest struct {
	ID        int       `db:"id" json:"id"`
	RoomID    int       `db:"room_id" json:"room_id"`
	ProductID int       `db:"product_id" json:"product_id"`
	BuyerID   int       `db:"buyer_id" json:"buyer_id"`
	SellerID  int       `db:"seller_id" json:"seller_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RequestState is the negotiation state of a room as seen by one party:
// the live request, if any, and whether the caller is permanently blocked
// from requesting the product.
type RequestState struct {
	Request *TransactionRequest `json:"request"`
	Blocked bool                `json:"blocked"`
}

// RequestView decorates a request for the seller's request list.
type RequestView struct {
	TransactionRequest
	BuyerName        string  `db:"buyer_name" json:"buyer_name"`
	ProductTitle     string  `db:"product_title" json:"product_title"`
	ProductPrice     int     `db:"product_price" json:"product_price"`
	ProductThumbnail *string `db:"product_thumbnail" json:"product_thumbnail"`
}

// BuyerCandidate is the seller's per-product view of buyers who opened a chat,
// with their request status, used for manual settlement confirmation.
type BuyerCandidate struct {
	BuyerID         int        `db:"buyer_id" json:"buyer_id"`
	BuyerName       string     `db:"buyer_name" json:"buyer_name"`
	RoomID          int        `db:"room_id" json:"room_id"`
	LastMessage     *string    `db:"last_message" json:"last_message"`
	LastMessageTime *time.Time `db:"last_message_time" json:"last_message_time"`
	RequestID       *int       `db:"request_id" json:"request_id"`
	RequestStatus   *string    `db:"request_status" json:"request_status"`
}
