package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

var (
	ErrNotRoomBuyer     = errors.New("only the room's buyer can request a purchase")
	ErrNotParticipant   = errors.New("caller is not a party to this room")
	ErrBuyerBlocked     = errors.New("buyer is blocked from requesting this product")
	ErrRequestExists    = errors.New("room already has a live purchase request")
	ErrRequestNotFound  = errors.New("purchase request not found")
	ErrNotRequestSeller = errors.New("only the request's seller can respond")
	ErrNotRequestBuyer  = errors.New("only the request's buyer can cancel")
	ErrRequestResolved  = errors.New("purchase request already resolved")
	ErrProductSold      = errors.New("product already sold")
)

// NegotiationRepository owns the purchase-request protocol: the coupled
// lifecycle of a chat room, its purchase request, and the product's sale
// status. Every mutation runs in a single database transaction; the accept
// path locks the product row so concurrent accepts serialize.
type NegotiationRepository interface {
	CreateRequest(ctx context.Context, roomID, buyerID int) (models.TransactionRequest, error)
	Respond(ctx context.Context, requestID, sellerID int, accept bool) (models.TransactionRequest, error)
	Cancel(ctx context.Context, roomID, buyerID int) error
	GetState(ctx context.Context, roomID, callerID int) (models.RequestState, error)
	ListForSeller(ctx context.Context, sellerID int, productID *int) ([]models.RequestView, error)
	ListBuyerCandidates(ctx context.Context, productID, sellerID int) ([]models.BuyerCandidate, error)
}

// NegotiationRepo is a sqlx implementation of NegotiationRepository.
type NegotiationRepo struct {
	db *sqlx.DB
}

// NewNegotiationRepo constructs a NegotiationRepo.
func NewNegotiationRepo(db *sqlx.DB) *NegotiationRepo {
	return &NegotiationRepo{db: db}
}

// lockedProduct is the slice of a product row read under FOR UPDATE.
type lockedProduct struct {
	ID       int    `db:"id"`
	SellerID int    `db:"seller_id"`
	Title    string `db:"title"`
	Price    int    `db:"price"`
	Status   string `db:"status"`
}

func lockProduct(ctx context.Context, tx *sqlx.Tx, productID int) (lockedProduct, error) {
	var p lockedProduct
	err := tx.GetContext(ctx, &p, `SELECT id, seller_id, title, price, status FROM products WHERE id=$1 FOR UPDATE`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return lockedProduct{}, ErrProductNotFound
	}
	return p, err
}

// CreateRequest submits a buyer's purchase request for the room's product.
// Precondition failures are reported in a fixed order: room existence, caller
// role, product state, denylist, duplicate request.
func (r *NegotiationRepo) CreateRequest(ctx context.Context, roomID, buyerID int) (models.TransactionRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.TransactionRequest{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var room models.ChatRoom
	if err = tx.GetContext(ctx, &room, `SELECT id, product_id, buyer_id, seller_id, created_at FROM chat_rooms WHERE id=$1`, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRoomNotFound
		}
		return models.TransactionRequest{}, err
	}
	if room.BuyerID != buyerID {
		err = ErrNotRoomBuyer
		return models.TransactionRequest{}, err
	}

	product, err := lockProduct(ctx, tx, room.ProductID)
	if err != nil {
		return models.TransactionRequest{}, err
	}
	if product.Status == models.StatusSold {
		err = ErrProductSold
		return models.TransactionRequest{}, err
	}

	var blocked bool
	if err = tx.GetContext(ctx, &blocked, `SELECT EXISTS(SELECT 1 FROM rejected_requests WHERE product_id=$1 AND buyer_id=$2)`, room.ProductID, buyerID); err != nil {
		return models.TransactionRequest{}, err
	}
	if blocked {
		err = ErrBuyerBlocked
		return models.TransactionRequest{}, err
	}

	var live bool
	if err = tx.GetContext(ctx, &live, `SELECT EXISTS(SELECT 1 FROM transaction_requests WHERE room_id=$1 AND status IN ('PENDING', 'ACCEPTED'))`, roomID); err != nil {
		return models.TransactionRequest{}, err
	}
	if live {
		err = ErrRequestExists
		return models.TransactionRequest{}, err
	}

	var req models.TransactionRequest
	if err = tx.QueryRowxContext(ctx, `INSERT INTO transaction_requests (room_id, product_id, buyer_id, seller_id) VALUES ($1, $2, $3, $4) RETURNING id, room_id, product_id, buyer_id, seller_id, status, created_at`, roomID, room.ProductID, buyerID, room.SellerID).
		Scan(&req.ID, &req.RoomID, &req.ProductID, &req.BuyerID, &req.SellerID, &req.Status, &req.CreatedAt); err != nil {
		return models.TransactionRequest{}, err
	}

	payload := models.SystemPayload{
		Type:      models.EventPurchaseRequest,
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		RequestID: req.ID,
		Message:   fmt.Sprintf("Purchase request sent for %q", product.Title),
	}
	if err = appendSystemMessage(ctx, tx, roomID, buyerID, payload); err != nil {
		return models.TransactionRequest{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.TransactionRequest{}, err
	}
	return req, nil
}

// Respond accepts or rejects a pending request as the seller.
//
// Accepting settles the sale atomically: the transaction row, the SOLD status,
// the accepted status, the rejection of every sibling PENDING request (each
// with a durable denylist entry), and the completion system message commit or
// roll back together. The product lock makes a concurrent accept on a sibling
// request observe SOLD on its recheck and fail.
//
// Rejecting records a permanent denylist entry for the buyer and deletes the
// request so the room can't trivially retry it.
func (r *NegotiationRepo) Respond(ctx context.Context, requestID, sellerID int, accept bool) (models.TransactionRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.TransactionRequest{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var req models.TransactionRequest
	if err = tx.GetContext(ctx, &req, `SELECT id, room_id, product_id, buyer_id, seller_id, status, created_at FROM transaction_requests WHERE id=$1 FOR UPDATE`, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRequestNotFound
		}
		return models.TransactionRequest{}, err
	}
	if req.SellerID != sellerID {
		err = ErrNotRequestSeller
		return models.TransactionRequest{}, err
	}
	if req.Status != models.RequestPending {
		err = ErrRequestResolved
		return models.TransactionRequest{}, err
	}

	if !accept {
		if _, err = tx.ExecContext(ctx, `INSERT INTO rejected_requests (product_id, buyer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, req.ProductID, req.BuyerID); err != nil {
			return models.TransactionRequest{}, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM transaction_requests WHERE id=$1`, req.ID); err != nil {
			return models.TransactionRequest{}, err
		}
		if err = tx.Commit(); err != nil {
			return models.TransactionRequest{}, err
		}
		req.Status = models.RequestRejected
		return req, nil
	}

	product, err := lockProduct(ctx, tx, req.ProductID)
	if err != nil {
		return models.TransactionRequest{}, err
	}
	if product.Status == models.StatusSold {
		err = ErrProductSold
		return models.TransactionRequest{}, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO transactions (seller_id, buyer_id, product_id) VALUES ($1, $2, $3)`, sellerID, req.BuyerID, req.ProductID); err != nil {
		return models.TransactionRequest{}, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE products SET status=$1 WHERE id=$2`, models.StatusSold, req.ProductID); err != nil {
		return models.TransactionRequest{}, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE transaction_requests SET status=$1 WHERE id=$2`, models.RequestAccepted, req.ID); err != nil {
		return models.TransactionRequest{}, err
	}

	if err = rejectSiblings(ctx, tx, req.ProductID, req.ID); err != nil {
		return models.TransactionRequest{}, err
	}

	payload := models.SystemPayload{
		Type:      models.EventTransactionComplete,
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		RequestID: req.ID,
		Message:   fmt.Sprintf("Sale of %q is complete", product.Title),
	}
	if err = appendSystemMessage(ctx, tx, req.RoomID, sellerID, payload); err != nil {
		return models.TransactionRequest{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.TransactionRequest{}, err
	}
	req.Status = models.RequestAccepted
	return req, nil
}

// rejectSiblings forces every other PENDING request on the product to REJECTED
// and records a denylist entry for each of their buyers. Called with the
// product row already locked.
func rejectSiblings(ctx context.Context, tx *sqlx.Tx, productID, acceptedID int) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO rejected_requests (product_id, buyer_id)
        SELECT product_id, buyer_id FROM transaction_requests
        WHERE product_id=$1 AND id <> $2 AND status=$3
        ON CONFLICT DO NOTHING`, productID, acceptedID, models.RequestPending); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `UPDATE transaction_requests SET status=$1
        WHERE product_id=$2 AND id <> $3 AND status=$4`,
		models.RequestRejected, productID, acceptedID, models.RequestPending)
	return err
}

func appendSystemMessage(ctx context.Context, tx *sqlx.Tx, roomID, senderID int, payload models.SystemPayload) error {
	content, err := payload.Encode()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO messages (room_id, sender_id, content, message_type) VALUES ($1, $2, $3, $4)`, roomID, senderID, content, models.MessageTypeSystem)
	return err
}

// Cancel withdraws the room's pending request. Cancellation deletes the
// request outright and leaves no denylist entry.
func (r *NegotiationRepo) Cancel(ctx context.Context, roomID, buyerID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var req models.TransactionRequest
	if err = tx.GetContext(ctx, &req, `SELECT id, room_id, product_id, buyer_id, seller_id, status, created_at FROM transaction_requests WHERE room_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE`, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRequestNotFound
		}
		return err
	}
	if req.BuyerID != buyerID {
		err = ErrNotRequestBuyer
		return err
	}
	if req.Status != models.RequestPending {
		err = ErrRequestResolved
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM transaction_requests WHERE id=$1`, req.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetState reports the room's current request, if any, and whether the caller
// is denylisted for the product.
func (r *NegotiationRepo) GetState(ctx context.Context, roomID, callerID int) (models.RequestState, error) {
	var state models.RequestState

	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT id, product_id, buyer_id, seller_id, created_at FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return state, ErrRoomNotFound
	}
	if err != nil {
		return state, err
	}
	if room.BuyerID != callerID && room.SellerID != callerID {
		return state, ErrNotParticipant
	}

	var req models.TransactionRequest
	err = r.db.GetContext(ctx, &req, `SELECT id, room_id, product_id, buyer_id, seller_id, status, created_at FROM transaction_requests WHERE room_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, roomID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return state, err
	}
	if err == nil {
		state.Request = &req
	}

	if err = r.db.GetContext(ctx, &state.Blocked, `SELECT EXISTS(SELECT 1 FROM rejected_requests WHERE product_id=$1 AND buyer_id=$2)`, room.ProductID, callerID); err != nil {
		return state, err
	}
	return state, nil
}

// ListForSeller returns the seller's incoming requests, optionally scoped to
// one product.
func (r *NegotiationRepo) ListForSeller(ctx context.Context, sellerID int, productID *int) ([]models.RequestView, error) {
	query := `SELECT
            tr.id, tr.room_id, tr.product_id, tr.buyer_id, tr.seller_id, tr.status, tr.created_at,
            u.name AS buyer_name,
            p.title AS product_title, p.price AS product_price,
            (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS product_thumbnail
        FROM transaction_requests tr
        JOIN products p ON p.id = tr.product_id
        JOIN users u ON u.id = tr.buyer_id
        WHERE tr.seller_id=$1`
	args := []interface{}{sellerID}
	if productID != nil {
		query += ` AND tr.product_id=$2`
		args = append(args, *productID)
	}
	query += ` ORDER BY tr.created_at DESC`

	var requests []models.RequestView
	err := r.db.SelectContext(ctx, &requests, query, args...)
	return requests, err
}

// ListBuyerCandidates returns the buyers who opened a chat on the seller's
// product, with their request status and last message.
func (r *NegotiationRepo) ListBuyerCandidates(ctx context.Context, productID, sellerID int) ([]models.BuyerCandidate, error) {
	query := `SELECT
            cr.buyer_id,
            u.name AS buyer_name,
            cr.id AS room_id,
            (SELECT content FROM messages WHERE room_id = cr.id ORDER BY sent_at DESC, id DESC LIMIT 1) AS last_message,
            (SELECT sent_at FROM messages WHERE room_id = cr.id ORDER BY sent_at DESC, id DESC LIMIT 1) AS last_message_time,
            tr.id AS request_id,
            tr.status AS request_status
        FROM chat_rooms cr
        JOIN users u ON u.id = cr.buyer_id
        LEFT JOIN transaction_requests tr ON tr.product_id = cr.product_id AND tr.buyer_id = cr.buyer_id
        WHERE cr.product_id=$1 AND cr.seller_id=$2
        ORDER BY last_message_time DESC NULLS LAST`
	var buyers []models.BuyerCandidate
	err := r.db.SelectContext(ctx, &buyers, query, productID, sellerID)
	return buyers, err
}
