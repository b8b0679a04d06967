package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotProductOwner     = errors.New("only the product's seller can settle")
	ErrSelfSettlement      = errors.New("cannot sell to yourself")
)

// TransactionRepository records settlements and serves history views.
type TransactionRepository interface {
	DirectSettle(ctx context.Context, productID, buyerID, sellerID int) (models.Transaction, error)
	Get(ctx context.Context, transactionID int) (models.Transaction, error)
	ListHistory(ctx context.Context, userID int, role string) ([]models.TransactionView, error)
}

// TransactionRepo is a sqlx implementation of TransactionRepository.
type TransactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo constructs a TransactionRepo.
func NewTransactionRepo(db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// DirectSettle finalizes a sale the seller confirmed by hand, bypassing the
// request flow. It holds the same invariants as accepting a request: one
// transaction row, SOLD status, and the rejection fan-out over any PENDING
// requests on the product, all committed atomically under the product lock.
func (r *TransactionRepo) DirectSettle(ctx context.Context, productID, buyerID, sellerID int) (models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Transaction{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	product, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return models.Transaction{}, err
	}
	if product.SellerID != sellerID {
		err = ErrNotProductOwner
		return models.Transaction{}, err
	}
	if product.Status == models.StatusSold {
		err = ErrProductSold
		return models.Transaction{}, err
	}
	if buyerID == sellerID {
		err = ErrSelfSettlement
		return models.Transaction{}, err
	}

	var buyerExists bool
	if err = tx.GetContext(ctx, &buyerExists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, buyerID); err != nil {
		return models.Transaction{}, err
	}
	if !buyerExists {
		err = ErrUserNotFound
		return models.Transaction{}, err
	}

	var settled models.Transaction
	if err = tx.QueryRowxContext(ctx, `INSERT INTO transactions (seller_id, buyer_id, product_id) VALUES ($1, $2, $3) RETURNING id, seller_id, buyer_id, product_id, transaction_date`, sellerID, buyerID, productID).
		Scan(&settled.ID, &settled.SellerID, &settled.BuyerID, &settled.ProductID, &settled.TransactionDate); err != nil {
		return models.Transaction{}, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE products SET status=$1 WHERE id=$2`, models.StatusSold, productID); err != nil {
		return models.Transaction{}, err
	}

	// the chosen buyer's own pending request, if any, is superseded rather
	// than rejected: no denylist entry for the person who just bought it
	if _, err = tx.ExecContext(ctx, `DELETE FROM transaction_requests WHERE product_id=$1 AND buyer_id=$2`, productID, buyerID); err != nil {
		return models.Transaction{}, err
	}
	if err = rejectSiblings(ctx, tx, productID, 0); err != nil {
		return models.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Transaction{}, err
	}
	return settled, nil
}

// Get fetches one settlement record.
func (r *TransactionRepo) Get(ctx context.Context, transactionID int) (models.Transaction, error) {
	var settled models.Transaction
	err := r.db.GetContext(ctx, &settled, `SELECT id, seller_id, buyer_id, product_id, transaction_date FROM transactions WHERE id=$1`, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return settled, err
}

// ListHistory returns the user's settlements. role is "sell", "buy" or "all".
func (r *TransactionRepo) ListHistory(ctx context.Context, userID int, role string) ([]models.TransactionView, error) {
	query := `SELECT
            t.id, t.seller_id, t.buyer_id, t.product_id, t.transaction_date,
            p.title AS product_title, p.price AS product_price,
            (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS product_thumbnail,
            seller.name AS seller_name, buyer.name AS buyer_name,
            EXISTS(SELECT 1 FROM reviews WHERE transaction_id = t.id) AS has_review
        FROM transactions t
        JOIN products p ON p.id = t.product_id
        JOIN users seller ON seller.id = t.seller_id
        JOIN users buyer ON buyer.id = t.buyer_id`
	args := []interface{}{userID}
	switch role {
	case "sell":
		query += ` WHERE t.seller_id=$1`
	case "buy":
		query += ` WHERE t.buyer_id=$1`
	default:
		query += ` WHERE t.seller_id=$1 OR t.buyer_id=$1`
	}
	query += ` ORDER BY t.transaction_date DESC`

	var history []models.TransactionView
	err := r.db.SelectContext(ctx, &history, query, args...)
	return history, err
}
