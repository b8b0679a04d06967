package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

var (
	ErrNotTransactionBuyer = errors.New("only the transaction's buyer can review")
	ErrReviewExists        = errors.New("transaction already reviewed")
	ErrReviewWindowClosed  = errors.New("review window has closed")
)

// ReviewRepository records reviews and credits loyalty points.
type ReviewRepository interface {
	Submit(ctx context.Context, transactionID, buyerID, score int, content string) (models.Review, int, error)
	Eligibility(ctx context.Context, transactionID, buyerID int) (bool, error)
	ListByBuyer(ctx context.Context, buyerID int) ([]models.ReviewView, error)
	ListReceived(ctx context.Context, sellerID int) ([]models.ReviewView, error)
}

// ReviewRepo is a sqlx implementation of ReviewRepository.
type ReviewRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewReviewRepo constructs a ReviewRepo.
func NewReviewRepo(db *sqlx.DB) *ReviewRepo {
	return &ReviewRepo{db: db, now: time.Now}
}

type reviewTarget struct {
	ID              int       `db:"id"`
	BuyerID         int       `db:"buyer_id"`
	TransactionDate time.Time `db:"transaction_date"`
	ProductPrice    int       `db:"product_price"`
}

func (r *ReviewRepo) getTarget(ctx context.Context, q sqlx.QueryerContext, transactionID int) (reviewTarget, error) {
	var target reviewTarget
	err := sqlx.GetContext(ctx, q, &target, `SELECT t.id, t.buyer_id, t.transaction_date, p.price AS product_price
        FROM transactions t
        JOIN products p ON p.id = t.product_id
        WHERE t.id=$1`, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return reviewTarget{}, ErrTransactionNotFound
	}
	return target, err
}

// Submit validates eligibility, inserts the review and credits the buyer's
// points in one transaction. The accrual rate comes from the buyer's own
// grade. Returns the review and the points earned.
func (r *ReviewRepo) Submit(ctx context.Context, transactionID, buyerID, score int, content string) (models.Review, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Review{}, 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	target, err := r.getTarget(ctx, tx, transactionID)
	if err != nil {
		return models.Review{}, 0, err
	}
	if target.BuyerID != buyerID {
		err = ErrNotTransactionBuyer
		return models.Review{}, 0, err
	}
	if !models.ReviewWindowOpen(target.TransactionDate, r.now()) {
		err = ErrReviewWindowClosed
		return models.Review{}, 0, err
	}

	var reviewed bool
	if err = tx.GetContext(ctx, &reviewed, `SELECT EXISTS(SELECT 1 FROM reviews WHERE transaction_id=$1)`, transactionID); err != nil {
		return models.Review{}, 0, err
	}
	if reviewed {
		err = ErrReviewExists
		return models.Review{}, 0, err
	}

	var grade string
	if err = tx.GetContext(ctx, &grade, `SELECT grade FROM users WHERE id=$1`, buyerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrUserNotFound
		}
		return models.Review{}, 0, err
	}

	var review models.Review
	if err = tx.QueryRowxContext(ctx, `INSERT INTO reviews (transaction_id, buyer_id, score, content) VALUES ($1, $2, $3, $4) RETURNING id, transaction_id, buyer_id, score, content, created_at`,
		transactionID, buyerID, score, content).
		Scan(&review.ID, &review.TransactionID, &review.BuyerID, &review.Score, &review.Content, &review.CreatedAt); err != nil {
		return models.Review{}, 0, err
	}

	earned := models.EarnedPoints(target.ProductPrice, grade)
	if _, err = tx.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE id=$2`, earned, buyerID); err != nil {
		return models.Review{}, 0, err
	}

	if err = tx.Commit(); err != nil {
		return models.Review{}, 0, err
	}
	return review, earned, nil
}

// Eligibility reports whether the buyer may still review the transaction.
func (r *ReviewRepo) Eligibility(ctx context.Context, transactionID, buyerID int) (bool, error) {
	target, err := r.getTarget(ctx, r.db, transactionID)
	if err != nil {
		return false, err
	}
	if target.BuyerID != buyerID {
		return false, nil
	}
	if !models.ReviewWindowOpen(target.TransactionDate, r.now()) {
		return false, nil
	}
	var reviewed bool
	if err := r.db.GetContext(ctx, &reviewed, `SELECT EXISTS(SELECT 1 FROM reviews WHERE transaction_id=$1)`, transactionID); err != nil {
		return false, err
	}
	return !reviewed, nil
}

const reviewViewQuery = `SELECT
        r.id, r.transaction_id, r.buyer_id, r.score, r.content, r.created_at,
        t.product_id, p.title AS product_title, p.price AS product_price,
        (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS product_thumbnail,
        t.seller_id, seller.name AS seller_name, buyer.name AS buyer_name
    FROM reviews r
    JOIN transactions t ON t.id = r.transaction_id
    JOIN products p ON p.id = t.product_id
    JOIN users seller ON seller.id = t.seller_id
    JOIN users buyer ON buyer.id = t.buyer_id`

// ListByBuyer returns reviews the user wrote.
func (r *ReviewRepo) ListByBuyer(ctx context.Context, buyerID int) ([]models.ReviewView, error) {
	var reviews []models.ReviewView
	err := r.db.SelectContext(ctx, &reviews, reviewViewQuery+` WHERE r.buyer_id=$1 ORDER BY r.created_at DESC`, buyerID)
	return reviews, err
}

// ListReceived returns reviews on the user's sales.
func (r *ReviewRepo) ListReceived(ctx context.Context, sellerID int) ([]models.ReviewView, error) {
	var reviews []models.ReviewView
	err := r.db.SelectContext(ctx, &reviews, reviewViewQuery+` WHERE t.seller_id=$1 ORDER BY r.created_at DESC`, sellerID)
	return reviews, err
}
