package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

// WishlistRepository abstracts wishlist persistence.
type WishlistRepository interface {
	Add(ctx context.Context, userID, productID int) error
	Remove(ctx context.Context, userID, productID int) error
	List(ctx context.Context, userID int) ([]models.WishlistItem, error)
}

// WishlistRepo is a sqlx implementation of WishlistRepository.
type WishlistRepo struct {
	db *sqlx.DB
}

// NewWishlistRepo constructs a WishlistRepo.
func NewWishlistRepo(db *sqlx.DB) *WishlistRepo {
	return &WishlistRepo{db: db}
}

// Add wishlists a product for the user. Adding twice is a no-op.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO wishlists (user_id, product_id) VALUES ($1, $2) ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return err
}

// Remove drops a product from the user's wishlist.
func (r *WishlistRepo) Remove(ctx context.Context, userID, productID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM wishlists WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

// List returns the user's wishlist joined with product info.
func (r *WishlistRepo) List(ctx context.Context, userID int) ([]models.WishlistItem, error) {
	query := `SELECT
            w.id AS wishlist_id, p.id AS product_id, p.title, p.price, p.status, p.category,
            (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS thumbnail,
            u.name AS seller_name
        FROM wishlists w
        JOIN products p ON p.id = w.product_id
        JOIN users u ON u.id = p.seller_id
        WHERE w.user_id=$1
        ORDER BY w.created_at DESC`
	var items []models.WishlistItem
	err := r.db.SelectContext(ctx, &items, query, userID)
	return items, err
}
