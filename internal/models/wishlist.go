package models

import "time"

// Wishlist marks a product a user wants to keep an eye on.
type Wishlist struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ProductID int       `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WishlistItem is the wishlist view joined with product info.
type WishlistItem struct {
	WishlistID int     `db:"wishlist_id" json:"wishlist_id"`
	ProductID  int     `db:"product_id" json:"product_id"`
	Title      string  `db:"title" json:"title"`
	Price      int     `db:"price" json:"price"`
	Status     string  `db:"status" json:"status"`
	Category   string  `db:"category" json:"category"`
	Thumbnail  *string `db:"thumbnail" json:"thumbnail"`
	SellerName string  `db:"seller_name" json:"seller_name"`
}
