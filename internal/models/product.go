package models

import "time"

// Product sale statuses.
const (
	StatusSale     = "SALE"
	StatusReserved = "RESERVED"
	StatusSold     = "SOLD"
)

// Categories accepted for listings.
var Categories = []string{
	"electronics",
	"clothing",
	"furniture",
	"household",
	"sports",
	"books",
	"beauty",
	"pets",
	"etc",
}

// ValidCategory reports whether the category is one of the accepted values.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidStatus reports whether a status is an owner-settable listing status.
// SOLD is excluded: only settlement marks a product sold.
func ValidStatus(status string) bool {
	return status == StatusSale || status == StatusReserved
}

// Product is a listing offered for sale.
type Product struct {
	ID          int       `db:"id" json:"id"`
	SellerID    int       `db:"seller_id" json:"seller_id"`
	Title       string    `db:"title" json:"title"`
	Price       int       `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ProductImage is an uploaded image attached to a listing.
type ProductImage struct {
	ID        int    `db:"id" json:"id"`
	ProductID int    `db:"product_id" json:"product_id"`
	URL       string `db:"url" json:"url"`
}

// ProductSummary is the card view used in listings, search results and profiles.
type ProductSummary struct {
	ID        int       `db:"id" json:"id"`
	SellerID  int       `db:"seller_id" json:"seller_id"`
	Title     string    `db:"title" json:"title"`
	Price     int       `db:"price" json:"price"`
	Category  string    `db:"category" json:"category"`
	Status    string    `db:"status" json:"status"`
	Thumbnail *string   `db:"thumbnail" json:"thumbnail"`
	WishCount int       `db:"wish_count" json:"wish_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProductDetail is the full single-product view.
type ProductDetail struct {
	Product
	SellerName  string         `db:"seller_name" json:"seller_name"`
	SellerGrade string         `db:"seller_grade" json:"seller_grade"`
	Images      []ProductImage `json:"images"`
	WishCount   int            `db:"wish_count" json:"wish_count"`
}
