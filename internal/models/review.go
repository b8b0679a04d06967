package models

import "time"

// ReviewWindowDays is how long after settlement a buyer may leave a review.
const ReviewWindowDays = 7

// Review is a buyer's rating of a completed transaction.
type Review struct {
	ID            int       `db:"id" json:"id"`
	TransactionID int       `db:"transaction_id" json:"transaction_id"`
	BuyerID       int       `db:"buyer_id" json:"buyer_id"`
	Score         int       `db:"score" json:"score"`
	Content       string    `db:"content" json:"content"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ReviewView joins a review with its transaction's product and counterparty.
type ReviewView struct {
	Review
	ProductID        int     `db:"product_id" json:"product_id"`
	ProductTitle     string  `db:"product_title" json:"product_title"`
	ProductPrice     int     `db:"product_price" json:"product_price"`
	ProductThumbnail *string `db:"product_thumbnail" json:"product_thumbnail"`
	SellerID         int     `db:"seller_id" json:"seller_id"`
	SellerName       string  `db:"seller_name" json:"seller_name"`
	BuyerName        string  `db:"buyer_name" json:"buyer_name"`
}

// ReviewWindowOpen reports whether a review may still be submitted for a
// transaction settled at transactionDate. The difference is truncated to whole
// days, so exactly seven days after settlement is still eligible.
func ReviewWindowOpen(transactionDate, now time.Time) bool {
	days := int(now.Sub(transactionDate).Hours() / 24)
	return days <= ReviewWindowDays
}

// ValidScore reports whether a review score is in the accepted range.
func ValidScore(score int) bool {
	return score >= 1 && score <= 5
}
