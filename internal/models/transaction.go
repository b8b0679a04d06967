package models

import "time"

// Transaction is a finalized settlement: its existence is what makes a
// product's SOLD status real.
type Transaction struct {
	ID              int       `db:"id" json:"id"`
	SellerID        int       `db:"seller_id" json:"seller_id"`
	BuyerID         int       `db:"buyer_id" json:"buyer_id"`
	ProductID       int       `db:"product_id" json:"product_id"`
	TransactionDate time.Time `db:"transaction_date" json:"transaction_date"`
}

// TransactionView is the history view joined with product and counterparty.
type TransactionView struct {
	Transaction
	ProductTitle     string  `db:"product_title" json:"product_title"`
	ProductPrice     int     `db:"product_price" json:"product_price"`
	ProductThumbnail *string `db:"product_thumbnail" json:"product_thumbnail"`
	SellerName       string  `db:"seller_name" json:"seller_name"`
	BuyerName        string  `db:"buyer_name" json:"buyer_name"`
	HasReview        bool    `db:"has_review" json:"has_review"`
}
