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
	ErrProductNotFound = errors.New("product not found")
	ErrListingLimit    = errors.New("active listing limit reached")
)

// MaxActiveListings caps non-SOLD listings per seller.
const MaxActiveListings = 10

// ProductFilter narrows product listings and searches.
type ProductFilter struct {
	Category string
	Keyword  string
	Sort     string // latest, price_low, price_high, relevance
	SellerID *int
	SaleOnly bool
	Limit    int
	Offset   int
}

// ProductRepository abstracts listing persistence.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product, imageURLs []string) (models.Product, error)
	GetDetail(ctx context.Context, productID int) (models.ProductDetail, error)
	Get(ctx context.Context, productID int) (models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.ProductSummary, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	Update(ctx context.Context, product models.Product, imageURLs []string) error
	Delete(ctx context.Context, productID int) error
	IsWished(ctx context.Context, userID, productID int) (bool, error)
}

// ProductRepo is a sqlx implementation of ProductRepository.
type ProductRepo struct {
	db *sqlx.DB
}

// NewProductRepo constructs a ProductRepo.
func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create inserts a listing and its images atomically, enforcing the per-seller
// active listing cap.
func (r *ProductRepo) Create(ctx context.Context, product models.Product, imageURLs []string) (models.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var active int
	if err = tx.GetContext(ctx, &active, `SELECT COUNT(*) FROM products WHERE seller_id=$1 AND status <> $2`, product.SellerID, models.StatusSold); err != nil {
		return models.Product{}, err
	}
	if active >= MaxActiveListings {
		err = ErrListingLimit
		return models.Product{}, err
	}

	if err = tx.QueryRowxContext(ctx, `INSERT INTO products (seller_id, title, price, description, category) VALUES ($1, $2, $3, $4, $5) RETURNING id, seller_id, title, price, description, category, status, created_at`,
		product.SellerID, product.Title, product.Price, product.Description, product.Category).
		Scan(&product.ID, &product.SellerID, &product.Title, &product.Price, &product.Description, &product.Category, &product.Status, &product.CreatedAt); err != nil {
		return models.Product{}, err
	}

	for _, url := range imageURLs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO product_images (product_id, url) VALUES ($1, $2)`, product.ID, url); err != nil {
			return models.Product{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Get fetches a bare product row.
func (r *ProductRepo) Get(ctx context.Context, productID int) (models.Product, error) {
	var product models.Product
	err := r.db.GetContext(ctx, &product, `SELECT id, seller_id, title, price, description, category, status, created_at FROM products WHERE id=$1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return product, err
}

// GetDetail fetches a product with seller info, images and wish count.
func (r *ProductRepo) GetDetail(ctx context.Context, productID int) (models.ProductDetail, error) {
	var detail models.ProductDetail
	query := `SELECT
            p.id, p.seller_id, p.title, p.price, p.description, p.category, p.status, p.created_at,
            u.name AS seller_name, u.grade AS seller_grade,
            (SELECT COUNT(*) FROM wishlists WHERE product_id = p.id) AS wish_count
        FROM products p
        JOIN users u ON u.id = p.seller_id
        WHERE p.id=$1`
	err := r.db.GetContext(ctx, &detail, query, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProductDetail{}, ErrProductNotFound
	}
	if err != nil {
		return models.ProductDetail{}, err
	}

	if err := r.db.SelectContext(ctx, &detail.Images, `SELECT id, product_id, url FROM product_images WHERE product_id=$1 ORDER BY id`, productID); err != nil {
		return models.ProductDetail{}, err
	}
	return detail, nil
}

func buildFilter(filter ProductFilter, args *[]interface{}) string {
	where := ` WHERE 1=1`
	if filter.SaleOnly {
		where += fmt.Sprintf(` AND p.status = $%d`, len(*args)+1)
		*args = append(*args, models.StatusSale)
	}
	if filter.Category != "" {
		where += fmt.Sprintf(` AND p.category = $%d`, len(*args)+1)
		*args = append(*args, filter.Category)
	}
	if filter.Keyword != "" {
		where += fmt.Sprintf(` AND (p.title ILIKE $%d OR p.description ILIKE $%d)`, len(*args)+1, len(*args)+2)
		pattern := "%" + filter.Keyword + "%"
		*args = append(*args, pattern, pattern)
	}
	if filter.SellerID != nil {
		where += fmt.Sprintf(` AND p.seller_id = $%d`, len(*args)+1)
		*args = append(*args, *filter.SellerID)
	}
	return where
}

// List returns product cards matching the filter.
func (r *ProductRepo) List(ctx context.Context, filter ProductFilter) ([]models.ProductSummary, error) {
	args := []interface{}{}
	query := `SELECT
            p.id, p.seller_id, p.title, p.price, p.category, p.status, p.created_at,
            (SELECT url FROM product_images WHERE product_id = p.id ORDER BY id LIMIT 1) AS thumbnail,
            (SELECT COUNT(*) FROM wishlists WHERE product_id = p.id) AS wish_count
        FROM products p` + buildFilter(filter, &args)

	switch filter.Sort {
	case "price_low":
		query += ` ORDER BY p.price ASC, p.created_at DESC`
	case "price_high":
		query += ` ORDER BY p.price DESC, p.created_at DESC`
	case "relevance":
		if filter.Keyword != "" {
			// exact title match first, then prefix, then title, then description
			query += fmt.Sprintf(` ORDER BY CASE
                    WHEN p.title = $%d THEN 1
                    WHEN p.title ILIKE $%d THEN 2
                    WHEN p.title ILIKE $%d THEN 3
                    ELSE 4
                END, p.created_at DESC`, len(args)+1, len(args)+2, len(args)+3)
			args = append(args, filter.Keyword, filter.Keyword+"%", "%"+filter.Keyword+"%")
		} else {
			query += ` ORDER BY p.created_at DESC`
		}
	default:
		query += ` ORDER BY p.created_at DESC`
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	var products []models.ProductSummary
	err := r.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// Count returns the number of products matching the filter.
func (r *ProductRepo) Count(ctx context.Context, filter ProductFilter) (int, error) {
	args := []interface{}{}
	query := `SELECT COUNT(*) FROM products p` + buildFilter(filter, &args)
	var total int
	err := r.db.GetContext(ctx, &total, query, args...)
	return total, err
}

// Update rewrites a listing's editable fields; when imageURLs is non-nil the
// image set is replaced.
func (r *ProductRepo) Update(ctx context.Context, product models.Product, imageURLs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE products SET title=$1, price=$2, description=$3, category=$4, status=$5 WHERE id=$6`,
		product.Title, product.Price, product.Description, product.Category, product.Status, product.ID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		err = ErrProductNotFound
		return err
	}

	if imageURLs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id=$1`, product.ID); err != nil {
			return err
		}
		for _, url := range imageURLs {
			if _, err = tx.ExecContext(ctx, `INSERT INTO product_images (product_id, url) VALUES ($1, $2)`, product.ID, url); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete removes a listing; images, wishlist rows and chat rooms cascade.
func (r *ProductRepo) Delete(ctx context.Context, productID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, productID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return nil
}

// IsWished reports whether the user has wishlisted the product.
func (r *ProductRepo) IsWished(ctx context.Context, userID, productID int) (bool, error) {
	var wished bool
	err := r.db.GetContext(ctx, &wished, `SELECT EXISTS(SELECT 1 FROM wishlists WHERE user_id=$1 AND product_id=$2)`, userID, productID)
	return wished, err
}
