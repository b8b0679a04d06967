package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
)

// ProductHandler serves listing CRUD and search.
type ProductHandler struct {
	productRepo repositories.ProductRepository
	emitter     *telemetry.AuditEmitter
}

// NewProductHandler builds a ProductHandler.
func NewProductHandler(productRepo repositories.ProductRepository, emitter *telemetry.AuditEmitter) *ProductHandler {
	return &ProductHandler{productRepo: productRepo, emitter: emitter}
}

// Create registers a new listing for the authenticated seller.
func (h *ProductHandler) Create(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Price       int      `json:"price" binding:"required,min=0"`
		Description string   `json:"description"`
		Category    string   `json:"category" binding:"required"`
		ImageURLs   []string `json:"image_urls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	product := models.Product{
		SellerID:    userID,
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
	}
	created, err := h.productRepo.Create(c.Request.Context(), product, req.ImageURLs)
	if err != nil {
		if errors.Is(err, repositories.ErrListingLimit) {
			c.JSON(http.StatusConflict, gin.H{"error": "active listing limit reached"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "product.listed", "product listed", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, created)
}

// List returns product cards, filtered and sorted by query parameters.
func (h *ProductHandler) List(c *gin.Context) {
	filter := repositories.ProductFilter{
		Category: c.Query("category"),
		Keyword:  c.Query("keyword"),
		Sort:     c.DefaultQuery("sort", "latest"),
		SaleOnly: c.Query("sale_only") == "true",
	}
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 || size > 100 {
		size = 20
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size

	products, err := h.productRepo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}
	if products == nil {
		products = []models.ProductSummary{}
	}

	total, err := h.productRepo.Count(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"size":     size,
	})
}

// Get returns the full product view. Viewer-dependent fields are filled when
// the request carries a valid session.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	detail, err := h.productRepo.GetDetail(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	isOwner := false
	isWished := false
	if viewer := userIDFromContext(c); viewer != nil {
		isOwner = *viewer == detail.SellerID
		wished, err := h.productRepo.IsWished(c.Request.Context(), *viewer, productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
			return
		}
		isWished = wished
	}

	c.JSON(http.StatusOK, gin.H{
		"product":   detail,
		"is_owner":  isOwner,
		"is_wished": isWished,
	})
}

// Update edits a listing. Only the owner may edit, and SOLD cannot be set here.
func (h *ProductHandler) Update(c *gin.Context) {
	userID := c.GetInt("userID")
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Price       int      `json:"price" binding:"required,min=0"`
		Description string   `json:"description"`
		Category    string   `json:"category" binding:"required"`
		Status      string   `json:"status"`
		ImageURLs   []string `json:"image_urls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	product, err := h.productRepo.Get(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	if product.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the product owner"})
		return
	}
	if product.Status == models.StatusSold {
		c.JSON(http.StatusConflict, gin.H{"error": "product already sold"})
		return
	}

	status := product.Status
	if req.Status != "" {
		if !models.ValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = req.Status
	}

	product.Title = req.Title
	product.Price = req.Price
	product.Description = req.Description
	product.Category = req.Category
	product.Status = status

	if err := h.productRepo.Update(c.Request.Context(), product, req.ImageURLs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete removes a listing. Only the owner may delete.
func (h *ProductHandler) Delete(c *gin.Context) {
	userID := c.GetInt("userID")
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.productRepo.Get(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	if product.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the product owner"})
		return
	}
	if product.Status == models.StatusSold {
		c.JSON(http.StatusConflict, gin.H{"error": "sold products cannot be deleted"})
		return
	}

	if err := h.productRepo.Delete(c.Request.Context(), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "product.deleted", "product deleted", requestIDFromContext(c), &userID)
	c.Status(http.StatusNoContent)
}
