package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/repositories"
)

// WishlistHandler manages a user's saved products.
type WishlistHandler struct {
	wishlistRepo repositories.WishlistRepository
	productRepo  repositories.ProductRepository
}

// NewWishlistHandler builds a WishlistHandler.
func NewWishlistHandler(wishlistRepo repositories.WishlistRepository, productRepo repositories.ProductRepository) *WishlistHandler {
	return &WishlistHandler{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// Add wishlists a product. Adding twice is a no-op.
func (h *WishlistHandler) Add(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		ProductID int `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.productRepo.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update wishlist"})
		return
	}
	if product.SellerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot wishlist own product"})
		return
	}

	if err := h.wishlistRepo.Add(c.Request.Context(), userID, req.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wished": true})
}

// Remove drops a product from the wishlist.
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID := c.GetInt("userID")
	productID, err := strconv.Atoi(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.wishlistRepo.Remove(c.Request.Context(), userID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wished": false})
}

// List returns the user's wishlist with product info.
func (h *WishlistHandler) List(c *gin.Context) {
	userID := c.GetInt("userID")

	items, err := h.wishlistRepo.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wishlist"})
		return
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
