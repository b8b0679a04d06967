package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/repositories"
)

// UserHandler serves public profiles and the owner's mypage.
type UserHandler struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	reviewRepo  repositories.ReviewRepository
	txRepo      repositories.TransactionRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository, productRepo repositories.ProductRepository, reviewRepo repositories.ReviewRepository, txRepo repositories.TransactionRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo, productRepo: productRepo, reviewRepo: reviewRepo, txRepo: txRepo}
}

func averageScore(reviews []models.ReviewView) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, review := range reviews {
		total += review.Score
	}
	return float64(total) / float64(len(reviews))
}

// Profile returns another user's public page: profile, listings and received
// reviews with their average score.
func (h *UserHandler) Profile(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profile, err := h.userRepo.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	products, err := h.productRepo.List(c.Request.Context(), repositories.ProductFilter{SellerID: &userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if products == nil {
		products = []models.ProductSummary{}
	}

	reviews, err := h.reviewRepo.ListReceived(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if reviews == nil {
		reviews = []models.ReviewView{}
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":       profile,
		"products":      products,
		"reviews":       reviews,
		"average_score": averageScore(reviews),
	})
}

// MyPage returns the authenticated user's dashboard: account, own listings
// and both sides of their transaction history.
func (h *UserHandler) MyPage(c *gin.Context) {
	userID := c.GetInt("userID")

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mypage"})
		return
	}

	products, err := h.productRepo.List(c.Request.Context(), repositories.ProductFilter{SellerID: &userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mypage"})
		return
	}
	if products == nil {
		products = []models.ProductSummary{}
	}

	sales, err := h.txRepo.ListHistory(c.Request.Context(), userID, "sell")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mypage"})
		return
	}
	purchases, err := h.txRepo.ListHistory(c.Request.Context(), userID, "buy")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mypage"})
		return
	}
	if sales == nil {
		sales = []models.TransactionView{}
	}
	if purchases == nil {
		purchases = []models.TransactionView{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      userResponse(user),
		"products":  products,
		"sales":     sales,
		"purchases": purchases,
	})
}
