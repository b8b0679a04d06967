package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"market-service/internal/mocks"
	"market-service/internal/models"
	"market-service/internal/repositories"
)

func setupWishlistRouter(handler *WishlistHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/wishlist", handler.List)
	r.POST("/wishlist", handler.Add)
	r.DELETE("/wishlist", handler.Remove)
	return r
}

func TestWishlistAdd(t *testing.T) {
	wishlistRepo := new(mocks.WishlistRepositoryMock)
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewWishlistHandler(wishlistRepo, productRepo)
	router := setupWishlistRouter(handler)

	productRepo.On("Get", mock.Anything, 7).
		Return(models.Product{ID: 7, SellerID: 2}, nil).Once()
	wishlistRepo.On("Add", mock.Anything, 1, 7).Return(nil).Once()

	body := bytes.NewBufferString(`{"product_id":7}`)
	req := httptest.NewRequest(http.MethodPost, "/wishlist", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"wished":true}`, rec.Body.String())
	wishlistRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestWishlistAddOwnProduct(t *testing.T) {
	wishlistRepo := new(mocks.WishlistRepositoryMock)
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewWishlistHandler(wishlistRepo, productRepo)
	router := setupWishlistRouter(handler)

	productRepo.On("Get", mock.Anything, 7).
		Return(models.Product{ID: 7, SellerID: 1}, nil).Once()

	body := bytes.NewBufferString(`{"product_id":7}`)
	req := httptest.NewRequest(http.MethodPost, "/wishlist", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	productRepo.AssertExpectations(t)
	wishlistRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistAddProductMissing(t *testing.T) {
	wishlistRepo := new(mocks.WishlistRepositoryMock)
	productRepo := new(mocks.ProductRepositoryMock)
	handler := NewWishlistHandler(wishlistRepo, productRepo)
	router := setupWishlistRouter(handler)

	productRepo.On("Get", mock.Anything, 99).
		Return(models.Product{}, repositories.ErrProductNotFound).Once()

	body := bytes.NewBufferString(`{"product_id":99}`)
	req := httptest.NewRequest(http.MethodPost, "/wishlist", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestWishlistRemove(t *testing.T) {
	wishlistRepo := new(mocks.WishlistRepositoryMock)
	handler := NewWishlistHandler(wishlistRepo, new(mocks.ProductRepositoryMock))
	router := setupWishlistRouter(handler)

	wishlistRepo.On("Remove", mock.Anything, 1, 7).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/wishlist?product_id=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"wished":false}`, rec.Body.String())
	wishlistRepo.AssertExpectations(t)
}

func TestWishlistListEmpty(t *testing.T) {
	wishlistRepo := new(mocks.WishlistRepositoryMock)
	handler := NewWishlistHandler(wishlistRepo, new(mocks.ProductRepositoryMock))
	router := setupWishlistRouter(handler)

	wishlistRepo.On("List", mock.Anything, 1).
		Return(([]models.WishlistItem)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/wishlist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	wishlistRepo.AssertExpectations(t)
}
