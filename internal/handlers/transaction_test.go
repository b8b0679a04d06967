package handlers

import (
	"bytes"
	"encoding/json"
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

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/transactions", handler.Settle)
	r.GET("/transactions", handler.History)
	r.GET("/transactions/:id", handler.Get)
	return r
}

func TestSettleSuccess(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("DirectSettle", mock.Anything, 7, 2, 1).
		Return(models.Transaction{ID: 4, SellerID: 1, BuyerID: 2, ProductID: 7}, nil).Once()

	body := bytes.NewBufferString(`{"product_id":7,"buyer_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/transactions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var settled models.Transaction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&settled))
	assert.Equal(t, 4, settled.ID)
	txRepo.AssertExpectations(t)
}

func TestSettleNotOwner(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("DirectSettle", mock.Anything, 7, 2, 1).
		Return(models.Transaction{}, repositories.ErrNotProductOwner).Once()

	body := bytes.NewBufferString(`{"product_id":7,"buyer_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/transactions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	txRepo.AssertExpectations(t)
}

func TestSettleAlreadySold(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("DirectSettle", mock.Anything, 7, 2, 1).
		Return(models.Transaction{}, repositories.ErrProductSold).Once()

	body := bytes.NewBufferString(`{"product_id":7,"buyer_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/transactions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	txRepo.AssertExpectations(t)
}

func TestSettleSelf(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("DirectSettle", mock.Anything, 7, 1, 1).
		Return(models.Transaction{}, repositories.ErrSelfSettlement).Once()

	body := bytes.NewBufferString(`{"product_id":7,"buyer_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/transactions", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	txRepo.AssertExpectations(t)
}

func TestHistoryDefaultsToBothSides(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("ListHistory", mock.Anything, 1, "all").
		Return([]models.TransactionView{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	txRepo.AssertExpectations(t)
}

func TestHistorySellSide(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("ListHistory", mock.Anything, 1, "sell").
		Return([]models.TransactionView{{Transaction: models.Transaction{ID: 4, SellerID: 1}}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/transactions?role=sell", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	txRepo.AssertExpectations(t)
}

func TestGetTransactionSuccess(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("Get", mock.Anything, 4).
		Return(models.Transaction{ID: 4, SellerID: 1, BuyerID: 2, ProductID: 7}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/transactions/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var settled models.Transaction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&settled))
	assert.Equal(t, 4, settled.ID)
	txRepo.AssertExpectations(t)
}

func TestGetTransactionOutsider(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("Get", mock.Anything, 4).
		Return(models.Transaction{ID: 4, SellerID: 3, BuyerID: 2, ProductID: 7}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/transactions/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	txRepo.AssertExpectations(t)
}

func TestGetTransactionMissing(t *testing.T) {
	txRepo := new(mocks.TransactionRepositoryMock)
	handler := NewTransactionHandler(txRepo, nil, nil)
	router := setupTransactionRouter(handler)

	txRepo.On("Get", mock.Anything, 99).
		Return(models.Transaction{}, repositories.ErrTransactionNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/transactions/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	txRepo.AssertExpectations(t)
}
