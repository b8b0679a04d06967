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
	"golang.org/x/crypto/bcrypt"

	"market-service/internal/middleware"
	"market-service/internal/mocks"
	"market-service/internal/models"
	"market-service/internal/repositories"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/logout", handler.Logout)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, nil)
	router := setupAuthRouter(handler)

	userRepo.On("Create", mock.Anything, "alice99", mock.AnythingOfType("string"), "Alice", "", "").
		Return(models.User{ID: 1, Username: "alice99", Name: "Alice", Grade: models.GradeBronze, Points: 1000}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice99","password":"secret1","name":"Alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "BRONZE", resp["grade"])
	assert.Equal(t, float64(1000), resp["points"])
	userRepo.AssertExpectations(t)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, nil)
	router := setupAuthRouter(handler)

	userRepo.On("Create", mock.Anything, "alice99", mock.AnythingOfType("string"), "Alice", "", "").
		Return(models.User{}, repositories.ErrUsernameExists).Once()

	body := bytes.NewBufferString(`{"username":"alice99","password":"secret1","name":"Alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestRegisterShortPassword(t *testing.T) {
	handler := NewAuthHandler(new(mocks.UserRepositoryMock), nil)
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"username":"alice99","password":"ab","name":"Alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, nil)
	router := setupAuthRouter(handler)

	userRepo.On("GetByUsername", mock.Anything, "alice99").
		Return(models.User{ID: 1, Username: "alice99", PasswordHash: string(hash)}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice99","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.NotEmpty(t, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)
	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, nil)
	router := setupAuthRouter(handler)

	userRepo.On("GetByUsername", mock.Anything, "alice99").
		Return(models.User{ID: 1, Username: "alice99", PasswordHash: string(hash)}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice99","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginUnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, nil)
	router := setupAuthRouter(handler)

	userRepo.On("GetByUsername", mock.Anything, "nobody").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"username":"nobody","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLogoutExpiresCookie(t *testing.T) {
	handler := NewAuthHandler(new(mocks.UserRepositoryMock), nil)
	router := setupAuthRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.MaxAge < 0)
}
