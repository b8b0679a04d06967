package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"market-service/internal/models"
	"market-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, username, passwordHash, name, address, phone string) (models.User, error) {
	args := m.Called(ctx, username, passwordHash, name, address, phone)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetPublicProfile(ctx context.Context, userID int) (models.PublicProfile, error) {
	args := m.Called(ctx, userID)
	var profile models.PublicProfile
	if val := args.Get(0); val != nil {
		profile = val.(models.PublicProfile)
	}
	return profile, args.Error(1)
}

type ProductRepositoryMock struct {
	mock.Mock
}

func (m *ProductRepositoryMock) Create(ctx context.Context, product models.Product, imageURLs []string) (models.Product, error) {
	args := m.Called(ctx, product, imageURLs)
	var created models.Product
	if val := args.Get(0); val != nil {
		created = val.(models.Product)
	}
	return created, args.Error(1)
}

func (m *ProductRepositoryMock) GetDetail(ctx context.Context, productID int) (models.ProductDetail, error) {
	args := m.Called(ctx, productID)
	var detail models.ProductDetail
	if val := args.Get(0); val != nil {
		detail = val.(models.ProductDetail)
	}
	return detail, args.Error(1)
}

func (m *ProductRepositoryMock) Get(ctx context.Context, productID int) (models.Product, error) {
	args := m.Called(ctx, productID)
	var product models.Product
	if val := args.Get(0); val != nil {
		product = val.(models.Product)
	}
	return product, args.Error(1)
}

func (m *ProductRepositoryMock) List(ctx context.Context, filter repositories.ProductFilter) ([]models.ProductSummary, error) {
	args := m.Called(ctx, filter)
	var products []models.ProductSummary
	if val := args.Get(0); val != nil {
		products = val.([]models.ProductSummary)
	}
	return products, args.Error(1)
}

func (m *ProductRepositoryMock) Count(ctx context.Context, filter repositories.ProductFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *ProductRepositoryMock) Update(ctx context.Context, product models.Product, imageURLs []string) error {
	args := m.Called(ctx, product, imageURLs)
	return args.Error(0)
}

func (m *ProductRepositoryMock) Delete(ctx context.Context, productID int) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *ProductRepositoryMock) IsWished(ctx context.Context, userID, productID int) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

type WishlistRepositoryMock struct {
	mock.Mock
}

func (m *WishlistRepositoryMock) Add(ctx context.Context, userID, productID int) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *WishlistRepositoryMock) Remove(ctx context.Context, userID, productID int) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *WishlistRepositoryMock) List(ctx context.Context, userID int) ([]models.WishlistItem, error) {
	args := m.Called(ctx, userID)
	var items []models.WishlistItem
	if val := args.Get(0); val != nil {
		items = val.([]models.WishlistItem)
	}
	return items, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) OpenOrReuseRoom(ctx context.Context, productID, buyerID int, firstMessage string) (models.ChatRoom, error) {
	args := m.Called(ctx, productID, buyerID, firstMessage)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRepositoryMock) GetRoomDetail(ctx context.Context, roomID int) (models.RoomDetail, error) {
	args := m.Called(ctx, roomID)
	var detail models.RoomDetail
	if val := args.Get(0); val != nil {
		detail = val.(models.RoomDetail)
	}
	return detail, args.Error(1)
}

func (m *ChatRepositoryMock) FindRoom(ctx context.Context, productID, buyerID int) (*models.ChatRoom, error) {
	args := m.Called(ctx, productID, buyerID)
	var room *models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(*models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRepositoryMock) ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var rooms []models.RoomSummary
	if val := args.Get(0); val != nil {
		rooms = val.([]models.RoomSummary)
	}
	return rooms, args.Error(1)
}

func (m *ChatRepositoryMock) DeleteRoom(ctx context.Context, roomID int) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) UnreadTotal(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) AppendMessage(ctx context.Context, roomID, senderID int, content, messageType string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content, messageType)
	var message models.Message
	if val := args.Get(0); val != nil {
		message = val.(models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, roomID int) ([]models.MessageView, error) {
	args := m.Called(ctx, roomID)
	var messages []models.MessageView
	if val := args.Get(0); val != nil {
		messages = val.([]models.MessageView)
	}
	return messages, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, roomID, readerID int) error {
	args := m.Called(ctx, roomID, readerID)
	return args.Error(0)
}

type NegotiationRepositoryMock struct {
	mock.Mock
}

func (m *NegotiationRepositoryMock) CreateRequest(ctx context.Context, roomID, buyerID int) (models.TransactionRequest, error) {
	args := m.Called(ctx, roomID, buyerID)
	var request models.TransactionRequest
	if val := args.Get(0); val != nil {
		request = val.(models.TransactionRequest)
	}
	return request, args.Error(1)
}

func (m *NegotiationRepositoryMock) Respond(ctx context.Context, requestID, sellerID int, accept bool) (models.TransactionRequest, error) {
	args := m.Called(ctx, requestID, sellerID, accept)
	var request models.TransactionRequest
	if val := args.Get(0); val != nil {
		request = val.(models.TransactionRequest)
	}
	return request, args.Error(1)
}

func (m *NegotiationRepositoryMock) Cancel(ctx context.Context, roomID, buyerID int) error {
	args := m.Called(ctx, roomID, buyerID)
	return args.Error(0)
}

func (m *NegotiationRepositoryMock) GetState(ctx context.Context, roomID, callerID int) (models.RequestState, error) {
	args := m.Called(ctx, roomID, callerID)
	var state models.RequestState
	if val := args.Get(0); val != nil {
		state = val.(models.RequestState)
	}
	return state, args.Error(1)
}

func (m *NegotiationRepositoryMock) ListForSeller(ctx context.Context, sellerID int, productID *int) ([]models.RequestView, error) {
	args := m.Called(ctx, sellerID, productID)
	var requests []models.RequestView
	if val := args.Get(0); val != nil {
		requests = val.([]models.RequestView)
	}
	return requests, args.Error(1)
}

func (m *NegotiationRepositoryMock) ListBuyerCandidates(ctx context.Context, productID, sellerID int) ([]models.BuyerCandidate, error) {
	args := m.Called(ctx, productID, sellerID)
	var buyers []models.BuyerCandidate
	if val := args.Get(0); val != nil {
		buyers = val.([]models.BuyerCandidate)
	}
	return buyers, args.Error(1)
}

type TransactionRepositoryMock struct {
	mock.Mock
}

func (m *TransactionRepositoryMock) DirectSettle(ctx context.Context, productID, buyerID, sellerID int) (models.Transaction, error) {
	args := m.Called(ctx, productID, buyerID, sellerID)
	var settled models.Transaction
	if val := args.Get(0); val != nil {
		settled = val.(models.Transaction)
	}
	return settled, args.Error(1)
}

func (m *TransactionRepositoryMock) Get(ctx context.Context, transactionID int) (models.Transaction, error) {
	args := m.Called(ctx, transactionID)
	var settled models.Transaction
	if val := args.Get(0); val != nil {
		settled = val.(models.Transaction)
	}
	return settled, args.Error(1)
}

func (m *TransactionRepositoryMock) ListHistory(ctx context.Context, userID int, role string) ([]models.TransactionView, error) {
	args := m.Called(ctx, userID, role)
	var history []models.TransactionView
	if val := args.Get(0); val != nil {
		history = val.([]models.TransactionView)
	}
	return history, args.Error(1)
}

type ReviewRepositoryMock struct {
	mock.Mock
}

func (m *ReviewRepositoryMock) Submit(ctx context.Context, transactionID, buyerID, score int, content string) (models.Review, int, error) {
	args := m.Called(ctx, transactionID, buyerID, score, content)
	var review models.Review
	if val := args.Get(0); val != nil {
		review = val.(models.Review)
	}
	return review, args.Int(1), args.Error(2)
}

func (m *ReviewRepositoryMock) Eligibility(ctx context.Context, transactionID, buyerID int) (bool, error) {
	args := m.Called(ctx, transactionID, buyerID)
	return args.Bool(0), args.Error(1)
}

func (m *ReviewRepositoryMock) ListByBuyer(ctx context.Context, buyerID int) ([]models.ReviewView, error) {
	args := m.Called(ctx, buyerID)
	var reviews []models.ReviewView
	if val := args.Get(0); val != nil {
		reviews = val.([]models.ReviewView)
	}
	return reviews, args.Error(1)
}

func (m *ReviewRepositoryMock) ListReceived(ctx context.Context, sellerID int) ([]models.ReviewView, error) {
	args := m.Called(ctx, sellerID)
	var reviews []models.ReviewView
	if val := args.Get(0); val != nil {
		reviews = val.([]models.ReviewView)
	}
	return reviews, args.Error(1)
}
