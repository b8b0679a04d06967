package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-service/internal/db"
	"market-service/internal/models"
)

// These tests run against a real Postgres because the request lifecycle
// lives in SQL. Set TEST_DB_DSN to enable them.
func negotiationTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	t.Setenv("DB_DSN", dsn)

	database, err := db.Connect()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`TRUNCATE reviews, transactions, rejected_requests, transaction_requests, messages, chat_rooms, wishlists, product_images, products, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return database
}

func seedUser(t *testing.T, database *sqlx.DB, username string) int {
	t.Helper()
	var id int
	err := database.QueryRowx(`INSERT INTO users (username, password_hash, name) VALUES ($1, 'x', $1) RETURNING id`, username).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, database *sqlx.DB, sellerID int) int {
	t.Helper()
	var id int
	err := database.QueryRowx(`INSERT INTO products (seller_id, title, price, description, category) VALUES ($1, 'old bike', 150, '', 'sports') RETURNING id`, sellerID).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedRoom(t *testing.T, database *sqlx.DB, productID, buyerID, sellerID int) int {
	t.Helper()
	var id int
	err := database.QueryRowx(`INSERT INTO chat_rooms (product_id, buyer_id, seller_id) VALUES ($1, $2, $3) RETURNING id`, productID, buyerID, sellerID).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestAcceptRejectsSiblingsAtomically(t *testing.T) {
	database := negotiationTestDB(t)
	repo := NewNegotiationRepo(database)
	ctx := context.Background()

	seller := seedUser(t, database, "seller")
	buyerA := seedUser(t, database, "buyer_a")
	buyerB := seedUser(t, database, "buyer_b")
	product := seedProduct(t, database, seller)
	roomA := seedRoom(t, database, product, buyerA, seller)
	roomB := seedRoom(t, database, product, buyerB, seller)

	reqA, err := repo.CreateRequest(ctx, roomA, buyerA)
	require.NoError(t, err)
	reqB, err := repo.CreateRequest(ctx, roomB, buyerB)
	require.NoError(t, err)

	accepted, err := repo.Respond(ctx, reqA.ID, seller, true)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, accepted.Status)

	var siblingStatus string
	require.NoError(t, database.Get(&siblingStatus, `SELECT status FROM transaction_requests WHERE id=$1`, reqB.ID))
	assert.Equal(t, models.RequestRejected, siblingStatus)

	var siblingBlocked bool
	require.NoError(t, database.Get(&siblingBlocked, `SELECT EXISTS(SELECT 1 FROM rejected_requests WHERE product_id=$1 AND buyer_id=$2)`, product, buyerB))
	assert.True(t, siblingBlocked, "rejected sibling buyer must be denylisted")

	var winnerBlocked bool
	require.NoError(t, database.Get(&winnerBlocked, `SELECT EXISTS(SELECT 1 FROM rejected_requests WHERE product_id=$1 AND buyer_id=$2)`, product, buyerA))
	assert.False(t, winnerBlocked, "accepted buyer must not be denylisted")

	var productStatus string
	require.NoError(t, database.Get(&productStatus, `SELECT status FROM products WHERE id=$1`, product))
	assert.Equal(t, models.StatusSold, productStatus)

	var settledBuyer int
	require.NoError(t, database.Get(&settledBuyer, `SELECT buyer_id FROM transactions WHERE product_id=$1`, product))
	assert.Equal(t, buyerA, settledBuyer)

	// the losing sibling may not re-request
	_, err = repo.CreateRequest(ctx, roomB, buyerB)
	assert.ErrorIs(t, err, ErrProductSold)
}

func TestDenylistPersistsAcrossRooms(t *testing.T) {
	database := negotiationTestDB(t)
	repo := NewNegotiationRepo(database)
	ctx := context.Background()

	seller := seedUser(t, database, "seller")
	buyer := seedUser(t, database, "buyer")
	product := seedProduct(t, database, seller)
	room := seedRoom(t, database, product, buyer, seller)

	req, err := repo.CreateRequest(ctx, room, buyer)
	require.NoError(t, err)

	rejected, err := repo.Respond(ctx, req.ID, seller, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)

	// same room: blocked before the duplicate-request check even runs
	_, err = repo.CreateRequest(ctx, room, buyer)
	assert.ErrorIs(t, err, ErrBuyerBlocked)

	// a fresh room on the same product changes nothing
	_, err = database.Exec(`DELETE FROM chat_rooms WHERE id=$1`, room)
	require.NoError(t, err)
	freshRoom := seedRoom(t, database, product, buyer, seller)

	_, err = repo.CreateRequest(ctx, freshRoom, buyer)
	assert.ErrorIs(t, err, ErrBuyerBlocked)
}

func TestDirectSettleRejectsPendingRequests(t *testing.T) {
	database := negotiationTestDB(t)
	negotiationRepo := NewNegotiationRepo(database)
	txRepo := NewTransactionRepo(database)
	ctx := context.Background()

	seller := seedUser(t, database, "seller")
	buyerA := seedUser(t, database, "buyer_a")
	buyerB := seedUser(t, database, "buyer_b")
	product := seedProduct(t, database, seller)
	roomA := seedRoom(t, database, product, buyerA, seller)
	roomB := seedRoom(t, database, product, buyerB, seller)

	_, err := negotiationRepo.CreateRequest(ctx, roomA, buyerA)
	require.NoError(t, err)
	reqB, err := negotiationRepo.CreateRequest(ctx, roomB, buyerB)
	require.NoError(t, err)

	settled, err := txRepo.DirectSettle(ctx, product, buyerA, seller)
	require.NoError(t, err)
	assert.Equal(t, buyerA, settled.BuyerID)

	// the chosen buyer's request is superseded, not rejected
	var chosenRemains bool
	require.NoError(t, database.Get(&chosenRemains, `SELECT EXISTS(SELECT 1 FROM transaction_requests WHERE product_id=$1 AND buyer_id=$2)`, product, buyerA))
	assert.False(t, chosenRemains)
	var chosenBlocked bool
	require.NoError(t, database.Get(&chosenBlocked, `SELECT EXISTS(SELECT 1 FROM rejected_requests WHERE product_id=$1 AND buyer_id=$2)`, product, buyerA))
	assert.False(t, chosenBlocked)

	var siblingStatus string
	require.NoError(t, database.Get(&siblingStatus, `SELECT status FROM transaction_requests WHERE id=$1`, reqB.ID))
	assert.Equal(t, models.RequestRejected, siblingStatus)
	var siblingBlocked bool
	require.NoError(t, database.Get(&siblingBlocked, `SELECT EXISTS(SELECT 1 FROM rejected_requests WHERE product_id=$1 AND buyer_id=$2)`, product, buyerB))
	assert.True(t, siblingBlocked)
}

func TestGetStateRequiresParticipant(t *testing.T) {
	database := negotiationTestDB(t)
	repo := NewNegotiationRepo(database)
	ctx := context.Background()

	seller := seedUser(t, database, "seller")
	buyer := seedUser(t, database, "buyer")
	outsider := seedUser(t, database, "outsider")
	product := seedProduct(t, database, seller)
	room := seedRoom(t, database, product, buyer, seller)

	_, err := repo.GetState(ctx, room, outsider)
	assert.ErrorIs(t, err, ErrNotParticipant)

	state, err := repo.GetState(ctx, room, buyer)
	require.NoError(t, err)
	assert.Nil(t, state.Request)
	assert.False(t, state.Blocked)
}
