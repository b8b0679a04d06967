package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"market-service/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already taken")
)

// UserRepository abstracts account persistence.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash, name, address, phone string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetPublicProfile(ctx context.Context, userID int) (models.PublicProfile, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create registers an account. New accounts start at BRONZE with the default
// point balance.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, name, address, phone string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (username, password_hash, name, address, phone) VALUES ($1, $2, $3, $4, $5) RETURNING id, username, password_hash, name, address, phone, grade, points, created_at`,
		username, passwordHash, name, address, phone).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Name, &user.Address, &user.Phone, &user.Grade, &user.Points, &user.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.User{}, ErrUsernameExists
	}
	return user, err
}

// GetByUsername fetches an account by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, password_hash, name, address, phone, grade, points, created_at FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, password_hash, name, address, phone, grade, points, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetPublicProfile fetches the profile view shown to other users.
func (r *UserRepo) GetPublicProfile(ctx context.Context, userID int) (models.PublicProfile, error) {
	var profile models.PublicProfile
	err := r.db.GetContext(ctx, &profile, `SELECT id, username, name, grade, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PublicProfile{}, ErrUserNotFound
	}
	return profile, err
}
