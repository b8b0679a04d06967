package models

import "time"

// User grades, ordered by point accrual rate.
const (
	GradeBronze   = "BRONZE"
	GradeSilver   = "SILVER"
	GradeGold     = "GOLD"
	GradePlatinum = "PLATINUM"
)

// gradePointsRate maps a grade to its accrual rate in percent of the product price.
var gradePointsRate = map[string]float64{
	GradeBronze:   2.5,
	GradeSilver:   5.0,
	GradeGold:     7.5,
	GradePlatinum: 10.0,
}

// User represents a marketplace account.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	Phone        string    `db:"phone" json:"phone"`
	Grade        string    `db:"grade" json:"grade"`
	Points       int       `db:"points" json:"points"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicProfile is the view of a user shown to other users.
type PublicProfile struct {
	ID        int       `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EarnedPoints computes the points credited for a review of a product at the
// given price, using the reviewer's own grade. Unknown grades fall back to the
// BRONZE rate.
func EarnedPoints(price int, grade string) int {
	rate, ok := gradePointsRate[grade]
	if !ok {
		rate = gradePointsRate[GradeBronze]
	}
	return int(float64(price) * rate / 100)
}
