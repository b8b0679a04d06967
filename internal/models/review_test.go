package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReviewWindowOpen(t *testing.T) {
	settled := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, ReviewWindowOpen(settled, settled))
	assert.True(t, ReviewWindowOpen(settled, settled.AddDate(0, 0, 7)))
	assert.True(t, ReviewWindowOpen(settled, settled.AddDate(0, 0, 7).Add(23*time.Hour)))
	assert.False(t, ReviewWindowOpen(settled, settled.AddDate(0, 0, 8)))
	assert.False(t, ReviewWindowOpen(settled, settled.AddDate(0, 1, 0)))
}

func TestValidScore(t *testing.T) {
	assert.False(t, ValidScore(0))
	assert.True(t, ValidScore(1))
	assert.True(t, ValidScore(5))
	assert.False(t, ValidScore(6))
}
