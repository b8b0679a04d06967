package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarnedPointsByGrade(t *testing.T) {
	assert.Equal(t, 250, EarnedPoints(10000, GradeBronze))
	assert.Equal(t, 500, EarnedPoints(10000, GradeSilver))
	assert.Equal(t, 750, EarnedPoints(10000, GradeGold))
	assert.Equal(t, 1000, EarnedPoints(10000, GradePlatinum))
}

func TestEarnedPointsTruncates(t *testing.T) {
	// 2.5% of 150 is 3.75, credited as 3
	assert.Equal(t, 3, EarnedPoints(150, GradeBronze))
	assert.Equal(t, 0, EarnedPoints(39, GradeBronze))
}

func TestEarnedPointsUnknownGradeFallsBack(t *testing.T) {
	assert.Equal(t, EarnedPoints(10000, GradeBronze), EarnedPoints(10000, "DIAMOND"))
}
