package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsOf(t *testing.T) {
	tests := []struct {
		grade    string
		expected int
	}{
		{"A", 12},
		{"A-", 11},
		{"B+", 10},
		{"B", 9},
		{"B-", 8},
		{"C+", 7},
		{"C", 6},
		{"C-", 5},
		{"D+", 4},
		{"D", 3},
		{"D-", 2},
		{"E", 1},
		{"X", 0},
		{"", 0},
		{"a", 0}, // grades are case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.expected, PointsOf(tt.grade))
		})
	}
}

func TestPointsOf_StrictlyDecreasing(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		assert.Greater(t, PointsOf(all[i-1]), PointsOf(all[i]),
			"%s should outrank %s", all[i-1], all[i])
	}
}

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		required string
		expected bool
	}{
		{"exact match", "B+", "B+", true},
		{"above minimum", "A", "C", true},
		{"below minimum", "C", "B", false},
		{"unknown grade never qualifies", "X", "E", false},
		{"unknown requirement always met", "E", "X", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MeetsMinimum(tt.got, tt.required))
		})
	}
}

func TestPerformanceLevel(t *testing.T) {
	tests := []struct {
		grade    string
		expected string
	}{
		{"A", "excellent"},
		{"A-", "excellent"},
		{"B+", "very good"},
		{"B", "good"},
		{"B-", "good"},
		{"C+", "average"},
		{"C", "average"},
		{"C-", "below average"},
		{"D+", "poor"},
		{"D", "poor"},
		{"D-", "poor"},
		{"E", "poor"},
		{"??", "average"},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.expected, PerformanceLevel(tt.grade))
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, g := range All() {
		assert.True(t, IsValid(g), g)
	}
	assert.False(t, IsValid("F"))
	assert.False(t, IsValid(""))
}
