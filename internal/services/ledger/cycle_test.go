package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationYear(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{
			name:     "after july boundary falls in current year",
			now:      time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC),
			expected: 2025,
		},
		{
			name:     "before july boundary falls in previous year",
			now:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			expected: 2024,
		},
		{
			name:     "boundary day starts the new year",
			now:      time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			expected: 2025,
		},
		{
			name:     "instant before the boundary belongs to the old year",
			now:      time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
			expected: 2024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplicationYear(tt.now, time.July, 1))
		})
	}
}

func TestApplicationYearCustomBoundary(t *testing.T) {
	// January 1 boundary degenerates to the calendar year
	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2025, ApplicationYear(now, time.January, 1))
}

func TestCycleEnd(t *testing.T) {
	end := CycleEnd(2024, time.July, 1, time.UTC)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), end)

	// Everything inside the cycle is before its end
	inside := time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)
	assert.True(t, inside.Before(end))
	assert.Equal(t, 2024, ApplicationYear(inside, time.July, 1))
}
