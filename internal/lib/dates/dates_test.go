package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMonthWindow проверяет построение окна поиска для месяца
func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name          string
		year          int
		month         int
		expectedError bool
		outboundFrom  time.Time
		outboundTo    time.Time
		inboundFrom   time.Time
		inboundTo     time.Time
	}{
		{
			name:         "may 2025",
			year:         2025,
			month:        5,
			outboundFrom: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			outboundTo:   time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
			inboundFrom:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			inboundTo:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:         "december wraps into next year",
			year:         2025,
			month:        12,
			outboundFrom: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			outboundTo:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			inboundFrom:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			inboundTo:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:         "february in leap year",
			year:         2024,
			month:        2,
			outboundFrom: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			outboundTo:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			inboundFrom:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			inboundTo:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "month out of range",
			year:          2025,
			month:         13,
			expectedError: true,
		},
		{
			name:          "zero month",
			year:          2025,
			month:         0,
			expectedError: true,
		},
		{
			name:          "zero year",
			year:          0,
			month:         5,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := MonthWindow(tt.year, tt.month)

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.outboundFrom, window.OutboundFrom)
			assert.Equal(t, tt.outboundTo, window.OutboundTo)
			assert.Equal(t, tt.inboundFrom, window.InboundFrom)
			assert.Equal(t, tt.inboundTo, window.InboundTo)
		})
	}
}

// TestParseMonth проверяет разбор строки формата 2006-01
func TestParseMonth(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedError bool
		year          int
		month         int
	}{
		{name: "valid month", input: "2025-05", year: 2025, month: 5},
		{name: "december", input: "2025-12", year: 2025, month: 12},
		{name: "missing month part", input: "2025", expectedError: true},
		{name: "garbage", input: "next summer", expectedError: true},
		{name: "month out of range", input: "2025-13", expectedError: true},
		{name: "empty string", input: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := ParseMonth(tt.input)

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, year)
			assert.Equal(t, tt.month, month)
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2025, 5))
	assert.Equal(t, 30, DaysIn(2025, 6))
	assert.Equal(t, 28, DaysIn(2025, 2))
	assert.Equal(t, 29, DaysIn(2024, 2))
}

func TestFirstOfNextMonth(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "middle of month",
			now:      time.Date(2025, 5, 14, 16, 30, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "december wraps year",
			now:      time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC),
			expected: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "first day of month",
			now:      time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FirstOfNextMonth(tt.now))
		})
	}
}
