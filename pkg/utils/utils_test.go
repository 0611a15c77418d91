package utils

import (
	"testing"
	"time"
	_ "time/tzdata" // Europe/Paris without a system zoneinfo

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanDays(t *testing.T) {
	tests := []struct {
		name       string
		nominal    int
		multiplier decimal.Decimal
		expected   int
	}{
		{
			name:       "unit multiplier",
			nominal:    42,
			multiplier: decimal.NewFromInt(1),
			expected:   42,
		},
		{
			name:       "double duration",
			nominal:    14,
			multiplier: decimal.NewFromInt(2),
			expected:   28,
		},
		{
			name:       "rounds half away from zero",
			nominal:    7,
			multiplier: decimal.NewFromFloat(0.5),
			expected:   4, // 3.5 -> 4
		},
		{
			name:       "rounds down below half",
			nominal:    28,
			multiplier: decimal.NewFromFloat(0.33),
			expected:   9, // 9.24 -> 9
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LoanDays(tt.nominal, tt.multiplier))
		})
	}
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		nominal    int
		multiplier decimal.Decimal
		expected   time.Time
	}{
		{
			name:       "video for a normal borrower",
			nominal:    14,
			multiplier: decimal.NewFromInt(1),
			expected:   baseDate.AddDate(0, 0, 14),
		},
		{
			name:       "book with a shortened duration",
			nominal:    42,
			multiplier: decimal.NewFromFloat(0.5),
			expected:   baseDate.AddDate(0, 0, 21),
		},
		{
			name:       "crosses a month boundary",
			nominal:    28,
			multiplier: decimal.NewFromFloat(1.5),
			expected:   time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDueDate(baseDate, tt.nominal, tt.multiplier)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCalculateFee(t *testing.T) {
	tests := []struct {
		name       string
		nominal    decimal.Decimal
		multiplier decimal.Decimal
		expected   decimal.Decimal
	}{
		{
			name:       "standard fee",
			nominal:    decimal.NewFromFloat(1.5),
			multiplier: decimal.NewFromInt(1),
			expected:   decimal.NewFromFloat(1.5),
		},
		{
			name:       "reduced fee",
			nominal:    decimal.NewFromFloat(0.5),
			multiplier: decimal.NewFromFloat(0.5),
			expected:   decimal.NewFromFloat(0.25),
		},
		{
			name:       "free",
			nominal:    decimal.NewFromInt(1),
			multiplier: decimal.Zero,
			expected:   decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateFee(tt.nominal, tt.multiplier)
			assert.True(t, result.Equal(tt.expected), "Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestIsDateOverdue(t *testing.T) {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsDateOverdue(due, due.AddDate(0, 0, -1)))
	assert.False(t, IsDateOverdue(due, due), "due today is not overdue")
	assert.True(t, IsDateOverdue(due, due.AddDate(0, 0, 1)))
}

func TestIsReminderDue(t *testing.T) {
	reminder := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsReminderDue(reminder, reminder, 7))
	assert.False(t, IsReminderDue(reminder, reminder.AddDate(0, 0, 6), 7))
	assert.True(t, IsReminderDue(reminder, reminder.AddDate(0, 0, 7), 7))
	assert.True(t, IsReminderDue(reminder, reminder.AddDate(0, 0, 30), 7))
}

func TestSimulatedClock(t *testing.T) {
	clock := NewSimulatedClock(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), clock.Today())

	clock.Advance(29)
	assert.Equal(t, time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), clock.Today())
	assert.Equal(t, 29, DaysBetween(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), clock.Today()))
}

func TestDaysBetween_AcrossDaylightSaving(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	tests := []struct {
		name     string
		start    time.Time
		days     int
		expected int
	}{
		{name: "spring forward", start: time.Date(2024, 3, 20, 0, 0, 0, 0, paris), days: 14, expected: 14},
		{name: "fall back", start: time.Date(2024, 10, 20, 0, 0, 0, 0, paris), days: 14, expected: 14},
		{name: "same day", start: time.Date(2024, 3, 31, 0, 0, 0, 0, paris), days: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.start, AddDays(tt.start, tt.days)))
		})
	}
}
