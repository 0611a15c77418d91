package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DaysInWeek = 7
	DaysInYear = 365
)

// Clock supplies the current day. Implementations must return midnight-truncated dates.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in the configured location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return StartOfDay(time.Now().In(loc))
}

// SimulatedClock is a manually advanced clock used by tests and simulations.
type SimulatedClock struct {
	day time.Time
}

func NewSimulatedClock(start time.Time) *SimulatedClock {
	return &SimulatedClock{day: StartOfDay(start)}
}

func (c *SimulatedClock) Today() time.Time {
	return c.day
}

// Advance moves the simulated day forward by n days.
func (c *SimulatedClock) Advance(days int) {
	c.day = AddDays(c.day, days)
}

func (c *SimulatedClock) Set(day time.Time) {
	c.day = StartOfDay(day)
}

// StartOfDay truncates t to midnight, keeping its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays adds n calendar days to date.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from start to end, each read
// in its own location. Counting on UTC dates keeps DST days at 24 hours.
func DaysBetween(start, end time.Time) int {
	return int(utcDate(end).Sub(utcDate(start)).Hours() / 24)
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LoanDays scales a nominal loan duration by a category multiplier.
// Formula: round(nominalDays * multiplier), half away from zero
func LoanDays(nominalDays int, multiplier decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(nominalDays)).Mul(multiplier).Round(0).IntPart())
}

// CalculateDueDate returns loanDate + LoanDays(nominalDays, multiplier)
func CalculateDueDate(loanDate time.Time, nominalDays int, multiplier decimal.Decimal) time.Time {
	return AddDays(loanDate, LoanDays(nominalDays, multiplier))
}

// CalculateFee returns nominalFee * multiplier rounded to 2 decimal places
func CalculateFee(nominalFee, multiplier decimal.Decimal) decimal.Decimal {
	return nominalFee.Mul(multiplier).Round(2)
}

// IsDateOverdue checks if dueDate is strictly before today
func IsDateOverdue(dueDate, today time.Time) bool {
	return StartOfDay(dueDate).Before(StartOfDay(today))
}

// IsReminderDue checks whether at least intervalDays have elapsed since lastReminder
func IsReminderDue(lastReminder, today time.Time, intervalDays int) bool {
	return !StartOfDay(today).Before(AddDays(StartOfDay(lastReminder), intervalDays))
}
