package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type noticeRecorder struct {
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) { r.notices = append(r.notices, n) }

func (r *noticeRecorder) kinds() []NoticeKind {
	kinds := make([]NoticeKind, 0, len(r.notices))
	for _, n := range r.notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func givenCategory(t *testing.T, name string, maxLoans int, durationMultiplier string) *BorrowerCategory {
	t.Helper()
	cat, err := NewBorrowerCategory(name, CategoryPolicy{
		MaxLoans:           maxLoans,
		AnnualFee:          decimal.NewFromInt(25),
		DurationMultiplier: decimal.RequireFromString(durationMultiplier),
		FeeMultiplier:      decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	return cat
}

func givenVideo(t *testing.T, code string, lendable bool) *Item {
	t.Helper()
	genre, err := NewGenre("drama")
	require.NoError(t, err)
	loc, err := NewLocation("room1", "shelf1")
	require.NoError(t, err)
	item, err := NewItem(ItemInfo{Code: code, Title: "title " + code, Author: "author", Year: "2001"},
		genre, loc, Video{Length: 120, LegalNotice: "no public screening"})
	require.NoError(t, err)
	if lendable {
		require.NoError(t, item.MakeLendable())
	}
	return item
}

func givenBorrower(t *testing.T, cat *BorrowerCategory) *Borrower {
	t.Helper()
	b, err := NewBorrower(BorrowerKey{LastName: "Doe", FirstName: "Jane"}, "1 main street", cat, NoDiscountCode, day0, 365)
	require.NoError(t, err)
	return b
}
