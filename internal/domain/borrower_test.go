package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

func TestNewBorrower_DiscountCode(t *testing.T) {
	plain := givenCategory(t, "standard", 2, "1")
	reduced, err := NewBorrowerCategory("student", CategoryPolicy{
		MaxLoans:             2,
		AnnualFee:            decimal.NewFromInt(10),
		DurationMultiplier:   decimal.NewFromInt(1),
		FeeMultiplier:        decimal.RequireFromString("0.5"),
		RequiresDiscountCode: true,
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		category *BorrowerCategory
		code     DiscountCode
		wantCode string
	}{
		{name: "plain without code", category: plain, code: NoDiscountCode},
		{name: "plain with code", category: plain, code: 42, wantCode: customError.ErrCodeDiscountCodeUnexpected},
		{name: "reduced with code", category: reduced, code: 42},
		{name: "reduced without code", category: reduced, code: NoDiscountCode, wantCode: customError.ErrCodeDiscountCodeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBorrower(BorrowerKey{LastName: "Doe", FirstName: "Jane"}, "addr", tt.category, tt.code, day0, 365)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, customError.CodeOf(err))
				assert.True(t, customError.IsInvalidOperation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, utils.AddDays(day0, 365), b.RenewalAt())
			assert.True(t, b.MayBorrow())
		})
	}
}

func TestNewBorrower_RequiresNames(t *testing.T) {
	cat := givenCategory(t, "standard", 2, "1")

	_, err := NewBorrower(BorrowerKey{LastName: "", FirstName: "Jane"}, "addr", cat, NoDiscountCode, day0, 365)

	assert.Equal(t, customError.ErrCodeInvalidArgument, customError.CodeOf(err))
}

func TestBorrower_RenameRejectsBlankNames(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))

	tests := []struct {
		name string
		key  BorrowerKey
	}{
		{name: "empty last name", key: BorrowerKey{LastName: "", FirstName: "Jane"}},
		{name: "blank last name", key: BorrowerKey{LastName: " ", FirstName: "Jane"}},
		{name: "blank first name", key: BorrowerKey{LastName: "Doe", FirstName: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Rename(tt.key)

			assert.Equal(t, customError.ErrCodeInvalidArgument, customError.CodeOf(err))
			assert.Equal(t, BorrowerKey{LastName: "Doe", FirstName: "Jane"}, b.Key())
		})
	}

	require.NoError(t, b.Rename(BorrowerKey{LastName: "Doe", FirstName: "Janet"}))
	assert.Equal(t, "Janet", b.Key().FirstName)
}

func TestBorrower_CheckMayBorrow(t *testing.T) {
	cat := givenCategory(t, "standard", 1, "1")
	b := givenBorrower(t, cat)

	require.NoError(t, b.CheckMayBorrow())

	require.NoError(t, b.recordNewLoan(&LoanRecord{}))
	err := b.CheckMayBorrow()
	assert.Equal(t, customError.ErrCodeQuotaExceeded, customError.CodeOf(err))
	assert.False(t, b.MayBorrow())

	require.NoError(t, b.markOverdue())
	err = b.CheckMayBorrow()
	assert.Equal(t, customError.ErrCodeBorrowerNotAllowed, customError.CodeOf(err))
}

func TestBorrower_ZeroQuotaNeverBorrows(t *testing.T) {
	cat := givenCategory(t, "closed", 0, "1")
	b := givenBorrower(t, cat)

	assert.False(t, b.MayBorrow())
	assert.Equal(t, customError.ErrCodeQuotaExceeded, customError.CodeOf(b.CheckMayBorrow()))
}

func TestBorrower_MarkOverdueCannotExceedActive(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))

	err := b.markOverdue()

	assert.True(t, customError.IsInvariantBroken(err))
	assert.Equal(t, 0, b.OverdueLoans())
	assert.True(t, b.Invariant())
}

func TestBorrower_RecordReturn(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))

	err := b.recordReturn(false)
	assert.Equal(t, customError.ErrCodeNoActiveLoan, customError.CodeOf(err))

	require.NoError(t, b.recordNewLoan(&LoanRecord{}))
	err = b.recordReturn(true)
	assert.Equal(t, customError.ErrCodeNoActiveLoan, customError.CodeOf(err))
	assert.Equal(t, 1, b.ActiveLoans())

	require.NoError(t, b.recordReturn(false))
	assert.Equal(t, 0, b.ActiveLoans())
	assert.Equal(t, 1, b.LifetimeLoans())
}

func TestBorrower_FeeAndDueDate(t *testing.T) {
	cat, err := NewBorrowerCategory("senior", CategoryPolicy{
		MaxLoans:           3,
		AnnualFee:          decimal.Zero,
		DurationMultiplier: decimal.RequireFromString("0.5"),
		FeeMultiplier:      decimal.RequireFromString("0.33"),
	})
	require.NoError(t, err)
	b := givenBorrower(t, cat)

	assert.Equal(t, utils.AddDays(day0, 7), b.DueDateFor(day0, VideoLoanDays))
	assert.Equal(t, "0.50", b.FeeFor(VideoFee).StringFixed(2))
}

func TestBorrower_ChangeCategoryRejectsSmallerQuota(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))
	require.NoError(t, b.recordNewLoan(&LoanRecord{}))
	require.NoError(t, b.recordNewLoan(&LoanRecord{}))
	small := givenCategory(t, "small", 1, "1")

	rec := &noticeRecorder{}

	err := b.ChangeCategory(small, NoDiscountCode, day0, rec)

	assert.Equal(t, customError.ErrCodeQuotaExceeded, customError.CodeOf(err))
	assert.Equal(t, "standard", b.Category().Name())
	assert.Empty(t, rec.notices)
}

func TestBorrower_SetDiscountCode(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))

	err := b.SetDiscountCode(7)

	assert.Equal(t, customError.ErrCodeDiscountCodeUnexpected, customError.CodeOf(err))
	assert.Equal(t, NoDiscountCode, b.DiscountCode())
}
