package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/lending-registry/pkg/errors"
)

func TestNewItem_KindValidation(t *testing.T) {
	genre, _ := NewGenre("g")
	loc, _ := NewLocation("r", "s")
	info := ItemInfo{Code: "C1", Title: "T", Author: "A", Year: "1999"}

	tests := []struct {
		name    string
		details ItemDetails
		wantErr bool
	}{
		{name: "book with pages", details: Book{Pages: 100}},
		{name: "book without pages", details: Book{Pages: 0}, wantErr: true},
		{name: "audio with classification", details: Audio{Classification: "jazz"}},
		{name: "audio without classification", details: Audio{}, wantErr: true},
		{name: "video with length and notice", details: Video{Length: 90, LegalNotice: "private use"}},
		{name: "video without length", details: Video{LegalNotice: "private use"}, wantErr: true},
		{name: "video without legal notice", details: Video{Length: 90}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem(info, genre, loc, tt.details)
			if tt.wantErr {
				assert.True(t, customError.IsInvalidOperation(err))
				assert.Nil(t, item)
				return
			}
			require.NoError(t, err)
			assert.False(t, item.IsLendable(), "items start consultable only")
			assert.False(t, item.IsOnLoan())
			assert.True(t, item.Invariant())
		})
	}
}

func TestItem_NominalPolicyPerKind(t *testing.T) {
	assert.Equal(t, 42, Book{Pages: 1}.NominalDuration())
	assert.Equal(t, 28, Audio{Classification: "x"}.NominalDuration())
	assert.Equal(t, 14, Video{Length: 1, LegalNotice: "x"}.NominalDuration())
	assert.Equal(t, "0.50", Book{}.NominalFee().StringFixed(2))
	assert.Equal(t, "1.00", Audio{}.NominalFee().StringFixed(2))
	assert.Equal(t, "1.50", Video{}.NominalFee().StringFixed(2))
}

func TestItem_LendableToggles(t *testing.T) {
	item := givenVideo(t, "V1", false)

	err := item.MakeConsultableOnly()
	assert.Equal(t, customError.ErrCodeItemNotLendable, customError.CodeOf(err))

	require.NoError(t, item.MakeLendable())
	assert.True(t, item.IsLendable())

	err = item.MakeLendable()
	assert.Equal(t, customError.ErrCodeItemAlreadyLendable, customError.CodeOf(err))

	require.NoError(t, item.lend())
	err = item.MakeConsultableOnly()
	assert.Equal(t, customError.ErrCodeItemAlreadyLent, customError.CodeOf(err))
	assert.True(t, item.IsLendable())
	assert.True(t, item.Invariant())
}

func TestItem_LendAndReturn(t *testing.T) {
	item := givenVideo(t, "V1", true)

	require.NoError(t, item.lend())
	assert.True(t, item.IsOnLoan())
	assert.Equal(t, 1, item.LoanCount())
	assert.Equal(t, 1, item.Genre().LoanCount())

	err := item.lend()
	assert.Equal(t, customError.ErrCodeItemAlreadyLent, customError.CodeOf(err))
	assert.Equal(t, 1, item.LoanCount())

	require.NoError(t, item.returnItem())
	assert.False(t, item.IsOnLoan())
	assert.True(t, item.Invariant())

	err = item.returnItem()
	assert.Equal(t, customError.ErrCodeItemNotLent, customError.CodeOf(err))

	require.NoError(t, item.lend())
	assert.Equal(t, 2, item.LoanCount(), "loan count never decreases across loans")
}

func TestItem_LendRequiresLendable(t *testing.T) {
	item := givenVideo(t, "V1", false)

	err := item.lend()

	assert.True(t, customError.IsInvalidOperation(err))
	assert.Equal(t, 0, item.LoanCount())
	assert.Equal(t, 0, item.Genre().LoanCount())
}

func TestItem_CancelLend(t *testing.T) {
	item := givenVideo(t, "V1", true)
	require.NoError(t, item.lend())

	item.cancelLend()

	assert.False(t, item.IsOnLoan())
	assert.Equal(t, 0, item.LoanCount())
	assert.Equal(t, 0, item.Genre().LoanCount())
}
