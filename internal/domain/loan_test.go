package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

func TestOpenLoan(t *testing.T) {
	rec := &noticeRecorder{}
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))
	item := givenVideo(t, "V1", true)

	loan, err := OpenLoan(b, item, day0, rec)

	require.NoError(t, err)
	assert.Equal(t, utils.AddDays(day0, 14), loan.DueDate())
	assert.Equal(t, 14, loan.DurationDays())
	assert.Equal(t, "1.50", loan.Fee().StringFixed(2))
	assert.Equal(t, LoanStatusOnTime, loan.Status())
	assert.True(t, item.IsOnLoan())
	assert.Equal(t, 1, b.ActiveLoans())
	assert.Equal(t, []*LoanRecord{loan}, b.Loans())
	assert.Equal(t, []NoticeKind{NoticeLoanFee, NoticeLegal}, rec.kinds())
	assert.True(t, loan.Matches(b.Key(), "V1"))
}

func TestOpenLoan_PreconditionsLeaveStateUntouched(t *testing.T) {
	t.Run("item not lendable", func(t *testing.T) {
		b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))
		item := givenVideo(t, "V1", false)

		_, err := OpenLoan(b, item, day0, nil)

		assert.Equal(t, customError.ErrCodeItemNotLendable, customError.CodeOf(err))
		assert.Equal(t, 0, b.ActiveLoans())
		assert.Equal(t, 0, item.LoanCount())
	})

	t.Run("quota reached", func(t *testing.T) {
		b := givenBorrower(t, givenCategory(t, "standard", 1, "1"))
		_, err := OpenLoan(b, givenVideo(t, "V1", true), day0, nil)
		require.NoError(t, err)
		item := givenVideo(t, "V2", true)

		_, err = OpenLoan(b, item, day0, nil)

		assert.Equal(t, customError.ErrCodeQuotaExceeded, customError.CodeOf(err))
		assert.False(t, item.IsOnLoan())
		assert.Equal(t, 0, item.LoanCount())
		assert.Equal(t, 1, b.LifetimeLoans())
	})
}

func TestLoanRecord_OverdueLifecycle(t *testing.T) {
	rec := &noticeRecorder{}
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))
	loan, err := OpenLoan(b, givenVideo(t, "V1", true), day0, nil)
	require.NoError(t, err)

	assert.False(t, loan.CheckOverdue(utils.AddDays(day0, 14)), "due day itself is not overdue")
	assert.True(t, loan.CheckOverdue(utils.AddDays(day0, 15)))

	firstDay := utils.AddDays(day0, 29)
	overdue, err := loan.MarkFirstReminder(firstDay, rec)
	require.NoError(t, err)
	assert.True(t, overdue)
	assert.Equal(t, 1, b.OverdueLoans())
	assert.Equal(t, firstDay, loan.ReminderAt())

	overdue, err = loan.MarkFirstReminder(utils.AddDays(firstDay, 1), rec)
	require.NoError(t, err)
	assert.True(t, overdue)
	assert.Equal(t, 1, b.OverdueLoans(), "second mark must not count again")
	assert.False(t, loan.CheckOverdue(utils.AddDays(firstDay, 1)))

	assert.False(t, loan.Escalate(utils.AddDays(firstDay, 6), utils.DaysInWeek, rec))
	assert.True(t, loan.Escalate(utils.AddDays(firstDay, 7), utils.DaysInWeek, rec))
	assert.Equal(t, utils.AddDays(firstDay, 7), loan.ReminderAt())
	assert.Equal(t, []NoticeKind{NoticeFirstReminder, NoticeEscalation}, rec.kinds())
}

func TestLoanRecord_Close(t *testing.T) {
	rec := &noticeRecorder{}
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))
	item := givenVideo(t, "V1", true)
	loan, err := OpenLoan(b, item, day0, nil)
	require.NoError(t, err)
	_, err = loan.MarkFirstReminder(utils.AddDays(day0, 20), nil)
	require.NoError(t, err)

	require.NoError(t, loan.Close(utils.AddDays(day0, 21), rec))

	assert.False(t, item.IsOnLoan())
	assert.Equal(t, 0, b.ActiveLoans())
	assert.Equal(t, 0, b.OverdueLoans())
	assert.Empty(t, b.Loans())
	assert.Equal(t, []NoticeKind{NoticeReshelve}, rec.kinds())
	assert.True(t, b.MayBorrow())
}

func TestLoanRecord_CloseWithItemOutOfSync(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 2, "1"))
	item := givenVideo(t, "V1", true)
	loan, err := OpenLoan(b, item, day0, nil)
	require.NoError(t, err)
	item.onLoan = false

	err = loan.Close(day0, nil)

	assert.True(t, customError.IsInvariantBroken(err))
	assert.Equal(t, 1, b.ActiveLoans(), "borrower side is untouched")
}

func TestBorrower_ChangeCategoryReevaluatesLoans(t *testing.T) {
	b := givenBorrower(t, givenCategory(t, "standard", 3, "1"))
	loan, err := OpenLoan(b, givenVideo(t, "V1", true), day0, nil)
	require.NoError(t, err)
	today := utils.AddDays(day0, 10)

	rec := &noticeRecorder{}

	short := givenCategory(t, "short", 3, "0.5")
	require.NoError(t, b.ChangeCategory(short, NoDiscountCode, today, rec))

	assert.Equal(t, utils.AddDays(day0, 7), loan.DueDate())
	assert.True(t, loan.IsOverdue())
	assert.Equal(t, 1, b.OverdueLoans())
	assert.Equal(t, today, loan.ReminderAt())
	require.Equal(t, []NoticeKind{NoticeFirstReminder}, rec.kinds())
	assert.Equal(t, "V1", rec.notices[0].ItemCode)
	assert.Equal(t, today, rec.notices[0].Day)

	overdue, err := loan.MarkFirstReminder(utils.AddDays(today, 1), rec)
	require.NoError(t, err)
	assert.True(t, overdue)
	assert.Equal(t, 1, b.OverdueLoans(), "a loan is counted overdue exactly once")
	assert.Len(t, rec.notices, 1, "the first reminder is sent once")

	long := givenCategory(t, "long", 3, "2")
	require.NoError(t, b.ChangeCategory(long, NoDiscountCode, today, rec))
	assert.Equal(t, utils.AddDays(day0, 28), loan.DueDate())
	assert.False(t, loan.IsOverdue())
	assert.Equal(t, 0, b.OverdueLoans())
	assert.True(t, loan.ReminderAt().IsZero())
	assert.Len(t, rec.notices, 1)
}
