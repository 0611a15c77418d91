package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

// Loan states
const (
	LoanStatusOnTime  = "on_time"
	LoanStatusOverdue = "overdue"
)

// LoanRecord binds one borrower to one item between the loan date and the due date.
type LoanRecord struct {
	id         uuid.UUID
	borrower   *Borrower
	item       *Item
	loanDate   time.Time
	dueDate    time.Time
	overdue    bool
	reminderAt time.Time
}

// OpenLoan lends item to borrower on today. All preconditions are checked before any
// mutation; the item is lent before the borrower records the loan, and the item is
// rolled back if the borrower side fails.
func OpenLoan(borrower *Borrower, item *Item, today time.Time, n Notifier) (*LoanRecord, error) {
	if borrower == nil || item == nil {
		return nil, customError.WrapInvalidArgument("loan requires a borrower and an item")
	}
	if err := item.canLend(); err != nil {
		return nil, err
	}
	if err := borrower.CheckMayBorrow(); err != nil {
		return nil, err
	}

	today = utils.StartOfDay(today)
	loan := &LoanRecord{
		id:       uuid.New(),
		borrower: borrower,
		item:     item,
		loanDate: today,
		dueDate:  borrower.DueDateFor(today, item.NominalDuration()),
	}

	if err := item.lend(); err != nil {
		return nil, err
	}
	if err := borrower.recordNewLoan(loan); err != nil {
		item.cancelLend()
		return nil, err
	}

	notify(n, Notice{
		Kind:     NoticeLoanFee,
		ItemCode: item.Code(),
		Borrower: borrower.Key(),
		Message:  fmt.Sprintf("fee for %q: %s", item.Info().Title, loan.Fee().StringFixed(2)),
		Day:      today,
	})
	if video, ok := item.Details().(Video); ok {
		notify(n, Notice{
			Kind:     NoticeLegal,
			ItemCode: item.Code(),
			Borrower: borrower.Key(),
			Message:  video.LegalNotice,
			Day:      today,
		})
	}
	return loan, nil
}

func (l *LoanRecord) ID() uuid.UUID         { return l.id }
func (l *LoanRecord) Borrower() *Borrower   { return l.borrower }
func (l *LoanRecord) Item() *Item           { return l.item }
func (l *LoanRecord) LoanDate() time.Time   { return l.loanDate }
func (l *LoanRecord) DueDate() time.Time    { return l.dueDate }
func (l *LoanRecord) IsOverdue() bool       { return l.overdue }
func (l *LoanRecord) ReminderAt() time.Time { return l.reminderAt }

func (l *LoanRecord) Status() string {
	if l.overdue {
		return LoanStatusOverdue
	}
	return LoanStatusOnTime
}

// Fee is the item's nominal fee scaled by the borrower's category.
func (l *LoanRecord) Fee() decimal.Decimal {
	return l.borrower.FeeFor(l.item.NominalFee())
}

// DurationDays is the number of days between loan date and due date.
func (l *LoanRecord) DurationDays() int {
	return utils.DaysBetween(l.loanDate, l.dueDate)
}

// Matches reports whether this record binds the given borrower and item.
func (l *LoanRecord) Matches(key BorrowerKey, code string) bool {
	return l.borrower.Key() == key && l.item.Code() == code
}

// CheckOverdue reports a first-time overdue detection without mutating state.
func (l *LoanRecord) CheckOverdue(today time.Time) bool {
	if l.overdue {
		return false
	}
	return utils.IsDateOverdue(l.dueDate, today)
}

// MarkFirstReminder flags the loan overdue and counts it on the borrower. Only the
// first call has an effect; it returns the overdue flag.
func (l *LoanRecord) MarkFirstReminder(today time.Time, n Notifier) (bool, error) {
	if l.overdue {
		return true, nil
	}
	if err := l.borrower.markOverdue(); err != nil {
		return false, err
	}
	l.overdue = true
	l.reminderAt = utils.StartOfDay(today)
	l.notifyFirstReminder(n)
	return l.overdue, nil
}

func (l *LoanRecord) notifyFirstReminder(n Notifier) {
	notify(n, Notice{
		Kind:     NoticeFirstReminder,
		ItemCode: l.item.Code(),
		Borrower: l.borrower.Key(),
		Message:  fmt.Sprintf("%q was due on %s", l.item.Info().Title, l.dueDate.Format(time.DateOnly)),
		Day:      l.reminderAt,
	})
}

// Escalate re-notifies an overdue loan once intervalDays have elapsed since the last reminder.
func (l *LoanRecord) Escalate(today time.Time, intervalDays int, n Notifier) bool {
	if !l.overdue {
		return false
	}
	if !utils.IsReminderDue(l.reminderAt, today, intervalDays) {
		return false
	}
	l.reminderAt = utils.StartOfDay(today)
	notify(n, Notice{
		Kind:     NoticeEscalation,
		ItemCode: l.item.Code(),
		Borrower: l.borrower.Key(),
		Message:  fmt.Sprintf("%q is still overdue since %s", l.item.Info().Title, l.dueDate.Format(time.DateOnly)),
		Day:      l.reminderAt,
	})
	return true
}

// reevaluateForCategoryChange recomputes the due date under the borrower's current
// category and re-runs the overdue check. The caller adjusts the overdue counter.
func (l *LoanRecord) reevaluateForCategoryChange(today time.Time) (wasOverdue, isOverdue bool) {
	wasOverdue = l.overdue
	l.overdue = false
	l.dueDate = l.borrower.DueDateFor(l.loanDate, l.item.NominalDuration())
	if l.CheckOverdue(today) {
		l.overdue = true
		if !wasOverdue {
			l.reminderAt = utils.StartOfDay(today)
		}
	} else {
		l.reminderAt = time.Time{}
	}
	return wasOverdue, l.overdue
}

// Close returns the item: the borrower side is released first, then the item.
// An item-side failure after the borrower side succeeded is an invariant violation;
// the borrower side is restored before it is reported.
func (l *LoanRecord) Close(today time.Time, n Notifier) error {
	if err := l.borrower.canRecordReturn(l.overdue); err != nil {
		return err
	}
	if err := l.item.canReturn(); err != nil {
		return customError.InvariantBroken("loan %s: item out of sync with its loan record: %v", l, err)
	}
	if err := l.borrower.releaseLoan(l); err != nil {
		return err
	}
	if err := l.item.returnItem(); err != nil {
		l.borrower.restoreLoan(l)
		return customError.InvariantBroken("loan %s: item return failed after borrower release: %v", l, err)
	}
	notify(n, Notice{
		Kind:     NoticeReshelve,
		ItemCode: l.item.Code(),
		Borrower: l.borrower.Key(),
		Message:  fmt.Sprintf("item %q ready to be reshelved at %s", l.item.Info().Title, l.item.Location()),
		Day:      utils.StartOfDay(today),
	})
	return nil
}

func (l *LoanRecord) String() string {
	s := fmt.Sprintf("%q by %q on %s until %s", l.item.Code(), l.borrower.Key(),
		l.loanDate.Format(time.DateOnly), l.dueDate.Format(time.DateOnly))
	if l.overdue {
		s += " (overdue)"
	}
	return s
}
