package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

// BorrowerKey identifies a borrower. Matching is exact and case-sensitive.
type BorrowerKey struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

func (k BorrowerKey) String() string {
	return k.LastName + " " + k.FirstName
}

// DiscountCode is an opaque reduction code. NoDiscountCode means none was supplied.
type DiscountCode int

const NoDiscountCode DiscountCode = 0

// CheckDiscountCode verifies that code is supplied exactly when the category requires one.
func CheckDiscountCode(category *BorrowerCategory, code DiscountCode) error {
	if category.RequiresDiscountCode() && code == NoDiscountCode {
		return customError.InvalidOperation(customError.ErrCodeDiscountCodeRequired,
			"category %s requires a discount code", category.Name())
	}
	if !category.RequiresDiscountCode() && code != NoDiscountCode {
		return customError.InvalidOperation(customError.ErrCodeDiscountCodeUnexpected,
			"category %s does not use discount codes", category.Name())
	}
	return nil
}

// Borrower owns its quota and overdue bookkeeping.
// Invariant: overdue <= active <= category max loans.
type Borrower struct {
	key           BorrowerKey
	address       string
	category      *BorrowerCategory
	discountCode  DiscountCode
	enrolledAt    time.Time
	renewalAt     time.Time
	activeLoans   int
	overdueLoans  int
	lifetimeLoans int
	loans         []*LoanRecord
}

// NewBorrower enrolls a borrower on the given day.
func NewBorrower(key BorrowerKey, address string, category *BorrowerCategory, code DiscountCode,
	enrolledAt time.Time, renewalPeriodDays int) (*Borrower, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, customError.WrapInvalidArgument("borrower %s: category is required", key)
	}
	if err := CheckDiscountCode(category, code); err != nil {
		return nil, err
	}
	enrolledAt = utils.StartOfDay(enrolledAt)
	return &Borrower{
		key:          key,
		address:      address,
		category:     category,
		discountCode: code,
		enrolledAt:   enrolledAt,
		renewalAt:    utils.AddDays(enrolledAt, renewalPeriodDays),
	}, nil
}

func (b *Borrower) Key() BorrowerKey            { return b.key }
func (b *Borrower) Address() string             { return b.address }
func (b *Borrower) Category() *BorrowerCategory { return b.category }
func (b *Borrower) DiscountCode() DiscountCode  { return b.discountCode }
func (b *Borrower) EnrolledAt() time.Time       { return b.enrolledAt }
func (b *Borrower) RenewalAt() time.Time        { return b.renewalAt }
func (b *Borrower) ActiveLoans() int            { return b.activeLoans }
func (b *Borrower) OverdueLoans() int           { return b.overdueLoans }
func (b *Borrower) LifetimeLoans() int          { return b.lifetimeLoans }
func (b *Borrower) HasActiveLoans() bool        { return b.activeLoans > 0 }
func (b *Borrower) MaxLoans() int               { return b.category.MaxLoans() }
func (b *Borrower) SetAddress(address string)   { b.address = address }

// Rename re-keys the borrower. Uniqueness is enforced by the registry.
func (b *Borrower) Rename(key BorrowerKey) error {
	if err := checkKey(key); err != nil {
		return err
	}
	b.key = key
	return nil
}

func checkKey(key BorrowerKey) error {
	if strings.TrimSpace(key.LastName) == "" || strings.TrimSpace(key.FirstName) == "" {
		return customError.WrapInvalidArgument("borrower last and first names are required")
	}
	return nil
}

func (b *Borrower) attachRestoredLoan(l *LoanRecord) { b.loans = append(b.loans, l) }

// Loans returns a copy of the borrower's active loan records.
func (b *Borrower) Loans() []*LoanRecord {
	loans := make([]*LoanRecord, len(b.loans))
	copy(loans, b.loans)
	return loans
}

// MayBorrow is true iff nothing is overdue and the quota is not reached.
func (b *Borrower) MayBorrow() bool {
	return b.overdueLoans == 0 && b.activeLoans < b.category.MaxLoans()
}

// CheckMayBorrow explains why MayBorrow is false.
func (b *Borrower) CheckMayBorrow() error {
	if b.overdueLoans > 0 {
		return customError.InvalidOperation(customError.ErrCodeBorrowerNotAllowed,
			"borrower %s has %d overdue loan(s)", b.key, b.overdueLoans)
	}
	if b.activeLoans >= b.category.MaxLoans() {
		return customError.InvalidOperation(customError.ErrCodeQuotaExceeded,
			"borrower %s reached the %s quota of %d loan(s)", b.key, b.category.Name(), b.category.MaxLoans())
	}
	return nil
}

// Invariant reports whether overdue <= active <= max loans holds.
func (b *Borrower) Invariant() bool {
	if b.overdueLoans < 0 || b.overdueLoans > b.activeLoans {
		return false
	}
	if b.category != nil && b.activeLoans > b.category.MaxLoans() {
		return false
	}
	return true
}

func (b *Borrower) checkInvariant() error {
	if !b.Invariant() {
		return customError.InvariantBroken("borrower %s", b)
	}
	return nil
}

// DueDateFor returns loanDate + round(nominalDuration * duration multiplier).
func (b *Borrower) DueDateFor(loanDate time.Time, nominalDuration int) time.Time {
	return utils.CalculateDueDate(loanDate, nominalDuration, b.category.DurationMultiplier())
}

// FeeFor returns nominalFee * fee multiplier.
func (b *Borrower) FeeFor(nominalFee decimal.Decimal) decimal.Decimal {
	return utils.CalculateFee(nominalFee, b.category.FeeMultiplier())
}

// recordNewLoan counts a new loan and adds it to the active set.
func (b *Borrower) recordNewLoan(loan *LoanRecord) error {
	if err := b.CheckMayBorrow(); err != nil {
		return err
	}
	b.lifetimeLoans++
	b.activeLoans++
	b.loans = append(b.loans, loan)
	if err := b.checkInvariant(); err != nil {
		b.cancelNewLoan(loan)
		return err
	}
	return nil
}

func (b *Borrower) cancelNewLoan(loan *LoanRecord) {
	if b.removeLoan(loan) {
		b.lifetimeLoans--
		b.activeLoans--
	}
}

// markOverdue counts one more overdue loan.
func (b *Borrower) markOverdue() error {
	if b.overdueLoans+1 > b.activeLoans {
		return customError.InvariantBroken("borrower %s: overdue count would exceed %d active loan(s)", b.key, b.activeLoans)
	}
	b.overdueLoans++
	return b.checkInvariant()
}

func (b *Borrower) canRecordReturn(wasOverdue bool) error {
	if b.activeLoans == 0 {
		return customError.InvalidOperation(customError.ErrCodeNoActiveLoan, "borrower %s has no active loan", b.key)
	}
	if wasOverdue && b.overdueLoans == 0 {
		return customError.InvalidOperation(customError.ErrCodeNoActiveLoan, "borrower %s has no overdue loan", b.key)
	}
	return nil
}

// recordReturn decrements the active count, and the overdue count for a late return.
func (b *Borrower) recordReturn(wasOverdue bool) error {
	if err := b.canRecordReturn(wasOverdue); err != nil {
		return err
	}
	b.activeLoans--
	if wasOverdue {
		b.overdueLoans--
	}
	return b.checkInvariant()
}

// releaseLoan records the return of loan and drops it from the active set.
func (b *Borrower) releaseLoan(loan *LoanRecord) error {
	if err := b.recordReturn(loan.overdue); err != nil {
		return err
	}
	b.removeLoan(loan)
	return nil
}

// restoreLoan undoes releaseLoan.
func (b *Borrower) restoreLoan(loan *LoanRecord) {
	b.activeLoans++
	if loan.overdue {
		b.overdueLoans++
	}
	b.loans = append(b.loans, loan)
}

func (b *Borrower) removeLoan(loan *LoanRecord) bool {
	for i, l := range b.loans {
		if l == loan {
			b.loans = append(b.loans[:i], b.loans[i+1:]...)
			return true
		}
	}
	return false
}

// SetDiscountCode replaces the discount code of a borrower whose category uses codes.
func (b *Borrower) SetDiscountCode(code DiscountCode) error {
	if !b.category.RequiresDiscountCode() {
		return customError.InvalidOperation(customError.ErrCodeDiscountCodeUnexpected,
			"category %s does not use discount codes", b.category.Name())
	}
	if code == NoDiscountCode {
		return customError.InvalidOperation(customError.ErrCodeDiscountCodeRequired,
			"category %s requires a discount code", b.category.Name())
	}
	b.discountCode = code
	return nil
}

type loanBackup struct {
	dueDate    time.Time
	overdue    bool
	reminderAt time.Time
}

// ChangeCategory moves the borrower to category and re-evaluates every active loan's
// due date and overdue status under it. A loan that becomes overdue gets its first
// reminder through n. On failure nothing is changed and nothing is sent.
func (b *Borrower) ChangeCategory(category *BorrowerCategory, code DiscountCode, today time.Time, n Notifier) error {
	if category == nil {
		return customError.WrapInvalidArgument("borrower %s: category is required", b.key)
	}
	if err := CheckDiscountCode(category, code); err != nil {
		return err
	}
	if b.activeLoans > category.MaxLoans() {
		return customError.InvalidOperation(customError.ErrCodeQuotaExceeded,
			"borrower %s holds %d loan(s), category %s allows %d", b.key, b.activeLoans, category.Name(), category.MaxLoans())
	}

	oldCategory, oldCode, oldOverdue := b.category, b.discountCode, b.overdueLoans
	backups := make([]loanBackup, len(b.loans))
	for i, l := range b.loans {
		backups[i] = loanBackup{dueDate: l.dueDate, overdue: l.overdue, reminderAt: l.reminderAt}
	}

	b.category = category
	b.discountCode = code
	var newlyOverdue []*LoanRecord
	for _, l := range b.loans {
		wasOverdue, isOverdue := l.reevaluateForCategoryChange(today)
		switch {
		case wasOverdue && !isOverdue:
			b.overdueLoans--
		case !wasOverdue && isOverdue:
			b.overdueLoans++
			newlyOverdue = append(newlyOverdue, l)
		}
	}

	if err := b.checkInvariant(); err != nil {
		b.category, b.discountCode, b.overdueLoans = oldCategory, oldCode, oldOverdue
		for i, l := range b.loans {
			l.dueDate, l.overdue, l.reminderAt = backups[i].dueDate, backups[i].overdue, backups[i].reminderAt
		}
		return err
	}
	for _, l := range newlyOverdue {
		l.notifyFirstReminder(n)
	}
	return nil
}

func (b *Borrower) String() string {
	s := fmt.Sprintf("%s %s %s, (active %d) (overdue %d)", b.key, b.address, b.category, b.activeLoans, b.overdueLoans)
	if b.discountCode != NoDiscountCode {
		s += fmt.Sprintf(" (discount %d)", b.discountCode)
	}
	return s
}
