package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-registry/internal/config"
	"github.com/segyhp/lending-registry/internal/domain"
	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

// LendingRegistry is the aggregate root owning every catalog and the active loans.
// It is not safe for concurrent use; LendingService serializes access to it.
type LendingRegistry struct {
	config   config.LendingConfig
	clock    utils.Clock
	notifier domain.Notifier

	genres     []*domain.Genre
	locations  []*domain.Location
	categories []*domain.BorrowerCategory

	items     []*domain.Item
	itemIndex map[string]*domain.Item

	borrowers     []*domain.Borrower
	borrowerIndex map[domain.BorrowerKey]*domain.Borrower

	loans      []*domain.LoanRecord
	kindTotals map[domain.ItemKind]int
}

// SweepReport summarizes one daily overdue sweep
type SweepReport struct {
	Day          time.Time `json:"day"`
	Checked      int       `json:"checked"`
	NewlyOverdue int       `json:"newly_overdue"`
	Escalated    int       `json:"escalated"`
}

func NewLendingRegistry(cfg config.LendingConfig, clock utils.Clock, notifier domain.Notifier) *LendingRegistry {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if notifier == nil {
		notifier = domain.NopNotifier
	}
	if cfg.ReminderIntervalDays <= 0 {
		cfg.ReminderIntervalDays = utils.DaysInWeek
	}
	if cfg.RenewalPeriodDays <= 0 {
		cfg.RenewalPeriodDays = utils.DaysInYear
	}
	return &LendingRegistry{
		config:        cfg,
		clock:         clock,
		notifier:      notifier,
		itemIndex:     make(map[string]*domain.Item),
		borrowerIndex: make(map[domain.BorrowerKey]*domain.Borrower),
		kindTotals:    make(map[domain.ItemKind]int),
	}
}

func (r *LendingRegistry) Name() string          { return r.config.RegistryName }
func (r *LendingRegistry) Today() time.Time      { return r.clock.Today() }
func (r *LendingRegistry) ReminderInterval() int { return r.config.ReminderIntervalDays }

// Borrow lends the item to the borrower. Every precondition is read before
// anything is mutated; the loan record then lends the item before the borrower
// is registered as holder.
func (r *LendingRegistry) Borrow(key domain.BorrowerKey, code string) (*domain.LoanRecord, error) {
	const op = "borrow"

	borrower, ok := r.borrowerIndex[key]
	if !ok {
		return nil, customError.WrapOperation(op, customError.WrapBorrowerNotFound(key.LastName, key.FirstName))
	}
	item, ok := r.itemIndex[code]
	if !ok {
		return nil, customError.WrapOperation(op, customError.WrapItemNotFound(code))
	}
	if err := borrower.CheckMayBorrow(); err != nil {
		return nil, customError.WrapOperation(op, err)
	}
	if !item.IsLendable() {
		return nil, customError.WrapOperation(op, customError.InvalidOperation(customError.ErrCodeItemNotLendable,
			"item %s is consultable only", code))
	}
	if item.IsOnLoan() {
		return nil, customError.WrapOperation(op, customError.InvalidOperation(customError.ErrCodeItemAlreadyLent,
			"item %s is already on loan", code))
	}

	loan, err := domain.OpenLoan(borrower, item, r.clock.Today(), r.notifier)
	if err != nil {
		return nil, customError.WrapOperation(op, err)
	}
	r.loans = append(r.loans, loan)
	r.kindTotals[item.Kind()]++
	return loan, nil
}

// ReturnItem closes the active loan binding the borrower and the item.
func (r *LendingRegistry) ReturnItem(key domain.BorrowerKey, code string) error {
	const op = "return item"

	if _, ok := r.borrowerIndex[key]; !ok {
		return customError.WrapOperation(op, customError.WrapBorrowerNotFound(key.LastName, key.FirstName))
	}
	if _, ok := r.itemIndex[code]; !ok {
		return customError.WrapOperation(op, customError.WrapItemNotFound(code))
	}
	idx := r.findLoan(key, code)
	if idx < 0 {
		return customError.WrapOperation(op, customError.WrapLoanNotFound(key.LastName, key.FirstName, code))
	}

	if err := r.loans[idx].Close(r.clock.Today(), r.notifier); err != nil {
		return customError.WrapOperation(op, err)
	}
	r.loans = append(r.loans[:idx], r.loans[idx+1:]...)
	return nil
}

// DailySweep escalates overdue loans and marks newly overdue ones.
// Each loan transitions independently.
func (r *LendingRegistry) DailySweep() (SweepReport, error) {
	const op = "daily sweep"

	today := r.clock.Today()
	report := SweepReport{Day: today}
	for _, loan := range r.loans {
		report.Checked++
		if loan.IsOverdue() {
			if loan.Escalate(today, r.config.ReminderIntervalDays, r.notifier) {
				report.Escalated++
			}
			continue
		}
		if !loan.CheckOverdue(today) {
			continue
		}
		if _, err := loan.MarkFirstReminder(today, r.notifier); err != nil {
			return report, customError.WrapOperation(op, err)
		}
		report.NewlyOverdue++
	}
	return report, nil
}

// Loans returns the active loans in creation order.
func (r *LendingRegistry) Loans() []*domain.LoanRecord {
	loans := make([]*domain.LoanRecord, len(r.loans))
	copy(loans, r.loans)
	return loans
}

func (r *LendingRegistry) LoanCount() int { return len(r.loans) }

func (r *LendingRegistry) LoanAt(i int) (*domain.LoanRecord, error) {
	if i < 0 || i >= len(r.loans) {
		return nil, indexOutOfRange("loan", i, len(r.loans))
	}
	return r.loans[i], nil
}

func (r *LendingRegistry) FindLoan(key domain.BorrowerKey, code string) (*domain.LoanRecord, error) {
	idx := r.findLoan(key, code)
	if idx < 0 {
		return nil, customError.WrapLoanNotFound(key.LastName, key.FirstName, code)
	}
	return r.loans[idx], nil
}

// LoanFee is the fee charged for the active loan of code by the borrower.
func (r *LendingRegistry) LoanFee(key domain.BorrowerKey, code string) (decimal.Decimal, error) {
	loan, err := r.FindLoan(key, code)
	if err != nil {
		return decimal.Zero, err
	}
	return loan.Fee(), nil
}

func (r *LendingRegistry) findLoan(key domain.BorrowerKey, code string) int {
	for i, loan := range r.loans {
		if loan.Matches(key, code) {
			return i
		}
	}
	return -1
}

func indexOutOfRange(what string, i, n int) error {
	return customError.WrapInvalidArgument("%s index %d out of range [0,%d)", what, i, n)
}
