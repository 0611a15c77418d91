package service

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-registry/internal/domain"
	customError "github.com/segyhp/lending-registry/pkg/errors"
)

// RegisterBorrower enrolls a borrower today and returns the annual fee due.
func (r *LendingRegistry) RegisterBorrower(key domain.BorrowerKey, address, categoryName string,
	code domain.DiscountCode) (*domain.Borrower, decimal.Decimal, error) {
	const op = "register borrower"

	if _, ok := r.borrowerIndex[key]; ok {
		return nil, decimal.Zero, customError.WrapOperation(op,
			customError.WrapDuplicate(customError.ErrCodeDuplicateBorrower, "borrower", key.String()))
	}
	category := r.findCategory(categoryName)
	if category == nil {
		return nil, decimal.Zero, customError.WrapOperation(op, customError.WrapCategoryNotFound(categoryName))
	}
	b, err := domain.NewBorrower(key, address, category, code, r.clock.Today(), r.config.RenewalPeriodDays)
	if err != nil {
		return nil, decimal.Zero, customError.WrapOperation(op, err)
	}

	r.borrowers = append(r.borrowers, b)
	r.borrowerIndex[key] = b
	return b, category.AnnualFee(), nil
}

// UnregisterBorrower fails while the borrower holds a loan.
func (r *LendingRegistry) UnregisterBorrower(key domain.BorrowerKey) error {
	const op = "unregister borrower"

	b, ok := r.borrowerIndex[key]
	if !ok {
		return customError.WrapOperation(op, customError.WrapBorrowerNotFound(key.LastName, key.FirstName))
	}
	if b.HasActiveLoans() {
		return customError.WrapOperation(op, customError.WrapStillReferenced("borrower", key.String(), "active loan"))
	}
	r.borrowers = removeFrom(r.borrowers, b)
	delete(r.borrowerIndex, key)
	return nil
}

// UpdateBorrower changes the address and, when newKey differs, re-keys the borrower.
func (r *LendingRegistry) UpdateBorrower(key, newKey domain.BorrowerKey, address string) error {
	const op = "update borrower"

	b, ok := r.borrowerIndex[key]
	if !ok {
		return customError.WrapOperation(op, customError.WrapBorrowerNotFound(key.LastName, key.FirstName))
	}
	if newKey != key {
		if _, taken := r.borrowerIndex[newKey]; taken {
			return customError.WrapOperation(op,
				customError.WrapDuplicate(customError.ErrCodeDuplicateBorrower, "borrower", newKey.String()))
		}
		if err := b.Rename(newKey); err != nil {
			return customError.WrapOperation(op, err)
		}
		delete(r.borrowerIndex, key)
		r.borrowerIndex[newKey] = b
	}
	b.SetAddress(address)
	return nil
}

// ChangeBorrowerCategory moves the borrower to another category and re-evaluates
// every active loan under it.
func (r *LendingRegistry) ChangeBorrowerCategory(key domain.BorrowerKey, categoryName string, code domain.DiscountCode) error {
	const op = "change borrower category"

	b, ok := r.borrowerIndex[key]
	if !ok {
		return customError.WrapOperation(op, customError.WrapBorrowerNotFound(key.LastName, key.FirstName))
	}
	category := r.findCategory(categoryName)
	if category == nil {
		return customError.WrapOperation(op, customError.WrapCategoryNotFound(categoryName))
	}
	return customError.WrapOperation(op, b.ChangeCategory(category, code, r.clock.Today(), r.notifier))
}

func (r *LendingRegistry) ChangeDiscountCode(key domain.BorrowerKey, code domain.DiscountCode) error {
	b, ok := r.borrowerIndex[key]
	if !ok {
		return customError.WrapOperation("change discount code", customError.WrapBorrowerNotFound(key.LastName, key.FirstName))
	}
	return customError.WrapOperation("change discount code", b.SetDiscountCode(code))
}

func (r *LendingRegistry) Borrower(key domain.BorrowerKey) (*domain.Borrower, error) {
	if b, ok := r.borrowerIndex[key]; ok {
		return b, nil
	}
	return nil, customError.WrapBorrowerNotFound(key.LastName, key.FirstName)
}

func (r *LendingRegistry) Borrowers() []*domain.Borrower { return slices.Clone(r.borrowers) }
func (r *LendingRegistry) BorrowerCount() int            { return len(r.borrowers) }

func (r *LendingRegistry) BorrowerAt(i int) (*domain.Borrower, error) {
	if i < 0 || i >= len(r.borrowers) {
		return nil, indexOutOfRange("borrower", i, len(r.borrowers))
	}
	return r.borrowers[i], nil
}
