package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every BusinessError wraps exactly one of them.
var (
	// ErrInvalidOperation is a precondition violation caused by caller input or state.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvariantBroken signals an internal defect: an invariant did not hold after a mutation.
	ErrInvariantBroken = errors.New("invariant broken")

	// ErrSnapshotNotFound is returned by snapshot stores that hold no saved state.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	ErrDatabase = errors.New("database failure")
	ErrCache    = errors.New("cache failure")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeItemNotFound           = "ITEM_NOT_FOUND"
	ErrCodeBorrowerNotFound       = "BORROWER_NOT_FOUND"
	ErrCodeCategoryNotFound       = "CATEGORY_NOT_FOUND"
	ErrCodeGenreNotFound          = "GENRE_NOT_FOUND"
	ErrCodeLocationNotFound       = "LOCATION_NOT_FOUND"
	ErrCodeLoanNotFound           = "LOAN_NOT_FOUND"
	ErrCodeDuplicateItem          = "DUPLICATE_ITEM"
	ErrCodeDuplicateBorrower      = "DUPLICATE_BORROWER"
	ErrCodeDuplicateCategory      = "DUPLICATE_CATEGORY"
	ErrCodeDuplicateGenre         = "DUPLICATE_GENRE"
	ErrCodeDuplicateLocation      = "DUPLICATE_LOCATION"
	ErrCodeItemNotLendable        = "ITEM_NOT_LENDABLE"
	ErrCodeItemAlreadyLendable    = "ITEM_ALREADY_LENDABLE"
	ErrCodeItemAlreadyLent        = "ITEM_ALREADY_LENT"
	ErrCodeItemNotLent            = "ITEM_NOT_LENT"
	ErrCodeBorrowerNotAllowed     = "BORROWER_NOT_ALLOWED"
	ErrCodeQuotaExceeded          = "QUOTA_EXCEEDED"
	ErrCodeNoActiveLoan           = "NO_ACTIVE_LOAN"
	ErrCodeDiscountCodeRequired   = "DISCOUNT_CODE_REQUIRED"
	ErrCodeDiscountCodeUnexpected = "DISCOUNT_CODE_UNEXPECTED"
	ErrCodeStillReferenced        = "STILL_REFERENCED"
	ErrCodeInvalidArgument        = "INVALID_ARGUMENT"
	ErrCodeInvariantBroken        = "INVARIANT_BROKEN"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// IsInvalidOperation reports whether err is a recoverable precondition failure.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsInvariantBroken reports whether err signals an internal defect.
func IsInvariantBroken(err error) bool {
	return errors.Is(err, ErrInvariantBroken)
}

// CodeOf returns the code of the first BusinessError in err's chain, or "".
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsNotFound reports whether err is a lookup failure on one of the catalogs.
func IsNotFound(err error) bool {
	return strings.HasSuffix(CodeOf(err), "_NOT_FOUND")
}

// IsDuplicate reports whether err is a uniqueness violation on one of the catalogs.
func IsDuplicate(err error) bool {
	return strings.HasPrefix(CodeOf(err), "DUPLICATE_")
}

// WrapOperation adds the composite operation in progress without changing kind or code.
func WrapOperation(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// InvalidOperation builds an ErrInvalidOperation with the given code.
func InvalidOperation(code, format string, args ...any) *BusinessError {
	return NewBusinessError(code, fmt.Sprintf(format, args...), ErrInvalidOperation)
}

// InvariantBroken builds an ErrInvariantBroken describing the offending entity.
func InvariantBroken(format string, args ...any) *BusinessError {
	return NewBusinessError(ErrCodeInvariantBroken, fmt.Sprintf(format, args...), ErrInvariantBroken)
}

// Wrap common errors with business context
func WrapItemNotFound(code string) *BusinessError {
	return InvalidOperation(ErrCodeItemNotFound, "Item with code %s not found", code)
}

func WrapBorrowerNotFound(lastName, firstName string) *BusinessError {
	return InvalidOperation(ErrCodeBorrowerNotFound, "Borrower %s %s not found", lastName, firstName)
}

func WrapCategoryNotFound(name string) *BusinessError {
	return InvalidOperation(ErrCodeCategoryNotFound, "Borrower category %s not found", name)
}

func WrapGenreNotFound(name string) *BusinessError {
	return InvalidOperation(ErrCodeGenreNotFound, "Genre %s not found", name)
}

func WrapLocationNotFound(room, shelf string) *BusinessError {
	return InvalidOperation(ErrCodeLocationNotFound, "Location %s/%s not found", room, shelf)
}

func WrapLoanNotFound(lastName, firstName, code string) *BusinessError {
	return InvalidOperation(ErrCodeLoanNotFound, "No active loan of %s by %s %s", code, lastName, firstName)
}

func WrapDuplicate(code, what, key string) *BusinessError {
	return InvalidOperation(code, "%s %s already exists", what, key)
}

func WrapStillReferenced(what, key, by string) *BusinessError {
	return InvalidOperation(ErrCodeStillReferenced, "%s %s is still referenced by at least one %s", what, key, by)
}

func WrapInvalidArgument(format string, args ...any) *BusinessError {
	return InvalidOperation(ErrCodeInvalidArgument, format, args...)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		fmt.Errorf("%w: %w", ErrDatabase, err),
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		fmt.Errorf("%w: %w", ErrCache, err),
	)
}
