package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-registry/pkg/errors"
)

// CategoryPolicy holds the values a borrower category imposes on its members.
type CategoryPolicy struct {
	MaxLoans             int             `json:"max_loans"`
	AnnualFee            decimal.Decimal `json:"annual_fee"`
	DurationMultiplier   decimal.Decimal `json:"duration_multiplier"`
	FeeMultiplier        decimal.Decimal `json:"fee_multiplier"`
	RequiresDiscountCode bool            `json:"requires_discount_code"`
}

// Validate checks that policy values are usable
func (p CategoryPolicy) Validate() error {
	if p.MaxLoans < 0 {
		return customError.WrapInvalidArgument("max loans must not be negative, got %d", p.MaxLoans)
	}
	if p.AnnualFee.IsNegative() {
		return customError.WrapInvalidArgument("annual fee must not be negative, got %s", p.AnnualFee)
	}
	if p.DurationMultiplier.IsNegative() {
		return customError.WrapInvalidArgument("duration multiplier must not be negative, got %s", p.DurationMultiplier)
	}
	if p.FeeMultiplier.IsNegative() {
		return customError.WrapInvalidArgument("fee multiplier must not be negative, got %s", p.FeeMultiplier)
	}
	return nil
}

// BorrowerCategory is a named policy bundle. Name uniqueness is enforced by the registry.
type BorrowerCategory struct {
	name   string
	policy CategoryPolicy
}

func NewBorrowerCategory(name string, policy CategoryPolicy) (*BorrowerCategory, error) {
	if strings.TrimSpace(name) == "" {
		return nil, customError.WrapInvalidArgument("category name is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &BorrowerCategory{name: name, policy: policy}, nil
}

func (c *BorrowerCategory) Name() string                        { return c.name }
func (c *BorrowerCategory) Policy() CategoryPolicy              { return c.policy }
func (c *BorrowerCategory) MaxLoans() int                       { return c.policy.MaxLoans }
func (c *BorrowerCategory) AnnualFee() decimal.Decimal          { return c.policy.AnnualFee }
func (c *BorrowerCategory) DurationMultiplier() decimal.Decimal { return c.policy.DurationMultiplier }
func (c *BorrowerCategory) FeeMultiplier() decimal.Decimal      { return c.policy.FeeMultiplier }
func (c *BorrowerCategory) RequiresDiscountCode() bool          { return c.policy.RequiresDiscountCode }

// Update replaces name and policy. Callers check member consistency first.
func (c *BorrowerCategory) Update(name string, policy CategoryPolicy) error {
	if strings.TrimSpace(name) == "" {
		return customError.WrapInvalidArgument("category name is required")
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	c.name = name
	c.policy = policy
	return nil
}

func (c *BorrowerCategory) String() string {
	return "Category: " + c.name
}
