package domain

import "github.com/shopspring/decimal"

// DTOs for requests and responses

type GenreRequest struct {
	Name string `json:"name" validate:"required"`
}

type LocationRequest struct {
	Room  string `json:"room" validate:"required"`
	Shelf string `json:"shelf" validate:"required"`
}

type CategoryRequest struct {
	Name                 string          `json:"name" validate:"required"`
	MaxLoans             int             `json:"max_loans" validate:"gte=0"`
	AnnualFee            decimal.Decimal `json:"annual_fee" validate:"gte=0"`
	DurationMultiplier   decimal.Decimal `json:"duration_multiplier" validate:"gte=0"`
	FeeMultiplier        decimal.Decimal `json:"fee_multiplier" validate:"gte=0"`
	RequiresDiscountCode bool            `json:"requires_discount_code"`
}

func (r CategoryRequest) Policy() CategoryPolicy {
	return CategoryPolicy{
		MaxLoans:             r.MaxLoans,
		AnnualFee:            r.AnnualFee,
		DurationMultiplier:   r.DurationMultiplier,
		FeeMultiplier:        r.FeeMultiplier,
		RequiresDiscountCode: r.RequiresDiscountCode,
	}
}

type CreateItemRequest struct {
	Kind           ItemKind `json:"kind" validate:"required,oneof=book audio video"`
	Code           string   `json:"code" validate:"required"`
	Title          string   `json:"title" validate:"required"`
	Author         string   `json:"author" validate:"required"`
	Year           string   `json:"year" validate:"required"`
	Genre          string   `json:"genre" validate:"required"`
	Room           string   `json:"room" validate:"required"`
	Shelf          string   `json:"shelf" validate:"required"`
	Pages          int      `json:"pages" validate:"required_if=Kind book,gte=0"`
	Classification string   `json:"classification" validate:"required_if=Kind audio"`
	Length         int      `json:"length" validate:"required_if=Kind video,gte=0"`
	LegalNotice    string   `json:"legal_notice" validate:"required_if=Kind video"`
	Lendable       bool     `json:"lendable"`
}

func (r CreateItemRequest) Info() ItemInfo {
	return ItemInfo{Code: r.Code, Title: r.Title, Author: r.Author, Year: r.Year}
}

type RegisterBorrowerRequest struct {
	LastName     string       `json:"last_name" validate:"required"`
	FirstName    string       `json:"first_name" validate:"required"`
	Address      string       `json:"address" validate:"required"`
	Category     string       `json:"category" validate:"required"`
	DiscountCode DiscountCode `json:"discount_code" validate:"gte=0"`
}

func (r RegisterBorrowerRequest) Key() BorrowerKey {
	return BorrowerKey{LastName: r.LastName, FirstName: r.FirstName}
}

type RegisterBorrowerResponse struct {
	Borrower  BorrowerState   `json:"borrower"`
	AnnualFee decimal.Decimal `json:"annual_fee"`
}

type UpdateBorrowerRequest struct {
	LastName  string `json:"last_name" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	Address   string `json:"address" validate:"required"`
}

type ChangeCategoryRequest struct {
	Category     string       `json:"category" validate:"required"`
	DiscountCode DiscountCode `json:"discount_code" validate:"gte=0"`
}

type DiscountCodeRequest struct {
	DiscountCode DiscountCode `json:"discount_code" validate:"required,gt=0"`
}

type LoanRequest struct {
	LastName  string `json:"last_name" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	ItemCode  string `json:"item_code" validate:"required"`
}

func (r LoanRequest) Key() BorrowerKey {
	return BorrowerKey{LastName: r.LastName, FirstName: r.FirstName}
}
