package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

// ItemKind identifies the kind of a lendable item
type ItemKind string

const (
	KindBook  ItemKind = "book"
	KindAudio ItemKind = "audio"
	KindVideo ItemKind = "video"
)

// Nominal lending policy per kind
const (
	BookLoanDays  = 6 * utils.DaysInWeek
	AudioLoanDays = 4 * utils.DaysInWeek
	VideoLoanDays = 2 * utils.DaysInWeek
)

var (
	BookFee  = decimal.RequireFromString("0.50")
	AudioFee = decimal.RequireFromString("1.00")
	VideoFee = decimal.RequireFromString("1.50")
)

// ItemKinds lists every kind in display order
var ItemKinds = []ItemKind{KindBook, KindAudio, KindVideo}

// ItemDetails is the closed set of kind-specific attributes: Book, Audio and Video.
type ItemDetails interface {
	Kind() ItemKind
	NominalDuration() int
	NominalFee() decimal.Decimal
	validate() error
}

// Book details
type Book struct {
	Pages int `json:"pages"`
}

func (Book) Kind() ItemKind              { return KindBook }
func (Book) NominalDuration() int        { return BookLoanDays }
func (Book) NominalFee() decimal.Decimal { return BookFee }

func (b Book) validate() error {
	if b.Pages <= 0 {
		return customError.WrapInvalidArgument("book page count must be positive, got %d", b.Pages)
	}
	return nil
}

// Audio details
type Audio struct {
	Classification string `json:"classification"`
}

func (Audio) Kind() ItemKind              { return KindAudio }
func (Audio) NominalDuration() int        { return AudioLoanDays }
func (Audio) NominalFee() decimal.Decimal { return AudioFee }

func (a Audio) validate() error {
	if strings.TrimSpace(a.Classification) == "" {
		return customError.WrapInvalidArgument("audio classification is required")
	}
	return nil
}

// Video details
type Video struct {
	Length      int    `json:"length"`
	LegalNotice string `json:"legal_notice"`
}

func (Video) Kind() ItemKind              { return KindVideo }
func (Video) NominalDuration() int        { return VideoLoanDays }
func (Video) NominalFee() decimal.Decimal { return VideoFee }

func (v Video) validate() error {
	if v.Length <= 0 {
		return customError.WrapInvalidArgument("video length must be positive, got %d", v.Length)
	}
	if strings.TrimSpace(v.LegalNotice) == "" {
		return customError.WrapInvalidArgument("video legal notice is required")
	}
	return nil
}

// ItemInfo holds the descriptive attributes shared by every kind
type ItemInfo struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   string `json:"year"`
}

// Item is one physical lendable item. Invariant: on loan implies lendable.
type Item struct {
	info      ItemInfo
	genre     *Genre
	location  *Location
	details   ItemDetails
	lendable  bool
	onLoan    bool
	loanCount int
}

// NewItem creates a consultable-only item.
func NewItem(info ItemInfo, genre *Genre, location *Location, details ItemDetails) (*Item, error) {
	if strings.TrimSpace(info.Code) == "" {
		return nil, customError.WrapInvalidArgument("item code is required")
	}
	if strings.TrimSpace(info.Title) == "" {
		return nil, customError.WrapInvalidArgument("item %s: title is required", info.Code)
	}
	if genre == nil || location == nil || details == nil {
		return nil, customError.WrapInvalidArgument("item %s: genre, location and kind details are required", info.Code)
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	item := &Item{
		info:     info,
		genre:    genre,
		location: location,
		details:  details,
	}
	if err := item.checkInvariant(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) Code() string                { return i.info.Code }
func (i *Item) Info() ItemInfo              { return i.info }
func (i *Item) Genre() *Genre               { return i.genre }
func (i *Item) Location() *Location         { return i.location }
func (i *Item) Details() ItemDetails        { return i.details }
func (i *Item) Kind() ItemKind              { return i.details.Kind() }
func (i *Item) NominalDuration() int        { return i.details.NominalDuration() }
func (i *Item) NominalFee() decimal.Decimal { return i.details.NominalFee() }
func (i *Item) IsLendable() bool            { return i.lendable }
func (i *Item) IsOnLoan() bool              { return i.onLoan }
func (i *Item) LoanCount() int              { return i.loanCount }

// Invariant reports whether on-loan implies lendable and the kind attributes hold.
func (i *Item) Invariant() bool {
	if i.onLoan && !i.lendable {
		return false
	}
	return i.details.validate() == nil && i.loanCount >= 0
}

func (i *Item) checkInvariant() error {
	if !i.Invariant() {
		return customError.InvariantBroken("item %s", i)
	}
	return nil
}

// MakeLendable allows the item to be lent.
func (i *Item) MakeLendable() error {
	if i.lendable {
		return customError.InvalidOperation(customError.ErrCodeItemAlreadyLendable, "item %s is already lendable", i.info.Code)
	}
	i.lendable = true
	return i.checkInvariant()
}

// MakeConsultableOnly forbids lending. Fails while the item is out.
func (i *Item) MakeConsultableOnly() error {
	if !i.lendable {
		return customError.InvalidOperation(customError.ErrCodeItemNotLendable, "item %s is already consultable only", i.info.Code)
	}
	if i.onLoan {
		return customError.InvalidOperation(customError.ErrCodeItemAlreadyLent, "item %s is on loan", i.info.Code)
	}
	i.lendable = false
	return i.checkInvariant()
}

func (i *Item) canLend() error {
	if !i.lendable {
		return customError.InvalidOperation(customError.ErrCodeItemNotLendable, "item %s is not lendable", i.info.Code)
	}
	if i.onLoan {
		return customError.InvalidOperation(customError.ErrCodeItemAlreadyLent, "item %s is already on loan", i.info.Code)
	}
	return nil
}

func (i *Item) lend() error {
	if err := i.canLend(); err != nil {
		return err
	}
	i.onLoan = true
	i.loanCount++
	i.genre.recordLoan()
	return i.checkInvariant()
}

// cancelLend reverses lend when a later step of loan creation fails.
func (i *Item) cancelLend() {
	if !i.onLoan {
		return
	}
	i.onLoan = false
	if i.loanCount > 0 {
		i.loanCount--
	}
	i.genre.cancelLoan()
}

func (i *Item) canReturn() error {
	if !i.lendable {
		return customError.InvalidOperation(customError.ErrCodeItemNotLendable, "cannot return item %s: not lendable", i.info.Code)
	}
	if !i.onLoan {
		return customError.InvalidOperation(customError.ErrCodeItemNotLent, "cannot return item %s: not on loan", i.info.Code)
	}
	return nil
}

func (i *Item) returnItem() error {
	if err := i.canReturn(); err != nil {
		return err
	}
	i.onLoan = false
	return i.checkInvariant()
}

func (i *Item) String() string {
	s := fmt.Sprintf("[%s] %q %s %s %s %s %s %d", i.Kind(), i.info.Code, i.info.Title, i.info.Author,
		i.info.Year, i.genre.Name(), i.location.Key(), i.loanCount)
	if i.lendable {
		if i.onLoan {
			s += " (lendable, out)"
		} else {
			s += " (lendable, in)"
		}
	}
	return s
}
