package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-registry/pkg/errors"
)

// RegistrySnapshot holds every catalog needed to rebuild a registry.
type RegistrySnapshot struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	TakenAt    time.Time        `json:"taken_at"`
	Genres     []GenreState     `json:"genres"`
	Locations  []LocationKey    `json:"locations"`
	Categories []CategoryState  `json:"categories"`
	Items      []ItemState      `json:"items"`
	Borrowers  []BorrowerState  `json:"borrowers"`
	Loans      []LoanState      `json:"loans"`
	KindTotals map[ItemKind]int `json:"kind_totals"`
}

type GenreState struct {
	Name      string `json:"name"`
	LoanCount int    `json:"loan_count"`
}

type CategoryState struct {
	Name string `json:"name"`
	CategoryPolicy
}

type ItemState struct {
	ItemInfo
	Kind           ItemKind    `json:"kind"`
	Genre          string      `json:"genre"`
	Location       LocationKey `json:"location"`
	Pages          int         `json:"pages,omitempty"`
	Classification string      `json:"classification,omitempty"`
	Length         int         `json:"length,omitempty"`
	LegalNotice    string      `json:"legal_notice,omitempty"`
	Lendable       bool        `json:"lendable"`
	OnLoan         bool        `json:"on_loan"`
	LoanCount      int         `json:"loan_count"`
}

type BorrowerState struct {
	BorrowerKey
	Address       string       `json:"address"`
	Category      string       `json:"category"`
	DiscountCode  DiscountCode `json:"discount_code,omitempty"`
	EnrolledAt    time.Time    `json:"enrolled_at"`
	RenewalAt     time.Time    `json:"renewal_at"`
	ActiveLoans   int          `json:"active_loans"`
	OverdueLoans  int          `json:"overdue_loans"`
	LifetimeLoans int          `json:"lifetime_loans"`
}

type LoanState struct {
	ID         uuid.UUID       `json:"id"`
	Borrower   BorrowerKey     `json:"borrower"`
	ItemCode   string          `json:"item_code"`
	LoanDate   time.Time       `json:"loan_date"`
	DueDate    time.Time       `json:"due_date"`
	Overdue    bool            `json:"overdue"`
	ReminderAt *time.Time      `json:"reminder_at,omitempty"`
	Fee        decimal.Decimal `json:"fee"`
}

func (g *Genre) State() GenreState {
	return GenreState{Name: g.name, LoanCount: g.loanCount}
}

func RestoreGenre(s GenreState) (*Genre, error) {
	g, err := NewGenre(s.Name)
	if err != nil {
		return nil, err
	}
	g.loanCount = s.LoanCount
	return g, nil
}

func (c *BorrowerCategory) State() CategoryState {
	return CategoryState{Name: c.name, CategoryPolicy: c.policy}
}

func RestoreCategory(s CategoryState) (*BorrowerCategory, error) {
	return NewBorrowerCategory(s.Name, s.CategoryPolicy)
}

func (i *Item) State() ItemState {
	s := ItemState{
		ItemInfo:  i.info,
		Kind:      i.Kind(),
		Genre:     i.genre.Name(),
		Location:  i.location.Key(),
		Lendable:  i.lendable,
		OnLoan:    i.onLoan,
		LoanCount: i.loanCount,
	}
	switch d := i.details.(type) {
	case Book:
		s.Pages = d.Pages
	case Audio:
		s.Classification = d.Classification
	case Video:
		s.Length = d.Length
		s.LegalNotice = d.LegalNotice
	}
	return s
}

// DetailsFor builds the kind-specific details from flattened attributes.
func DetailsFor(kind ItemKind, pages int, classification string, length int, legalNotice string) (ItemDetails, error) {
	switch kind {
	case KindBook:
		return Book{Pages: pages}, nil
	case KindAudio:
		return Audio{Classification: classification}, nil
	case KindVideo:
		return Video{Length: length, LegalNotice: legalNotice}, nil
	default:
		return nil, customError.WrapInvalidArgument("unknown item kind %q", kind)
	}
}

func RestoreItem(s ItemState, genre *Genre, location *Location) (*Item, error) {
	details, err := DetailsFor(s.Kind, s.Pages, s.Classification, s.Length, s.LegalNotice)
	if err != nil {
		return nil, err
	}
	item, err := NewItem(s.ItemInfo, genre, location, details)
	if err != nil {
		return nil, err
	}
	item.lendable = s.Lendable
	item.onLoan = s.OnLoan
	item.loanCount = s.LoanCount
	if err := item.checkInvariant(); err != nil {
		return nil, err
	}
	return item, nil
}

func (b *Borrower) State() BorrowerState {
	return BorrowerState{
		BorrowerKey:   b.key,
		Address:       b.address,
		Category:      b.category.Name(),
		DiscountCode:  b.discountCode,
		EnrolledAt:    b.enrolledAt,
		RenewalAt:     b.renewalAt,
		ActiveLoans:   b.activeLoans,
		OverdueLoans:  b.overdueLoans,
		LifetimeLoans: b.lifetimeLoans,
	}
}

// RestoreBorrower rebuilds counters; loan records are attached by RestoreLoan.
func RestoreBorrower(s BorrowerState, category *BorrowerCategory) (*Borrower, error) {
	b, err := NewBorrower(s.BorrowerKey, s.Address, category, s.DiscountCode, s.EnrolledAt, 0)
	if err != nil {
		return nil, err
	}
	b.renewalAt = s.RenewalAt
	b.activeLoans = s.ActiveLoans
	b.overdueLoans = s.OverdueLoans
	b.lifetimeLoans = s.LifetimeLoans
	if err := b.checkInvariant(); err != nil {
		return nil, err
	}
	return b, nil
}

func (l *LoanRecord) State() LoanState {
	s := LoanState{
		ID:       l.id,
		Borrower: l.borrower.Key(),
		ItemCode: l.item.Code(),
		LoanDate: l.loanDate,
		DueDate:  l.dueDate,
		Overdue:  l.overdue,
		Fee:      l.Fee(),
	}
	if !l.reminderAt.IsZero() {
		reminderAt := l.reminderAt
		s.ReminderAt = &reminderAt
	}
	return s
}

// RestoreLoan rebuilds a loan record and attaches it to its borrower without touching counters.
func RestoreLoan(s LoanState, borrower *Borrower, item *Item) (*LoanRecord, error) {
	if borrower == nil || item == nil {
		return nil, customError.InvariantBroken("loan %s references a missing borrower or item", s.ID)
	}
	if !item.IsOnLoan() {
		return nil, customError.InvariantBroken("loan %s references item %s which is not on loan", s.ID, item.Code())
	}
	l := &LoanRecord{
		id:       s.ID,
		borrower: borrower,
		item:     item,
		loanDate: s.LoanDate,
		dueDate:  s.DueDate,
		overdue:  s.Overdue,
	}
	if s.ReminderAt != nil {
		l.reminderAt = *s.ReminderAt
	}
	if l.id == uuid.Nil {
		l.id = uuid.New()
	}
	borrower.attachRestoredLoan(l)
	return l, nil
}
