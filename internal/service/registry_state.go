package service

import (
	"maps"

	"github.com/google/uuid"

	"github.com/segyhp/lending-registry/internal/config"
	"github.com/segyhp/lending-registry/internal/domain"
	customError "github.com/segyhp/lending-registry/pkg/errors"
	"github.com/segyhp/lending-registry/pkg/utils"
)

// Statistics holds the lifetime loan counters exposed for reporting
type Statistics struct {
	TotalLoans    int                     `json:"total_loans"`
	KindLoans     map[domain.ItemKind]int `json:"kind_loans"`
	GenreLoans    map[string]int          `json:"genre_loans"`
	ItemLoans     map[string]int          `json:"item_loans"`
	BorrowerLoans map[string]int          `json:"borrower_loans"`
	Items         int                     `json:"items"`
	Borrowers     int                     `json:"borrowers"`
	ActiveLoans   int                     `json:"active_loans"`
	OverdueLoans  int                     `json:"overdue_loans"`
}

func (r *LendingRegistry) Statistics() Statistics {
	stats := Statistics{
		KindLoans:     make(map[domain.ItemKind]int, len(domain.ItemKinds)),
		GenreLoans:    make(map[string]int, len(r.genres)),
		ItemLoans:     make(map[string]int, len(r.items)),
		BorrowerLoans: make(map[string]int, len(r.borrowers)),
		Items:         len(r.items),
		Borrowers:     len(r.borrowers),
		ActiveLoans:   len(r.loans),
	}
	for _, kind := range domain.ItemKinds {
		stats.KindLoans[kind] = r.kindTotals[kind]
		stats.TotalLoans += r.kindTotals[kind]
	}
	for _, g := range r.genres {
		stats.GenreLoans[g.Name()] = g.LoanCount()
	}
	for _, item := range r.items {
		stats.ItemLoans[item.Code()] = item.LoanCount()
	}
	for _, b := range r.borrowers {
		stats.BorrowerLoans[b.Key().String()] = b.LifetimeLoans()
	}
	for _, loan := range r.loans {
		if loan.IsOverdue() {
			stats.OverdueLoans++
		}
	}
	return stats
}

// Verify checks every entity invariant and the cross-catalog invariants:
// each loan references catalogued entities, each on-loan item has exactly one
// loan and each loan sits in exactly one borrower's active set.
func (r *LendingRegistry) Verify() error {
	for _, item := range r.items {
		if !item.Invariant() {
			return customError.InvariantBroken("item %s", item)
		}
	}
	for _, b := range r.borrowers {
		if !b.Invariant() {
			return customError.InvariantBroken("borrower %s", b)
		}
	}

	loansPerItem := make(map[string]int, len(r.loans))
	heldBy := make(map[*domain.LoanRecord]int, len(r.loans))
	for _, b := range r.borrowers {
		overdue := 0
		loans := b.Loans()
		for _, loan := range loans {
			heldBy[loan]++
			if loan.IsOverdue() {
				overdue++
			}
		}
		if len(loans) != b.ActiveLoans() || overdue != b.OverdueLoans() {
			return customError.InvariantBroken("borrower %s holds %d loan record(s), %d overdue", b, len(loans), overdue)
		}
	}

	for _, loan := range r.loans {
		item, ok := r.itemIndex[loan.Item().Code()]
		if !ok || item != loan.Item() {
			return customError.InvariantBroken("loan %s references an unknown item", loan)
		}
		b, ok := r.borrowerIndex[loan.Borrower().Key()]
		if !ok || b != loan.Borrower() {
			return customError.InvariantBroken("loan %s references an unknown borrower", loan)
		}
		if !item.IsOnLoan() {
			return customError.InvariantBroken("loan %s references an item that is not on loan", loan)
		}
		if heldBy[loan] != 1 {
			return customError.InvariantBroken("loan %s is held by %d borrower(s)", loan, heldBy[loan])
		}
		loansPerItem[item.Code()]++
	}

	for _, item := range r.items {
		if item.IsOnLoan() && loansPerItem[item.Code()] != 1 {
			return customError.InvariantBroken("item %s is on loan with %d loan record(s)", item, loansPerItem[item.Code()])
		}
	}
	return nil
}

// Snapshot captures every catalog, the active loans and the lifetime totals.
func (r *LendingRegistry) Snapshot() *domain.RegistrySnapshot {
	snap := &domain.RegistrySnapshot{
		ID:         uuid.New(),
		Name:       r.config.RegistryName,
		TakenAt:    r.clock.Today(),
		Genres:     make([]domain.GenreState, 0, len(r.genres)),
		Locations:  make([]domain.LocationKey, 0, len(r.locations)),
		Categories: make([]domain.CategoryState, 0, len(r.categories)),
		Items:      make([]domain.ItemState, 0, len(r.items)),
		Borrowers:  make([]domain.BorrowerState, 0, len(r.borrowers)),
		Loans:      make([]domain.LoanState, 0, len(r.loans)),
		KindTotals: maps.Clone(r.kindTotals),
	}
	for _, g := range r.genres {
		snap.Genres = append(snap.Genres, g.State())
	}
	for _, loc := range r.locations {
		snap.Locations = append(snap.Locations, loc.Key())
	}
	for _, c := range r.categories {
		snap.Categories = append(snap.Categories, c.State())
	}
	for _, item := range r.items {
		snap.Items = append(snap.Items, item.State())
	}
	for _, b := range r.borrowers {
		snap.Borrowers = append(snap.Borrowers, b.State())
	}
	for _, loan := range r.loans {
		snap.Loans = append(snap.Loans, loan.State())
	}
	return snap
}

// RestoreLendingRegistry rebuilds a registry from a snapshot and verifies it.
func RestoreLendingRegistry(snap *domain.RegistrySnapshot, cfg config.LendingConfig, clock utils.Clock,
	notifier domain.Notifier) (*LendingRegistry, error) {
	const op = "restore registry"

	r := NewLendingRegistry(cfg, clock, notifier)
	if snap == nil {
		return r, nil
	}

	for _, s := range snap.Genres {
		if r.findGenre(s.Name) != nil {
			return nil, customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateGenre, "genre", s.Name))
		}
		g, err := domain.RestoreGenre(s)
		if err != nil {
			return nil, customError.WrapOperation(op, err)
		}
		r.genres = append(r.genres, g)
	}

	for _, key := range snap.Locations {
		if _, err := r.AddLocation(key.Room, key.Shelf); err != nil {
			return nil, customError.WrapOperation(op, err)
		}
	}

	for _, s := range snap.Categories {
		if r.findCategory(s.Name) != nil {
			return nil, customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateCategory, "category", s.Name))
		}
		c, err := domain.RestoreCategory(s)
		if err != nil {
			return nil, customError.WrapOperation(op, err)
		}
		r.categories = append(r.categories, c)
	}

	for _, s := range snap.Items {
		genre := r.findGenre(s.Genre)
		if genre == nil {
			return nil, customError.WrapOperation(op, customError.WrapGenreNotFound(s.Genre))
		}
		loc := r.findLocation(s.Location)
		if loc == nil {
			return nil, customError.WrapOperation(op, customError.WrapLocationNotFound(s.Location.Room, s.Location.Shelf))
		}
		item, err := domain.RestoreItem(s, genre, loc)
		if err != nil {
			return nil, customError.WrapOperation(op, err)
		}
		if _, ok := r.itemIndex[item.Code()]; ok {
			return nil, customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateItem, "item", item.Code()))
		}
		r.items = append(r.items, item)
		r.itemIndex[item.Code()] = item
	}

	for _, s := range snap.Borrowers {
		category := r.findCategory(s.Category)
		if category == nil {
			return nil, customError.WrapOperation(op, customError.WrapCategoryNotFound(s.Category))
		}
		b, err := domain.RestoreBorrower(s, category)
		if err != nil {
			return nil, customError.WrapOperation(op, err)
		}
		if _, ok := r.borrowerIndex[b.Key()]; ok {
			return nil, customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateBorrower, "borrower", b.Key().String()))
		}
		r.borrowers = append(r.borrowers, b)
		r.borrowerIndex[b.Key()] = b
	}

	for _, s := range snap.Loans {
		b, ok := r.borrowerIndex[s.Borrower]
		if !ok {
			return nil, customError.WrapOperation(op, customError.WrapBorrowerNotFound(s.Borrower.LastName, s.Borrower.FirstName))
		}
		item, ok := r.itemIndex[s.ItemCode]
		if !ok {
			return nil, customError.WrapOperation(op, customError.WrapItemNotFound(s.ItemCode))
		}
		loan, err := domain.RestoreLoan(s, b, item)
		if err != nil {
			return nil, customError.WrapOperation(op, err)
		}
		r.loans = append(r.loans, loan)
	}

	for kind, total := range snap.KindTotals {
		r.kindTotals[kind] = total
	}

	if err := r.Verify(); err != nil {
		return nil, customError.WrapOperation(op, err)
	}
	return r, nil
}
