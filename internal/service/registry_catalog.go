package service

import (
	"slices"

	"github.com/segyhp/lending-registry/internal/domain"
	customError "github.com/segyhp/lending-registry/pkg/errors"
)

// Genres

func (r *LendingRegistry) AddGenre(name string) (*domain.Genre, error) {
	if g := r.findGenre(name); g != nil {
		return nil, customError.WrapOperation("add genre", customError.WrapDuplicate(customError.ErrCodeDuplicateGenre, "genre", name))
	}
	g, err := domain.NewGenre(name)
	if err != nil {
		return nil, customError.WrapOperation("add genre", err)
	}
	r.genres = append(r.genres, g)
	return g, nil
}

func (r *LendingRegistry) RenameGenre(name, newName string) error {
	const op = "rename genre"

	g := r.findGenre(name)
	if g == nil {
		return customError.WrapOperation(op, customError.WrapGenreNotFound(name))
	}
	if other := r.findGenre(newName); other != nil && other != g {
		return customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateGenre, "genre", newName))
	}
	return customError.WrapOperation(op, g.Rename(newName))
}

// RemoveGenre fails while an item is classified under the genre.
func (r *LendingRegistry) RemoveGenre(name string) error {
	const op = "remove genre"

	g := r.findGenre(name)
	if g == nil {
		return customError.WrapOperation(op, customError.WrapGenreNotFound(name))
	}
	for _, item := range r.items {
		if item.Genre() == g {
			return customError.WrapOperation(op, customError.WrapStillReferenced("genre", name, "item"))
		}
	}
	r.genres = removeFrom(r.genres, g)
	return nil
}

func (r *LendingRegistry) Genre(name string) (*domain.Genre, error) {
	if g := r.findGenre(name); g != nil {
		return g, nil
	}
	return nil, customError.WrapGenreNotFound(name)
}

func (r *LendingRegistry) Genres() []*domain.Genre { return slices.Clone(r.genres) }
func (r *LendingRegistry) GenreCount() int         { return len(r.genres) }

func (r *LendingRegistry) GenreAt(i int) (*domain.Genre, error) {
	if i < 0 || i >= len(r.genres) {
		return nil, indexOutOfRange("genre", i, len(r.genres))
	}
	return r.genres[i], nil
}

func (r *LendingRegistry) findGenre(name string) *domain.Genre {
	for _, g := range r.genres {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

// Locations

func (r *LendingRegistry) AddLocation(room, shelf string) (*domain.Location, error) {
	key := domain.LocationKey{Room: room, Shelf: shelf}
	if loc := r.findLocation(key); loc != nil {
		return nil, customError.WrapOperation("add location", customError.WrapDuplicate(customError.ErrCodeDuplicateLocation, "location", key.String()))
	}
	loc, err := domain.NewLocation(room, shelf)
	if err != nil {
		return nil, customError.WrapOperation("add location", err)
	}
	r.locations = append(r.locations, loc)
	return loc, nil
}

// MoveLocation renames the room and shelf of an existing location.
func (r *LendingRegistry) MoveLocation(key domain.LocationKey, room, shelf string) error {
	const op = "move location"

	loc := r.findLocation(key)
	if loc == nil {
		return customError.WrapOperation(op, customError.WrapLocationNotFound(key.Room, key.Shelf))
	}
	target := domain.LocationKey{Room: room, Shelf: shelf}
	if other := r.findLocation(target); other != nil && other != loc {
		return customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateLocation, "location", target.String()))
	}
	return customError.WrapOperation(op, loc.Move(room, shelf))
}

// RemoveLocation fails while an item is shelved at the location.
func (r *LendingRegistry) RemoveLocation(key domain.LocationKey) error {
	const op = "remove location"

	loc := r.findLocation(key)
	if loc == nil {
		return customError.WrapOperation(op, customError.WrapLocationNotFound(key.Room, key.Shelf))
	}
	for _, item := range r.items {
		if item.Location() == loc {
			return customError.WrapOperation(op, customError.WrapStillReferenced("location", key.String(), "item"))
		}
	}
	r.locations = removeFrom(r.locations, loc)
	return nil
}

func (r *LendingRegistry) Location(key domain.LocationKey) (*domain.Location, error) {
	if loc := r.findLocation(key); loc != nil {
		return loc, nil
	}
	return nil, customError.WrapLocationNotFound(key.Room, key.Shelf)
}

func (r *LendingRegistry) Locations() []*domain.Location { return slices.Clone(r.locations) }
func (r *LendingRegistry) LocationCount() int            { return len(r.locations) }

func (r *LendingRegistry) LocationAt(i int) (*domain.Location, error) {
	if i < 0 || i >= len(r.locations) {
		return nil, indexOutOfRange("location", i, len(r.locations))
	}
	return r.locations[i], nil
}

func (r *LendingRegistry) findLocation(key domain.LocationKey) *domain.Location {
	for _, loc := range r.locations {
		if loc.Key() == key {
			return loc
		}
	}
	return nil
}

// Categories

func (r *LendingRegistry) AddCategory(name string, policy domain.CategoryPolicy) (*domain.BorrowerCategory, error) {
	if c := r.findCategory(name); c != nil {
		return nil, customError.WrapOperation("add category", customError.WrapDuplicate(customError.ErrCodeDuplicateCategory, "category", name))
	}
	c, err := domain.NewBorrowerCategory(name, policy)
	if err != nil {
		return nil, customError.WrapOperation("add category", err)
	}
	r.categories = append(r.categories, c)
	return c, nil
}

// UpdateCategory renames a category and replaces its policy. The change is
// rejected when a member would exceed the new quota or hold an inconsistent
// discount code. Due dates of running loans are kept.
func (r *LendingRegistry) UpdateCategory(name, newName string, policy domain.CategoryPolicy) error {
	const op = "update category"

	c := r.findCategory(name)
	if c == nil {
		return customError.WrapOperation(op, customError.WrapCategoryNotFound(name))
	}
	if other := r.findCategory(newName); other != nil && other != c {
		return customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateCategory, "category", newName))
	}
	if err := policy.Validate(); err != nil {
		return customError.WrapOperation(op, err)
	}

	candidate, err := domain.NewBorrowerCategory(newName, policy)
	if err != nil {
		return customError.WrapOperation(op, err)
	}
	for _, b := range r.borrowers {
		if b.Category() != c {
			continue
		}
		if b.ActiveLoans() > policy.MaxLoans {
			return customError.WrapOperation(op, customError.InvalidOperation(customError.ErrCodeQuotaExceeded,
				"borrower %s holds %d loan(s), category %s would allow %d", b.Key(), b.ActiveLoans(), newName, policy.MaxLoans))
		}
		if err := domain.CheckDiscountCode(candidate, b.DiscountCode()); err != nil {
			return customError.WrapOperation(op, err)
		}
	}
	return customError.WrapOperation(op, c.Update(newName, policy))
}

// RemoveCategory fails while a borrower belongs to the category.
func (r *LendingRegistry) RemoveCategory(name string) error {
	const op = "remove category"

	c := r.findCategory(name)
	if c == nil {
		return customError.WrapOperation(op, customError.WrapCategoryNotFound(name))
	}
	for _, b := range r.borrowers {
		if b.Category() == c {
			return customError.WrapOperation(op, customError.WrapStillReferenced("category", name, "borrower"))
		}
	}
	r.categories = removeFrom(r.categories, c)
	return nil
}

func (r *LendingRegistry) Category(name string) (*domain.BorrowerCategory, error) {
	if c := r.findCategory(name); c != nil {
		return c, nil
	}
	return nil, customError.WrapCategoryNotFound(name)
}

func (r *LendingRegistry) Categories() []*domain.BorrowerCategory { return slices.Clone(r.categories) }
func (r *LendingRegistry) CategoryCount() int                     { return len(r.categories) }

func (r *LendingRegistry) CategoryAt(i int) (*domain.BorrowerCategory, error) {
	if i < 0 || i >= len(r.categories) {
		return nil, indexOutOfRange("category", i, len(r.categories))
	}
	return r.categories[i], nil
}

func (r *LendingRegistry) findCategory(name string) *domain.BorrowerCategory {
	for _, c := range r.categories {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Items

// AddItem registers an item whose genre and location belong to this registry.
func (r *LendingRegistry) AddItem(item *domain.Item) error {
	const op = "add item"

	if item == nil {
		return customError.WrapOperation(op, customError.WrapInvalidArgument("item is required"))
	}
	if _, ok := r.itemIndex[item.Code()]; ok {
		return customError.WrapOperation(op, customError.WrapDuplicate(customError.ErrCodeDuplicateItem, "item", item.Code()))
	}
	if g := r.findGenre(item.Genre().Name()); g == nil || g != item.Genre() {
		return customError.WrapOperation(op, customError.WrapGenreNotFound(item.Genre().Name()))
	}
	key := item.Location().Key()
	if loc := r.findLocation(key); loc == nil || loc != item.Location() {
		return customError.WrapOperation(op, customError.WrapLocationNotFound(key.Room, key.Shelf))
	}
	if item.IsOnLoan() {
		return customError.WrapOperation(op, customError.InvalidOperation(customError.ErrCodeItemAlreadyLent,
			"item %s cannot be added while on loan", item.Code()))
	}

	r.items = append(r.items, item)
	r.itemIndex[item.Code()] = item
	return nil
}

// CreateItem builds an item from catalog names and adds it.
func (r *LendingRegistry) CreateItem(info domain.ItemInfo, genreName string, key domain.LocationKey,
	details domain.ItemDetails, lendable bool) (*domain.Item, error) {
	const op = "add item"

	genre := r.findGenre(genreName)
	if genre == nil {
		return nil, customError.WrapOperation(op, customError.WrapGenreNotFound(genreName))
	}
	loc := r.findLocation(key)
	if loc == nil {
		return nil, customError.WrapOperation(op, customError.WrapLocationNotFound(key.Room, key.Shelf))
	}
	item, err := domain.NewItem(info, genre, loc, details)
	if err != nil {
		return nil, customError.WrapOperation(op, err)
	}
	if lendable {
		if err := item.MakeLendable(); err != nil {
			return nil, customError.WrapOperation(op, err)
		}
	}
	if err := r.AddItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem fails while the item is on loan.
func (r *LendingRegistry) RemoveItem(code string) error {
	const op = "remove item"

	item, ok := r.itemIndex[code]
	if !ok {
		return customError.WrapOperation(op, customError.WrapItemNotFound(code))
	}
	if item.IsOnLoan() {
		return customError.WrapOperation(op, customError.InvalidOperation(customError.ErrCodeItemAlreadyLent,
			"item %s is on loan", code))
	}
	r.items = removeFrom(r.items, item)
	delete(r.itemIndex, code)
	return nil
}

func (r *LendingRegistry) MakeLendable(code string) error {
	item, ok := r.itemIndex[code]
	if !ok {
		return customError.WrapOperation("make lendable", customError.WrapItemNotFound(code))
	}
	return customError.WrapOperation("make lendable", item.MakeLendable())
}

func (r *LendingRegistry) MakeConsultableOnly(code string) error {
	item, ok := r.itemIndex[code]
	if !ok {
		return customError.WrapOperation("make consultable only", customError.WrapItemNotFound(code))
	}
	return customError.WrapOperation("make consultable only", item.MakeConsultableOnly())
}

func (r *LendingRegistry) Item(code string) (*domain.Item, error) {
	if item, ok := r.itemIndex[code]; ok {
		return item, nil
	}
	return nil, customError.WrapItemNotFound(code)
}

func (r *LendingRegistry) Items() []*domain.Item { return slices.Clone(r.items) }
func (r *LendingRegistry) ItemCount() int        { return len(r.items) }

func (r *LendingRegistry) ItemAt(i int) (*domain.Item, error) {
	if i < 0 || i >= len(r.items) {
		return nil, indexOutOfRange("item", i, len(r.items))
	}
	return r.items[i], nil
}

func removeFrom[T comparable](s []T, v T) []T {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
