package domain

import (
	"fmt"
	"strings"

	customError "github.com/segyhp/lending-registry/pkg/errors"
)

// Genre classifies items and keeps its own lifetime loan counter.
type Genre struct {
	name      string
	loanCount int
}

func NewGenre(name string) (*Genre, error) {
	if strings.TrimSpace(name) == "" {
		return nil, customError.WrapInvalidArgument("genre name is required")
	}
	return &Genre{name: name}, nil
}

func (g *Genre) Name() string   { return g.name }
func (g *Genre) LoanCount() int { return g.loanCount }

// Rename changes the genre name. Uniqueness is enforced by the registry.
func (g *Genre) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return customError.WrapInvalidArgument("genre name is required")
	}
	g.name = name
	return nil
}

func (g *Genre) recordLoan() { g.loanCount++ }

func (g *Genre) cancelLoan() {
	if g.loanCount > 0 {
		g.loanCount--
	}
}

func (g *Genre) String() string {
	return fmt.Sprintf("Genre: %s, loans: %d", g.name, g.loanCount)
}

// LocationKey identifies a shelf location; it is comparable and used as a map key.
type LocationKey struct {
	Room  string `json:"room"`
	Shelf string `json:"shelf"`
}

func (k LocationKey) String() string {
	return k.Room + "/" + k.Shelf
}

// Location is a room/shelf pair where items are shelved.
type Location struct {
	key LocationKey
}

func NewLocation(room, shelf string) (*Location, error) {
	if strings.TrimSpace(room) == "" || strings.TrimSpace(shelf) == "" {
		return nil, customError.WrapInvalidArgument("location room and shelf are required, got %q/%q", room, shelf)
	}
	return &Location{key: LocationKey{Room: room, Shelf: shelf}}, nil
}

func (l *Location) Key() LocationKey { return l.key }
func (l *Location) Room() string     { return l.key.Room }
func (l *Location) Shelf() string    { return l.key.Shelf }

// Move relocates the shelf. Uniqueness is enforced by the registry.
func (l *Location) Move(room, shelf string) error {
	if strings.TrimSpace(room) == "" || strings.TrimSpace(shelf) == "" {
		return customError.WrapInvalidArgument("location room and shelf are required, got %q/%q", room, shelf)
	}
	l.key = LocationKey{Room: room, Shelf: shelf}
	return nil
}

func (l *Location) String() string {
	return "Room/Shelf: " + l.key.String()
}
