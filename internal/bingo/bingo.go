// Package bingo defines the core domain types for the death-bingo grid.
// It has zero external dependencies — everything here is pure Go.
package bingo

import (
	"errors"
	"time"
)

// GridSize is the number of cells in a grid. Cell ids are stable,
// assigned at grid creation, and never reused or renumbered.
const GridSize = 25

var (
	ErrNoSuchCell   = errors.New("no such cell")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Person is a fully resolved public figure usable as a grid occupant.
// It is immutable once built by the resolver. The JSON field names are
// the persisted wire format and must stay stable across releases.
type Person struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       *int   `json:"age"`
	IsDead    bool   `json:"isDead"`
	ImageURL  string `json:"imageUrl"`
	WikiTitle string `json:"wikiTitle"`
	QID       string `json:"qid"`
}

// Cell is one of the 25 grid slots. A nil Celebrity means the cell is empty.
type Cell struct {
	ID        int     `json:"id"`
	Celebrity *Person `json:"celebrity"`
}

func (c Cell) Occupied() bool { return c.Celebrity != nil }

// Grid is the persisted unit. LastUpdatedAt is the anchor timestamp all
// future scoring is computed against; it is refreshed on every persist.
type Grid struct {
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	Cells         []Cell    `json:"cells"`
}

// NewGrid returns an empty grid of GridSize cells anchored at now.
func NewGrid(now time.Time) Grid {
	return Grid{LastUpdatedAt: now, Cells: emptyCells()}
}

func emptyCells() []Cell {
	cells := make([]Cell, GridSize)
	for i := range cells {
		cells[i] = Cell{ID: i}
	}
	return cells
}

func (g *Grid) cell(id int) (*Cell, error) {
	for i := range g.Cells {
		if g.Cells[i].ID == id {
			return &g.Cells[i], nil
		}
	}
	return nil, ErrNoSuchCell
}

// Assign places p into the empty cell with the given id. Assigning over
// an occupied cell is rejected — the UI routes filled cells through a
// deletion confirmation instead of overwriting them.
func (g *Grid) Assign(id int, p Person) error {
	c, err := g.cell(id)
	if err != nil {
		return err
	}
	if c.Occupied() {
		return ErrCellOccupied
	}
	c.Celebrity = &p
	return nil
}

// Clear empties the cell with the given id.
func (g *Grid) Clear(id int) error {
	c, err := g.cell(id)
	if err != nil {
		return err
	}
	c.Celebrity = nil
	return nil
}

// Reset replaces all cells with fresh empty ones.
func (g *Grid) Reset() {
	g.Cells = emptyCells()
}
